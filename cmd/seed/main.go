package main // seed provisions a home, its users and role memberships

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hearthhq/hearth-api/internal/config"
	"github.com/hearthhq/hearth-api/internal/database"
	"github.com/hearthhq/hearth-api/internal/repository"
	"github.com/hearthhq/hearth-api/internal/service"
)

// multiFlag collects repeatable string flags (-user a -user b).
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func main() {
	var (
		userArgs     multiFlag
		passwordArgs multiFlag
	)
	homeName := flag.String("home-name", "", "home display name (required)")
	timezone := flag.String("timezone", "UTC", "home timezone")
	seedAllRoles := flag.Bool("seed-all-roles", false, "auto-create one user for each membership role")
	emailDomain := flag.String("default-email-domain", "example.com", "email domain for auto-generated role members")
	flag.Var(&userArgs, "user", "user spec email:role[:default]; repeat for multiple users")
	flag.Var(&passwordArgs, "password", "owner password mapping email:plain_password; repeat as needed")
	flag.Parse()

	if strings.TrimSpace(*homeName) == "" {
		log.Fatal("-home-name is required")
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Malformed specs are reported and skipped; the remaining ones still
	// run.
	failed := false
	var specs []service.SeedSpec
	for _, raw := range userArgs {
		spec, err := service.ParseSeedSpec(raw)
		if err != nil {
			log.Printf("skipping: %v", err)
			failed = true
			continue
		}
		specs = append(specs, spec)
	}
	passwords := map[string]string{}
	for _, raw := range passwordArgs {
		email, password, err := service.ParsePasswordArg(raw)
		if err != nil {
			log.Printf("skipping: %v", err)
			failed = true
			continue
		}
		passwords[email] = password
	}

	seeder := service.NewIdentitySeeder(
		repository.NewUserRepo(db),
		repository.NewHomeRepo(db),
		repository.NewMembershipRepo(db),
		cfg.PBKDF2Iterations,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := seeder.Run(ctx, *homeName, *timezone, specs, passwords, *seedAllRoles, *emailDomain)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Printf("created home: %s (%s) id=%d", result.Home.Name, result.Home.Timezone, result.Home.ID)
	for _, item := range result.Items {
		if item.Err != nil {
			log.Printf("error: %s role=%s: %v", item.Spec.Email, item.Spec.Role, item.Err)
			failed = true
			continue
		}
		if item.PasswordIgnored {
			log.Printf("ignoring password for non-owner role %q (%s); password stays unusable",
				item.Spec.Role, item.Spec.Email)
		}
		log.Printf("%s user: %s id=%d", createdOrFound(item.UserCreated), item.Spec.Email, item.UserID)
		log.Printf("%s membership: user=%s role=%s default=true id=%d",
			createdOrFound(item.MembershipCreated), item.Spec.Email, item.Spec.Role, item.MembershipID)
	}
	log.Print("identity seeding complete")
	if failed {
		os.Exit(1)
	}
}

func createdOrFound(created bool) string {
	if created {
		return "created"
	}
	return "found"
}
