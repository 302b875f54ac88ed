package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hearthhq/hearth-api/internal/model"
	"github.com/hearthhq/hearth-api/internal/utils"
)

// SeedSpec describes one user to provision into a home.
type SeedSpec struct {
	Email     string
	Role      string
	IsDefault bool
}

// SeedUserStore is the user provisioning surface the seeder needs.
type SeedUserStore interface {
	FindOrCreate(ctx context.Context, email string, passwordHash sql.NullString) (model.User, bool, error)
}

// SeedHomeStore creates home rows.
type SeedHomeStore interface {
	Create(ctx context.Context, name, timezone string) (model.Home, error)
}

// SeedMembershipStore provisions membership triples.
type SeedMembershipStore interface {
	FindOrCreate(ctx context.Context, homeID, userID uint64, role string, isDefaultHome bool) (model.HomeMembership, bool, error)
}

// SeedItemResult reports the outcome for a single spec. Err is set for
// per-item failures (malformed email, unknown role, store errors); a failed
// item never aborts the remaining ones.
type SeedItemResult struct {
	Spec              SeedSpec
	UserID            uint64
	UserCreated       bool
	MembershipID      uint64
	MembershipCreated bool
	PasswordIgnored   bool
	Err               error
}

// SeedResult is the outcome of one seeding run.
type SeedResult struct {
	Home  model.Home
	Items []SeedItemResult
}

// IdentitySeeder provisions a home, its users and role memberships from a
// declarative list. It is designed for repeated invocation: each run creates
// a fresh home (homes are never deduplicated by name), while users and
// memberships are found-or-created so previously seeded rows are left
// undisturbed.
type IdentitySeeder struct {
	users       SeedUserStore
	homes       SeedHomeStore
	memberships SeedMembershipStore
	iterations  int // PBKDF2 iteration count for owner passwords
}

func NewIdentitySeeder(users SeedUserStore, homes SeedHomeStore, memberships SeedMembershipStore, iterations int) *IdentitySeeder {
	return &IdentitySeeder{users: users, homes: homes, memberships: memberships, iterations: iterations}
}

// ParseSeedSpec parses the email:role[:default] form used on the command
// line.
func ParseSeedSpec(raw string) (SeedSpec, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return SeedSpec{}, fmt.Errorf("invalid user spec %q: use email:role[:default]", raw)
	}
	email := normalizeSeedEmail(parts[0])
	if !validEmail(email) {
		return SeedSpec{}, fmt.Errorf("invalid user spec %q: malformed email", raw)
	}
	role := strings.ToLower(strings.TrimSpace(parts[1]))
	if !model.IsValidRole(role) {
		return SeedSpec{}, fmt.Errorf("invalid user spec %q: unknown role %q (allowed: %s)",
			raw, parts[1], strings.Join(model.MembershipRoles, ", "))
	}
	isDefault := false
	if len(parts) == 3 {
		switch strings.ToLower(strings.TrimSpace(parts[2])) {
		case "default", "true", "1", "yes":
			isDefault = true
		}
	}
	return SeedSpec{Email: email, Role: role, IsDefault: isDefault}, nil
}

// ParsePasswordArg parses an email:plain_password mapping value.
func ParsePasswordArg(raw string) (email, password string, err error) {
	email, password, found := strings.Cut(raw, ":")
	email = normalizeSeedEmail(email)
	if !found || email == "" || password == "" {
		return "", "", fmt.Errorf("invalid password mapping %q: use email:plain_password", raw)
	}
	return email, password, nil
}

// AutoRoleSpecs returns one default-flagged spec per membership role, with
// emails of the form role@domain.
func AutoRoleSpecs(emailDomain string) []SeedSpec {
	domain := normalizeSeedEmail(emailDomain)
	specs := make([]SeedSpec, 0, len(model.MembershipRoles))
	for _, role := range model.MembershipRoles {
		specs = append(specs, SeedSpec{
			Email:     role + "@" + domain,
			Role:      role,
			IsDefault: true,
		})
	}
	return specs
}

// Run seeds one home. A fresh home row is always created. Specs are
// deduplicated on (email, role) before processing; when seedAllRoles is set
// (or no specs are supplied at all) the list is extended with one user per
// role under emailDomain. Passwords apply to the owner role only; for every
// other role the account keeps the NULL hash sentinel and can never log in
// with a password. Every membership created by a run carries
// is_default_home=true, even when that leaves a user seeded into several
// homes with several defaults.
func (s *IdentitySeeder) Run(ctx context.Context, homeName, timezone string, specs []SeedSpec, passwords map[string]string, seedAllRoles bool, emailDomain string) (SeedResult, error) {
	if seedAllRoles || len(specs) == 0 {
		specs = append(specs, AutoRoleSpecs(emailDomain)...)
	}
	specs = dedupeSpecs(specs)

	home, err := s.homes.Create(ctx, strings.TrimSpace(homeName), strings.TrimSpace(timezone))
	if err != nil {
		return SeedResult{}, fmt.Errorf("create home: %w", err)
	}

	result := SeedResult{Home: home}
	for _, spec := range specs {
		item := SeedItemResult{Spec: spec}

		if !validEmail(spec.Email) {
			item.Err = fmt.Errorf("malformed email %q", spec.Email)
			result.Items = append(result.Items, item)
			continue
		}
		if !model.IsValidRole(spec.Role) {
			item.Err = fmt.Errorf("unknown role %q", spec.Role)
			result.Items = append(result.Items, item)
			continue
		}

		var passwordHash sql.NullString
		plain, hasPassword := passwords[spec.Email]
		if spec.Role == "owner" && hasPassword {
			hashed, err := utils.HashPassword(plain, s.iterations)
			if err != nil {
				item.Err = fmt.Errorf("hash password: %w", err)
				result.Items = append(result.Items, item)
				continue
			}
			passwordHash = sql.NullString{String: hashed, Valid: true}
		} else if hasPassword {
			// Password application is restricted to owners; everyone else
			// keeps the unusable sentinel.
			item.PasswordIgnored = true
		}

		user, userCreated, err := s.users.FindOrCreate(ctx, spec.Email, passwordHash)
		if err != nil {
			item.Err = fmt.Errorf("provision user: %w", err)
			result.Items = append(result.Items, item)
			continue
		}
		item.UserID = user.ID
		item.UserCreated = userCreated

		membership, membershipCreated, err := s.memberships.FindOrCreate(ctx, home.ID, user.ID, spec.Role, true)
		if err != nil {
			item.Err = fmt.Errorf("provision membership: %w", err)
			result.Items = append(result.Items, item)
			continue
		}
		item.MembershipID = membership.ID
		item.MembershipCreated = membershipCreated

		result.Items = append(result.Items, item)
	}
	return result, nil
}

// dedupeSpecs keeps the first occurrence of each (email, role) pair so a
// pair supplied both explicitly and via auto-expansion is provisioned once.
func dedupeSpecs(specs []SeedSpec) []SeedSpec {
	seen := make(map[[2]string]bool, len(specs))
	out := make([]SeedSpec, 0, len(specs))
	for _, spec := range specs {
		key := [2]string{spec.Email, spec.Role}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, spec)
	}
	return out
}

func normalizeSeedEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.Contains(email, " ")
}
