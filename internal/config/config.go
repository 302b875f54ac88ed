package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// defaultProtectedPrefixes are the route prefixes that require a valid access
// token when PROTECTED_PREFIXES is not set.
var defaultProtectedPrefixes = []string{
	"/api/v1/receipts",
	"/api/v1/ledger",
	"/api/v1/mcp",
	"/api/v1/integrations",
	"/api/v1/chat",
	"/api/v1/chats",
}

// Config holds all runtime configuration values. It is constructed once at
// startup and passed by reference into the services that need it; nothing
// reads mutable globals after initialization.
type Config struct {
	Env               string   // application environment (e.g. "dev", "prod")
	Port              string   // HTTP port to listen on
	DBUser            string   // database username
	DBPass            string   // database password (optional)
	DBHost            string   // database host address
	DBPort            string   // database port number
	DBName            string   // database name
	JWTSecret         string   // secret used to sign JWTs
	JWTAlgorithm      string   // signing algorithm; only HS256 is supported
	AccessTTLMin      int      // access token time-to-live in minutes
	RefreshTTLDays    int      // refresh session time-to-live in days
	PBKDF2Iterations  int      // iteration count for password hashing
	ProtectedPrefixes []string // route prefixes that require authentication
}

// IsLocal reports whether the process runs in a local development
// environment, where a built-in signing secret is tolerated.
func (c Config) IsLocal() bool {
	return c.Env == "dev" || c.Env == "local" || c.Env == "test"
}

// Load reads configuration values from environment variables and returns a
// Config. Missing required variables and unsupported algorithm choices cause
// the program to exit with a fatal log message; in particular a missing
// signing secret outside local development must prevent the process from
// ever serving requests.
func Load() Config {
	cfg := Config{
		Env:               envStr("APP_ENV", "dev"),
		Port:              envStr("APP_PORT", "8080"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTAlgorithm:      envStr("JWT_ALGORITHM", "HS256"),
		AccessTTLMin:      envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays:    envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		PBKDF2Iterations:  envInt("PBKDF2_ITERATIONS", 390000),
		ProtectedPrefixes: envList("PROTECTED_PREFIXES", defaultProtectedPrefixes),
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsLocal() {
			log.Fatalf("JWT_SECRET is required when APP_ENV=%s", cfg.Env)
		}
		cfg.JWTSecret = "dev-change-me"
	}
	if cfg.JWTAlgorithm != "HS256" {
		log.Fatalf("unsupported JWT_ALGORITHM %q: only HS256 is supported", cfg.JWTAlgorithm)
	}
	if cfg.AccessTTLMin <= 0 || cfg.RefreshTTLDays <= 0 {
		log.Fatalf("token TTLs must be positive (access=%d min, refresh=%d days)",
			cfg.AccessTTLMin, cfg.RefreshTTLDays)
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", k, v)
	}
	return n
}

// envList reads a comma-separated list, trimming whitespace around items.
func envList(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return d
	}
	return out
}
