package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Session SessionConfig

	// AdminAllowedOrigins is a comma-separated allowlist of admin console origins. Example:
	//   https://admin.yourhotel.com,http://localhost:5173
	AdminAllowedOrigins []string

	// UnauthorizedPath is where the console sends an actor that lacks read access to a screen.
	UnauthorizedPath string

	// PropertyTimezone decides what "today" means for lifecycle guards.
	PropertyTimezone     *time.Location
	PropertyTimezoneName string

	Bookings BookingsConfig

	Permissions PermissionsConfig

	Tracing TracingConfig
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type SessionConfig struct {
	Secret   string
	Audience string
	TTL      time.Duration
}

type BookingsConfig struct {
	ProposalTTL   time.Duration
	ViewCacheTTL  time.Duration
	ViewCacheSize int
}

type PermissionsConfig struct {
	// ReloadInterval is the minimum spacing between explicit refreshes of one session's table.
	ReloadInterval time.Duration
	MaxSessions    int
}

type TracingConfig struct {
	Endpoint    string
	ServiceName string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	tzName := env("PROPERTY_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Printf("config: invalid PROPERTY_TIMEZONE=%q, using Local err=%v", tzName, err)
		loc = time.Local
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "hotelops"),
			User:     env("DB_USER", "hotelops"),
			Password: env("DB_PASSWORD", "hotelops"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Session: SessionConfig{
			Secret:   os.Getenv("SESSION_SECRET"),
			Audience: env("SESSION_AUDIENCE", "hotelops-admin"),
			TTL:      envDuration("SESSION_TTL", 12*time.Hour),
		},
		AdminAllowedOrigins:  envList("ADMIN_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
		UnauthorizedPath:     env("UNAUTHORIZED_PATH", "/unauthorized"),
		PropertyTimezone:     loc,
		PropertyTimezoneName: tzName,
		Bookings: BookingsConfig{
			ProposalTTL:   envDuration("PROPOSAL_TTL", 5*time.Minute),
			ViewCacheTTL:  envDuration("VIEW_CACHE_TTL", 30*time.Second),
			ViewCacheSize: envInt("VIEW_CACHE_SIZE", 512),
		},
		Permissions: PermissionsConfig{
			ReloadInterval: envDuration("PERMISSION_RELOAD_INTERVAL", 10*time.Second),
			MaxSessions:    envInt("PERMISSION_MAX_SESSIONS", 4096),
		},
		Tracing: TracingConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: env("OTEL_SERVICE_NAME", "hotelops-api"),
		},
	}
}

// Validate reports settings the API server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.PropertyTimezoneName != "" {
		if _, err := time.LoadLocation(c.PropertyTimezoneName); err != nil {
			errs = append(errs, fmt.Errorf("PROPERTY_TIMEZONE %q: %w", c.PropertyTimezoneName, err))
		}
	}
	return errors.Join(errs...)
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
