// Package config reads the ledger configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Store backends.
const (
	StoreCSV      = "csv"
	StorePostgres = "postgres"
)

const (
	defaultDataDir    = "database"
	defaultGRPCAddr   = ":8080"
	defaultMetrics    = ":9090"
	defaultAdminToken = "dev-token"
	defaultSecret     = "dev-session-secret"
	defaultSessionTTL = 12 * time.Hour
)

// Config is the runtime configuration of the ledger binaries
type Config struct {
	DataDir       string
	Store         string
	DBConnStr     string
	GRPCAddr      string
	MetricsAddr   string // empty disables the metrics endpoint
	AdminToken    string
	SessionSecret string
	SessionTTL    time.Duration
}

// Load builds a Config from environment variables, falling back to development defaults
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:       getEnv("LEDGER_DATA_DIR", defaultDataDir),
		Store:         getEnv("LEDGER_STORE", StoreCSV),
		GRPCAddr:      getEnv("GRPC_ADDR", defaultGRPCAddr),
		AdminToken:    getEnv("ADMIN_TOKEN", defaultAdminToken),
		SessionSecret: getEnv("SESSION_SECRET", defaultSecret),
		SessionTTL:    defaultSessionTTL,
	}

	// METRICS_ADDR may be explicitly set to empty to disable the endpoint
	if addr, ok := os.LookupEnv("METRICS_ADDR"); ok {
		cfg.MetricsAddr = addr
	} else {
		cfg.MetricsAddr = defaultMetrics
	}

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", d)
		}
		cfg.SessionTTL = d
	}

	switch cfg.Store {
	case StoreCSV:
	case StorePostgres:
		cfg.DBConnStr = postgresConnString()
	default:
		return nil, fmt.Errorf("unknown LEDGER_STORE %q (want %s or %s)", cfg.Store, StoreCSV, StorePostgres)
	}

	return cfg, nil
}

// postgresConnString uses DB_CONN_STR when set, otherwise builds it from individual vars (Docker friendly)
func postgresConnString() string {
	if conn := os.Getenv("DB_CONN_STR"); conn != "" {
		return conn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "ledger"),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
