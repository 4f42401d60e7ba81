package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LEDGER_DATA_DIR", "LEDGER_STORE", "GRPC_ADDR", "ADMIN_TOKEN", "SESSION_SECRET",
		"SESSION_TTL", "DB_CONN_STR", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "database", cfg.DataDir)
	assert.Equal(t, StoreCSV, cfg.Store)
	assert.Equal(t, ":8080", cfg.GRPCAddr)
	assert.Equal(t, "dev-token", cfg.AdminToken)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.DBConnStr)
}

func TestLoad_MetricsCanBeDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("METRICS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_Postgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_STORE", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "bank")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=postgres password=postgres dbname=bank sslmode=disable", cfg.DBConnStr)

	t.Setenv("DB_CONN_STR", "postgres://x")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://x", cfg.DBConnStr)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		errMsg string
	}{
		{"unknown store", "LEDGER_STORE", "redis", "unknown LEDGER_STORE"},
		{"bad ttl", "SESSION_TTL", "soon", "invalid SESSION_TTL"},
		{"negative ttl", "SESSION_TTL", "-1h", "SESSION_TTL must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
