package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "DB_DRIVER", "DATABASE_DSN", "PGHOST", "PGPORT",
		"PGUSER", "PGPASSWORD", "PGDATABASE", "SESSION_KEY", "UPLOAD_DIR",
		"SENDGRID_API_KEY", "NOTIFY_FROM", "NOTIFY_TO", "BASE_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Contains(t, cfg.DatabaseDSN, "host=localhost")
	require.Contains(t, cfg.DatabaseDSN, "dbname=inventory_db")
	require.Equal(t, "uploads", cfg.UploadDir)
	require.Empty(t, cfg.NotifyTo)
	require.Equal(t, "http://localhost:8080", cfg.BaseURL)
}

func TestLoadInvalidPortFallsBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	cfg := Load()
	require.Equal(t, "8080", cfg.HTTPPort)
}

func TestLoadSQLiteDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "")
	cfg := Load()
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, "pharmatrack.db", cfg.DatabaseDSN)
}

func TestLoadExplicitValues(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=db.internal port=5432 user=app dbname=prod sslmode=disable")
	t.Setenv("NOTIFY_TO", "a@example.com, b@example.com,")
	t.Setenv("SESSION_KEY", "prod_key")

	cfg := Load()
	require.Equal(t, "host=db.internal port=5432 user=app dbname=prod sslmode=disable", cfg.DatabaseDSN)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.NotifyTo)
	require.Equal(t, "prod_key", cfg.SessionKey)
}
