package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort       string
	DatabaseDriver string
	DatabaseDSN    string
	SessionKey     string
	UploadDir      string
	SendGridAPIKey string
	NotifyFrom     string
	NotifyTo       []string
	BaseURL        string
}

// Load reads configuration from environment variables with reasonable
// defaults. The default database is a local PostgreSQL instance
// described by the conventional PG* variables.
func Load() Config {
	port := getEnv("HTTP_PORT", "8080")
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	driver := getEnv("DB_DRIVER", "postgres")

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		switch driver {
		case "sqlite":
			dsn = "pharmatrack.db"
		default:
			host := getEnv("PGHOST", "localhost")
			dbPort := getEnv("PGPORT", "5432")
			user := getEnv("PGUSER", "postgres")
			password := os.Getenv("PGPASSWORD")
			name := getEnv("PGDATABASE", "inventory_db")
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				host, dbPort, user, password, name)
		}
	}

	var recipients []string
	for _, addr := range strings.Split(os.Getenv("NOTIFY_TO"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}

	return Config{
		HTTPPort:       port,
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		SessionKey:     getEnv("SESSION_KEY", "dev_session_key"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		NotifyFrom:     getEnv("NOTIFY_FROM", "inventory@pharmatrack.local"),
		NotifyTo:       recipients,
		BaseURL:        getEnv("BASE_URL", "http://localhost:"+port),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
