// Package seed creates the first-run default accounts.
package seed

import (
	"context"
	"log/slog"

	"pharmatrack/internal/auth"
)

// EnsureDefaultUsers creates the default admin and employee accounts
// when the users table is empty. It runs on every startup and is a
// no-op once any account exists, so operators can safely delete the
// defaults after creating real ones.
func EnsureDefaultUsers(ctx context.Context, users *auth.Store, logger *slog.Logger) error {
	count, err := users.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		username, password, role string
	}{
		{"admin", "admin123", "admin"},
		{"employee", "employee123", "employee"},
	}
	for _, d := range defaults {
		if err := users.CreateUser(ctx, d.username, d.password, d.role); err != nil {
			return err
		}
		logger.Info("created default account", slog.String("username", d.username), slog.String("role", d.role))
	}
	logger.Warn("default accounts created with well-known passwords, change them before exposing this instance")
	return nil
}
