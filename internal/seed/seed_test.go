package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"pharmatrack/domain"
	"pharmatrack/internal/auth"
	"pharmatrack/internal/database"
	"pharmatrack/internal/migrations"
)

func setupUsers(t *testing.T) *auth.Store {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return auth.NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEnsureDefaultUsers(t *testing.T) {
	users := setupUsers(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, EnsureDefaultUsers(ctx, users, logger))

	admin, err := users.Verify(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, admin.Role)

	employee, err := users.Verify(ctx, "employee", "employee123")
	require.NoError(t, err)
	require.Equal(t, domain.RoleEmployee, employee.Role)
}

func TestEnsureDefaultUsersIsIdempotent(t *testing.T) {
	users := setupUsers(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, EnsureDefaultUsers(ctx, users, logger))
	require.NoError(t, EnsureDefaultUsers(ctx, users, logger))

	count, err := users.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestEnsureDefaultUsersSkipsNonEmptyTable(t *testing.T) {
	users := setupUsers(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, users.CreateUser(ctx, "existing", "secret123", domain.RoleAdmin))
	require.NoError(t, EnsureDefaultUsers(ctx, users, logger))

	count, err := users.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count, "defaults must not be created once any account exists")
}
