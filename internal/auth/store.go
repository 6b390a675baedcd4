package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"pharmatrack/domain"
)

// Store is the credential store backed by the users table.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger.With(slog.String("component", "auth"))}
}

// HashPassword hashes a password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a username/password pair against the stored hash and
// returns the matching user. Unknown usernames, inactive accounts and
// wrong passwords all yield the same ErrInvalidCredentials.
func (s *Store) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(
		`SELECT id, username, password_hash, role, is_active FROM users WHERE username = ? AND is_active = TRUE`),
		username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("verify user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?`), user.ID); err != nil {
		s.logger.Warn("unable to record last login",
			slog.String("username", username), slog.String("error", err.Error()))
	}

	user.PasswordHash = ""
	return &user, nil
}

// CreateUser registers a new account. Duplicate usernames return
// ErrUsernameTaken; weak input returns a ValidationError.
func (s *Store) CreateUser(ctx context.Context, username, password, role string) error {
	var problems []string
	if strings.TrimSpace(username) == "" {
		problems = append(problems, "username is required")
	}
	if len(password) < 6 {
		problems = append(problems, "password must be at least 6 characters")
	}
	if !domain.ValidRole(role) {
		problems = append(problems, "role must be admin or employee")
	}
	if err := domain.Validation(problems); err != nil {
		return err
	}

	var exists int
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(
		`SELECT COUNT(*) FROM users WHERE username = ?`), username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if exists > 0 {
		return domain.ErrUsernameTaken
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO users (username, password_hash, role, is_active) VALUES (?, ?, ?, TRUE)`),
		username, hashed, role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ChangePassword replaces the stored hash for an existing account.
func (s *Store) ChangePassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < 6 {
		return domain.Validation([]string{"password must be at least 6 characters"})
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE users SET password_hash = ? WHERE username = ?`), hashed, username)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateRole reassigns a user's role. Only reachable through the admin
// user management page.
func (s *Store) UpdateRole(ctx context.Context, username, role string) error {
	if !domain.ValidRole(role) {
		return domain.Validation([]string{"role must be admin or employee"})
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE users SET role = ? WHERE username = ?`), role, username)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive enables or disables an account without deleting its rows.
func (s *Store) SetActive(ctx context.Context, username string, active bool) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE users SET is_active = ? WHERE username = ?`), active, username)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteUser removes an account entirely.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM users WHERE username = ?`), username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetUser fetches one account by username.
func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(
		`SELECT id, username, password_hash, role, created_at, last_login, is_active FROM users WHERE username = ?`),
		username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// ListUsers returns every account, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.db.SelectContext(ctx, &users,
		`SELECT id, username, password_hash, role, created_at, last_login, is_active FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of accounts; used by the first-run seed.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
