package domain

// Role values assignable to a user account.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// ValidRole reports whether role is one of the known access tiers.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

type User struct {
	ID           int64   `db:"id" json:"id"`
	Username     string  `db:"username" json:"username"`
	PasswordHash string  `db:"password_hash" json:"-"`
	Role         string  `db:"role" json:"role"`
	CreatedAt    string  `db:"created_at" json:"created_at,omitempty"`
	LastLogin    *string `db:"last_login" json:"last_login,omitempty"`
	IsActive     bool    `db:"is_active" json:"is_active"`
}

// Session is the per-browser identity resolved from the session cookie.
// Passed explicitly into operations that need authorization instead of
// living in ambient global state.
type Session struct {
	Username string
	Role     string
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
