package web

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"

	"pharmatrack/domain"
)

const sessionName = "pharmatrack_session"

type contextKey string

const sessionContextKey contextKey = "session"

// SessionManager wraps the cookie store holding the signed-in identity.
// The cookie carries only username and role; everything else is looked
// up per request.
type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(key string) *SessionManager {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Current resolves the session cookie into a Session, or nil when the
// request is unauthenticated.
func (m *SessionManager) Current(r *http.Request) *domain.Session {
	session, _ := m.store.Get(r, sessionName)
	username, uok := session.Values["username"].(string)
	role, rok := session.Values["role"].(string)
	if !uok || !rok || username == "" {
		return nil
	}
	return &domain.Session{Username: username, Role: role}
}

// SignIn stores the authenticated identity in the session cookie.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values["username"] = user.Username
	session.Values["role"] = user.Role
	return session.Save(r, w)
}

// SignOut clears the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) {
	session, _ := m.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
}

func withSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the session resolved by requireAuth, or
// nil outside an authenticated request.
func SessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionContextKey).(*domain.Session)
	return s
}
