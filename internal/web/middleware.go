package web

import (
	"net/http"

	"pharmatrack/internal/auth"
)

// requireAuth resolves the session cookie and rejects unauthenticated
// requests with a redirect to the login page.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := h.sessions.Current(r)
		if sess == nil {
			redirectError(w, r, "/login", "please sign in first")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// requireAction gates a route on the capability table. Callers whose
// role lacks the action bounce back to their dashboard.
func (h *Handler) requireAction(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil || !auth.Can(sess.Role, action) {
				redirectError(w, r, "/my/dashboard", "you do not have permission for that")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
