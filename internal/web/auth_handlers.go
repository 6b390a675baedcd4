package web

import (
	"log/slog"
	"net/http"
	"strings"

	"pharmatrack/domain"
	"pharmatrack/internal/auth"
)

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	if sess := h.sessions.Current(r); sess != nil {
		h.redirectHome(w, r, sess)
		return
	}
	h.render(w, r, "login.html", pageData{Title: "Sign in"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := h.users.Verify(r.Context(), username, password)
	if err != nil {
		// Same message for unknown usernames and wrong passwords.
		redirectError(w, r, "/login", h.formError(err, "sign in failed"))
		return
	}
	if err := h.sessions.SignIn(w, r, user); err != nil {
		h.logger.Error("session save failed", slog.String("error", err.Error()))
		redirectError(w, r, "/login", "sign in failed")
		return
	}
	h.logger.Info("user signed in", slog.String("username", user.Username), slog.String("role", user.Role))
	h.redirectHome(w, r, &domain.Session{Username: user.Username, Role: user.Role})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(w, r)
	redirectMessage(w, r, "/login", "signed out")
}

func (h *Handler) registerPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", pageData{Title: "Register"})
}

// register creates a self-service account. Self-registered accounts are
// always employees; admins are created from the user management page.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if password != confirm {
		redirectError(w, r, "/register", "passwords do not match")
		return
	}
	if err := h.users.CreateUser(r.Context(), username, password, domain.RoleEmployee); err != nil {
		redirectError(w, r, "/register", h.formError(err, "registration failed"))
		return
	}
	h.logger.Info("user registered", slog.String("username", username))
	redirectMessage(w, r, "/login", "account created, you can sign in now")
}

func (h *Handler) resetPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "reset.html", pageData{
		Title: "Reset password",
		Data:  struct{ Token string }{Token: r.URL.Query().Get("token")},
	})
}

// resetPassword completes an emailed reset link. The token carries the
// username; its signature and expiry were set when the link was sent.
func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")
	retry := withQueryParam("/reset", "token", token)

	if password != confirm {
		redirectError(w, r, retry, "passwords do not match")
		return
	}
	username, err := auth.ParseResetToken(h.cfg.SessionKey, token)
	if err != nil {
		redirectError(w, r, "/reset", h.formError(err, "reset failed"))
		return
	}
	if err := h.users.ChangePassword(r.Context(), username, password); err != nil {
		redirectError(w, r, retry, h.formError(err, "reset failed"))
		return
	}
	h.logger.Info("password reset completed", slog.String("username", username))
	redirectMessage(w, r, "/login", "password updated, sign in with the new one")
}
