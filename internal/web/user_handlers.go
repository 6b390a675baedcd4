package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pharmatrack/domain"
	"pharmatrack/internal/auth"
	"pharmatrack/internal/notify"
)

type usersData struct {
	Users []domain.User
	Roles []string
}

func (h *Handler) usersPage(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("user list failed", slog.String("error", err.Error()))
		h.render(w, r, "users.html", pageData{Title: "Users", Error: "unable to load users"})
		return
	}
	h.render(w, r, "users.html", pageData{
		Title: "Users",
		Data:  usersData{Users: users, Roles: []string{domain.RoleAdmin, domain.RoleEmployee}},
	})
}

func (h *Handler) userCreate(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	role := r.FormValue("role")

	if err := h.users.CreateUser(r.Context(), username, password, role); err != nil {
		redirectError(w, r, "/users", h.formError(err, "unable to create user"))
		return
	}
	h.logger.Info("user created",
		slog.String("username", username), slog.String("role", role),
		slog.String("created_by", SessionFromContext(r.Context()).Username))
	redirectMessage(w, r, "/users", fmt.Sprintf("user %s created", username))
}

func (h *Handler) userUpdateRole(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	username := chi.URLParam(r, "username")
	if username == sess.Username {
		redirectError(w, r, "/users", "you cannot change your own role")
		return
	}
	if err := h.users.UpdateRole(r.Context(), username, r.FormValue("role")); err != nil {
		redirectError(w, r, "/users", h.formError(err, "unable to update role"))
		return
	}
	redirectMessage(w, r, "/users", fmt.Sprintf("role updated for %s", username))
}

func (h *Handler) userSetActive(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	username := chi.URLParam(r, "username")
	if username == sess.Username {
		redirectError(w, r, "/users", "you cannot deactivate your own account")
		return
	}
	active := r.FormValue("active") == "true"
	if err := h.users.SetActive(r.Context(), username, active); err != nil {
		redirectError(w, r, "/users", h.formError(err, "unable to update account"))
		return
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	redirectMessage(w, r, "/users", fmt.Sprintf("account %s %s", username, state))
}

func (h *Handler) userDelete(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	username := chi.URLParam(r, "username")
	if username == sess.Username {
		redirectError(w, r, "/users", "you cannot delete your own account")
		return
	}
	if err := h.users.DeleteUser(r.Context(), username); err != nil {
		redirectError(w, r, "/users", h.formError(err, "unable to delete user"))
		return
	}
	h.logger.Info("user deleted",
		slog.String("username", username), slog.String("deleted_by", sess.Username))
	redirectMessage(w, r, "/users", fmt.Sprintf("user %s deleted", username))
}

// userSendResetLink emails a signed, time-limited password reset link
// to the address entered by the admin.
func (h *Handler) userSendResetLink(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		redirectError(w, r, "/users", "enter an email address for the reset link")
		return
	}
	if _, err := h.users.GetUser(r.Context(), username); err != nil {
		redirectError(w, r, "/users", h.formError(err, "unable to send reset link"))
		return
	}

	token, err := auth.NewResetToken(h.cfg.SessionKey, username, auth.ResetTokenTTL)
	if err != nil {
		redirectError(w, r, "/users", h.formError(err, "unable to build reset link"))
		return
	}
	resetURL := strings.TrimRight(h.cfg.BaseURL, "/") + withQueryParam("/reset", "token", token)

	if h.notifier.NotifyTo(r.Context(), []string{email}, notify.EventPasswordReset, map[string]any{
		"Username": username,
		"ResetURL": resetURL,
	}) {
		redirectMessage(w, r, "/users", fmt.Sprintf("reset link sent to %s", email))
		return
	}
	redirectError(w, r, "/users", "reset link could not be sent, check the mail configuration")
}
