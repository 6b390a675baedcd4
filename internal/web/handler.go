// Package web serves the HTML pages and form endpoints of the
// application. Every page goes through the session middleware; write
// endpoints are additionally gated on the role capability table.
package web

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pharmatrack/domain"
	"pharmatrack/internal/auth"
	"pharmatrack/internal/config"
	"pharmatrack/internal/docstore"
	"pharmatrack/internal/notify"
	"pharmatrack/internal/report"
	"pharmatrack/internal/repository"
)

type Handler struct {
	cfg       config.Config
	users     *auth.Store
	inventory *repository.Inventory
	documents *docstore.Store
	alerts    *repository.Alerts
	audit     *repository.AuditLog
	imports   *repository.ImportHistory
	reports   *report.Reports
	notifier  *notify.Notifier
	sessions  *SessionManager
	templates map[string]*template.Template
	logger    *slog.Logger
}

func NewHandler(
	cfg config.Config,
	users *auth.Store,
	inventory *repository.Inventory,
	documents *docstore.Store,
	alerts *repository.Alerts,
	audit *repository.AuditLog,
	imports *repository.ImportHistory,
	reports *report.Reports,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		cfg:       cfg,
		users:     users,
		inventory: inventory,
		documents: documents,
		alerts:    alerts,
		audit:     audit,
		imports:   imports,
		reports:   reports,
		notifier:  notifier,
		sessions:  NewSessionManager(cfg.SessionKey),
		templates: parseTemplates(),
		logger:    logger.With(slog.String("component", "web")),
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Get("/login", h.loginPage)
	r.Post("/login", h.login)
	r.Get("/register", h.registerPage)
	r.Post("/register", h.register)
	r.Get("/reset", h.resetPage)
	r.Post("/reset", h.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/", h.home)
		r.Post("/logout", h.logout)
		r.With(h.requireAction(auth.ActionViewAllRecords)).Get("/dashboard", h.adminDashboard)
		r.Get("/my/dashboard", h.employeeDashboard)

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", h.inventoryList)
			r.With(h.requireAction(auth.ActionCreateRecord)).Get("/new", h.inventoryNewPage)
			r.With(h.requireAction(auth.ActionCreateRecord)).Post("/", h.inventoryCreate)
			r.With(h.requireAction(auth.ActionUseScanner)).Get("/scan", h.scanPage)
			r.With(h.requireAction(auth.ActionUseScanner)).Post("/scan", h.scanLookup)
			r.With(h.requireAction(auth.ActionEditRecord)).Get("/{id}/edit", h.inventoryEditPage)
			r.With(h.requireAction(auth.ActionEditRecord)).Post("/{id}", h.inventoryUpdate)
			r.With(h.requireAction(auth.ActionDeleteRecord)).Post("/{id}/delete", h.inventoryDelete)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", h.documentsPage)
			r.Get("/{id}/download", h.documentDownload)
			r.With(h.requireAction(auth.ActionUploadDocument)).Post("/upload", h.documentUpload)
			r.With(h.requireAction(auth.ActionDeleteDocument)).Post("/{id}/delete", h.documentDelete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", h.reportsPage)
			r.Get("/export", h.reportsExport)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Use(h.requireAction(auth.ActionViewAlerts))
			r.Get("/", h.alertsPage)
			r.Post("/ack", h.alertAcknowledge)
			r.Post("/email", h.alertEmailSummary)
			r.With(h.requireAction(auth.ActionConfigureAlerts)).Post("/settings", h.alertSaveSettings)
		})

		r.With(h.requireAction(auth.ActionViewAudit)).Get("/audit", h.auditPage)

		r.Route("/users", func(r chi.Router) {
			r.Use(h.requireAction(auth.ActionManageUsers))
			r.Get("/", h.usersPage)
			r.Post("/", h.userCreate)
			r.Post("/{username}/role", h.userUpdateRole)
			r.Post("/{username}/active", h.userSetActive)
			r.Post("/{username}/delete", h.userDelete)
			r.Post("/{username}/reset-link", h.userSendResetLink)
		})

		r.Route("/import", func(r chi.Router) {
			r.Use(h.requireAction(auth.ActionBulkImport))
			r.Get("/", h.importPage)
			r.Post("/", h.importRun)
			r.Get("/template", h.importTemplate)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// home routes the bare path to the dashboard matching the caller's
// role.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.redirectHome(w, r, SessionFromContext(r.Context()))
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	if sess != nil && sess.IsAdmin() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/my/dashboard", http.StatusSeeOther)
}

// redirectError and redirectMessage carry flash text through the
// POST-redirect-GET hop as query parameters.
func redirectError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, withQueryParam(path, "error", msg), http.StatusSeeOther)
}

func redirectMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, withQueryParam(path, "message", msg), http.StatusSeeOther)
}

func withQueryParam(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + key + "=" + url.QueryEscape(value)
}

// formError turns a domain error into text safe to show the user.
// Validation problems and sentinel errors pass through; anything else
// is logged and masked.
func (h *Handler) formError(err error, fallback string) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidResetToken):
		return err.Error()
	default:
		h.logger.Error("request failed", slog.String("error", err.Error()))
		return fallback
	}
}
