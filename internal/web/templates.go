package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"pharmatrack/domain"
	"pharmatrack/internal/auth"
	"pharmatrack/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login.html",
	"register.html",
	"reset.html",
	"dashboard_admin.html",
	"dashboard_employee.html",
	"inventory_list.html",
	"inventory_form.html",
	"scan.html",
	"documents.html",
	"reports.html",
	"alerts.html",
	"audit.html",
	"users.html",
	"import.html",
}

var templateFuncs = template.FuncMap{
	"currency": report.FormatCurrency,
	"filesize": formatFileSize,
	"expstatus": func(rec domain.InventoryRecord) string {
		return rec.ExpirationStatus(time.Now())
	},
	// pct sizes the CSS bar charts; html/template has no arithmetic.
	"pct": func(count, max int) int {
		if max <= 0 {
			return 0
		}
		return count * 100 / max
	},
}

func parseTemplates() map[string]*template.Template {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return pages
}

func formatFileSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// pageData is the payload every template receives. Error and Message
// come from the redirect query string so flash text survives the
// POST-redirect-GET hop.
type pageData struct {
	Title   string
	Session *domain.Session
	Error   string
	Message string
	Data    any
}

// Can lets templates hide controls the signed-in role may not use.
func (p pageData) Can(action string) bool {
	if p.Session == nil {
		return false
	}
	return auth.Can(p.Session.Role, action)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data pageData) {
	if data.Session == nil {
		data.Session = SessionFromContext(r.Context())
	}
	if data.Error == "" {
		data.Error = r.URL.Query().Get("error")
	}
	if data.Message == "" {
		data.Message = r.URL.Query().Get("message")
	}

	tmpl, ok := h.templates[page]
	if !ok {
		h.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.Error("template render failed", slog.String("page", page), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
