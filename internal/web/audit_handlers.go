package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"pharmatrack/domain"
)

type auditData struct {
	Entries []domain.AuditEntry
	Filter  domain.AuditFilter
}

func (h *Handler) auditPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		Action:    strings.TrimSpace(q.Get("action")),
		ChangedBy: strings.TrimSpace(q.Get("changed_by")),
		DateFrom:  strings.TrimSpace(q.Get("date_from")),
		DateTo:    strings.TrimSpace(q.Get("date_to")),
		Limit:     100,
	}
	if raw := q.Get("record_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.RecordID = id
		}
	}

	entries, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit list failed", slog.String("error", err.Error()))
		h.render(w, r, "audit.html", pageData{Title: "Audit trail", Error: "unable to load the audit trail"})
		return
	}
	h.render(w, r, "audit.html", pageData{Title: "Audit trail", Data: auditData{Entries: entries, Filter: filter}})
}
