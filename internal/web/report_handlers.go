package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pharmatrack/domain"
	"pharmatrack/internal/auth"
	"pharmatrack/internal/report"
)

type reportsData struct {
	Summary   report.Summary
	ByType    []report.TypeCount
	Daily     []report.DateCount
	Activity  []report.UserCount
	MaxByType int
	MaxDaily  int
	Scoped    bool
}

// reportScope restricts report queries to the caller's own records
// unless the role may view everything.
func reportScope(sess *domain.Session) report.Scope {
	if auth.Can(sess.Role, auth.ActionViewAllRecords) {
		return report.Scope{}
	}
	return report.Scope{CreatedBy: sess.Username}
}

func (h *Handler) reportsPage(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	scope := reportScope(sess)

	var (
		data = reportsData{Scoped: scope.CreatedBy != ""}
		err  error
	)
	if data.Summary, err = h.reports.Summary(r.Context(), scope); err != nil {
		h.logger.Error("report summary failed", slog.String("error", err.Error()))
		h.render(w, r, "reports.html", pageData{Title: "Reports", Error: "unable to load reports"})
		return
	}
	if data.ByType, err = h.reports.ByType(r.Context(), scope); err != nil {
		h.logger.Warn("by-type report failed", slog.String("error", err.Error()))
	}
	if data.Daily, err = h.reports.DailyAdditions(r.Context(), scope, 30); err != nil {
		h.logger.Warn("daily additions report failed", slog.String("error", err.Error()))
	}
	if !data.Scoped {
		if data.Activity, err = h.reports.EmployeeActivity(r.Context()); err != nil {
			h.logger.Warn("employee activity failed", slog.String("error", err.Error()))
		}
	}
	for _, t := range data.ByType {
		if t.Count > data.MaxByType {
			data.MaxByType = t.Count
		}
	}
	for _, d := range data.Daily {
		if d.Count > data.MaxDaily {
			data.MaxDaily = d.Count
		}
	}

	h.render(w, r, "reports.html", pageData{Title: "Reports", Data: data})
}

// reportsExport streams the scoped inventory in the requested format.
func (h *Handler) reportsExport(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	scope := reportScope(sess)

	q := r.URL.Query()
	filter := domain.InventoryFilter{
		DrugItemName:  strings.TrimSpace(q.Get("drug_item_name")),
		InventoryType: strings.TrimSpace(q.Get("inventory_type")),
		DateFrom:      strings.TrimSpace(q.Get("date_from")),
		DateTo:        strings.TrimSpace(q.Get("date_to")),
		CreatedBy:     scope.CreatedBy,
	}
	records, err := h.inventory.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("export query failed", slog.String("error", err.Error()))
		redirectError(w, r, "/reports", "unable to build export")
		return
	}

	stamp := time.Now().Format("20060102")
	format := q.Get("format")
	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=inventory_%s.xlsx", stamp))
		err = report.WriteXLSX(w, records)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=inventory_%s.json", stamp))
		err = report.WriteJSON(w, records)
	default:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=inventory_%s.csv", stamp))
		err = report.WriteCSV(w, records)
	}
	if err != nil {
		h.logger.Error("export write failed",
			slog.String("format", format), slog.String("error", err.Error()))
	}
}
