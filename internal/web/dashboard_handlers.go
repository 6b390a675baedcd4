package web

import (
	"log/slog"
	"net/http"

	"pharmatrack/domain"
	"pharmatrack/internal/report"
)

type dashboardData struct {
	Summary     report.Summary
	ByType      []report.TypeCount
	Daily       []report.DateCount
	Activity    []report.UserCount
	Recent      []domain.InventoryRecord
	AlertCount  int
	MaxDaily    int
	MaxByType   int
	MaxActivity int
}

// adminDashboard shows system-wide aggregates plus the active alert
// count.
func (h *Handler) adminDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.buildDashboard(r, report.Scope{})
	if err != nil {
		h.render(w, r, "dashboard_admin.html", pageData{Title: "Dashboard", Error: "unable to load dashboard"})
		return
	}

	if data.Activity, err = h.reports.EmployeeActivity(r.Context()); err != nil {
		h.logger.Warn("employee activity failed", slog.String("error", err.Error()))
	}
	for _, a := range data.Activity {
		if a.Count > data.MaxActivity {
			data.MaxActivity = a.Count
		}
	}
	if alerts, err := h.alerts.Active(r.Context()); err != nil {
		h.logger.Warn("alert evaluation failed", slog.String("error", err.Error()))
	} else {
		data.AlertCount = len(alerts)
	}

	h.render(w, r, "dashboard_admin.html", pageData{Title: "Dashboard", Data: data})
}

// employeeDashboard shows the same aggregates restricted to records the
// caller created.
func (h *Handler) employeeDashboard(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	data, err := h.buildDashboard(r, report.Scope{CreatedBy: sess.Username})
	if err != nil {
		h.render(w, r, "dashboard_employee.html", pageData{Title: "My dashboard", Error: "unable to load dashboard"})
		return
	}
	h.render(w, r, "dashboard_employee.html", pageData{Title: "My dashboard", Data: data})
}

func (h *Handler) buildDashboard(r *http.Request, scope report.Scope) (dashboardData, error) {
	var (
		data dashboardData
		err  error
	)
	ctx := r.Context()

	if data.Summary, err = h.reports.Summary(ctx, scope); err != nil {
		h.logger.Error("dashboard summary failed", slog.String("error", err.Error()))
		return data, err
	}
	if data.ByType, err = h.reports.ByType(ctx, scope); err != nil {
		h.logger.Warn("by-type report failed", slog.String("error", err.Error()))
	}
	if data.Daily, err = h.reports.DailyAdditions(ctx, scope, 30); err != nil {
		h.logger.Warn("daily additions report failed", slog.String("error", err.Error()))
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

	data.Recent, err = h.inventory.Search(ctx, domain.InventoryFilter{CreatedBy: scope.CreatedBy, Limit: 10})
	if err != nil {
		h.logger.Warn("recent records lookup failed", slog.String("error", err.Error()))
	}
	return data, nil
}
