package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"pharmatrack/domain"
	"pharmatrack/internal/notify"
)

type alertsData struct {
	Alerts   []domain.Alert
	Settings domain.AlertSettings
	Critical int
	Warning  int
}

func (h *Handler) alertsPage(w http.ResponseWriter, r *http.Request) {
	var (
		data alertsData
		err  error
	)
	if data.Alerts, err = h.alerts.Active(r.Context()); err != nil {
		h.logger.Error("alert evaluation failed", slog.String("error", err.Error()))
		h.render(w, r, "alerts.html", pageData{Title: "Alerts", Error: "unable to evaluate alerts"})
		return
	}
	if data.Settings, err = h.alerts.Settings(r.Context()); err != nil {
		h.logger.Warn("alert settings lookup failed", slog.String("error", err.Error()))
		data.Settings = domain.DefaultAlertSettings()
	}
	for _, a := range data.Alerts {
		switch a.Severity {
		case domain.SeverityCritical:
			data.Critical++
		case domain.SeverityWarning:
			data.Warning++
		}
	}
	h.render(w, r, "alerts.html", pageData{Title: "Alerts", Data: data})
}

func (h *Handler) alertAcknowledge(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	recordID, err := strconv.ParseInt(r.FormValue("record_id"), 10, 64)
	if err != nil {
		redirectError(w, r, "/alerts", "invalid alert")
		return
	}
	alertType := r.FormValue("alert_type")
	if alertType == "" {
		redirectError(w, r, "/alerts", "invalid alert")
		return
	}
	if err := h.alerts.Acknowledge(r.Context(), recordID, alertType, sess.Username); err != nil {
		redirectError(w, r, "/alerts", h.formError(err, "unable to acknowledge alert"))
		return
	}
	redirectMessage(w, r, "/alerts", "alert acknowledged")
}

func (h *Handler) alertSaveSettings(w http.ResponseWriter, r *http.Request) {
	parse := func(field string, problems *[]string) int {
		v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(field)))
		if err != nil {
			*problems = append(*problems, fmt.Sprintf("%s must be a whole number", field))
		}
		return v
	}

	var problems []string
	settings := domain.AlertSettings{
		ID:                 1,
		ExpiryCriticalDays: parse("expiry_critical_days", &problems),
		ExpiryWarningDays:  parse("expiry_warning_days", &problems),
		LowStockThreshold:  int64(parse("low_stock_threshold", &problems)),
		NotifyEmailEnabled: r.FormValue("notify_email_enabled") == "on",
	}
	if err := domain.Validation(problems); err != nil {
		redirectError(w, r, "/alerts", h.formError(err, "invalid settings"))
		return
	}
	if err := h.alerts.SaveSettings(r.Context(), settings); err != nil {
		redirectError(w, r, "/alerts", h.formError(err, "unable to save settings"))
		return
	}
	redirectMessage(w, r, "/alerts", "alert settings saved")
}

// alertEmailSummary mails the current active alert list to the
// configured recipients.
func (h *Handler) alertEmailSummary(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.Active(r.Context())
	if err != nil {
		redirectError(w, r, "/alerts", h.formError(err, "unable to evaluate alerts"))
		return
	}
	if len(alerts) == 0 {
		redirectMessage(w, r, "/alerts", "no active alerts to send")
		return
	}

	lines := make([]string, len(alerts))
	for i, a := range alerts {
		lines[i] = fmt.Sprintf("[%s] %s (#%s): %s", a.Severity, a.ItemName, a.InventoryNumber, a.Detail)
	}
	if h.notifier.Notify(r.Context(), notify.EventAlertSummary, map[string]any{
		"Count": len(alerts),
		"Lines": lines,
	}) {
		redirectMessage(w, r, "/alerts", "alert summary sent")
		return
	}
	redirectError(w, r, "/alerts", "alert summary could not be sent, check the mail configuration")
}
