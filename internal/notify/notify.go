// Package notify formats and sends email notifications for inventory
// events. Transport failures are logged and swallowed so a broken mail
// service can never block a write.
package notify

import (
	"bytes"
	"context"
	"log/slog"
	"text/template"
)

// Event identifies which message template to use.
type Event string

const (
	EventRecordCreated Event = "record_created"
	EventRecordUpdated Event = "record_updated"
	EventRecordDeleted Event = "record_deleted"
	EventLowStock      Event = "low_stock"
	EventExpiringSoon  Event = "expiring_soon"
	EventAlertSummary  Event = "alert_summary"
	EventPasswordReset Event = "password_reset"
)

// Mailer submits one message to the email transport.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(event, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(event + "_subject").Parse(subject)),
		body:    template.Must(template.New(event + "_body").Parse(body)),
	}
}

var templates = map[Event]messageTemplate{
	EventRecordCreated: mustTemplate("record_created",
		"Inventory record created: {{.DrugItemName}}",
		"A new inventory record was created by {{.Actor}}.\n\nDrug: {{.DrugItemName}}\nInventory #: {{.InventoryNumber}}\nPatient: {{.PatientName}}\nQuantity: {{.Quantity}}\n"),
	EventRecordUpdated: mustTemplate("record_updated",
		"Inventory record updated: {{.DrugItemName}}",
		"Inventory record {{.InventoryNumber}} was updated by {{.Actor}}.\n\nDrug: {{.DrugItemName}}\nPatient: {{.PatientName}}\nQuantity: {{.Quantity}}\n"),
	EventRecordDeleted: mustTemplate("record_deleted",
		"Inventory record deleted: {{.DrugItemName}}",
		"Inventory record {{.InventoryNumber}} ({{.DrugItemName}}) was deleted by {{.Actor}}.\n"),
	EventLowStock: mustTemplate("low_stock",
		"Low stock: {{.DrugItemName}}",
		"{{.DrugItemName}} (inventory #{{.InventoryNumber}}) is down to {{.Quantity}} unit(s), at or below the configured threshold of {{.Threshold}}.\n"),
	EventExpiringSoon: mustTemplate("expiring_soon",
		"Expiring soon: {{.DrugItemName}}",
		"{{.DrugItemName}} (inventory #{{.InventoryNumber}}) expires on {{.ExpirationDate}}.\n"),
	EventAlertSummary: mustTemplate("alert_summary",
		"Inventory alert summary: {{.Count}} active alert(s)",
		"There are {{.Count}} active inventory alert(s):\n\n{{range .Lines}}- {{.}}\n{{end}}"),
	EventPasswordReset: mustTemplate("password_reset",
		"Password reset requested for {{.Username}}",
		"A password reset was requested for account {{.Username}}.\n\nReset link (valid for one hour):\n{{.ResetURL}}\n\nIf you did not expect this, ignore this message.\n"),
}

// Notifier sends templated notifications to a fixed recipient list.
type Notifier struct {
	mailer Mailer
	from   string
	to     []string
	logger *slog.Logger
}

// New builds a Notifier. A nil mailer or empty recipient list produces
// a disabled notifier whose Notify is a logged no-op.
func New(mailer Mailer, from string, to []string, logger *slog.Logger) *Notifier {
	return &Notifier{
		mailer: mailer,
		from:   from,
		to:     to,
		logger: logger.With(slog.String("component", "notify")),
	}
}

// Notify sends one event message to the configured recipients. It
// reports whether every send succeeded, but failures are only logged;
// callers never see an error from the transport.
func (n *Notifier) Notify(ctx context.Context, event Event, data map[string]any) bool {
	return n.NotifyTo(ctx, n.to, event, data)
}

// NotifyTo is Notify with an explicit recipient list, used when the
// destination comes from the triggering request (password resets).
func (n *Notifier) NotifyTo(ctx context.Context, to []string, event Event, data map[string]any) bool {
	if n.mailer == nil || len(to) == 0 {
		n.logger.Debug("notification skipped, transport disabled", slog.String("event", string(event)))
		return false
	}

	tmpl, ok := templates[event]
	if !ok {
		n.logger.Warn("unknown notification event", slog.String("event", string(event)))
		return false
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		n.logger.Warn("unable to render notification subject",
			slog.String("event", string(event)), slog.String("error", err.Error()))
		return false
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		n.logger.Warn("unable to render notification body",
			slog.String("event", string(event)), slog.String("error", err.Error()))
		return false
	}

	ok = true
	for _, recipient := range to {
		if err := n.mailer.Send(ctx, n.from, recipient, subject.String(), body.String()); err != nil {
			ok = false
			n.logger.Warn("notification send failed",
				slog.String("event", string(event)),
				slog.String("to", recipient),
				slog.String("error", err.Error()))
		}
	}
	return ok
}
