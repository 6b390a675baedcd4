package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmatrack/domain"
)

// Alerts evaluates inventory against the configured thresholds. Alerts
// are computed on demand; only acknowledgments and settings persist.
type Alerts struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewAlerts(db *sqlx.DB, logger *slog.Logger) *Alerts {
	return &Alerts{db: db, logger: logger.With(slog.String("component", "alerts"))}
}

// Settings returns the singleton threshold row, falling back to
// defaults when it is missing.
func (s *Alerts) Settings(ctx context.Context) (domain.AlertSettings, error) {
	var settings domain.AlertSettings
	err := s.db.GetContext(ctx, &settings,
		`SELECT id, expiry_critical_days, expiry_warning_days, low_stock_threshold, notify_email_enabled FROM alert_settings WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultAlertSettings(), nil
	}
	if err != nil {
		return domain.AlertSettings{}, fmt.Errorf("load alert settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the threshold configuration.
func (s *Alerts) SaveSettings(ctx context.Context, settings domain.AlertSettings) error {
	var problems []string
	if settings.ExpiryCriticalDays <= 0 || settings.ExpiryWarningDays <= 0 {
		problems = append(problems, "expiry thresholds must be positive")
	}
	if settings.ExpiryCriticalDays > settings.ExpiryWarningDays {
		problems = append(problems, "critical threshold cannot exceed the warning threshold")
	}
	if settings.LowStockThreshold < 0 {
		problems = append(problems, "low stock threshold must not be negative")
	}
	if err := domain.Validation(problems); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE alert_settings SET expiry_critical_days = ?, expiry_warning_days = ?, low_stock_threshold = ?, notify_email_enabled = ? WHERE id = 1`),
		settings.ExpiryCriticalDays, settings.ExpiryWarningDays, settings.LowStockThreshold, settings.NotifyEmailEnabled)
	if err != nil {
		return fmt.Errorf("save alert settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = s.db.ExecContext(ctx, s.db.Rebind(
			`INSERT INTO alert_settings (id, expiry_critical_days, expiry_warning_days, low_stock_threshold, notify_email_enabled) VALUES (1, ?, ?, ?, ?)`),
			settings.ExpiryCriticalDays, settings.ExpiryWarningDays, settings.LowStockThreshold, settings.NotifyEmailEnabled)
		if err != nil {
			return fmt.Errorf("insert alert settings: %w", err)
		}
	}
	return nil
}

// Acknowledge marks one alert as handled so it stops appearing in the
// active list. Re-acknowledging is a no-op.
func (s *Alerts) Acknowledge(ctx context.Context, recordID int64, alertType, ackedBy string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO alert_acks (record_id, alert_type, acked_by) VALUES (?, ?, ?) ON CONFLICT (record_id, alert_type) DO NOTHING`),
		recordID, alertType, ackedBy)
	if err != nil {
		return fmt.Errorf("acknowledge alert: %w", err)
	}
	return nil
}

// Active computes the current alerts from inventory state, thresholds
// and acknowledgments, ordered by severity.
func (s *Alerts) Active(ctx context.Context) ([]domain.Alert, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	type row struct {
		ID              int64  `db:"id"`
		DrugItemName    string `db:"drug_item_name"`
		InventoryNumber string `db:"inventory_number"`
		ExpirationDate  string `db:"expiration_date"`
		Quantity        int64  `db:"quantity"`
	}
	var rows []row
	err = s.db.SelectContext(ctx, &rows,
		`SELECT id, drug_item_name, inventory_number, expiration_date, quantity FROM inventory`)
	if err != nil {
		return nil, fmt.Errorf("load inventory for alerts: %w", err)
	}

	type ackKey struct {
		RecordID  int64  `db:"record_id"`
		AlertType string `db:"alert_type"`
	}
	var ackRows []ackKey
	if err := s.db.SelectContext(ctx, &ackRows, `SELECT record_id, alert_type FROM alert_acks`); err != nil {
		return nil, fmt.Errorf("load alert acknowledgments: %w", err)
	}
	acked := make(map[ackKey]bool, len(ackRows))
	for _, a := range ackRows {
		acked[a] = true
	}

	today := time.Now().Truncate(24 * time.Hour)
	var alerts []domain.Alert
	add := func(r row, alertType, severity, detail string) {
		if acked[ackKey{RecordID: r.ID, AlertType: alertType}] {
			return
		}
		alerts = append(alerts, domain.Alert{
			RecordID:        r.ID,
			AlertType:       alertType,
			Severity:        severity,
			ItemName:        r.DrugItemName,
			InventoryNumber: r.InventoryNumber,
			Detail:          detail,
		})
	}

	for _, r := range rows {
		if r.ExpirationDate != "" {
			exp, err := time.Parse(domain.DateLayout, r.ExpirationDate)
			if err == nil {
				days := int(exp.Sub(today).Hours() / 24)
				switch {
				case days < 0:
					add(r, domain.AlertExpired, domain.SeverityCritical,
						fmt.Sprintf("expired on %s", r.ExpirationDate))
				case days <= settings.ExpiryCriticalDays:
					add(r, domain.AlertExpiringCritical, domain.SeverityCritical,
						fmt.Sprintf("expires in %d day(s)", days))
				case days <= settings.ExpiryWarningDays:
					add(r, domain.AlertExpiringWarning, domain.SeverityWarning,
						fmt.Sprintf("expires on %s", r.ExpirationDate))
				}
			}
		}

		switch {
		case r.Quantity == 0:
			add(r, domain.AlertOutOfStock, domain.SeverityCritical, "out of stock")
		case r.Quantity <= settings.LowStockThreshold:
			add(r, domain.AlertLowStock, domain.SeverityWarning,
				fmt.Sprintf("quantity %d at or below threshold %d", r.Quantity, settings.LowStockThreshold))
		}
	}

	return alerts, nil
}
