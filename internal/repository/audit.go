package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmatrack/domain"
)

// AuditLog records and queries the change history for inventory rows.
// Entries are written from Go alongside each mutation rather than by a
// database trigger, so the history works the same on both drivers.
type AuditLog struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewAuditLog(db *sqlx.DB, logger *slog.Logger) *AuditLog {
	return &AuditLog{db: db, logger: logger.With(slog.String("component", "audit"))}
}

// Append writes one audit entry. Failures are logged but never surfaced:
// losing an audit row must not abort the mutation it describes.
func (a *AuditLog) Append(ctx context.Context, table string, recordID int64, action string, oldValues, newValues any, changedBy string) {
	oldJSON := marshalValues(oldValues)
	newJSON := marshalValues(newValues)
	if changedBy == "" {
		changedBy = "system"
	}

	_, err := a.db.ExecContext(ctx, a.db.Rebind(
		`INSERT INTO audit_log (table_name, record_id, action, old_values, new_values, changed_by) VALUES (?, ?, ?, ?, ?, ?)`),
		table, recordID, action, oldJSON, newJSON, changedBy)
	if err != nil {
		a.logger.Warn("unable to write audit entry",
			slog.String("table", table),
			slog.Int64("record_id", recordID),
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}

// List returns audit entries matching the filter, newest first.
func (a *AuditLog) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	var (
		args    []any
		clauses []string
	)
	if f.Action != "" {
		args = append(args, f.Action)
		clauses = append(clauses, "action = ?")
	}
	if f.ChangedBy != "" {
		args = append(args, f.ChangedBy)
		clauses = append(clauses, "changed_by = ?")
	}
	if f.RecordID > 0 {
		args = append(args, f.RecordID)
		clauses = append(clauses, "record_id = ?")
	}
	if f.DateFrom != "" {
		args = append(args, f.DateFrom)
		clauses = append(clauses, "changed_at >= ?")
	}
	if f.DateTo != "" {
		// Upper bound is inclusive of the whole day.
		args = append(args, f.DateTo+" 23:59:59")
		clauses = append(clauses, "changed_at <= ?")
	}

	query := `SELECT id, table_name, record_id, action, old_values, new_values, changed_by, changed_at FROM audit_log`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY changed_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " LIMIT ?"
	}

	var entries []domain.AuditEntry
	if err := a.db.SelectContext(ctx, &entries, a.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func marshalValues(v any) *string {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}
