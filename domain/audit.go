package domain

// Audit actions recorded for inventory mutations.
const (
	AuditInsert = "INSERT"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// AuditEntry is one row of the change history. Old and new values are
// JSON snapshots of the affected record.
type AuditEntry struct {
	ID        int64   `db:"id" json:"id"`
	TableName string  `db:"table_name" json:"table_name"`
	RecordID  int64   `db:"record_id" json:"record_id"`
	Action    string  `db:"action" json:"action"`
	OldValues *string `db:"old_values" json:"old_values,omitempty"`
	NewValues *string `db:"new_values" json:"new_values,omitempty"`
	ChangedBy string  `db:"changed_by" json:"changed_by"`
	ChangedAt string  `db:"changed_at" json:"changed_at"`
}

// AuditFilter narrows audit trail queries.
type AuditFilter struct {
	Action    string
	ChangedBy string
	RecordID  int64
	DateFrom  string
	DateTo    string
	Limit     int
}
