package domain

// Alert types raised by the alert engine.
const (
	AlertExpired          = "expired"
	AlertExpiringCritical = "expiring_critical"
	AlertExpiringWarning  = "expiring_warning"
	AlertLowStock         = "low_stock"
	AlertOutOfStock       = "out_of_stock"
)

// Alert severities, used only for presentation grouping.
const (
	SeverityCritical = "Critical"
	SeverityWarning  = "Warning"
	SeverityInfo     = "Info"
)

// Alert is a computed condition on one inventory record. Alerts are not
// stored; only acknowledgments are.
type Alert struct {
	RecordID        int64
	AlertType       string
	Severity        string
	ItemName        string
	InventoryNumber string
	Detail          string
}

// AlertSettings is the singleton threshold configuration.
type AlertSettings struct {
	ID                 int64 `db:"id" json:"id"`
	ExpiryCriticalDays int   `db:"expiry_critical_days" json:"expiry_critical_days"`
	ExpiryWarningDays  int   `db:"expiry_warning_days" json:"expiry_warning_days"`
	LowStockThreshold  int64 `db:"low_stock_threshold" json:"low_stock_threshold"`
	NotifyEmailEnabled bool  `db:"notify_email_enabled" json:"notify_email_enabled"`
}

// DefaultAlertSettings are applied when the settings row is missing.
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		ID:                 1,
		ExpiryCriticalDays: 7,
		ExpiryWarningDays:  30,
		LowStockThreshold:  5,
		NotifyEmailEnabled: true,
	}
}
