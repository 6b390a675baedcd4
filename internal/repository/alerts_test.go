package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmatrack/domain"
)

func newTestAlerts(t *testing.T) (*Alerts, *Inventory) {
	t.Helper()
	db := setupTestDB(t)
	audit := NewAuditLog(db, testLogger())
	return NewAlerts(db, testLogger()), NewInventory(db, audit, testLogger())
}

func dateOffset(days int) string {
	return time.Now().AddDate(0, 0, days).Format(domain.DateLayout)
}

func alertTypes(alerts []domain.Alert) map[string]bool {
	types := make(map[string]bool)
	for _, a := range alerts {
		types[a.AlertType] = true
	}
	return types
}

func TestSettingsDefaults(t *testing.T) {
	alerts, _ := newTestAlerts(t)
	ctx := context.Background()

	settings, err := alerts.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.DefaultAlertSettings().ExpiryCriticalDays, settings.ExpiryCriticalDays)
	require.Equal(t, domain.DefaultAlertSettings().LowStockThreshold, settings.LowStockThreshold)
}

func TestSaveSettings(t *testing.T) {
	alerts, _ := newTestAlerts(t)
	ctx := context.Background()

	settings := domain.AlertSettings{
		ID:                 1,
		ExpiryCriticalDays: 3,
		ExpiryWarningDays:  14,
		LowStockThreshold:  2,
		NotifyEmailEnabled: false,
	}
	require.NoError(t, alerts.SaveSettings(ctx, settings))

	got, err := alerts.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, got.ExpiryCriticalDays)
	require.Equal(t, 14, got.ExpiryWarningDays)
	require.Equal(t, int64(2), got.LowStockThreshold)
	require.False(t, got.NotifyEmailEnabled)
}

func TestSaveSettingsValidation(t *testing.T) {
	alerts, _ := newTestAlerts(t)
	ctx := context.Background()

	err := alerts.SaveSettings(ctx, domain.AlertSettings{
		ExpiryCriticalDays: 30,
		ExpiryWarningDays:  7,
		LowStockThreshold:  5,
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
}

func TestActiveAlerts(t *testing.T) {
	alerts, inv := newTestAlerts(t)
	ctx := context.Background()

	expired := sampleRecord("alice")
	expired.ExpirationDate = dateOffset(-2)

	critical := sampleRecord("alice")
	critical.ExpirationDate = dateOffset(3)

	warning := sampleRecord("alice")
	warning.ExpirationDate = dateOffset(20)

	empty := sampleRecord("alice")
	empty.Quantity = 0

	low := sampleRecord("alice")
	low.Quantity = 2

	healthy := sampleRecord("alice")
	healthy.ExpirationDate = dateOffset(365)

	for _, rec := range []*domain.InventoryRecord{expired, critical, warning, empty, low, healthy} {
		_, err := inv.Create(ctx, rec)
		require.NoError(t, err)
	}

	active, err := alerts.Active(ctx)
	require.NoError(t, err)

	types := alertTypes(active)
	require.True(t, types[domain.AlertExpired])
	require.True(t, types[domain.AlertExpiringCritical])
	require.True(t, types[domain.AlertExpiringWarning])
	require.True(t, types[domain.AlertOutOfStock])
	require.True(t, types[domain.AlertLowStock])

	for _, a := range active {
		require.NotEqual(t, healthy.ID, a.RecordID, "healthy record must not alert")
	}
}

func TestAcknowledgeSuppressesAlert(t *testing.T) {
	alerts, inv := newTestAlerts(t)
	ctx := context.Background()

	rec := sampleRecord("alice")
	rec.Quantity = 0
	_, err := inv.Create(ctx, rec)
	require.NoError(t, err)

	active, err := alerts.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, domain.AlertOutOfStock, active[0].AlertType)

	require.NoError(t, alerts.Acknowledge(ctx, rec.ID, domain.AlertOutOfStock, "alice"))
	// Re-acknowledging is a no-op, not an error.
	require.NoError(t, alerts.Acknowledge(ctx, rec.ID, domain.AlertOutOfStock, "alice"))

	active, err = alerts.Active(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
}
