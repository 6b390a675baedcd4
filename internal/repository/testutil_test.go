package repository

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"pharmatrack/domain"
	"pharmatrack/internal/database"
	"pharmatrack/internal/migrations"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestInventory(t *testing.T) (*Inventory, *AuditLog) {
	t.Helper()
	db := setupTestDB(t)
	audit := NewAuditLog(db, testLogger())
	return NewInventory(db, audit, testLogger()), audit
}

// sampleRecord is a minimal valid record; callers override what they
// care about.
func sampleRecord(createdBy string) *domain.InventoryRecord {
	return &domain.InventoryRecord{
		PatientName:   "John Smith",
		PatientID:     1001,
		DrugItemName:  "Amoxicillin 500mg",
		InventoryType: "Antibiotic",
		Quantity:      20,
		PurchasePrice: 45.50,
		DateOfService: "2026-08-01",
		Provider:      "City Clinic",
		Location:      "Main Pharmacy",
		CreatedBy:     createdBy,
	}
}
