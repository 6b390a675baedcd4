package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmatrack/domain"
)

func TestCreateFillsInventoryNumber(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	rec := sampleRecord("alice")
	id, err := inv.Create(ctx, rec)
	require.NoError(t, err)
	require.Positive(t, id)
	require.True(t, strings.HasPrefix(rec.InventoryNumber, "INV-"))
	require.Equal(t, "alice", rec.UpdatedBy, "updated_by defaults to the creator")

	got, err := inv.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, rec.InventoryNumber, got.InventoryNumber)
	require.Equal(t, "Amoxicillin 500mg", got.DrugItemName)
	require.NotEmpty(t, got.CreatedAt)
}

func TestCreateValidationWritesNothing(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*domain.InventoryRecord)
	}{
		{"missing patient name", func(r *domain.InventoryRecord) { r.PatientName = "" }},
		{"missing patient id", func(r *domain.InventoryRecord) { r.PatientID = 0 }},
		{"missing drug name", func(r *domain.InventoryRecord) { r.DrugItemName = "" }},
		{"negative quantity", func(r *domain.InventoryRecord) { r.Quantity = -1 }},
		{"negative price", func(r *domain.InventoryRecord) { r.PurchasePrice = -0.01 }},
		{"bad date", func(r *domain.InventoryRecord) { r.DateOfService = "01/08/2026" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := sampleRecord("alice")
			tc.mutate(rec)
			_, err := inv.Create(ctx, rec)
			require.Error(t, err)
			require.True(t, domain.IsValidation(err))
		})
	}

	records, err := inv.Search(ctx, domain.InventoryFilter{})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestUpdate(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	rec := sampleRecord("alice")
	id, err := inv.Create(ctx, rec)
	require.NoError(t, err)

	updated := sampleRecord("alice")
	updated.Quantity = 5
	updated.UpdatedBy = "bob"
	require.NoError(t, inv.Update(ctx, id, updated))

	got, err := inv.Get(ctx, id)
	require.NoError(t, err)
	require.EqualValues(t, 5, got.Quantity)
	require.Equal(t, "bob", got.UpdatedBy)
	require.Equal(t, rec.InventoryNumber, got.InventoryNumber, "blank number keeps the stored one")

	require.ErrorIs(t, inv.Update(ctx, 9999, sampleRecord("alice")), domain.ErrNotFound)
}

// The sqlite pool holds a single connection, so Create has to release
// its RETURNING rows before the audit insert needs that connection.
func TestCreateReleasesConnectionForAudit(t *testing.T) {
	inv, audit := newTestInventory(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := inv.Create(ctx, sampleRecord("alice"))
	require.NoError(t, err)

	got, err := inv.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, got.ID)
	require.NoError(t, inv.Delete(ctx, id, "alice"))

	entries, err := audit.List(ctx, domain.AuditFilter{RecordID: id})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, domain.AuditDelete, entries[0].Action)
	require.Equal(t, domain.AuditInsert, entries[1].Action)
}

func TestUpdateAuditKeepsCreator(t *testing.T) {
	inv, audit := newTestInventory(t)
	ctx := context.Background()

	id, err := inv.Create(ctx, sampleRecord("alice"))
	require.NoError(t, err)

	updated := sampleRecord("")
	updated.Quantity = 3
	updated.UpdatedBy = "bob"
	require.NoError(t, inv.Update(ctx, id, updated))

	entries, err := audit.List(ctx, domain.AuditFilter{RecordID: id, Action: domain.AuditUpdate})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].NewValues)
	require.Contains(t, *entries[0].NewValues, `"created_by":"alice"`)
}

func TestDeleteTwice(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	id, err := inv.Create(ctx, sampleRecord("alice"))
	require.NoError(t, err)

	require.NoError(t, inv.Delete(ctx, id, "alice"))
	require.ErrorIs(t, inv.Delete(ctx, id, "alice"), domain.ErrNotFound)
	_, err = inv.Get(ctx, id)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByInventoryNumber(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	rec := sampleRecord("alice")
	_, err := inv.Create(ctx, rec)
	require.NoError(t, err)

	got, err := inv.GetByInventoryNumber(ctx, "  "+rec.InventoryNumber+" ")
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)

	_, err = inv.GetByInventoryNumber(ctx, "INV-MISSING")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchFilters(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	a := sampleRecord("alice")
	b := sampleRecord("bob")
	b.PatientName = "Mary Jones"
	b.DrugItemName = "Insulin Glargine"
	b.InventoryType = "Injectable"
	b.DateOfService = "2026-08-20"

	_, err := inv.Create(ctx, a)
	require.NoError(t, err)
	_, err = inv.Create(ctx, b)
	require.NoError(t, err)

	byDrug, err := inv.Search(ctx, domain.InventoryFilter{DrugItemName: "insulin"})
	require.NoError(t, err)
	require.Len(t, byDrug, 1)
	require.Equal(t, "Insulin Glargine", byDrug[0].DrugItemName)

	byCreator, err := inv.Search(ctx, domain.InventoryFilter{CreatedBy: "alice"})
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	require.Equal(t, "alice", byCreator[0].CreatedBy)

	byType, err := inv.Search(ctx, domain.InventoryFilter{InventoryType: "Injectable"})
	require.NoError(t, err)
	require.Len(t, byType, 1)

	byDate, err := inv.Search(ctx, domain.InventoryFilter{DateFrom: "2026-08-10", DateTo: "2026-08-31"})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	require.Equal(t, "2026-08-20", byDate[0].DateOfService)

	none, err := inv.Search(ctx, domain.InventoryFilter{PatientName: "nobody"})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestListPagination(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := inv.Create(ctx, sampleRecord("alice"))
		require.NoError(t, err)
	}

	page1, total, err := inv.List(ctx, 1, 3)
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.Len(t, page1, 3)

	page3, total, err := inv.List(ctx, 3, 3)
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.Len(t, page3, 1)
}

func TestTypes(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	a := sampleRecord("alice")
	b := sampleRecord("alice")
	b.InventoryType = "Injectable"
	c := sampleRecord("alice")
	c.InventoryType = ""

	for _, rec := range []*domain.InventoryRecord{a, b, c} {
		_, err := inv.Create(ctx, rec)
		require.NoError(t, err)
	}

	types, err := inv.Types(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Antibiotic", "Injectable"}, types)
}

func TestGenerateInventoryNumberUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := GenerateInventoryNumber()
		require.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
}
