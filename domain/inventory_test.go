package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validRecord() *InventoryRecord {
	return &InventoryRecord{
		PatientName:  "John Smith",
		PatientID:    1001,
		DrugItemName: "Amoxicillin 500mg",
		Quantity:     10,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validRecord().Validate())

	tests := []struct {
		name    string
		mutate  func(*InventoryRecord)
		problem string
	}{
		{"missing patient name", func(r *InventoryRecord) { r.PatientName = " " }, "patient name"},
		{"zero patient id", func(r *InventoryRecord) { r.PatientID = 0 }, "patient ID"},
		{"missing drug name", func(r *InventoryRecord) { r.DrugItemName = "" }, "drug item name"},
		{"negative quantity", func(r *InventoryRecord) { r.Quantity = -1 }, "quantity"},
		{"negative price", func(r *InventoryRecord) { r.PurchasePrice = -1 }, "price"},
		{"malformed expiration", func(r *InventoryRecord) { r.ExpirationDate = "2027-13-45" }, "expiration date"},
		{"wrong date layout", func(r *InventoryRecord) { r.DateOfService = "08/01/2026" }, "date of service"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			tc.mutate(rec)
			err := rec.Validate()
			require.Error(t, err)
			require.True(t, IsValidation(err))
			require.Contains(t, err.Error(), tc.problem)
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	rec := &InventoryRecord{Quantity: -1}
	err := rec.Validate()
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(verr.Problems), 4)
}

func TestExpirationStatus(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(DateLayout)
	}

	tests := []struct {
		name string
		date string
		want string
	}{
		{"no date", "", "Unknown"},
		{"garbage", "soon", "Unknown"},
		{"yesterday", day(-1), "Expired"},
		{"today", day(0), "Expires Soon"},
		{"within a week", day(5), "Expires Soon"},
		{"within a month", day(20), "Expiring"},
		{"far out", day(120), "Valid"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := InventoryRecord{ExpirationDate: tc.date}
			require.Equal(t, tc.want, rec.ExpirationStatus(now))
		})
	}
}
