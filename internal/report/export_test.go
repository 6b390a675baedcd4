package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pharmatrack/domain"
)

func exportRecords() []domain.InventoryRecord {
	return []domain.InventoryRecord{
		{
			InventoryNumber: "INV-1",
			PatientName:     "John Smith",
			PatientID:       1001,
			DrugItemName:    "Amoxicillin 500mg",
			InventoryType:   "Antibiotic",
			Quantity:        20,
			PurchasePrice:   45.5,
			DateOfService:   "2026-08-01",
			ExpirationDate:  "2027-01-01",
			Provider:        "City Clinic",
			CreatedBy:       "alice",
		},
		{
			InventoryNumber: "INV-2",
			PatientName:     "Mary Jones",
			PatientID:       1002,
			DrugItemName:    "Insulin Glargine",
			Quantity:        5,
			PurchasePrice:   120,
			CreatedBy:       "bob",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, exportHeader, rows[0])
	require.Equal(t, "INV-1", rows[1][0])
	require.Equal(t, "45.50", rows[1][6])
	require.Equal(t, "Mary Jones", rows[2][1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, exportRecords()))

	var decoded []domain.InventoryRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "Insulin Glargine", decoded[1].DrugItemName)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, exportRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Inventory")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Inventory Number", rows[0][0])
	require.Equal(t, "INV-2", rows[2][0])
}
