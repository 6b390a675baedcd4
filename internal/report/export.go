package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"pharmatrack/domain"
)

// exportHeader is the column set shared by every export format.
var exportHeader = []string{
	"Inventory Number", "Patient Name", "Patient ID", "Drug Item",
	"Inventory Type", "Quantity", "Purchase Price", "Date of Service",
	"Expiration Date", "Provider", "Location", "Inventory Site",
	"Created By", "Created At",
}

func exportRow(rec domain.InventoryRecord) []string {
	return []string{
		rec.InventoryNumber,
		rec.PatientName,
		strconv.FormatInt(rec.PatientID, 10),
		rec.DrugItemName,
		rec.InventoryType,
		strconv.FormatInt(rec.Quantity, 10),
		fmt.Sprintf("%.2f", rec.PurchasePrice),
		rec.DateOfService,
		rec.ExpirationDate,
		rec.Provider,
		rec.Location,
		rec.InventorySite,
		rec.CreatedBy,
		rec.CreatedAt,
	}
}

// WriteCSV streams the records as a CSV export.
func WriteCSV(w io.Writer, records []domain.InventoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(exportRow(rec)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON streams the records as a JSON export.
func WriteJSON(w io.Writer, records []domain.InventoryRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteXLSX streams the records as an Excel workbook with a styled
// header row.
func WriteXLSX(w io.Writer, records []domain.InventoryRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, rec := range records {
		row := exportRow(rec)
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write xlsx row: %w", err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	return f.Write(w)
}
