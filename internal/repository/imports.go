package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmatrack/domain"
)

// ImportColumns is the header contract for bulk-import CSV files; the
// downloadable template uses the same order.
var ImportColumns = []string{
	"patient_name", "patient_id", "drug_item_name", "inventory_type",
	"quantity", "purchase_price", "date_of_service", "expiration_date",
	"provider", "location", "inventory_site",
}

// ImportCSV parses a bulk-import file and inserts every valid row.
// Malformed rows are skipped and reported in the result; they never
// abort the run.
func (s *Inventory) ImportCSV(ctx context.Context, r io.Reader, importedBy string) (domain.ImportResult, error) {
	var result domain.ImportResult

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return result, domain.Validation([]string{"file is empty or not a CSV"})
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"patient_name", "patient_id", "drug_item_name"} {
		if _, ok := index[required]; !ok {
			return result, domain.Validation([]string{fmt.Sprintf("missing required column %q", required)})
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.TotalRows++
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.TotalRows++

		rec := domain.InventoryRecord{
			PatientName:    field(row, "patient_name"),
			DrugItemName:   field(row, "drug_item_name"),
			InventoryType:  field(row, "inventory_type"),
			DateOfService:  field(row, "date_of_service"),
			ExpirationDate: field(row, "expiration_date"),
			Provider:       field(row, "provider"),
			Location:       field(row, "location"),
			InventorySite:  field(row, "inventory_site"),
			CreatedBy:      importedBy,
			UpdatedBy:      importedBy,
		}

		var rowProblems []string
		if v := field(row, "patient_id"); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				rec.PatientID = id
			} else {
				rowProblems = append(rowProblems, "patient_id must be a number")
			}
		}
		if v := field(row, "quantity"); v != "" {
			if q, err := strconv.ParseInt(v, 10, 64); err == nil {
				rec.Quantity = q
			} else {
				rowProblems = append(rowProblems, "quantity must be a number")
			}
		}
		if v := field(row, "purchase_price"); v != "" {
			if p, err := strconv.ParseFloat(v, 64); err == nil {
				rec.PurchasePrice = p
			} else {
				rowProblems = append(rowProblems, "purchase_price must be a number")
			}
		}

		if len(rowProblems) > 0 {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", line, strings.Join(rowProblems, "; ")))
			continue
		}

		if _, err := s.Create(ctx, &rec); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportHistory records the outcome of bulk-import runs.
type ImportHistory struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewImportHistory(db *sqlx.DB, logger *slog.Logger) *ImportHistory {
	return &ImportHistory{db: db, logger: logger.With(slog.String("component", "import_history"))}
}

// Append stores one import run. Failures are logged only; history must
// not fail the import itself.
func (h *ImportHistory) Append(ctx context.Context, filename string, result domain.ImportResult, importedBy string) {
	_, err := h.db.ExecContext(ctx, h.db.Rebind(
		`INSERT INTO import_history (filename, total_rows, imported, failed, imported_by) VALUES (?, ?, ?, ?, ?)`),
		filename, result.TotalRows, result.Imported, result.Failed, importedBy)
	if err != nil {
		h.logger.Warn("unable to record import history",
			slog.String("filename", filename), slog.String("error", err.Error()))
	}
}

// List returns recent import runs, newest first.
func (h *ImportHistory) List(ctx context.Context, limit int) ([]domain.ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []domain.ImportRecord
	err := h.db.SelectContext(ctx, &records, h.db.Rebind(
		`SELECT id, filename, total_rows, imported, failed, imported_by, imported_at FROM import_history ORDER BY imported_at DESC, id DESC LIMIT ?`),
		limit)
	if err != nil {
		return nil, fmt.Errorf("list import history: %w", err)
	}
	return records, nil
}
