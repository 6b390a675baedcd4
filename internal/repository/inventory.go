package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pharmatrack/domain"
)

const inventoryColumns = `id, patient_name, patient_id, administration_location, drug_item_name,
    date_of_service, date_of_dispense, date_ordered, date_received,
    order_number, invoice_number, po_number, lot_number, expiration_date,
    inventory_number, inventory_type, quantity, purchase_price, provider,
    location, inventory_site, dose_swap_status, created_by, updated_by, created_at, updated_at`

// Inventory wraps CRUD and search over the inventory table. Every write
// validates first and is a single statement; each mutation appends an
// audit entry.
type Inventory struct {
	db     *sqlx.DB
	audit  *AuditLog
	logger *slog.Logger
}

func NewInventory(db *sqlx.DB, audit *AuditLog, logger *slog.Logger) *Inventory {
	return &Inventory{db: db, audit: audit, logger: logger.With(slog.String("component", "inventory"))}
}

// GenerateInventoryNumber produces a unique tracking number of the form
// INV-<timestamp>-<random suffix>.
func GenerateInventoryNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("060102150405"), suffix)
}

// Create validates and inserts a new record, returning its id. A blank
// inventory number is filled in with a generated one.
func (s *Inventory) Create(ctx context.Context, rec *domain.InventoryRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	if rec.InventoryNumber == "" {
		rec.InventoryNumber = GenerateInventoryNumber()
	}
	if rec.UpdatedBy == "" {
		rec.UpdatedBy = rec.CreatedBy
	}

	rows, err := s.db.NamedQueryContext(ctx, `INSERT INTO inventory (
        patient_name, patient_id, administration_location, drug_item_name,
        date_of_service, date_of_dispense, date_ordered, date_received,
        order_number, invoice_number, po_number, lot_number, expiration_date,
        inventory_number, inventory_type, quantity, purchase_price, provider,
        location, inventory_site, dose_swap_status, created_by, updated_by
    ) VALUES (
        :patient_name, :patient_id, :administration_location, :drug_item_name,
        :date_of_service, :date_of_dispense, :date_ordered, :date_received,
        :order_number, :invoice_number, :po_number, :lot_number, :expiration_date,
        :inventory_number, :inventory_type, :quantity, :purchase_price, :provider,
        :location, :inventory_site, :dose_swap_status, :created_by, :updated_by
    ) RETURNING id`, rec)
	if err != nil {
		return 0, fmt.Errorf("insert inventory record: %w", err)
	}

	// Drain and close before touching the DB again: with a single-conn
	// pool (sqlite) the open RETURNING rows hold the only connection.
	var id int64
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan inserted id: %w", err)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("insert inventory record: %w", err)
	}
	rec.ID = id

	s.audit.Append(ctx, "inventory", id, domain.AuditInsert, nil, rec, rec.CreatedBy)
	return id, nil
}

// Update validates and rewrites an existing record. Unknown ids return
// ErrNotFound.
func (s *Inventory) Update(ctx context.Context, id int64, rec *domain.InventoryRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	old, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	rec.ID = id
	rec.CreatedBy = old.CreatedBy
	if rec.InventoryNumber == "" {
		rec.InventoryNumber = old.InventoryNumber
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = old.CreatedAt
	}
	res, err := s.db.NamedExecContext(ctx, `UPDATE inventory SET
        patient_name = :patient_name, patient_id = :patient_id,
        administration_location = :administration_location, drug_item_name = :drug_item_name,
        date_of_service = :date_of_service, date_of_dispense = :date_of_dispense,
        date_ordered = :date_ordered, date_received = :date_received,
        order_number = :order_number, invoice_number = :invoice_number,
        po_number = :po_number, lot_number = :lot_number,
        expiration_date = :expiration_date, inventory_number = :inventory_number,
        inventory_type = :inventory_type, quantity = :quantity,
        purchase_price = :purchase_price, provider = :provider,
        location = :location, inventory_site = :inventory_site,
        dose_swap_status = :dose_swap_status, updated_by = :updated_by,
        updated_at = CURRENT_TIMESTAMP
        WHERE id = :id`, rec)
	if err != nil {
		return fmt.Errorf("update inventory record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}

	s.audit.Append(ctx, "inventory", id, domain.AuditUpdate, old, rec, rec.UpdatedBy)
	return nil
}

// Delete removes a record. A second delete of the same id returns
// ErrNotFound with no side effect.
func (s *Inventory) Delete(ctx context.Context, id int64, deletedBy string) error {
	old, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM inventory WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete inventory record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}

	s.audit.Append(ctx, "inventory", id, domain.AuditDelete, old, nil, deletedBy)
	return nil
}

// Get fetches one record by id.
func (s *Inventory) Get(ctx context.Context, id int64) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := s.db.GetContext(ctx, &rec, s.db.Rebind(
		`SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return &rec, nil
}

// GetByInventoryNumber resolves a scanned tracking number to a record.
func (s *Inventory) GetByInventoryNumber(ctx context.Context, number string) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := s.db.GetContext(ctx, &rec, s.db.Rebind(
		`SELECT `+inventoryColumns+` FROM inventory WHERE inventory_number = ?`), strings.TrimSpace(number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get by inventory number: %w", err)
	}
	return &rec, nil
}

// Search returns records matching the filter, newest first.
func (s *Inventory) Search(ctx context.Context, f domain.InventoryFilter) ([]domain.InventoryRecord, error) {
	var (
		args    []any
		clauses []string
	)
	like := func(column, value string) {
		args = append(args, "%"+strings.ToLower(value)+"%")
		clauses = append(clauses, "LOWER("+column+") LIKE ?")
	}

	if f.PatientName != "" {
		like("patient_name", f.PatientName)
	}
	if f.DrugItemName != "" {
		like("drug_item_name", f.DrugItemName)
	}
	if f.Provider != "" {
		like("provider", f.Provider)
	}
	if f.Location != "" {
		like("location", f.Location)
	}
	if f.InventoryType != "" {
		args = append(args, f.InventoryType)
		clauses = append(clauses, "inventory_type = ?")
	}
	if f.DateFrom != "" {
		args = append(args, f.DateFrom)
		clauses = append(clauses, "date_of_service >= ?")
	}
	if f.DateTo != "" {
		args = append(args, f.DateTo)
		clauses = append(clauses, "date_of_service <= ?")
	}
	if f.CreatedBy != "" {
		args = append(args, f.CreatedBy)
		clauses = append(clauses, "created_by = ?")
	}

	query := `SELECT ` + inventoryColumns + ` FROM inventory`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " LIMIT ?"
	}

	var records []domain.InventoryRecord
	if err := s.db.SelectContext(ctx, &records, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("search inventory: %w", err)
	}
	return records, nil
}

// List returns one page of records plus the total row count.
func (s *Inventory) List(ctx context.Context, page, pageSize int) ([]domain.InventoryRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 25
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM inventory`); err != nil {
		return nil, 0, fmt.Errorf("count inventory: %w", err)
	}

	var records []domain.InventoryRecord
	err := s.db.SelectContext(ctx, &records, s.db.Rebind(
		`SELECT `+inventoryColumns+` FROM inventory ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`),
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory: %w", err)
	}
	return records, total, nil
}

// Types returns the distinct inventory types in use, for filter
// dropdowns.
func (s *Inventory) Types(ctx context.Context) ([]string, error) {
	var types []string
	err := s.db.SelectContext(ctx, &types,
		`SELECT DISTINCT inventory_type FROM inventory WHERE inventory_type <> '' ORDER BY inventory_type`)
	if err != nil {
		return nil, fmt.Errorf("list inventory types: %w", err)
	}
	return types, nil
}
