package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"pharmatrack/domain"
)

const documentColumns = `id, filename, stored_name, file_path, file_size, file_type,
    inventory_id, description, uploaded_by, uploaded_at`

// Documents stores uploaded file metadata. The files themselves are
// managed by the docstore package; this layer owns only the rows.
type Documents struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewDocuments(db *sqlx.DB, logger *slog.Logger) *Documents {
	return &Documents{db: db, logger: logger.With(slog.String("component", "documents"))}
}

// Insert writes a metadata row and returns its id.
func (s *Documents) Insert(ctx context.Context, doc *domain.Document) (int64, error) {
	rows, err := s.db.NamedQueryContext(ctx, `INSERT INTO documents (
        filename, stored_name, file_path, file_size, file_type,
        inventory_id, description, uploaded_by
    ) VALUES (
        :filename, :stored_name, :file_path, :file_size, :file_type,
        :inventory_id, :description, :uploaded_by
    ) RETURNING id`, doc)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	defer rows.Close()

	var id int64
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan document id: %w", err)
		}
	}
	doc.ID = id
	return id, nil
}

// Get fetches one document row by id.
func (s *Documents) Get(ctx context.Context, id int64) (*domain.Document, error) {
	var doc domain.Document
	err := s.db.GetContext(ctx, &doc, s.db.Rebind(
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// Delete removes a metadata row and returns the deleted document so the
// caller can remove the backing file. Unknown ids return ErrNotFound.
func (s *Documents) Delete(ctx context.Context, id int64) (*domain.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM documents WHERE id = ?`), id)
	if err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// DeleteForInventory removes every document row linked to an inventory
// record and returns the deleted rows.
func (s *Documents) DeleteForInventory(ctx context.Context, inventoryID int64) ([]domain.Document, error) {
	docs, err := s.ListFor(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM documents WHERE inventory_id = ?`), inventoryID)
	if err != nil {
		return nil, fmt.Errorf("delete documents for inventory: %w", err)
	}
	return docs, nil
}

// ListFor returns documents linked to one inventory record.
func (s *Documents) ListFor(ctx context.Context, inventoryID int64) ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.SelectContext(ctx, &docs, s.db.Rebind(
		`SELECT `+documentColumns+` FROM documents WHERE inventory_id = ? ORDER BY uploaded_at DESC, id DESC`),
		inventoryID)
	if err != nil {
		return nil, fmt.Errorf("list documents for inventory: %w", err)
	}
	return docs, nil
}

// List returns all documents, newest first.
func (s *Documents) List(ctx context.Context, limit int) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY uploaded_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	var docs []domain.Document
	if err := s.db.SelectContext(ctx, &docs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
