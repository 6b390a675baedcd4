// Package docstore manages uploaded files and their metadata rows.
// Files live under a managed directory keyed by generated names so
// uploads can never collide; the metadata row is written only after the
// file write succeeds.
package docstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"pharmatrack/domain"
	"pharmatrack/internal/repository"
)

// MaxUploadSize caps a single uploaded file at 10 MiB.
const MaxUploadSize = 10 << 20

var allowedExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true,
	".tiff": true, ".doc": true, ".docx": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Store writes uploaded files to a managed directory and records their
// metadata through the document repository.
type Store struct {
	dir    string
	repo   *repository.Documents
	logger *slog.Logger
}

func New(dir string, repo *repository.Documents, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{dir: dir, repo: repo, logger: logger.With(slog.String("component", "docstore"))}, nil
}

// UploadMeta describes one incoming file.
type UploadMeta struct {
	Filename    string
	InventoryID *int64
	Description string
	UploadedBy  string
}

// SanitizeFilename strips characters unsafe for storage or display and
// bounds the length.
func SanitizeFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(filepath.Base(name), "_")
	if len(safe) > 255 {
		ext := filepath.Ext(safe)
		safe = safe[:255-len(ext)] + ext
	}
	return safe
}

// Upload writes the file to disk and then records its metadata. If the
// metadata insert fails the file is left in place and logged for manual
// remediation; there is no automatic cleanup.
func (s *Store) Upload(ctx context.Context, r io.Reader, meta UploadMeta) (*domain.Document, error) {
	filename := SanitizeFilename(meta.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, domain.Validation([]string{fmt.Sprintf("file type %q is not allowed", ext)})
	}

	storedName := uuid.NewString() + ext
	path := filepath.Join(s.dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if written > MaxUploadSize {
		_ = os.Remove(path)
		return nil, domain.Validation([]string{"file exceeds the 10 MiB upload limit"})
	}

	doc := &domain.Document{
		Filename:    filename,
		StoredName:  storedName,
		FilePath:    path,
		FileSize:    written,
		FileType:    strings.TrimPrefix(ext, "."),
		InventoryID: meta.InventoryID,
		Description: meta.Description,
		UploadedBy:  meta.UploadedBy,
	}
	if _, err := s.repo.Insert(ctx, doc); err != nil {
		// The file stays on disk; the row is the source of truth and a
		// missing row with a present file needs manual remediation.
		s.logger.Error("document metadata insert failed after file write",
			slog.String("path", path), slog.String("error", err.Error()))
		return nil, err
	}
	return doc, nil
}

// Delete removes the metadata row and then the backing file. A missing
// row returns ErrNotFound; a missing file is logged only.
func (s *Store) Delete(ctx context.Context, id int64) error {
	doc, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("unable to remove document file",
			slog.String("path", doc.FilePath), slog.String("error", err.Error()))
	}
	return nil
}

// DeleteForInventory removes every document linked to an inventory
// record, rows first, then files.
func (s *Store) DeleteForInventory(ctx context.Context, inventoryID int64) error {
	docs, err := s.repo.DeleteForInventory(ctx, inventoryID)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("unable to remove document file",
				slog.String("path", doc.FilePath), slog.String("error", err.Error()))
		}
	}
	return nil
}

// Open returns the backing file for download along with its metadata.
func (s *Store) Open(ctx context.Context, id int64) (*domain.Document, *os.File, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(doc.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open document file: %w", err)
	}
	return doc, f, nil
}

// ListFor returns documents linked to one inventory record.
func (s *Store) ListFor(ctx context.Context, inventoryID int64) ([]domain.Document, error) {
	return s.repo.ListFor(ctx, inventoryID)
}

// List returns all documents, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Document, error) {
	return s.repo.List(ctx, limit)
}
