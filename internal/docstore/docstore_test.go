package docstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pharmatrack/domain"
	"pharmatrack/internal/database"
	"pharmatrack/internal/migrations"
	"pharmatrack/internal/repository"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := New(t.TempDir(), repository.NewDocuments(db, logger), logger)
	require.NoError(t, err)
	return store
}

func TestUploadAndOpen(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	doc, err := store.Upload(ctx, strings.NewReader("fake pdf bytes"), UploadMeta{
		Filename:    "invoice.pdf",
		Description: "August invoice",
		UploadedBy:  "alice",
	})
	require.NoError(t, err)
	require.Positive(t, doc.ID)
	require.Equal(t, "invoice.pdf", doc.Filename)
	require.Equal(t, "pdf", doc.FileType)
	require.EqualValues(t, len("fake pdf bytes"), doc.FileSize)
	require.NotEqual(t, doc.Filename, doc.StoredName, "stored name must be generated")

	// The file must exist on disk before the row is usable.
	_, err = os.Stat(doc.FilePath)
	require.NoError(t, err)

	got, f, err := store.Open(ctx, doc.ID)
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "fake pdf bytes", string(body))
	require.Equal(t, doc.ID, got.ID)
}

func TestUploadRejectsExtension(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.Upload(ctx, strings.NewReader("#!/bin/sh"), UploadMeta{
		Filename:   "malware.sh",
		UploadedBy: "alice",
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))

	docs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	big := io.LimitReader(neverEnding('a'), MaxUploadSize+1)
	_, err := store.Upload(ctx, big, UploadMeta{Filename: "scan.jpg", UploadedBy: "alice"})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
}

type neverEnding byte

func (b neverEnding) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

func TestDeleteRemovesRowAndFile(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	doc, err := store.Upload(ctx, strings.NewReader("bytes"), UploadMeta{
		Filename:   "photo.png",
		UploadedBy: "alice",
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, doc.ID))
	_, err = os.Stat(doc.FilePath)
	require.True(t, os.IsNotExist(err))

	require.ErrorIs(t, store.Delete(ctx, doc.ID), domain.ErrNotFound)
}

func TestDeleteForInventory(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	invID := int64(7)
	var paths []string
	for _, name := range []string{"a.pdf", "b.jpg"} {
		doc, err := store.Upload(ctx, strings.NewReader("x"), UploadMeta{
			Filename:    name,
			InventoryID: &invID,
			UploadedBy:  "alice",
		})
		require.NoError(t, err)
		paths = append(paths, doc.FilePath)
	}
	unrelated, err := store.Upload(ctx, strings.NewReader("x"), UploadMeta{
		Filename:   "keep.pdf",
		UploadedBy: "alice",
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteForInventory(ctx, invID))
	for _, p := range paths {
		_, err := os.Stat(p)
		require.True(t, os.IsNotExist(err))
	}

	docs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, unrelated.ID, docs[0].ID)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{`bad<>:"|?*.pdf`, "bad_______.pdf"},
		{"../../etc/passwd.pdf", "passwd.pdf"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, SanitizeFilename(tc.in))
	}

	long := strings.Repeat("a", 300) + ".pdf"
	safe := SanitizeFilename(long)
	require.LessOrEqual(t, len(safe), 255)
	require.True(t, strings.HasSuffix(safe, ".pdf"))
	require.Equal(t, filepath.Ext(safe), ".pdf")
}
