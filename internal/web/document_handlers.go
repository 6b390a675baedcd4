package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pharmatrack/domain"
	"pharmatrack/internal/docstore"
)

type documentsData struct {
	Documents []domain.Document
	Records   []domain.InventoryRecord
}

func (h *Handler) documentsPage(w http.ResponseWriter, r *http.Request) {
	var (
		data documentsData
		err  error
	)
	if data.Documents, err = h.documents.List(r.Context(), 200); err != nil {
		h.logger.Error("document list failed", slog.String("error", err.Error()))
		h.render(w, r, "documents.html", pageData{Title: "Documents", Error: "unable to load documents"})
		return
	}
	// Recent records populate the link-to dropdown on the upload form.
	if data.Records, err = h.inventory.Search(r.Context(), domain.InventoryFilter{Limit: 100}); err != nil {
		h.logger.Warn("record list for upload form failed", slog.String("error", err.Error()))
	}
	h.render(w, r, "documents.html", pageData{Title: "Documents", Data: data})
}

func (h *Handler) documentUpload(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	if err := r.ParseMultipartForm(docstore.MaxUploadSize); err != nil {
		redirectError(w, r, "/documents", "upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		redirectError(w, r, "/documents", "choose a file to upload")
		return
	}
	defer file.Close()

	meta := docstore.UploadMeta{
		Filename:    header.Filename,
		Description: strings.TrimSpace(r.FormValue("description")),
		UploadedBy:  sess.Username,
	}
	if raw := r.FormValue("inventory_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			redirectError(w, r, "/documents", "invalid inventory record")
			return
		}
		if _, err := h.inventory.Get(r.Context(), id); err != nil {
			redirectError(w, r, "/documents", h.formError(err, "invalid inventory record"))
			return
		}
		meta.InventoryID = &id
	}

	doc, err := h.documents.Upload(r.Context(), file, meta)
	if err != nil {
		redirectError(w, r, "/documents", h.formError(err, "upload failed"))
		return
	}
	h.logger.Info("document uploaded",
		slog.Int64("id", doc.ID),
		slog.String("filename", doc.Filename),
		slog.String("uploaded_by", sess.Username))
	redirectMessage(w, r, "/documents", fmt.Sprintf("uploaded %s", doc.Filename))
}

func (h *Handler) documentDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectError(w, r, "/documents", "invalid document id")
		return
	}
	if err := h.documents.Delete(r.Context(), id); err != nil {
		redirectError(w, r, "/documents", h.formError(err, "unable to delete document"))
		return
	}
	redirectMessage(w, r, "/documents", "document deleted")
}

func (h *Handler) documentDownload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectError(w, r, "/documents", "invalid document id")
		return
	}
	doc, f, err := h.documents.Open(r.Context(), id)
	if err != nil {
		redirectError(w, r, "/documents", h.formError(err, "unable to open document"))
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if fi, err := f.Stat(); err == nil {
		modTime = fi.ModTime()
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	http.ServeContent(w, r, doc.Filename, modTime, f)
}
