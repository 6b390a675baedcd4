package web

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strings"

	"pharmatrack/domain"
	"pharmatrack/internal/repository"
)

type importData struct {
	History []domain.ImportRecord
	Result  *domain.ImportResult
	Columns []string
}

func (h *Handler) importPage(w http.ResponseWriter, r *http.Request) {
	h.renderImportPage(w, r, nil)
}

func (h *Handler) renderImportPage(w http.ResponseWriter, r *http.Request, result *domain.ImportResult) {
	history, err := h.imports.List(r.Context(), 20)
	if err != nil {
		h.logger.Warn("import history lookup failed", slog.String("error", err.Error()))
	}
	h.render(w, r, "import.html", pageData{
		Title: "Bulk import",
		Data:  importData{History: history, Result: result, Columns: repository.ImportColumns},
	})
}

// importRun parses the uploaded CSV and inserts every valid row; bad
// rows are reported back on the page, never aborting the run.
func (h *Handler) importRun(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		redirectError(w, r, "/import", "upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		redirectError(w, r, "/import", "choose a CSV file to import")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		redirectError(w, r, "/import", "only .csv files can be imported")
		return
	}

	result, err := h.inventory.ImportCSV(r.Context(), file, sess.Username)
	if err != nil {
		redirectError(w, r, "/import", h.formError(err, "import failed"))
		return
	}
	h.imports.Append(r.Context(), header.Filename, result, sess.Username)
	h.logger.Info("bulk import finished",
		slog.String("filename", header.Filename),
		slog.Int("imported", result.Imported),
		slog.Int("failed", result.Failed),
		slog.String("imported_by", sess.Username))

	h.renderImportPage(w, r, &result)
}

// importTemplate serves an empty CSV with the expected header row.
func (h *Handler) importTemplate(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=import_template.csv")
	cw := csv.NewWriter(w)
	_ = cw.Write(repository.ImportColumns)
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("template write failed", slog.String("error", err.Error()))
	}
}
