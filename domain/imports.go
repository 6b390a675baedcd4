package domain

// ImportRecord is one row of the bulk-import history.
type ImportRecord struct {
	ID         int64  `db:"id" json:"id"`
	Filename   string `db:"filename" json:"filename"`
	TotalRows  int    `db:"total_rows" json:"total_rows"`
	Imported   int    `db:"imported" json:"imported"`
	Failed     int    `db:"failed" json:"failed"`
	ImportedBy string `db:"imported_by" json:"imported_by"`
	ImportedAt string `db:"imported_at" json:"imported_at"`
}

// ImportResult summarizes a single bulk-import run. Errors holds one
// message per rejected row, prefixed with the row number.
type ImportResult struct {
	TotalRows int
	Imported  int
	Failed    int
	Errors    []string
}
