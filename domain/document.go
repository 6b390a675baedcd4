package domain

// Document is an uploaded file plus the metadata row describing it.
// The file on disk is owned by the process until explicit deletion.
type Document struct {
	ID          int64  `db:"id" json:"id"`
	Filename    string `db:"filename" json:"filename"`
	StoredName  string `db:"stored_name" json:"stored_name"`
	FilePath    string `db:"file_path" json:"file_path"`
	FileSize    int64  `db:"file_size" json:"file_size"`
	FileType    string `db:"file_type" json:"file_type"`
	InventoryID *int64 `db:"inventory_id" json:"inventory_id,omitempty"`
	Description string `db:"description" json:"description"`
	UploadedBy  string `db:"uploaded_by" json:"uploaded_by"`
	UploadedAt  string `db:"uploaded_at" json:"uploaded_at"`
}
