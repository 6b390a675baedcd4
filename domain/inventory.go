package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage format for all date fields. Dates are kept
// as TEXT columns so values round-trip unchanged between PostgreSQL and
// SQLite; ISO dates also compare correctly as strings.
const DateLayout = "2006-01-02"

// InventoryRecord is one tracked drug/patient entry.
type InventoryRecord struct {
	ID                     int64   `db:"id" json:"id"`
	PatientName            string  `db:"patient_name" json:"patient_name"`
	PatientID              int64   `db:"patient_id" json:"patient_id"`
	AdministrationLocation string  `db:"administration_location" json:"administration_location"`
	DrugItemName           string  `db:"drug_item_name" json:"drug_item_name"`
	DateOfService          string  `db:"date_of_service" json:"date_of_service"`
	DateOfDispense         string  `db:"date_of_dispense" json:"date_of_dispense"`
	DateOrdered            string  `db:"date_ordered" json:"date_ordered"`
	DateReceived           string  `db:"date_received" json:"date_received"`
	OrderNumber            *int64  `db:"order_number" json:"order_number,omitempty"`
	InvoiceNumber          *int64  `db:"invoice_number" json:"invoice_number,omitempty"`
	PONumber               *int64  `db:"po_number" json:"po_number,omitempty"`
	LotNumber              *int64  `db:"lot_number" json:"lot_number,omitempty"`
	ExpirationDate         string  `db:"expiration_date" json:"expiration_date"`
	InventoryNumber        string  `db:"inventory_number" json:"inventory_number"`
	InventoryType          string  `db:"inventory_type" json:"inventory_type"`
	Quantity               int64   `db:"quantity" json:"quantity"`
	PurchasePrice          float64 `db:"purchase_price" json:"purchase_price"`
	Provider               string  `db:"provider" json:"provider"`
	Location               string  `db:"location" json:"location"`
	InventorySite          string  `db:"inventory_site" json:"inventory_site"`
	DoseSwapStatus         bool    `db:"dose_swap_status" json:"dose_swap_status"`
	CreatedBy              string  `db:"created_by" json:"created_by"`
	UpdatedBy              string  `db:"updated_by" json:"updated_by"`
	CreatedAt              string  `db:"created_at" json:"created_at"`
	UpdatedAt              string  `db:"updated_at" json:"updated_at"`
}

// Validate checks the record before any write. It returns a
// *ValidationError listing every problem, or nil.
func (r *InventoryRecord) Validate() error {
	var problems []string

	if strings.TrimSpace(r.PatientName) == "" {
		problems = append(problems, "patient name is required")
	}
	if r.PatientID <= 0 {
		problems = append(problems, "patient ID must be a positive number")
	}
	if strings.TrimSpace(r.DrugItemName) == "" {
		problems = append(problems, "drug item name is required")
	}
	if r.Quantity < 0 {
		problems = append(problems, "quantity must not be negative")
	}
	if r.PurchasePrice < 0 {
		problems = append(problems, "purchase price must not be negative")
	}

	dates := []struct {
		label string
		value string
	}{
		{"date of service", r.DateOfService},
		{"date of dispense", r.DateOfDispense},
		{"date ordered", r.DateOrdered},
		{"date received", r.DateReceived},
		{"expiration date", r.ExpirationDate},
	}
	for _, d := range dates {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d.value); err != nil {
			problems = append(problems, fmt.Sprintf("%s must be in YYYY-MM-DD format", d.label))
		}
	}

	return Validation(problems)
}

// ExpirationStatus classifies a record by how close its expiration
// date is to now: "Expired", "Expires Soon" (7 days), "Expiring"
// (30 days), "Valid" or "Unknown".
func (r *InventoryRecord) ExpirationStatus(now time.Time) string {
	if r.ExpirationDate == "" {
		return "Unknown"
	}
	exp, err := time.Parse(DateLayout, r.ExpirationDate)
	if err != nil {
		return "Unknown"
	}
	days := int(exp.Sub(now.Truncate(24*time.Hour)).Hours() / 24)
	switch {
	case days < 0:
		return "Expired"
	case days <= 7:
		return "Expires Soon"
	case days <= 30:
		return "Expiring"
	default:
		return "Valid"
	}
}

// InventoryFilter narrows Search results. Zero values mean "no filter".
type InventoryFilter struct {
	PatientName   string
	DrugItemName  string
	InventoryType string
	Provider      string
	Location      string
	DateFrom      string // date_of_service lower bound, YYYY-MM-DD
	DateTo        string // date_of_service upper bound, YYYY-MM-DD
	CreatedBy     string // set for the employee-scoped views
	Limit         int
}
