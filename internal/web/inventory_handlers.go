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
	"pharmatrack/internal/notify"
)

const defaultPageSize = 25

type inventoryListData struct {
	Records  []domain.InventoryRecord
	Filter   domain.InventoryFilter
	Types    []string
	Filtered bool
	Total    int
	Page     int
	PrevPage int
	NextPage int
}

func (h *Handler) inventoryList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.InventoryFilter{
		PatientName:   strings.TrimSpace(q.Get("patient_name")),
		DrugItemName:  strings.TrimSpace(q.Get("drug_item_name")),
		InventoryType: strings.TrimSpace(q.Get("inventory_type")),
		Provider:      strings.TrimSpace(q.Get("provider")),
		Location:      strings.TrimSpace(q.Get("location")),
		DateFrom:      strings.TrimSpace(q.Get("date_from")),
		DateTo:        strings.TrimSpace(q.Get("date_to")),
	}
	filtered := filter != (domain.InventoryFilter{})

	data := inventoryListData{Filter: filter, Filtered: filtered}
	var err error
	if filtered {
		filter.Limit = 200
		data.Records, err = h.inventory.Search(r.Context(), filter)
		data.Total = len(data.Records)
	} else {
		page, _ := strconv.Atoi(q.Get("page"))
		if page < 1 {
			page = 1
		}
		data.Page = page
		data.PrevPage = page - 1
		data.Records, data.Total, err = h.inventory.List(r.Context(), page, defaultPageSize)
		if page*defaultPageSize < data.Total {
			data.NextPage = page + 1
		}
	}
	if err != nil {
		h.logger.Error("inventory list failed", slog.String("error", err.Error()))
		h.render(w, r, "inventory_list.html", pageData{Title: "Inventory", Error: "unable to load inventory"})
		return
	}

	if data.Types, err = h.inventory.Types(r.Context()); err != nil {
		h.logger.Warn("inventory types lookup failed", slog.String("error", err.Error()))
	}
	h.render(w, r, "inventory_list.html", pageData{Title: "Inventory", Data: data})
}

type inventoryFormData struct {
	Record    *domain.InventoryRecord
	IsEdit    bool
	Documents []domain.Document
}

func (h *Handler) inventoryNewPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "inventory_form.html", pageData{
		Title: "New record",
		Data:  inventoryFormData{Record: &domain.InventoryRecord{Quantity: 1}},
	})
}

func (h *Handler) inventoryCreate(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	rec, err := parseRecordForm(r)
	if err != nil {
		redirectError(w, r, "/inventory/new", h.formError(err, "unable to create record"))
		return
	}
	rec.CreatedBy = sess.Username
	rec.UpdatedBy = sess.Username

	id, err := h.inventory.Create(r.Context(), rec)
	if err != nil {
		redirectError(w, r, "/inventory/new", h.formError(err, "unable to create record"))
		return
	}
	h.logger.Info("inventory record created",
		slog.Int64("id", id), slog.String("created_by", sess.Username))

	h.notifyRecordEvent(r, notify.EventRecordCreated, rec, sess.Username)
	h.notifyThresholds(r, rec)
	redirectMessage(w, r, "/inventory", fmt.Sprintf("record %s created", rec.InventoryNumber))
}

func (h *Handler) inventoryEditPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectError(w, r, "/inventory", "invalid record id")
		return
	}
	rec, err := h.inventory.Get(r.Context(), id)
	if err != nil {
		redirectError(w, r, "/inventory", h.formError(err, "unable to load record"))
		return
	}
	docs, err := h.documents.ListFor(r.Context(), id)
	if err != nil {
		h.logger.Warn("document list failed", slog.Int64("inventory_id", id), slog.String("error", err.Error()))
	}
	h.render(w, r, "inventory_form.html", pageData{
		Title: "Edit record",
		Data:  inventoryFormData{Record: rec, IsEdit: true, Documents: docs},
	})
}

func (h *Handler) inventoryUpdate(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectError(w, r, "/inventory", "invalid record id")
		return
	}
	editPath := fmt.Sprintf("/inventory/%d/edit", id)

	rec, err := parseRecordForm(r)
	if err != nil {
		redirectError(w, r, editPath, h.formError(err, "unable to update record"))
		return
	}
	rec.UpdatedBy = sess.Username

	if err := h.inventory.Update(r.Context(), id, rec); err != nil {
		redirectError(w, r, editPath, h.formError(err, "unable to update record"))
		return
	}
	h.logger.Info("inventory record updated",
		slog.Int64("id", id), slog.String("updated_by", sess.Username))

	h.notifyRecordEvent(r, notify.EventRecordUpdated, rec, sess.Username)
	h.notifyThresholds(r, rec)
	redirectMessage(w, r, "/inventory", fmt.Sprintf("record %s updated", rec.InventoryNumber))
}

// inventoryDelete removes the record along with its linked documents.
func (h *Handler) inventoryDelete(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectError(w, r, "/inventory", "invalid record id")
		return
	}

	rec, err := h.inventory.Get(r.Context(), id)
	if err != nil {
		redirectError(w, r, "/inventory", h.formError(err, "unable to delete record"))
		return
	}
	if err := h.documents.DeleteForInventory(r.Context(), id); err != nil {
		redirectError(w, r, "/inventory", h.formError(err, "unable to delete linked documents"))
		return
	}
	if err := h.inventory.Delete(r.Context(), id, sess.Username); err != nil {
		redirectError(w, r, "/inventory", h.formError(err, "unable to delete record"))
		return
	}
	h.logger.Info("inventory record deleted",
		slog.Int64("id", id), slog.String("deleted_by", sess.Username))

	h.notifyRecordEvent(r, notify.EventRecordDeleted, rec, sess.Username)
	redirectMessage(w, r, "/inventory", fmt.Sprintf("record %s deleted", rec.InventoryNumber))
}

func (h *Handler) scanPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "scan.html", pageData{Title: "Scan lookup"})
}

// scanLookup resolves a scanned barcode or QR payload to a record. QR
// payloads of the form "key=value;key=value" are searched for an
// inventory_number field; anything else is treated as the number
// itself.
func (h *Handler) scanLookup(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.FormValue("code"))
	if code == "" {
		redirectError(w, r, "/inventory/scan", "scan a code first")
		return
	}

	number := code
	if strings.Contains(code, "=") {
		for _, field := range strings.Split(code, ";") {
			key, value, ok := strings.Cut(field, "=")
			if ok && strings.TrimSpace(key) == "inventory_number" {
				number = strings.TrimSpace(value)
			}
		}
	}

	rec, err := h.inventory.GetByInventoryNumber(r.Context(), number)
	if err != nil {
		redirectError(w, r, "/inventory/scan", h.formError(err, "lookup failed"))
		return
	}
	redirectMessage(w, r, fmt.Sprintf("/inventory/%d/edit", rec.ID),
		fmt.Sprintf("found %s via scan", rec.InventoryNumber))
}

// parseRecordForm builds a record from the submitted form. Number
// fields that fail to parse are reported together as one validation
// error so nothing is written.
func parseRecordForm(r *http.Request) (*domain.InventoryRecord, error) {
	var problems []string

	parseInt := func(field string) int64 {
		raw := strings.TrimSpace(r.FormValue(field))
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a whole number", field))
		}
		return v
	}
	parseOptInt := func(field string) *int64 {
		raw := strings.TrimSpace(r.FormValue(field))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a whole number", field))
			return nil
		}
		return &v
	}
	parseFloat := func(field string) float64 {
		raw := strings.TrimSpace(r.FormValue(field))
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a number", field))
		}
		return v
	}

	rec := &domain.InventoryRecord{
		PatientName:            strings.TrimSpace(r.FormValue("patient_name")),
		PatientID:              parseInt("patient_id"),
		AdministrationLocation: strings.TrimSpace(r.FormValue("administration_location")),
		DrugItemName:           strings.TrimSpace(r.FormValue("drug_item_name")),
		DateOfService:          strings.TrimSpace(r.FormValue("date_of_service")),
		DateOfDispense:         strings.TrimSpace(r.FormValue("date_of_dispense")),
		DateOrdered:            strings.TrimSpace(r.FormValue("date_ordered")),
		DateReceived:           strings.TrimSpace(r.FormValue("date_received")),
		OrderNumber:            parseOptInt("order_number"),
		InvoiceNumber:          parseOptInt("invoice_number"),
		PONumber:               parseOptInt("po_number"),
		LotNumber:              parseOptInt("lot_number"),
		ExpirationDate:         strings.TrimSpace(r.FormValue("expiration_date")),
		InventoryNumber:        strings.TrimSpace(r.FormValue("inventory_number")),
		InventoryType:          strings.TrimSpace(r.FormValue("inventory_type")),
		Quantity:               parseInt("quantity"),
		PurchasePrice:          parseFloat("purchase_price"),
		Provider:               strings.TrimSpace(r.FormValue("provider")),
		Location:               strings.TrimSpace(r.FormValue("location")),
		InventorySite:          strings.TrimSpace(r.FormValue("inventory_site")),
		DoseSwapStatus:         r.FormValue("dose_swap_status") == "on",
	}
	if err := domain.Validation(problems); err != nil {
		return nil, err
	}
	return rec, nil
}

func (h *Handler) notifyRecordEvent(r *http.Request, event notify.Event, rec *domain.InventoryRecord, actor string) {
	h.notifier.Notify(r.Context(), event, map[string]any{
		"Actor":           actor,
		"DrugItemName":    rec.DrugItemName,
		"InventoryNumber": rec.InventoryNumber,
		"PatientName":     rec.PatientName,
		"Quantity":        rec.Quantity,
	})
}

// notifyThresholds sends low-stock and expiring-soon mails when a write
// leaves the record at or past the configured thresholds. Disabled in
// the alert settings, it is a no-op.
func (h *Handler) notifyThresholds(r *http.Request, rec *domain.InventoryRecord) {
	settings, err := h.alerts.Settings(r.Context())
	if err != nil {
		h.logger.Warn("alert settings lookup failed", slog.String("error", err.Error()))
		return
	}
	if !settings.NotifyEmailEnabled {
		return
	}

	if rec.Quantity <= settings.LowStockThreshold {
		h.notifier.Notify(r.Context(), notify.EventLowStock, map[string]any{
			"DrugItemName":    rec.DrugItemName,
			"InventoryNumber": rec.InventoryNumber,
			"Quantity":        rec.Quantity,
			"Threshold":       settings.LowStockThreshold,
		})
	}
	if rec.ExpirationDate != "" {
		if exp, err := time.Parse(domain.DateLayout, rec.ExpirationDate); err == nil {
			days := int(time.Until(exp).Hours() / 24)
			if days >= 0 && days <= settings.ExpiryWarningDays {
				h.notifier.Notify(r.Context(), notify.EventExpiringSoon, map[string]any{
					"DrugItemName":    rec.DrugItemName,
					"InventoryNumber": rec.InventoryNumber,
					"ExpirationDate":  rec.ExpirationDate,
				})
			}
		}
	}
}
