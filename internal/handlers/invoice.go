package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/apperrors"
	"github.com/invoiceo/invoiceo/internal/auth"
	"github.com/invoiceo/invoiceo/internal/httpx"
	"github.com/invoiceo/invoiceo/internal/i18n"
	"github.com/invoiceo/invoiceo/internal/models"
	"github.com/invoiceo/invoiceo/internal/services"
	"github.com/invoiceo/invoiceo/internal/store"
)

type InvoiceHandler struct {
	Store      *store.Store
	Reconciler *services.Reconciler
}

func NewInvoiceHandler(st *store.Store, rec *services.Reconciler) *InvoiceHandler {
	return &InvoiceHandler{Store: st, Reconciler: rec}
}

// List: GET /api/invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	dbq := h.Store.DB().Where("owner_id = ?", id.ID)
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ValidStatus(status) {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		dbq = dbq.Where("status = ?", status)
	}
	var invoices []models.Invoice
	err := dbq.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("invoice_number desc").
		Find(&invoices).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices})
}

// Get: GET /api/invoices/get?id=...
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	inv, ok := h.loadOwned(w, r, id)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Create: POST /api/invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	inv, err := h.Reconciler.Save(r.Context(), id.ID, draft, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Update: POST /api/invoices/update?id=...
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	existing, ok := h.loadOwned(w, r, id)
	if !ok {
		return
	}
	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	inv, err := h.Reconciler.Save(r.Context(), id.ID, draft, existing)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// SetStatus: POST /api/invoices/status?id=...
func (h *InvoiceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	inv, ok := h.loadOwned(w, r, id)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	if !models.ValidStatus(body.Status) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
		return
	}
	inv.Status = body.Status
	if err := h.Store.Update(r.Context(), store.Invoices, inv.OwnerID, inv); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: POST /api/invoices/delete?id=...
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	inv, ok := h.loadOwned(w, r, id)
	if !ok {
		return
	}
	err := h.Store.Transaction(r.Context(), func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, inv.ID).Error
	})
	if err != nil {
		writeError(w, r, apperrors.Persistence("delete invoices", err))
		return
	}
	h.Store.Notify(store.Invoices, inv.OwnerID)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *InvoiceHandler) loadOwned(w http.ResponseWriter, r *http.Request, id auth.Identity) (*models.Invoice, bool) {
	iid, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || iid <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var inv models.Invoice
	err = h.Store.DB().
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("owner_id = ? AND id = ?", id.ID, iid).
		First(&inv).Error
	if err != nil {
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(lang(r), "not_found"), nil)
		return nil, false
	}
	return &inv, true
}
