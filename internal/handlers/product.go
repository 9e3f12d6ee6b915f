package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/invoiceo/invoiceo/internal/auth"
	"github.com/invoiceo/invoiceo/internal/gate"
	"github.com/invoiceo/invoiceo/internal/httpx"
	"github.com/invoiceo/invoiceo/internal/i18n"
	"github.com/invoiceo/invoiceo/internal/models"
	"github.com/invoiceo/invoiceo/internal/store"
	"github.com/invoiceo/invoiceo/internal/validation"
)

type ProductHandler struct {
	Store  *store.Store
	Policy gate.Policy
}

func NewProductHandler(st *store.Store, policy gate.Policy) *ProductHandler {
	return &ProductHandler{Store: st, Policy: policy}
}

type productInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	UnitPrice   float64  `json:"unitPrice"`
	TaxRate     *float64 `json:"taxRate"`
}

func (in productInput) validate() validation.Violations {
	v := validation.Violations{}
	if len(strings.TrimSpace(in.Name)) < 2 {
		v["name"] = "too_short"
	}
	validation.PositiveFloat("unitPrice", in.UnitPrice, v)
	if in.TaxRate != nil {
		validation.RangeFloat("taxRate", *in.TaxRate, 0, 100, v)
	}
	return v
}

// List: GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	dbq := h.Store.DB().Where("owner_id = ?", id.ID)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(searchSafe.ReplaceAllString(q, "")) + "%"
		dbq = dbq.Where("lower(name) LIKE ?", like)
	}
	var products []models.Product
	if err := dbq.Order("name asc").Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products})
}

// Create: POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var input productInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	if v := input.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product := models.Product{
		OwnerID:     id.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		UnitPrice:   input.UnitPrice,
		TaxRate:     input.TaxRate,
	}
	if err := h.Store.Create(r.Context(), store.Products, id.ID, &product); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Update: POST /api/products/update?id=...
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	product, ok := h.loadOwned(w, r, id)
	if !ok {
		return
	}
	var input productInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	if v := input.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.UnitPrice = input.UnitPrice
	product.TaxRate = input.TaxRate
	if err := h.Store.Update(r.Context(), store.Products, product.OwnerID, product); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete: POST /api/products/delete?id=...
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	product, ok := h.loadOwned(w, r, id)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), store.Products, product.OwnerID, &models.Product{}, product.ID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ProductHandler) loadOwned(w http.ResponseWriter, r *http.Request, id auth.Identity) (*models.Product, bool) {
	pid, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || pid <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var product models.Product
	if err := h.Store.DB().First(&product, pid).Error; err != nil {
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(lang(r), "not_found"), nil)
		return nil, false
	}
	if !h.Policy.Can(r.Context(), id.ID, gate.ActionUpdate, product) {
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(lang(r), "not_found"), nil)
		return nil, false
	}
	return &product, true
}
