package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
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

var searchSafe = regexp.MustCompile(`[^a-zA-Z0-9 \-_@.]`)

type ClientHandler struct {
	Store  *store.Store
	Policy gate.Policy
	Quota  gate.ClientQuota
}

func NewClientHandler(st *store.Store, policy gate.Policy, quota gate.ClientQuota) *ClientHandler {
	return &ClientHandler{Store: st, Policy: policy, Quota: quota}
}

type clientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Country string `json:"country"`
	VATID   string `json:"vatId"`
}

func (in clientInput) validate() validation.Violations {
	v := validation.Violations{}
	if len(strings.TrimSpace(in.Name)) < 2 {
		v["name"] = "too_short"
	}
	validation.Required("email", in.Email, v)
	if !strings.Contains(in.Email, "@") {
		v["email"] = "invalid_email"
	}
	if len(strings.TrimSpace(in.Address)) < 10 {
		v["address"] = "too_short"
	}
	if len(strings.TrimSpace(in.Country)) < 2 {
		v["country"] = "required"
	}
	return v
}

// List: GET /api/clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	dbq := h.Store.DB().Where("owner_id = ?", id.ID)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(searchSafe.ReplaceAllString(q, "")) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(email) LIKE ?", like, like)
	}
	var total int64
	dbq.Model(&models.Client{}).Count(&total)
	var clients []models.Client
	if err := dbq.Order("id desc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var input clientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	if v := input.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var user models.User
	if err := h.Store.DB().First(&user, id.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_user", nil)
		return
	}
	var current int64
	h.Store.DB().Model(&models.Client{}).Where("owner_id = ?", id.ID).Count(&current)
	if !h.Quota.Allows(user.Plan, id.Admin, current) {
		httpx.JSONErrorMsg(w, http.StatusForbidden, "plan_limit_reached", i18n.T(lang(r), "plan_limit_reached"), nil)
		return
	}

	client := models.Client{
		OwnerID: id.ID,
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Address: strings.TrimSpace(input.Address),
		Country: strings.TrimSpace(input.Country),
		VATID:   strings.TrimSpace(input.VATID),
	}
	if err := h.Store.Create(r.Context(), store.Clients, id.ID, &client); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

// Update: POST /api/clients/update?id=...
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	client, ok := h.loadOwned(w, r, id)
	if !ok {
		return
	}
	var input clientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	if v := input.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	client.Name = strings.TrimSpace(input.Name)
	client.Email = strings.TrimSpace(input.Email)
	client.Address = strings.TrimSpace(input.Address)
	client.Country = strings.TrimSpace(input.Country)
	client.VATID = strings.TrimSpace(input.VATID)
	if err := h.Store.Update(r.Context(), store.Clients, client.OwnerID, client); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete: POST /api/clients/delete?id=...
// Persisted invoices keep their snapshot of the deleted client.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	client, ok := h.loadOwned(w, r, id)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), store.Clients, client.OwnerID, &models.Client{}, client.ID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ClientHandler) loadOwned(w http.ResponseWriter, r *http.Request, id auth.Identity) (*models.Client, bool) {
	cid, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || cid <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var client models.Client
	if err := h.Store.DB().First(&client, cid).Error; err != nil {
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(lang(r), "not_found"), nil)
		return nil, false
	}
	if !h.Policy.Can(r.Context(), id.ID, gate.ActionUpdate, client) {
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(lang(r), "not_found"), nil)
		return nil, false
	}
	return &client, true
}
