package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/invoiceo/invoiceo/internal/auth"
	"github.com/invoiceo/invoiceo/internal/autofill"
	"github.com/invoiceo/invoiceo/internal/httpx"
	"github.com/invoiceo/invoiceo/internal/i18n"
	"github.com/invoiceo/invoiceo/internal/models"
)

type AutofillHandler struct {
	Service *autofill.Service
}

func NewAutofillHandler(svc *autofill.Service) *AutofillHandler {
	return &AutofillHandler{Service: svc}
}

type autofillRequest struct {
	DraftKey string       `json:"draftKey"`
	Draft    models.Draft `json:"draft"`
}

// Suggest: POST /api/invoices/autofill
// Returns the next draft with the suggested items and note merged in. The
// server never stores the draft; the client replaces its editing state with
// the returned one.
func (h *AutofillHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var body autofillRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	key := body.DraftKey
	if key == "" {
		key = fmt.Sprintf("user:%d:new", id.ID)
	}
	// Scope keys per user so one user's in-flight call cannot block another's.
	key = fmt.Sprintf("%d/%s", id.ID, key)

	res, err := h.Service.Suggest(r.Context(), key, autofill.Request{
		ClientID: body.Draft.ClientID,
		Currency: body.Draft.Currency,
		UserID:   id.ID,
		Items:    body.Draft.LineItems,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	next := autofill.Apply(body.Draft, *res)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"draft":          next,
		"suggestedItems": res.SuggestedItems,
		"suggestedNote":  res.SuggestedNote,
	})
}
