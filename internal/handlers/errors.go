package handlers

import (
	"errors"
	"net/http"

	"github.com/invoiceo/invoiceo/internal/apperrors"
	"github.com/invoiceo/invoiceo/internal/httpx"
	"github.com/invoiceo/invoiceo/internal/i18n"
)

func lang(r *http.Request) string {
	return i18n.DetectLanguage(r.Header.Get("Accept-Language"))
}

// writeError maps the service error taxonomy onto HTTP responses with a
// localized message. Unknown errors become an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	l := lang(r)
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, ve.Code, i18n.T(l, ve.Code), nil)
		return
	}
	if errors.Is(err, apperrors.ErrAutofillInFlight) {
		httpx.JSONErrorMsg(w, http.StatusConflict, "ai_busy", i18n.T(l, "ai_busy"), nil)
		return
	}
	if apperrors.IsAIResponse(err) {
		httpx.JSONErrorMsg(w, http.StatusBadGateway, "ai_failed", i18n.T(l, "ai_failed"), nil)
		return
	}
	if apperrors.IsPersistence(err) {
		httpx.JSONErrorMsg(w, http.StatusInternalServerError, "save_failed", i18n.T(l, "save_failed"), nil)
		return
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(l, "not_found"), nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}
