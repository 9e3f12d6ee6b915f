package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/auth"
	"github.com/invoiceo/invoiceo/internal/httpx"
	"github.com/invoiceo/invoiceo/internal/models"
	"github.com/invoiceo/invoiceo/internal/store"
)

// WatchHandler streams live collection snapshots over SSE. Each connection is
// one subscription: the full owner-scoped list is sent on connect and again
// after every change, and the subscription tears down when the client
// disconnects.
type WatchHandler struct {
	Store *store.Store
}

func NewWatchHandler(st *store.Store) *WatchHandler {
	return &WatchHandler{Store: st}
}

// Watch: GET /api/watch/{collection}
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	col := store.Collection(r.PathValue("collection"))
	switch col {
	case store.Clients, store.Products, store.Invoices:
	default:
		httpx.JSONError(w, http.StatusNotFound, "unknown_collection", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.JSONError(w, http.StatusInternalServerError, "streaming_unsupported", nil)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	signals := h.Store.Watch(ctx, col, id.ID)

	if err := h.sendSnapshot(w, col, id.ID); err != nil {
		slog.Warn("watch snapshot failed", "collection", col, "user_id", id.ID, "error", err)
		return
	}
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-signals:
			if !open {
				return
			}
			if err := h.sendSnapshot(w, col, id.ID); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *WatchHandler) sendSnapshot(w http.ResponseWriter, col store.Collection, owner uint) error {
	var payload any
	var err error
	switch col {
	case store.Clients:
		var clients []models.Client
		err = h.Store.DB().Where("owner_id = ?", owner).Order("id desc").Find(&clients).Error
		payload = clients
	case store.Products:
		var products []models.Product
		err = h.Store.DB().Where("owner_id = ?", owner).Order("name asc").Find(&products).Error
		payload = products
	case store.Invoices:
		var invoices []models.Invoice
		err = h.Store.DB().
			Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
			Where("owner_id = ?", owner).
			Order("invoice_number desc").
			Find(&invoices).Error
		payload = invoices
	}
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", body)
	return err
}
