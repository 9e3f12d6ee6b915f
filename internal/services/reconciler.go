// Package services holds the invoice business logic sitting between the
// HTTP handlers and the store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/apperrors"
	"github.com/invoiceo/invoiceo/internal/ledger"
	"github.com/invoiceo/invoiceo/internal/models"
	"github.com/invoiceo/invoiceo/internal/store"
)

// Reconciler converts an in-progress draft plus ambient context into a
// persisted Invoice. Totals are always re-derived from the draft's line
// items; a stored total is never trusted.
type Reconciler struct {
	store   *store.Store
	taxRate float64
}

func NewReconciler(st *store.Store, taxRate float64) *Reconciler {
	return &Reconciler{store: st, taxRate: taxRate}
}

// TaxRate returns the flat rate this reconciler applies.
func (r *Reconciler) TaxRate() float64 { return r.taxRate }

// Save persists the draft as a new invoice, or updates existing when given.
// The write is atomic with respect to the computed fields: totals, snapshot,
// and lines land in one transaction or not at all.
func (r *Reconciler) Save(ctx context.Context, ownerID uint, draft models.Draft, existing *models.Invoice) (*models.Invoice, error) {
	if draft.ClientID == 0 {
		return nil, apperrors.Validation("client_not_selected", "client must be selected")
	}
	if len(draft.LineItems) == 0 {
		return nil, apperrors.Validation("line_items_required", "at least one line item is required")
	}
	if !models.ValidCurrency(draft.Currency) {
		return nil, apperrors.Validation("invalid_currency", "unsupported currency "+draft.Currency)
	}

	var client models.Client
	err := r.store.DB().WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, draft.ClientID).
		First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Validation("client_not_selected", "client must be selected")
	}
	if err != nil {
		return nil, apperrors.Persistence("load client", err)
	}

	totals := ledger.Compute(draft.LineItems, r.taxRate)

	inv := models.Invoice{
		OwnerID:   ownerID,
		Client:    models.SnapshotOf(client),
		Status:    models.StatusDraft,
		IssueDate: draft.IssueDate,
		DueDate:   draft.DueDate,
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Total:     totals.Total,
		Currency:  draft.Currency,
		Note:      draft.Note,
	}
	if existing != nil {
		// The number is immutable once assigned; status survives the edit.
		inv.ID = existing.ID
		inv.InvoiceNumber = existing.InvoiceNumber
		inv.Status = existing.Status
		inv.CreatedAt = existing.CreatedAt
	} else {
		inv.InvoiceNumber = NewInvoiceNumber(time.Now())
	}

	lines := make([]models.InvoiceLine, len(draft.LineItems))
	for i, it := range draft.LineItems {
		lines[i] = models.InvoiceLine{
			Position:    i,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}

	txErr := r.store.Transaction(ctx, func(tx *gorm.DB) error {
		if existing != nil {
			if err := tx.Save(&inv).Error; err != nil {
				return err
			}
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&inv).Error; err != nil {
				return err
			}
		}
		for i := range lines {
			lines[i].InvoiceID = inv.ID
		}
		return tx.Create(&lines).Error
	})
	if txErr != nil {
		op := "create invoice"
		if existing != nil {
			op = "update invoice"
		}
		return nil, apperrors.Persistence(op, txErr)
	}

	inv.Lines = lines
	r.store.Notify(store.Invoices, ownerID)
	return &inv, nil
}

// NewInvoiceNumber generates a per-save invoice number. The millisecond
// prefix keeps display order monotonic; the random suffix breaks same-tick
// collisions that a bare timestamp would allow.
func NewInvoiceNumber(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("INV-%d-%X", now.UnixMilli(), id[:4])
}
