package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/apperrors"
	"github.com/invoiceo/invoiceo/internal/ledger"
	"github.com/invoiceo/invoiceo/internal/models"
	"github.com/invoiceo/invoiceo/internal/store"
)

func setupReconciler(t *testing.T) (*Reconciler, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Client{}, &models.Invoice{}, &models.InvoiceLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.New(db)
	return NewReconciler(st, 0.23), st
}

func seedClient(t *testing.T, st *store.Store, owner uint) models.Client {
	t.Helper()
	c := models.Client{OwnerID: owner, Name: "Tech Solutions Ltd.", Email: "contact@techsolutions.com", Country: "Ireland"}
	if err := st.Create(context.Background(), store.Clients, owner, &c); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func draftFor(c models.Client) models.Draft {
	return models.Draft{
		ClientID:  c.ID,
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 0, 30),
		Currency:  "EUR",
		LineItems: []ledger.Item{
			{Description: "A", Quantity: 2, UnitPrice: 150},
			{Description: "B", Quantity: 25, UnitPrice: 80},
		},
		Note: "thanks",
	}
}

func TestSaveNewInvoice(t *testing.T) {
	r, st := setupReconciler(t)
	c := seedClient(t, st, 1)

	inv, err := r.Save(context.Background(), 1, draftFor(c), nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if inv.Subtotal != 2300 || inv.Tax != 529 || inv.Total != 2829 {
		t.Fatalf("unexpected totals %v %v %v", inv.Subtotal, inv.Tax, inv.Total)
	}
	if inv.Status != models.StatusDraft {
		t.Fatalf("new invoice must start as draft, got %s", inv.Status)
	}
	if !strings.HasPrefix(inv.InvoiceNumber, "INV-") {
		t.Fatalf("unexpected number %q", inv.InvoiceNumber)
	}
	if inv.Client.Name != c.Name || inv.Client.ClientID != c.ID {
		t.Fatalf("client snapshot not stamped: %+v", inv.Client)
	}
	var lines []models.InvoiceLine
	if err := st.DB().Where("invoice_id = ?", inv.ID).Order("position").Find(&lines).Error; err != nil {
		t.Fatalf("load lines: %v", err)
	}
	if len(lines) != 2 || lines[0].Description != "A" || lines[1].Description != "B" {
		t.Fatalf("lines not persisted in order: %+v", lines)
	}
}

func TestSavePreservesNumberOnUpdate(t *testing.T) {
	r, st := setupReconciler(t)
	c := seedClient(t, st, 1)

	first, err := r.Save(context.Background(), 1, draftFor(c), nil)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	d := draftFor(c)
	d.LineItems = []ledger.Item{{Description: "Revised", Quantity: 1, UnitPrice: 500}}
	second, err := r.Save(context.Background(), 1, d, first)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.InvoiceNumber != first.InvoiceNumber {
		t.Fatalf("invoice number changed on update: %q -> %q", first.InvoiceNumber, second.InvoiceNumber)
	}
	if second.ID != first.ID {
		t.Fatalf("update created a new record")
	}
	if second.Subtotal != 500 || second.Total != 615 {
		t.Fatalf("totals not recomputed: %+v", second)
	}
	var count int64
	st.DB().Model(&models.Invoice{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single invoice row, got %d", count)
	}
	var lines []models.InvoiceLine
	st.DB().Where("invoice_id = ?", second.ID).Find(&lines)
	if len(lines) != 1 {
		t.Fatalf("old lines must be replaced, got %d", len(lines))
	}
}

func TestSaveIsIdempotentOnTotals(t *testing.T) {
	r, st := setupReconciler(t)
	c := seedClient(t, st, 1)
	d := draftFor(c)

	first, err := r.Save(context.Background(), 1, d, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := r.Save(context.Background(), 1, d, first)
	if err != nil {
		t.Fatalf("resave: %v", err)
	}
	if first.Subtotal != second.Subtotal || first.Tax != second.Tax || first.Total != second.Total {
		t.Fatalf("reconciling the same draft twice changed totals")
	}
}

func TestSaveRequiresClient(t *testing.T) {
	r, st := setupReconciler(t)
	d := models.Draft{
		Currency:  "EUR",
		LineItems: []ledger.Item{{Description: "x", Quantity: 1, UnitPrice: 1}},
	}
	if _, err := r.Save(context.Background(), 1, d, nil); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// A client id pointing at another owner's client is just as invalid.
	foreign := seedClient(t, st, 2)
	d.ClientID = foreign.ID
	if _, err := r.Save(context.Background(), 1, d, nil); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for foreign client, got %v", err)
	}
}

func TestSaveRequiresLineItems(t *testing.T) {
	r, st := setupReconciler(t)
	c := seedClient(t, st, 1)
	d := draftFor(c)
	d.LineItems = nil
	if _, err := r.Save(context.Background(), 1, d, nil); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSaveRejectsUnknownCurrency(t *testing.T) {
	r, st := setupReconciler(t)
	c := seedClient(t, st, 1)
	d := draftFor(c)
	d.Currency = "CHF"
	if _, err := r.Save(context.Background(), 1, d, nil); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewInvoiceNumberUniqueAndSortable(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		n := NewInvoiceNumber(now)
		if seen[n] {
			t.Fatalf("duplicate number within one tick: %s", n)
		}
		seen[n] = true
	}
	earlier := NewInvoiceNumber(now.Add(-time.Second))
	later := NewInvoiceNumber(now)
	if !(earlier < later) {
		t.Fatalf("numbers must sort by time: %q vs %q", earlier, later)
	}
}
