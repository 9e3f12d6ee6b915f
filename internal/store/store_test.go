package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/apperrors"
	"github.com/invoiceo/invoiceo/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Client{}, &models.Product{}, &models.Invoice{}, &models.InvoiceLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func awaitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for change signal")
	}
}

func TestCreateNotifiesWatcher(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Watch(ctx, Clients, 1)
	if err := s.Create(ctx, Clients, 1, &models.Client{OwnerID: 1, Name: "Tech Solutions Ltd.", Email: "contact@techsolutions.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	awaitSignal(t, ch)
}

func TestWatchScopedToOwner(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Watch(ctx, Clients, 2)
	if err := s.Create(ctx, Clients, 1, &models.Client{OwnerID: 1, Name: "Someone Else", Email: "x@y"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	select {
	case <-ch:
		t.Fatalf("owner 2 must not see owner 1 changes")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchTeardownOnCancel(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Watch(ctx, Invoices, 1)
	cancel()
	select {
	case _, open := <-ch:
		if open {
			t.Fatalf("expected closed channel after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("channel not closed after cancel")
	}
}

func TestDeleteScopedToOwner(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	c := models.Client{OwnerID: 1, Name: "Mine", Email: "a@b"}
	if err := s.Create(ctx, Clients, 1, &c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, Clients, 2, &models.Client{}, c.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
	if err := s.Delete(ctx, Clients, 1, &models.Client{}, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestDeleteClientKeepsInvoiceSnapshot(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	c := models.Client{OwnerID: 1, Name: "Creative Agency SL", Email: "hola@creative.es", Country: "Spain"}
	if err := s.Create(ctx, Clients, 1, &c); err != nil {
		t.Fatalf("create client: %v", err)
	}
	inv := models.Invoice{
		OwnerID:       1,
		InvoiceNumber: "INV-1",
		Client:        models.SnapshotOf(c),
		Status:        models.StatusDraft,
		IssueDate:     time.Now(),
		DueDate:       time.Now().AddDate(0, 1, 0),
		Subtotal:      100, Tax: 23, Total: 123,
		Currency: "EUR",
	}
	if err := s.Create(ctx, Invoices, 1, &inv); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if err := s.Delete(ctx, Clients, 1, &models.Client{}, c.ID); err != nil {
		t.Fatalf("delete client: %v", err)
	}
	var got models.Invoice
	if err := s.DB().First(&got, inv.ID).Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if got.Client.Name != "Creative Agency SL" || got.Client.ClientID != c.ID {
		t.Fatalf("snapshot altered by client deletion: %+v", got.Client)
	}
	if got.Total != 123 {
		t.Fatalf("totals must not change on client deletion")
	}
}
