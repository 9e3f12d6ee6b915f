package models

import (
	"time"

	"github.com/invoiceo/invoiceo/internal/ledger"
)

// Invoicing models
type Invoice struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// InvoiceNumber is unique per owner and immutable once assigned.
	InvoiceNumber string         `gorm:"size:40;not null;index:idx_owner_number,unique,priority:2" json:"invoiceNumber"`
	OwnerID       uint           `gorm:"not null;index:idx_owner_number,priority:1" json:"ownerId"`
	Client        ClientSnapshot `gorm:"embedded;embeddedPrefix:client_" json:"client"`
	Lines         []InvoiceLine  `gorm:"foreignKey:InvoiceID" json:"lineItems"`
	Status        string         `gorm:"not null;default:'draft'" json:"status"` // draft, pending, paid, overdue
	IssueDate     time.Time      `gorm:"not null" json:"issueDate"`
	DueDate       time.Time      `gorm:"not null" json:"dueDate"`
	Subtotal      float64        `gorm:"not null" json:"subtotal"`
	Tax           float64        `gorm:"not null" json:"tax"`
	Total         float64        `gorm:"not null" json:"total"`
	Currency      string         `gorm:"not null;default:'EUR'" json:"currency"`
	Note          string         `json:"note,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// GetOwnerID implements gate.Ownable.
func (i Invoice) GetOwnerID() uint { return i.OwnerID }

// Items converts the persisted lines back into ledger items, in order.
func (i Invoice) Items() []ledger.Item {
	items := make([]ledger.Item, len(i.Lines))
	for n, l := range i.Lines {
		items[n] = ledger.Item{Description: l.Description, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return items
}

// InvoiceLine is one persisted line item. Position keeps the draft's order;
// lines have no identity beyond it.
type InvoiceLine struct {
	ID          uint    `gorm:"primaryKey" json:"-"`
	InvoiceID   uint    `gorm:"not null;index" json:"-"`
	Position    int     `gorm:"not null" json:"-"`
	Description string  `gorm:"not null" json:"description"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unitPrice"`
}

// ClientSnapshot is the denormalized copy of a Client embedded in an invoice
// at save time, immune to later Client edits or deletion.
type ClientSnapshot struct {
	ClientID uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Country  string `json:"country"`
	VATID    string `gorm:"column:vat_id" json:"vatId,omitempty"`
}

// SnapshotOf captures the client fields an invoice must keep.
func SnapshotOf(c Client) ClientSnapshot {
	return ClientSnapshot{
		ClientID: c.ID,
		Name:     c.Name,
		Email:    c.Email,
		Address:  c.Address,
		Country:  c.Country,
		VATID:    c.VATID,
	}
}

const (
	StatusDraft   = "draft"
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// ValidStatus reports whether s is one of the four invoice statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// ValidCurrency reports whether c is a supported invoice currency.
func ValidCurrency(c string) bool {
	switch c {
	case "EUR", "USD", "GBP":
		return true
	}
	return false
}
