package models

import "time"

// Product is an independent catalog entity, used as a data-entry convenience
// when filling invoices. It is never linked to invoices by reference.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;index" json:"ownerId"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	UnitPrice   float64   `gorm:"not null" json:"unitPrice"`
	TaxRate     *float64  `json:"taxRate,omitempty"` // 0..100, optional
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetOwnerID implements gate.Ownable.
func (p Product) GetOwnerID() uint { return p.OwnerID }
