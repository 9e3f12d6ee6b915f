package models

import "time"

// Client entity. Owned exclusively by one user; invoices keep their own
// denormalized copy so later edits never rewrite history.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"ownerId"`
	Name      string    `gorm:"not null;index" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Address   string    `json:"address"`
	Country   string    `json:"country"`
	VATID     string    `gorm:"column:vat_id" json:"vatId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetOwnerID implements gate.Ownable.
func (c Client) GetOwnerID() uint { return c.OwnerID }
