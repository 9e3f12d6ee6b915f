package models

import "time"

// User & auth related models
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"unique;not null;index" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash
	Name     string `gorm:"index" json:"name"`
	// Role carries the capability level resolved into the session identity
	// once at login; "admin" bypasses plan-limit checks everywhere.
	Role      string    `gorm:"not null;default:'user'" json:"role"`
	Plan      string    `gorm:"not null;default:'free'" json:"plan"`
	Language  string    `gorm:"not null;default:'en'" json:"language"`
	Currency  string    `gorm:"not null;default:'EUR'" json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PlanFree     = "free"
	PlanPro      = "pro"
	PlanBusiness = "business"
)
