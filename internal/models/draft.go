package models

import (
	"time"

	"github.com/invoiceo/invoiceo/internal/ledger"
)

// Draft is an in-progress, unpersisted invoice being edited. It is mutated by
// every field edit and either discarded or converted into an Invoice on save.
type Draft struct {
	ClientID  uint          `json:"clientId"`
	IssueDate time.Time     `json:"issueDate"`
	DueDate   time.Time     `json:"dueDate"`
	Currency  string        `json:"currency"`
	LineItems []ledger.Item `json:"lineItems"`
	Note      string        `json:"note,omitempty"`
}
