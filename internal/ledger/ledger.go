// Package ledger holds the authoritative arithmetic over an invoice draft's
// line items. Everything here is pure: callers recompute after every edit
// instead of caching totals across mutations.
package ledger

import "math"

// Item is one invoice line. Quantity and UnitPrice may be zero while the
// draft is mid-edit; the arithmetic must never fail on partial input.
type Item struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// Totals is the derived financial summary of a draft.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Subtotal sums quantity*unitPrice over all items. Non-finite values are
// treated as 0, matching the draft form's "empty field counts as nothing".
func Subtotal(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += num(it.Quantity) * num(it.UnitPrice)
	}
	return sum
}

// Tax applies the flat rate to a subtotal. The rate is configuration,
// never a constant baked in here.
func Tax(subtotal, rate float64) float64 {
	return num(subtotal) * num(rate)
}

// Total is subtotal plus tax.
func Total(subtotal, tax float64) float64 {
	return num(subtotal) + num(tax)
}

// Compute derives all three totals in one pass.
func Compute(items []Item, rate float64) Totals {
	sub := Subtotal(items)
	tax := Tax(sub, rate)
	return Totals{Subtotal: sub, Tax: tax, Total: Total(sub, tax)}
}

// Append returns items with a zero-valued row added at the end.
func Append(items []Item) []Item {
	out := make([]Item, 0, len(items)+1)
	out = append(out, items...)
	return append(out, Item{})
}

// Remove deletes the item at index i. Out-of-range indexes are a no-op.
// Removing down to an empty list is allowed; keeping the first row visible
// is a UI concern, not a ledger one.
func Remove(items []Item, i int) []Item {
	if i < 0 || i >= len(items) {
		return items
	}
	out := make([]Item, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func num(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
