package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeExample(t *testing.T) {
	items := []Item{
		{Description: "A", Quantity: 2, UnitPrice: 150},
		{Description: "B", Quantity: 25, UnitPrice: 80},
	}
	got := Compute(items, 0.23)
	assert.InDelta(t, 2300, got.Subtotal, 1e-9)
	assert.InDelta(t, 529, got.Tax, 1e-9)
	assert.InDelta(t, 2829, got.Total, 1e-9)
}

func TestSubtotalEmptyAndZeroRows(t *testing.T) {
	assert.Zero(t, Subtotal(nil))
	// A freshly appended row contributes nothing.
	items := Append(nil)
	require.Len(t, items, 1)
	assert.Zero(t, Subtotal(items))
	// Partial rows count only what is filled in.
	items = []Item{{Description: "consulting", Quantity: 3}, {UnitPrice: 99.5}}
	assert.Zero(t, Subtotal(items))
}

func TestSubtotalIgnoresNonFinite(t *testing.T) {
	items := []Item{
		{Description: "ok", Quantity: 2, UnitPrice: 10},
		{Description: "nan", Quantity: math.NaN(), UnitPrice: 50},
		{Description: "inf", Quantity: 1, UnitPrice: math.Inf(1)},
	}
	assert.InDelta(t, 20, Subtotal(items), 1e-9)
}

func TestTotalsInvariant(t *testing.T) {
	cases := [][]Item{
		nil,
		{{Quantity: 1, UnitPrice: 0.1}},
		{{Quantity: 7, UnitPrice: 3.5}, {Quantity: 0.25, UnitPrice: 1200}},
		{{Quantity: 1000, UnitPrice: 0.01}, {Quantity: 0, UnitPrice: 0}},
	}
	for _, items := range cases {
		for _, rate := range []float64{0, 0.1, 0.23, 0.5} {
			got := Compute(items, rate)
			assert.InDelta(t, got.Subtotal*rate, got.Tax, 1e-9)
			assert.InDelta(t, got.Subtotal+got.Tax, got.Total, 1e-9)
			// Recomputing the same snapshot is idempotent.
			assert.Equal(t, got, Compute(items, rate))
		}
	}
}

func TestAppendDoesNotMutate(t *testing.T) {
	orig := []Item{{Description: "A", Quantity: 1, UnitPrice: 2}}
	out := Append(orig)
	require.Len(t, out, 2)
	assert.Equal(t, Item{}, out[1])
	assert.Len(t, orig, 1)
}

func TestRemove(t *testing.T) {
	items := []Item{{Description: "A"}, {Description: "B"}, {Description: "C"}}
	out := Remove(items, 1)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Description)
	assert.Equal(t, "C", out[1].Description)

	// Removal down to empty is supported.
	out = Remove(Remove(out, 0), 0)
	assert.Empty(t, out)

	// Out-of-range is a no-op.
	assert.Equal(t, items, Remove(items, -1))
	assert.Equal(t, items, Remove(items, 3))
}
