package autofill

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceo/invoiceo/internal/apperrors"
	"github.com/invoiceo/invoiceo/internal/ledger"
	"github.com/invoiceo/invoiceo/internal/models"
)

type fakeCompleter struct {
	raw   string
	err   error
	calls atomic.Int32
	block chan struct{} // when set, Complete waits until closed
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.raw, f.err
}

func resultJSON(t *testing.T, items int, note string) string {
	t.Helper()
	res := Result{SuggestedNote: note}
	for i := 0; i < items; i++ {
		res.SuggestedItems = append(res.SuggestedItems, ledger.Item{Description: "Web Design Consultation", Quantity: 2, UnitPrice: 150})
	}
	b, err := json.Marshal(res)
	require.NoError(t, err)
	return string(b)
}

func TestSuggestRequiresClient(t *testing.T) {
	fake := &fakeCompleter{raw: resultJSON(t, 2, "thanks")}
	svc := NewService(fake)

	_, err := svc.Suggest(context.Background(), "draft-1", Request{Currency: "EUR", UserID: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	// The operation must not be attempted at all.
	assert.Zero(t, fake.calls.Load())
}

func TestSuggestSuccessAppliesWholesale(t *testing.T) {
	fake := &fakeCompleter{raw: resultJSON(t, 3, "Payment due within 30 days.")}
	svc := NewService(fake)

	draft := models.Draft{
		ClientID:  4,
		Currency:  "EUR",
		LineItems: []ledger.Item{{Description: "old row", Quantity: 1, UnitPrice: 10}},
		Note:      "old note",
	}
	res, err := svc.Suggest(context.Background(), "draft-1", Request{ClientID: 4, Currency: "EUR", UserID: 1, Items: draft.LineItems})
	require.NoError(t, err)

	next := Apply(draft, *res)
	assert.Len(t, next.LineItems, 3)
	assert.Equal(t, "Payment due within 30 days.", next.Note)
	// Replacement, not merge: the old row is gone.
	for _, it := range next.LineItems {
		assert.NotEqual(t, "old row", it.Description)
	}
	// The input draft value is untouched.
	assert.Equal(t, "old note", draft.Note)
	assert.Len(t, draft.LineItems, 1)
}

func TestSuggestRejectsTooManyItems(t *testing.T) {
	fake := &fakeCompleter{raw: resultJSON(t, 6, "ok")}
	svc := NewService(fake)

	_, err := svc.Suggest(context.Background(), "d", Request{ClientID: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsAIResponse(err))
}

func TestSuggestRejectsLongNote(t *testing.T) {
	note := strings.TrimSpace(strings.Repeat("word ", MaxNoteWords+1))
	fake := &fakeCompleter{raw: resultJSON(t, 1, note)}
	svc := NewService(fake)

	_, err := svc.Suggest(context.Background(), "d", Request{ClientID: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsAIResponse(err))
}

func TestSuggestRejectsInvalidItems(t *testing.T) {
	cases := map[string]string{
		"empty description": `{"suggestedItems":[{"description":"  ","quantity":1,"unitPrice":5}],"suggestedNote":""}`,
		"zero quantity":     `{"suggestedItems":[{"description":"x","quantity":0,"unitPrice":5}],"suggestedNote":""}`,
		"negative price":    `{"suggestedItems":[{"description":"x","quantity":1,"unitPrice":-5}],"suggestedNote":""}`,
		"no items":          `{"suggestedItems":[],"suggestedNote":""}`,
		"malformed":         `not json at all`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewService(&fakeCompleter{raw: raw})
			_, err := svc.Suggest(context.Background(), "d", Request{ClientID: 1})
			require.Error(t, err)
			assert.True(t, apperrors.IsAIResponse(err))
		})
	}
}

func TestSuggestServiceFailure(t *testing.T) {
	svc := NewService(&fakeCompleter{err: errors.New("connection refused")})
	_, err := svc.Suggest(context.Background(), "d", Request{ClientID: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsAIResponse(err))
}

func TestSuggestSingleFlightPerDraft(t *testing.T) {
	block := make(chan struct{})
	fake := &fakeCompleter{raw: resultJSON(t, 1, "ok"), block: block}
	svc := NewService(fake)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Suggest(context.Background(), "draft-1", Request{ClientID: 1})
		done <- err
	}()

	// Wait until the first call is inside the completer.
	require.Eventually(t, func() bool { return fake.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	_, err := svc.Suggest(context.Background(), "draft-1", Request{ClientID: 1})
	assert.ErrorIs(t, err, apperrors.ErrAutofillInFlight)

	// A different draft key on the same service is not blocked.
	done2 := make(chan error, 1)
	go func() {
		_, err := svc.Suggest(context.Background(), "draft-2", Request{ClientID: 1})
		done2 <- err
	}()
	require.Eventually(t, func() bool { return fake.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	close(block)
	require.NoError(t, <-done)
	require.NoError(t, <-done2)

	// Once settled, the same draft may be retried.
	fake.block = nil
	_, err = svc.Suggest(context.Background(), "draft-1", Request{ClientID: 1})
	assert.NoError(t, err)
}

func TestSuggestDiscardsLateResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(&fakeCompleter{raw: resultJSON(t, 1, "ok")})
	_, err := svc.Suggest(ctx, "d", Request{ClientID: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildPromptRendersItems(t *testing.T) {
	p := BuildPrompt(Request{
		ClientID: 12,
		Currency: "GBP",
		UserID:   3,
		Items: []ledger.Item{
			{Description: "Hosting", Quantity: 1, UnitPrice: 25.5},
			{Description: "Support", Quantity: 4, UnitPrice: 80},
		},
	})
	assert.Contains(t, p, "Client ID: 12")
	assert.Contains(t, p, "Hosting (Quantity: 1, Unit Price: 25.5)")
	assert.Contains(t, p, "Support (Quantity: 4, Unit Price: 80)")
	assert.Contains(t, p, "Currency: GBP")
	assert.Contains(t, p, "Do not suggest more than 5 items.")
	assert.Contains(t, p, "Limit the note to 50 words.")
}
