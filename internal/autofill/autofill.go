// Package autofill bridges the generative-text service into invoice drafts.
// The service output is untrusted: it is schema-validated against the line
// item and note contract before it may touch a draft.
package autofill

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/invoiceo/invoiceo/internal/apperrors"
	"github.com/invoiceo/invoiceo/internal/ledger"
	"github.com/invoiceo/invoiceo/internal/models"
)

const (
	// MaxItems caps how many suggestions a response may carry.
	MaxItems = 5
	// MaxNoteWords caps the suggested note length.
	MaxNoteWords = 50
)

// Request describes one autofill call. Items are the draft's current lines,
// passed for context only.
type Request struct {
	ClientID uint          `json:"clientId"`
	Currency string        `json:"currency"`
	UserID   uint          `json:"userId"`
	Items    []ledger.Item `json:"lineItems,omitempty"`
}

// Result is the validated service output. It is transient: never persisted,
// only merged into a draft via Apply.
type Result struct {
	SuggestedItems []ledger.Item `json:"suggestedItems"`
	SuggestedNote  string        `json:"suggestedNote"`
}

// Completer produces a raw completion for a prompt. Implemented by the HTTP
// client in this package and by fakes in tests.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service orchestrates autofill calls. At most one call may be in flight per
// draft: a second request for the same draft key is rejected so a slow
// response can never race a user's newer edits.
type Service struct {
	ai Completer

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(ai Completer) *Service {
	return &Service{ai: ai, inflight: make(map[string]struct{})}
}

// Suggest validates the request, calls the service, and returns a validated
// result. On any failure the caller's draft is untouched and no retry is
// attempted; a fresh user-triggered call is required.
func (s *Service) Suggest(ctx context.Context, draftKey string, req Request) (*Result, error) {
	if req.ClientID == 0 {
		return nil, apperrors.Validation("client_required", "client required")
	}

	s.mu.Lock()
	if _, busy := s.inflight[draftKey]; busy {
		s.mu.Unlock()
		return nil, apperrors.ErrAutofillInFlight
	}
	s.inflight[draftKey] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inflight, draftKey)
		s.mu.Unlock()
	}()

	raw, err := s.ai.Complete(ctx, BuildPrompt(req))
	if err != nil {
		return nil, apperrors.AIResponse("completion call failed", err)
	}
	if ctx.Err() != nil {
		// The consumer is gone; discard the late result instead of letting
		// it reach a torn-down draft.
		return nil, ctx.Err()
	}

	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, apperrors.AIResponse("malformed response body", err)
	}
	if err := validate(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Apply is the validated transition from a draft and a schema-valid result to
// the next draft: wholesale replacement of the line items and note. It is
// pure and total given a valid result.
func Apply(d models.Draft, res Result) models.Draft {
	d.LineItems = append([]ledger.Item(nil), res.SuggestedItems...)
	d.Note = res.SuggestedNote
	return d
}

func validate(res *Result) error {
	if len(res.SuggestedItems) == 0 {
		return apperrors.AIResponse("no suggested items", nil)
	}
	if len(res.SuggestedItems) > MaxItems {
		return apperrors.AIResponse("too many suggested items", nil)
	}
	for _, it := range res.SuggestedItems {
		if strings.TrimSpace(it.Description) == "" {
			return apperrors.AIResponse("suggested item without description", nil)
		}
		if it.Quantity <= 0 {
			return apperrors.AIResponse("suggested item with non-positive quantity", nil)
		}
		if it.UnitPrice < 0 {
			return apperrors.AIResponse("suggested item with negative unit price", nil)
		}
	}
	if len(strings.Fields(res.SuggestedNote)) > MaxNoteWords {
		return apperrors.AIResponse("suggested note exceeds word limit", nil)
	}
	return nil
}
