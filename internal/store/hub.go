package store

import (
	"context"
	"sync"
)

type subKey struct {
	col   Collection
	owner uint
}

// hub fans out change signals to per-owner collection watchers. Sends never
// block: a watcher that has a signal pending does not need another one, it
// will re-read the collection anyway.
type hub struct {
	mu   sync.Mutex
	subs map[subKey]map[chan struct{}]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[subKey]map[chan struct{}]struct{})}
}

func (h *hub) subscribe(ctx context.Context, col Collection, owner uint) <-chan struct{} {
	ch := make(chan struct{}, 1)
	key := subKey{col: col, owner: owner}

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan struct{}]struct{})
	}
	h.subs[key][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[key], ch)
		if len(h.subs[key]) == 0 {
			delete(h.subs, key)
		}
		h.mu.Unlock()
		close(ch)
	}()
	return ch
}

func (h *hub) notify(col Collection, owner uint) {
	key := subKey{col: col, owner: owner}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[key] {
		select {
		case ch <- struct{}{}:
		default: // signal already pending
		}
	}
}
