package server

import (
	"sync"

	"github.com/mkoda/bifrost/internal/types"
)

// stateHub holds the latest game snapshot and fans updates out to SSE
// subscribers. A slow subscriber drops updates rather than blocking the
// ingest path.
type stateHub struct {
	mu          sync.RWMutex
	current     *types.Snapshot
	subscribers map[chan *types.Snapshot]struct{}
}

func newStateHub() *stateHub {
	return &stateHub{subscribers: make(map[chan *types.Snapshot]struct{})}
}

// Set replaces the current snapshot and notifies subscribers. A nil snapshot
// clears state (career reset).
func (h *stateHub) Set(snap *types.Snapshot) {
	h.mu.Lock()
	h.current = snap
	for ch := range h.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
	h.mu.Unlock()
}

// Current returns the latest snapshot, or nil when none has been ingested.
func (h *stateHub) Current() *types.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers a channel receiving snapshot updates. The returned
// function unsubscribes and closes the channel.
func (h *stateHub) Subscribe() (<-chan *types.Snapshot, func()) {
	ch := make(chan *types.Snapshot, 8)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, unsubscribe
}
