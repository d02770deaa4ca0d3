package dashboard

import (
	"context"
	"sync"
)

// FilterEvent is published whenever a session's selection changes.
type FilterEvent struct {
	SessionID string      `json:"session_id"`
	Field     Field       `json:"field,omitempty"`
	Reset     bool        `json:"reset,omitempty"`
	Version   uint64      `json:"version"`
	State     FilterState `json:"state"`
}

// RefreshHook notifies transports about filter changes.
type RefreshHook interface {
	FilterChanged(ctx context.Context, event FilterEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) FilterChanged(context.Context, FilterEvent) error { return nil }

// BroadcastHook fans out filter events to in-process subscribers.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]subscription
	next int
}

type subscription struct {
	sessionID string
	ch        chan FilterEvent
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]subscription),
	}
}

// FilterChanged satisfies RefreshHook. Slow subscribers miss events rather than block.
func (h *BroadcastHook) FilterChanged(_ context.Context, event FilterEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.sessionID != "" && sub.sessionID != event.SessionID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns events for sessionID ("" for every session) and a cancel func.
func (h *BroadcastHook) Subscribe(sessionID string) (<-chan FilterEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan FilterEvent, 8)
	h.subs[id] = subscription{sessionID: sessionID, ch: ch}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}
