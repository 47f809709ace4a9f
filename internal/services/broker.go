package services

import "sync"

// StatusBroker fans session status events out to subscribers. Sends never
// block; a subscriber that falls behind misses events.
type StatusBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan StatusEvent]struct{} // session id -> set of channels
}

func NewStatusBroker() *StatusBroker {
	return &StatusBroker{subs: map[string]map[chan StatusEvent]struct{}{}}
}

func (b *StatusBroker) Subscribe(sessionID string) chan StatusEvent {
	ch := make(chan StatusEvent, 8)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = map[chan StatusEvent]struct{}{}
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *StatusBroker) Unsubscribe(sessionID string, ch chan StatusEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := b.subs[sessionID]
	if _, ok := m[ch]; !ok {
		return
	}
	delete(m, ch)
	if len(m) == 0 {
		delete(b.subs, sessionID)
	}
	close(ch)
}

func (b *StatusBroker) Publish(sessionID string, evt StatusEvent) {
	b.mu.Lock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}

// Subscribers returns the number of live subscriptions for a session.
func (b *StatusBroker) Subscribers(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[sessionID])
}
