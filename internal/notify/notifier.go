// Package notify broadcasts the untyped data-changed signal. After any
// successful mutation through the orchestration layer every subscriber is
// poked once; there is no payload describing what changed, so listeners
// reload their whole working set.
package notify

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier fans one signal out to all subscribers. Delivery is best-effort:
// a subscriber that already has a signal pending is not queued a second one,
// since a single reload covers any number of coalesced changes.
type Notifier struct {
	mu     sync.Mutex
	subs   map[string]chan struct{}
	logger *zap.Logger
}

func New(logger *zap.Logger) *Notifier {
	return &Notifier{
		subs:   map[string]chan struct{}{},
		logger: logger,
	}
}

// Subscribe registers a listener and returns its id (for Unsubscribe) and
// the signal channel.
func (n *Notifier) Subscribe() (string, <-chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan struct{}, 1)
	n.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener.
func (n *Notifier) Unsubscribe(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

// DataChanged broadcasts the signal without blocking.
func (n *Notifier) DataChanged() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default: // a pending signal already covers this change
		}
	}
	n.logger.Debug("data changed", zap.Int("subscribers", len(n.subs)))
}
