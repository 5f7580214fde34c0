// Package broadcast is the change-notification fan-out between chain
// adapters and query-surface sessions. Delivery is a hint, never a source
// of truth: a consumer that falls behind its buffer silently loses
// notifications and is flagged to re-query full state instead.
package broadcast

import (
	"sync"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
)

// Update says which part of the index changed: the order book for a pair,
// one order, or both.
type Update struct {
	Book  *data.BookPrefix
	Order *data.OrderKey
}

type Notifier struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
}

// New creates a notifier whose subscribers each buffer up to buffer
// pending updates.
func New(buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 1
	}
	return &Notifier{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

func (n *Notifier) Subscribe() *Subscription {
	s := &Subscription{
		c: make(chan Update, n.buffer),
		n: n,
	}
	n.mu.Lock()
	n.subs[s] = struct{}{}
	n.mu.Unlock()
	return s
}

// Publish delivers u to every subscriber without blocking. A subscriber
// with a full buffer misses the update and is marked lagged.
func (n *Notifier) Publish(u Update) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for s := range n.subs {
		select {
		case s.c <- u:
		default:
			s.mu.Lock()
			s.lagged = true
			s.mu.Unlock()
		}
	}
}

type Subscription struct {
	c      chan Update
	n      *Notifier
	mu     sync.Mutex
	lagged bool
	closed bool
}

// Updates is the receive side of the subscription. It is closed by Close.
func (s *Subscription) Updates() <-chan Update {
	return s.c
}

// Lagged reports and clears the overflow flag. Once it returns true the
// consumer must re-fetch the state it cares about.
func (s *Subscription) Lagged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lagged := s.lagged
	s.lagged = false
	return lagged
}

func (s *Subscription) Close() {
	s.n.mu.Lock()
	delete(s.n.subs, s)
	s.n.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.c)
	}
}
