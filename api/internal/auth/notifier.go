// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_auth

import (
	"sync"

	"github.com/lullai/pkg/types"
)

// State is one auth transition: who is signed in (nil when nobody) and
// whether a login/logout is in flight.
type State struct {
	User      *types.Principal `json:"user"`
	IsLoading bool             `json:"isLoading"`
}

// Notifier broadcasts auth state transitions to subscribers. Publishing
// never blocks: login and logout are fire-and-forget triggers, so a slow
// subscriber just misses intermediate states.
type Notifier struct {
	mu   sync.Mutex
	subs map[uint64]chan State
	seq  uint64
	last State
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[uint64]chan State),
	}
}

// Subscribe attaches a listener. The current state is delivered first so
// late subscribers start consistent. The returned cancel is safe to call
// more than once.
func (n *Notifier) Subscribe() (<-chan State, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan State, 8)
	ch <- n.last

	n.seq++
	id := n.seq
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if _, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(ch)
			}
		})
	}
}

// Publish fans the transition out without blocking.
func (n *Notifier) Publish(state State) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.last = state
	for _, ch := range n.subs {
		select {
		case ch <- state:
		default:
		}
	}
}
