package storage

import (
	"sync"

	"github.com/mkinyua/landbook/internal/service"
)

// watchBuffer is the per-subscriber channel capacity. A subscriber that falls
// further behind misses intermediate events and should re-read the client.
const watchBuffer = 16

// clientWatcher fans client change events out to per-client subscribers.
// Events are only published after the underlying write has committed.
type clientWatcher struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan service.ClientEvent
	nextID int
	closed bool
}

func newClientWatcher() *clientWatcher {
	return &clientWatcher{subs: make(map[string]map[int]chan service.ClientEvent)}
}

func (w *clientWatcher) subscribe(clientID string) (<-chan service.ClientEvent, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan service.ClientEvent, watchBuffer)
	if w.closed {
		close(ch)
		return ch, func() {}
	}

	id := w.nextID
	w.nextID++
	if w.subs[clientID] == nil {
		w.subs[clientID] = make(map[int]chan service.ClientEvent)
	}
	w.subs[clientID][id] = ch

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if sub, ok := w.subs[clientID][id]; ok {
			delete(w.subs[clientID], id)
			if len(w.subs[clientID]) == 0 {
				delete(w.subs, clientID)
			}
			close(sub)
		}
	}

	return ch, cancel
}

func (w *clientWatcher) publish(event service.ClientEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, ch := range w.subs[event.Client.ID] {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; drop rather than block the writer.
		}
	}
}

func (w *clientWatcher) closeAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	for clientID, subs := range w.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(w.subs, clientID)
	}
}
