// Package hass connects to the Home Assistant websocket API: it feeds entity
// snapshots to watchers and issues service calls.
package hass

import (
	"context"
	"sync"

	"heating_card/internal/models"
)

// Feed delivers snapshots of one entity to a watcher.
type Feed interface {
	// Watch subscribes to an entity. The current state, when known, is
	// delivered immediately.
	Watch(entityID string) *Watch
}

// Caller issues Home Assistant service calls.
type Caller interface {
	// CallService resolves when Home Assistant reports success and returns
	// an error otherwise.
	CallService(ctx context.Context, domain, service string, data map[string]any) error
}

// Delivery is one value of the state feed. Found is false when the entity
// does not exist.
type Delivery struct {
	Snapshot models.EntitySnapshot
	Found    bool
}

// Watch is a subscription to one entity. Only the latest undelivered value
// is kept; older ones are superseded.
type Watch struct {
	entityID string
	ch       chan Delivery
	hub      *hub
}

func (w *Watch) EntityID() string { return w.entityID }

// C returns the delivery channel. It is never closed.
func (w *Watch) C() <-chan Delivery { return w.ch }

// Close unsubscribes. It is safe to call more than once.
func (w *Watch) Close() { w.hub.remove(w) }

// push must be called with the hub lock held; the hub is the only sender.
func (w *Watch) push(d Delivery) {
	select {
	case w.ch <- d:
		return
	default:
	}
	select {
	case <-w.ch:
	default:
	}
	w.ch <- d
}

// hub caches entity states and fans them out to watchers.
type hub struct {
	mu       sync.Mutex
	loaded   bool
	states   map[string]models.EntitySnapshot
	watchers map[string]map[*Watch]struct{}
}

func newHub() *hub {
	return &hub{
		states:   make(map[string]models.EntitySnapshot),
		watchers: make(map[string]map[*Watch]struct{}),
	}
}

func (h *hub) watch(entityID string) *Watch {
	w := &Watch{entityID: entityID, ch: make(chan Delivery, 1), hub: h}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[entityID] == nil {
		h.watchers[entityID] = make(map[*Watch]struct{})
	}
	h.watchers[entityID][w] = struct{}{}
	if h.loaded {
		snap, ok := h.states[entityID]
		w.push(Delivery{Snapshot: snap, Found: ok})
	}
	return w
}

func (h *hub) remove(w *Watch) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.watchers[w.entityID]
	delete(set, w)
	if len(set) == 0 {
		delete(h.watchers, w.entityID)
	}
}

// set records one entity; found=false removes it.
func (h *hub) set(entityID string, snap models.EntitySnapshot, found bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if found {
		h.states[entityID] = snap
	} else {
		delete(h.states, entityID)
	}
	for w := range h.watchers[entityID] {
		w.push(Delivery{Snapshot: snap, Found: found})
	}
}

// replace swaps the whole cache and tells every watcher the new value.
func (h *hub) replace(snaps []models.EntitySnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = true
	h.states = make(map[string]models.EntitySnapshot, len(snaps))
	for _, s := range snaps {
		h.states[s.EntityID] = s
	}
	for id, set := range h.watchers {
		snap, ok := h.states[id]
		for w := range set {
			w.push(Delivery{Snapshot: snap, Found: ok})
		}
	}
}

func (h *hub) watcherCount(entityID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[entityID])
}
