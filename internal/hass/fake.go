package hass

import (
	"context"
	"sync"

	"heating_card/internal/models"
)

// ServiceCall is one recorded CallService invocation.
type ServiceCall struct {
	Domain  string
	Service string
	Data    map[string]any
}

// FakeClient is an in-memory Feed and Caller for tests.
type FakeClient struct {
	states *hub

	mu sync.Mutex
	// Calls records every service call in order.
	Calls []ServiceCall
	// Handle, if set, decides the outcome of each call. It may block.
	Handle func(ctx context.Context, call ServiceCall) error
}

var (
	_ Feed   = (*FakeClient)(nil)
	_ Caller = (*FakeClient)(nil)
)

// NewFakeClient creates a FakeClient whose state cache is already loaded
// with the given snapshots.
func NewFakeClient(snaps ...models.EntitySnapshot) *FakeClient {
	f := &FakeClient{states: newHub()}
	f.states.replace(snaps)
	return f
}

func (f *FakeClient) Watch(entityID string) *Watch {
	return f.states.watch(entityID)
}

// Push delivers a new snapshot to watchers of its entity.
func (f *FakeClient) Push(snap models.EntitySnapshot) {
	f.states.set(snap.EntityID, snap, true)
}

// Remove reports the entity as missing.
func (f *FakeClient) Remove(entityID string) {
	f.states.set(entityID, models.EntitySnapshot{EntityID: entityID}, false)
}

// Watchers returns the number of open watches on an entity.
func (f *FakeClient) Watchers(entityID string) int {
	return f.states.watcherCount(entityID)
}

func (f *FakeClient) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	call := ServiceCall{Domain: domain, Service: service, Data: data}
	f.mu.Lock()
	f.Calls = append(f.Calls, call)
	handle := f.Handle
	f.mu.Unlock()
	if handle != nil {
		return handle(ctx, call)
	}
	return nil
}

// CallsSnapshot returns a copy of the recorded calls.
func (f *FakeClient) CallsSnapshot() []ServiceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ServiceCall, len(f.Calls))
	copy(out, f.Calls)
	return out
}
