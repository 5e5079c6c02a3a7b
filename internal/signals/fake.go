package signals

import (
	"context"
	"sync"

	"heating_card/internal/models"
)

// FakeSink records emitted signals for test assertions.
type FakeSink struct {
	mu sync.Mutex
	// Signals contains every signal that was emitted.
	Signals []models.Signal
	// EmitError, if set, is returned by Emit after recording.
	EmitError error
}

func (f *FakeSink) Emit(_ context.Context, s models.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Signals = append(f.Signals, s)
	return f.EmitError
}

// Types returns the recorded signal types in order.
func (f *FakeSink) Types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Signals))
	for _, s := range f.Signals {
		out = append(out, s.Type)
	}
	return out
}
