// Package signals delivers outbound UI signals (hass-action, hass-more-info,
// config-changed) to the host dashboard.
package signals

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"heating_card/internal/models"

	"github.com/google/uuid"
)

// Sink receives signals. Delivery is best effort: errors are reported to the
// caller for logging and never retried.
type Sink interface {
	Emit(ctx context.Context, s models.Signal) error
}

// Stamp fills in the id and timestamp of a signal if they are missing.
func Stamp(s models.Signal, now time.Time) models.Signal {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.OccurredAt.IsZero() {
		s.OccurredAt = now.UTC()
	}
	return s
}

// FormatPayload creates the JSON payload for a signal.
func FormatPayload(s models.Signal) ([]byte, error) {
	return json.Marshal(s)
}

// Multi fans a signal out to several sinks.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, s models.Signal) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Emit(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every signal.
type Discard struct{}

func (Discard) Emit(context.Context, models.Signal) error { return nil }
