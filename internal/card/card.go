// Package card holds the state machine behind one mounted heating card:
// snapshot reconciliation, optimistic boost commands and the boost countdown.
//
// Everything here runs on a single execution context and never blocks.
// Time is always passed in by the caller.
package card

import (
	"time"

	"heating_card/internal/models"
)

// DefaultBoostDuration is used for optimistic activation and for snapshots
// that carry neither end_time nor time_remaining_minutes.
const DefaultBoostDuration = 30 * time.Minute

// observed is the tuple the render gate compares.
type observed struct {
	currentTemp  models.Opt[float64]
	targetTemp   models.Opt[float64]
	boostEnabled bool
	hvacAction   models.HVACAction
}

// Card is the widget state of one mounted card instance.
type Card struct {
	config models.CardConfig
	kind   models.EntityKind
	sched  Scheduler

	snapshot models.EntitySnapshot
	missing  bool
	last     *observed

	expiry              models.Opt[time.Time]
	optimisticActive    bool
	deactivationPending bool
	// expired holds the control idle after the countdown ran out, until the
	// boost turns on again or is reactivated.
	expired bool

	renders int
}

// New binds a card to its (already normalized) configuration. The entity
// kind is resolved here and never re-evaluated.
func New(cfg models.CardConfig, sched Scheduler) *Card {
	return &Card{
		config: cfg,
		kind:   models.KindOf(cfg.Entity),
		sched:  sched,
	}
}

func (c *Card) Config() models.CardConfig { return c.config }

func (c *Card) Kind() models.EntityKind { return c.kind }

// Renders counts full renders since mount.
func (c *Card) Renders() int { return c.renders }

// OptimisticActive reports whether a boost activation awaits confirmation.
func (c *Card) OptimisticActive() bool { return c.optimisticActive }

// Expiry returns the tracked boost expiry, if any.
func (c *Card) Expiry() (time.Time, bool) { return c.expiry.Get() }

// OnSnapshot reconciles a delivery from the state feed. found is false when
// the bound entity does not exist. It reports whether a full render happened.
func (c *Card) OnSnapshot(now time.Time, snap models.EntitySnapshot, found bool) bool {
	if !found {
		if c.missing {
			return false
		}
		c.missing = true
		c.last = nil
		c.renders++
		return true
	}
	c.missing = false
	c.snapshot = snap

	enabled := c.boostEnabled(snap)
	wasEnabled := c.last != nil && c.last.boostEnabled

	switch {
	case enabled && c.deactivationPending:
		// still on until the deactivation lands
	case enabled:
		if !wasEnabled {
			c.expired = false
		}
		if !c.expired && (!wasEnabled || !c.expiry.IsSet()) {
			c.anchorExpiry(now, snap)
		}
		c.optimisticActive = false
	case wasEnabled:
		c.expiry = models.None[time.Time]()
		c.sched.Stop()
	}
	if !enabled {
		c.deactivationPending = false
		c.expired = false
	}

	cur := observed{
		currentTemp:  snap.CurrentTemp,
		targetTemp:   snap.TargetTemp,
		boostEnabled: enabled,
		hvacAction:   snap.HVACAction,
	}
	if c.last != nil && *c.last == cur {
		return false
	}
	c.last = &cur
	c.renders++
	return true
}

func (c *Card) boostEnabled(snap models.EntitySnapshot) bool {
	b, ok := snap.Boost.Get()
	if !ok {
		return false
	}
	if c.kind == models.KindZone {
		return b.Active
	}
	return b.Temperature.IsSet()
}

// anchorExpiry derives the expiry from end_time, then time_remaining_minutes,
// then the default duration. An expiry already in the past is tracked but
// does not start the countdown.
func (c *Card) anchorExpiry(now time.Time, snap models.EntitySnapshot) {
	b, _ := snap.Boost.Get()
	exp, ok := b.EndTime.Get()
	if !ok {
		mins := b.TimeRemainingMinutes.OrElse(DefaultBoostDuration.Minutes())
		exp = now.Add(time.Duration(mins * float64(time.Minute)))
	}
	c.expiry = models.Some(exp)
	if exp.After(now) {
		c.sched.Start()
	}
}

// Remaining returns whole seconds left on the boost, or 0 without one.
func (c *Card) Remaining(now time.Time) int {
	exp, ok := c.expiry.Get()
	if !ok {
		return 0
	}
	left := exp.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

// TickResult is the outcome of one countdown tick.
type TickResult struct {
	Remaining int
	Countdown string
	Expired   bool
}

// Tick recomputes the countdown. When the boost has run out the scheduler is
// stopped, the expiry cleared and the control returns to idle; no command is
// issued.
func (c *Card) Tick(now time.Time) TickResult {
	rem := c.Remaining(now)
	if rem <= 0 {
		c.expired = c.expired || c.expiry.IsSet()
		c.expiry = models.None[time.Time]()
		c.optimisticActive = false
		c.sched.Stop()
		return TickResult{Expired: true}
	}
	return TickResult{Remaining: rem, Countdown: FormatCountdown(rem)}
}

// Unmount releases the countdown unconditionally.
func (c *Card) Unmount() {
	c.sched.Stop()
}
