package card

import (
	"time"

	"heating_card/internal/models"
)

// Preset modes understood by the heating manager.
const (
	PresetBoost    = "boost"
	PresetSchedule = "schedule"
)

const (
	boostDeltaC        = 2.0
	fallbackBoostTempC = 22.0
)

// BoostRequest is what the runtime must send after an optimistic activation.
type BoostRequest struct {
	EntityID    string
	Temperature float64
}

// BoostActive reports what the boost control shows: the authoritative state
// unless a deactivation is pending or the countdown has expired, or a pending
// activation.
func (c *Card) BoostActive() bool {
	confirmed := c.last != nil && c.last.boostEnabled && !c.deactivationPending && !c.expired
	return confirmed || c.optimisticActive
}

// ActivateBoost applies the optimistic activation and returns the request to
// issue. The boost target is the current target plus 2°C, or 22°C.
func (c *Card) ActivateBoost(now time.Time) BoostRequest {
	c.optimisticActive = true
	c.deactivationPending = false
	c.expired = false
	c.expiry = models.Some(now.Add(DefaultBoostDuration))
	c.sched.Start()

	temp := fallbackBoostTempC
	if t, ok := c.snapshot.TargetTemp.Get(); ok && !c.missing {
		temp = t + boostDeltaC
	}
	return BoostRequest{EntityID: c.config.Entity, Temperature: temp}
}

// BoostFailed rolls back every optimistic mutation of ActivateBoost.
func (c *Card) BoostFailed() {
	c.optimisticActive = false
	c.expiry = models.None[time.Time]()
	c.sched.Stop()
}

// DeactivateBoost clears the boost locally. A failing deactivation command
// is not rolled back.
func (c *Card) DeactivateBoost() {
	c.optimisticActive = false
	c.deactivationPending = c.last != nil && c.last.boostEnabled
	c.expiry = models.None[time.Time]()
	c.sched.Stop()
}

// DeactivateResolved ends a pending deactivation once its command has
// resolved. If the last snapshot still reports boost on, the expiry is
// anchored again and the countdown restarts. It reports whether the boost
// control changed.
func (c *Card) DeactivateResolved(now time.Time) bool {
	if !c.deactivationPending {
		return false
	}
	c.deactivationPending = false
	if c.missing || c.last == nil || !c.last.boostEnabled || c.expired {
		return false
	}
	c.anchorExpiry(now, c.snapshot)
	return true
}

// Intent is the command a boost control press resolves to.
type Intent int

const (
	IntentActivate Intent = iota
	IntentDeactivate
)

// Toggle decides from the displayed state whether a press activates or
// deactivates.
func (c *Card) Toggle() Intent {
	if c.BoostActive() {
		return IntentDeactivate
	}
	return IntentActivate
}
