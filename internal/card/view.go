package card

import (
	"fmt"
	"time"

	"heating_card/internal/models"
)

const (
	stateHeating = "heating"
	stateIdle    = "idle"
	fallbackName = "Room"
)

// BoostView is the presentation of the boost control. Zones show a
// highlighted icon; rooms show the countdown on an active background.
type BoostView struct {
	Active           bool   `json:"active"`
	Pending          bool   `json:"pending"`
	ActiveBackground bool   `json:"active_background"`
	IconHighlighted  bool   `json:"icon_highlighted"`
	Countdown        string `json:"countdown,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`
}

type TrendView struct {
	Trend models.Trend `json:"trend"`
	Icon  string       `json:"icon"`
	Text  string       `json:"text"`
}

// View is everything the card paints. It is a pure function of the card
// state, the last snapshot and the current time.
type View struct {
	EntityID    string            `json:"entity_id"`
	Kind        models.EntityKind `json:"kind"`
	NotFound    bool              `json:"not_found"`
	Name        string            `json:"name"`
	CurrentTemp string            `json:"current_temp"`
	TargetTemp  string            `json:"target_temp"`
	StateClass  string            `json:"state_class"`
	Boost       BoostView         `json:"boost"`
	Trend       TrendView         `json:"trend"`
	ETA         string            `json:"eta,omitempty"`
	Confidence  string            `json:"confidence,omitempty"`
}

// View renders the card at now.
func (c *Card) View(now time.Time) View {
	v := View{EntityID: c.config.Entity, Kind: c.kind}
	if c.missing || c.last == nil {
		v.NotFound = c.missing
		v.Name = c.name()
		v.CurrentTemp, v.TargetTemp = "--", "--"
		v.StateClass = stateIdle
		v.Trend = trendView(models.TrendUnknown)
		return v
	}

	snap := c.snapshot
	v.Name = c.name()
	v.CurrentTemp = formatTemp(snap.CurrentTemp)
	v.TargetTemp = formatTemp(snap.TargetTemp)
	v.StateClass = stateIdle
	if snap.HVACAction == models.HVACHeating {
		v.StateClass = stateHeating
	}
	v.Trend = trendView(snap.Trend)
	if eta, ok := snap.ETA.Get(); ok {
		v.ETA = FormatETA(eta.Minutes)
		if conf, ok := eta.ConfidencePercent.Get(); ok {
			v.Confidence = fmt.Sprintf("%.0f%% confidence", conf)
		}
	}
	v.Boost = c.boostView(now)
	return v
}

func (c *Card) boostView(now time.Time) BoostView {
	active := c.BoostActive()
	b := BoostView{Active: active, Pending: c.optimisticActive}
	if c.kind == models.KindZone {
		b.IconHighlighted = active
		return b
	}
	b.ActiveBackground = active
	if rem := c.Remaining(now); active && rem > 0 {
		b.RemainingSeconds = rem
		b.Countdown = FormatCountdown(rem)
	}
	return b
}

func (c *Card) name() string {
	if c.config.Name != "" {
		return c.config.Name
	}
	if c.snapshot.FriendlyName != "" {
		return c.snapshot.FriendlyName
	}
	return fallbackName
}

func trendView(t models.Trend) TrendView {
	if t == "" {
		t = models.TrendUnknown
	}
	return TrendView{Trend: t, Icon: TrendIcon(t), Text: TrendText(t)}
}
