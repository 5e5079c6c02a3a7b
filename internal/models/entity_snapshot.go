package models

import "time"

// HVACAction is what the climate entity is currently doing.
type HVACAction string

const (
	HVACHeating HVACAction = "heating"
	HVACIdle    HVACAction = "idle"
)

// ParseHVACAction maps anything other than "heating" to idle.
func ParseHVACAction(s string) HVACAction {
	if s == string(HVACHeating) {
		return HVACHeating
	}
	return HVACIdle
}

// Trend is the pre-computed temperature trend supplied by the heating manager.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
	TrendUnknown Trend = "unknown"
)

// ParseTrend maps unrecognised values to TrendUnknown.
func ParseTrend(s string) Trend {
	switch Trend(s) {
	case TrendRising, TrendFalling, TrendStable:
		return Trend(s)
	default:
		return TrendUnknown
	}
}

// Boost describes a temporary override of the heating schedule.
type Boost struct {
	Temperature          Opt[float64]   `json:"temperature"`            // °C; rooms signal boost through this
	EndTime              Opt[time.Time] `json:"end_time"`               // absolute expiry
	TimeRemainingMinutes Opt[float64]   `json:"time_remaining_minutes"` // fallback when end_time is absent
	Active               bool           `json:"active"`                 // zones only
}

// ETA is the heating manager's estimate of the time needed to reach target.
type ETA struct {
	Minutes           float64      `json:"minutes"`
	ConfidencePercent Opt[float64] `json:"confidence_percent"`
}

// EntitySnapshot is one delivered description of a climate entity's state.
type EntitySnapshot struct {
	EntityID     string       `json:"entity_id"`
	FriendlyName string       `json:"friendly_name,omitempty"`
	CurrentTemp  Opt[float64] `json:"current_temperature"` // °C
	TargetTemp   Opt[float64] `json:"temperature"`         // °C
	HVACAction   HVACAction   `json:"hvac_action"`         // heating | idle
	Boost        Opt[Boost]   `json:"boost"`
	Trend        Trend        `json:"trend"`
	ETA          Opt[ETA]     `json:"eta"`
}
