package models

import "time"

// Outbound UI signal types consumed by the host dashboard.
const (
	SignalAction        = "hass-action"
	SignalMoreInfo      = "hass-more-info"
	SignalConfigChanged = "config-changed"
)

// Signal is a fire-and-forget notification for the host dashboard.
type Signal struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Card       string    `json:"card,omitempty"`
	Instance   string    `json:"instance,omitempty"` // widget instance that raised it
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// ActionDetail is the payload of a hass-action signal.
type ActionDetail struct {
	Config CardConfig `json:"config"`
	Action string     `json:"action"`
	Entity string     `json:"entity"`
}

// MoreInfoDetail is the payload of a hass-more-info signal.
type MoreInfoDetail struct {
	EntityID string `json:"entityId"`
}

// ConfigChangedDetail is the payload of a config-changed signal.
type ConfigChangedDetail struct {
	Config CardConfig `json:"config"`
}
