package models

import (
	"errors"
	"strings"
)

// Tap action kinds understood by the host dashboard.
const (
	ActionMoreInfo = "more-info"
	ActionNone     = "none"
)

var ErrMissingEntity = errors.New("please define an entity")

type TapAction struct {
	Action string `json:"action" mapstructure:"action"`
}

// CardConfig is the configuration of one card, as held by the dashboard.
type CardConfig struct {
	Entity    string    `json:"entity" mapstructure:"entity"`
	Name      string    `json:"name,omitempty" mapstructure:"name"` // overrides friendly_name
	TapAction TapAction `json:"tap_action" mapstructure:"tap_action"`
}

// Normalize validates the config and fills in defaults.
func (c CardConfig) Normalize() (CardConfig, error) {
	c.Entity = strings.TrimSpace(c.Entity)
	if c.Entity == "" {
		return CardConfig{}, ErrMissingEntity
	}
	if c.TapAction.Action == "" {
		c.TapAction.Action = ActionMoreInfo
	}
	return c, nil
}
