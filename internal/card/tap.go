package card

import "heating_card/internal/models"

// Tap returns the signals raised by a tap on the card. Taps on the boost
// control and the "none" action raise nothing.
func (c *Card) Tap(onBoostControl bool) []models.Signal {
	action := c.config.TapAction.Action
	if onBoostControl || action == models.ActionNone {
		return nil
	}
	if action == "" {
		action = models.ActionMoreInfo
	}
	out := []models.Signal{{
		Type: models.SignalAction,
		Data: models.ActionDetail{Config: c.config, Action: action, Entity: c.config.Entity},
	}}
	if action == models.ActionMoreInfo {
		out = append(out, models.Signal{
			Type: models.SignalMoreInfo,
			Data: models.MoreInfoDetail{EntityID: c.config.Entity},
		})
	}
	return out
}
