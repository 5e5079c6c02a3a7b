package hass

import (
	"encoding/json"
	"time"

	"heating_card/internal/models"
)

// SnapshotFromState converts a Home Assistant climate state into a snapshot.
// Missing, null or malformed attributes decode as absent; decoding never fails.
func SnapshotFromState(st rawState) models.EntitySnapshot {
	a := st.Attributes
	snap := models.EntitySnapshot{
		EntityID:     st.EntityID,
		FriendlyName: optString(a["friendly_name"]).OrElse(""),
		CurrentTemp:  optFloat(a["current_temperature"]),
		TargetTemp:   optFloat(a["temperature"]),
		HVACAction:   models.ParseHVACAction(optString(a["hvac_action"]).OrElse("")),
		Boost:        decodeBoost(a["boost"]),
		Trend:        models.TrendUnknown,
	}

	analytics := optObject(a["heating_analytics"])
	if analytics != nil {
		snap.Trend = models.ParseTrend(optString(analytics["temperature_trend"]).OrElse(""))
		if eta := optObject(analytics["estimated_time_to_target"]); eta != nil {
			if mins, ok := optFloat(eta["minutes"]).Get(); ok {
				snap.ETA = models.Some(models.ETA{
					Minutes:           mins,
					ConfidencePercent: optFloat(eta["confidence_percent"]),
				})
			}
		}
	}
	return snap
}

func decodeBoost(raw json.RawMessage) models.Opt[models.Boost] {
	obj := optObject(raw)
	if obj == nil {
		return models.None[models.Boost]()
	}
	b := models.Boost{
		Temperature:          optFloat(obj["temperature"]),
		TimeRemainingMinutes: optFloat(obj["time_remaining_minutes"]),
	}
	if s, ok := optString(obj["end_time"]).Get(); ok {
		if t, ok := parseEndTime(s); ok {
			b.EndTime = models.Some(t)
		}
	}
	var active bool
	if len(obj["active"]) > 0 && json.Unmarshal(obj["active"], &active) == nil {
		b.Active = active
	}
	return models.Some(b)
}

// naiveTimeLayout is an ISO timestamp without an offset, read as local time.
const naiveTimeLayout = "2006-01-02T15:04:05.999999999"

func parseEndTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(naiveTimeLayout, s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func optFloat(raw json.RawMessage) models.Opt[float64] {
	var v *float64
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil || v == nil {
		return models.None[float64]()
	}
	return models.Some(*v)
}

func optString(raw json.RawMessage) models.Opt[string] {
	var v *string
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil || v == nil {
		return models.None[string]()
	}
	return models.Some(*v)
}

func optObject(raw json.RawMessage) map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &obj) != nil {
		return nil
	}
	return obj
}
