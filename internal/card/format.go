package card

import (
	"fmt"
	"math"

	"heating_card/internal/models"
)

// FormatCountdown renders whole seconds as H:MM:SS from one hour up, MM:SS
// below.
func FormatCountdown(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	if totalSeconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatETA renders the estimated minutes to target.
func FormatETA(minutes float64) string {
	if minutes < 1 {
		return "Less than 1 min"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", int(math.Round(minutes)))
	}
	hours := int(minutes / 60)
	mins := int(math.Round(math.Mod(minutes, 60)))
	if mins == 60 {
		hours++
		mins = 0
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

// TrendIcon returns the glyph shown next to the trend.
func TrendIcon(t models.Trend) string {
	switch t {
	case models.TrendRising:
		return "↗"
	case models.TrendFalling:
		return "↘"
	case models.TrendStable:
		return "→"
	default:
		return "—"
	}
}

func TrendText(t models.Trend) string {
	switch t {
	case models.TrendRising:
		return "Rising"
	case models.TrendFalling:
		return "Falling"
	case models.TrendStable:
		return "Stable"
	default:
		return "Unknown"
	}
}

// formatTemp renders one decimal, or the placeholder when unknown.
func formatTemp(t models.Opt[float64]) string {
	v, ok := t.Get()
	if !ok {
		return "--"
	}
	return fmt.Sprintf("%.1f", v)
}
