package models

import "time"

// CardRecord is one configured card: a stable id and its current config.
type CardRecord struct {
	ID        string     `json:"id"`
	Config    CardConfig `json:"config"`
	UpdatedAt time.Time  `json:"updated_at"`
}
