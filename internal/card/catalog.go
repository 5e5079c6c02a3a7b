package card

import (
	"sync"

	"heating_card/internal/models"
)

// CatalogEntry announces a card type to the host dashboard.
type CatalogEntry struct {
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Preview     bool              `json:"preview"`
	StubConfig  models.CardConfig `json:"stub_config"`
}

// RoomCardType is the heating room card's catalog entry.
var RoomCardType = CatalogEntry{
	Type:        "heating-room-card",
	Name:        "Heating Room Card",
	Description: "A custom card for displaying detailed heating information per room",
	Preview:     true,
	StubConfig: models.CardConfig{
		Entity:    "climate.living_room_hm",
		TapAction: models.TapAction{Action: models.ActionMoreInfo},
	},
}

// Catalog is the set of card types the service offers.
type Catalog struct {
	mu      sync.RWMutex
	entries []CatalogEntry
}

// Register adds an entry; registering the same type twice keeps the first.
func (c *Catalog) Register(e CatalogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, have := range c.entries {
		if have.Type == e.Type {
			return
		}
	}
	c.entries = append(c.entries, e)
}

func (c *Catalog) Entries() []CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}
