package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"heating_card/internal/models"
)

type CardMemory struct {
	mu    sync.RWMutex
	cards map[string]models.CardRecord
}

// Ensure implementation of CardRepo interface at compile time.
var _ CardRepo = (*CardMemory)(nil)

// NewCardMemory validates and stores the initial cards. Ids must be unique
// and every config must name an entity.
func NewCardMemory(initial []models.CardRecord) (*CardMemory, error) {
	m := &CardMemory{cards: make(map[string]models.CardRecord, len(initial))}
	for _, rec := range initial {
		rec.ID = strings.TrimSpace(rec.ID)
		if rec.ID == "" {
			return nil, fmt.Errorf("card for %q has no id", rec.Config.Entity)
		}
		if _, dup := m.cards[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", rec.ID)
		}
		cfg, err := rec.Config.Normalize()
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", rec.ID, err)
		}
		rec.Config = cfg
		m.cards[rec.ID] = rec
	}
	return m, nil
}

// List returns all cards ordered by id.
func (m *CardMemory) List() []models.CardRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CardRecord, 0, len(m.cards))
	for _, rec := range m.cards {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *CardMemory) Get(id string) (models.CardRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.cards[id]
	if !ok {
		return models.CardRecord{}, fmt.Errorf("get card %q: %w", id, ErrCardNotFound)
	}
	return rec, nil
}

// Save replaces an existing card. Unknown ids are rejected.
func (m *CardMemory) Save(rec models.CardRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[rec.ID]; !ok {
		return fmt.Errorf("save card %q: %w", rec.ID, ErrCardNotFound)
	}
	m.cards[rec.ID] = rec
	return nil
}
