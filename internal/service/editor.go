package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"heating_card/internal/models"
	"heating_card/internal/repository"
	"heating_card/internal/signals"
)

var (
	ErrInvalidTapAction = errors.New("invalid tap action: action must not be empty")
	// ErrSignalNotDelivered is returned alongside a stored record when the
	// config-changed signal could not be emitted.
	ErrSignalNotDelivered = errors.New("config-changed signal not delivered")
)

type EditorService struct {
	repo repository.CardRepo
	sink signals.Sink
	now  func() time.Time
}

func NewEditorService(repo repository.CardRepo, sink signals.Sink) *EditorService {
	return &EditorService{repo: repo, sink: sink, now: time.Now}
}

// UpdateConfig applies the patch, stores the result and emits config-changed
// with the full updated config. Widgets already mounted keep the config they
// were bound with.
func (s *EditorService) UpdateConfig(ctx context.Context, id string, p ConfigPatch) (models.CardRecord, error) {
	rec, err := s.repo.Get(id)
	if err != nil {
		return models.CardRecord{}, err
	}

	cfg := rec.Config
	if p.Entity != nil {
		cfg.Entity = *p.Entity
	}
	if p.Name != nil {
		cfg.Name = strings.TrimSpace(*p.Name)
	}
	if p.TapAction != nil {
		action := strings.TrimSpace(*p.TapAction)
		if action == "" {
			return models.CardRecord{}, ErrInvalidTapAction
		}
		cfg.TapAction.Action = action
	}
	cfg, err = cfg.Normalize()
	if err != nil {
		return models.CardRecord{}, err
	}

	now := s.now()
	rec.Config = cfg
	rec.UpdatedAt = now.UTC()
	if err := s.repo.Save(rec); err != nil {
		return models.CardRecord{}, err
	}

	sig := signals.Stamp(models.Signal{
		Type: models.SignalConfigChanged,
		Card: rec.ID,
		Data: models.ConfigChangedDetail{Config: cfg},
	}, now)
	if err := s.sink.Emit(ctx, sig); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrSignalNotDelivered, err)
	}
	return rec, nil
}
