package service

import (
	"context"
	"time"

	"heating_card/internal/card"
	"heating_card/internal/hass"
	"heating_card/internal/logger"
	"heating_card/internal/models"
	"heating_card/internal/repository"
	"heating_card/internal/signals"
	"heating_card/internal/widget"
)

type Authorization interface {
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (string, error)
}

// Cards exposes the configured cards and mounts live widgets for them.
type Cards interface {
	List(ctx context.Context) []models.CardRecord
	Get(ctx context.Context, id string) (models.CardRecord, error)
	// Mount starts a widget bound to the card's current config. The widget
	// is unmounted when ctx is canceled.
	Mount(ctx context.Context, id string) (*widget.Widget, error)
}

// Editor changes card configuration and announces the change.
type Editor interface {
	UpdateConfig(ctx context.Context, id string, p ConfigPatch) (models.CardRecord, error)
}

// Catalog lists the card types offered to the dashboard.
type Catalog interface {
	Entries() []card.CatalogEntry
}

// Service aggregates all sub-services.
type Service struct {
	Cards
	Editor
	Catalog
	Authorization
}

// Deps are the collaborators shared by the card services.
type Deps struct {
	Feed           hass.Feed
	Caller         hass.Caller
	Sink           signals.Sink
	Catalog        *card.Catalog
	Log            *logger.Logger
	CommandTimeout time.Duration
	SigningKey     string
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	if deps.Sink == nil {
		deps.Sink = signals.Discard{}
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Catalog == nil {
		deps.Catalog = &card.Catalog{}
	}
	return &Service{
		Cards:         NewCardService(repos.Cards, deps),
		Editor:        NewEditorService(repos.Cards, deps.Sink),
		Catalog:       deps.Catalog,
		Authorization: NewAuthService(repos.Auth, deps.SigningKey),
	}
}
