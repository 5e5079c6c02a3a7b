package service

import (
	"context"

	"heating_card/internal/models"
	"heating_card/internal/repository"
	"heating_card/internal/widget"
)

type CardService struct {
	repo repository.CardRepo
	deps Deps
}

func NewCardService(repo repository.CardRepo, deps Deps) *CardService {
	return &CardService{repo: repo, deps: deps}
}

func (s *CardService) List(_ context.Context) []models.CardRecord {
	return s.repo.List()
}

func (s *CardService) Get(_ context.Context, id string) (models.CardRecord, error) {
	return s.repo.Get(id)
}

func (s *CardService) Mount(ctx context.Context, id string) (*widget.Widget, error) {
	rec, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	w, err := widget.New(widget.Options{
		CardID:         rec.ID,
		Config:         rec.Config,
		Feed:           s.deps.Feed,
		Caller:         s.deps.Caller,
		Sink:           s.deps.Sink,
		Log:            s.deps.Log,
		CommandTimeout: s.deps.CommandTimeout,
	})
	if err != nil {
		return nil, err
	}
	go w.Run(ctx)
	return w, nil
}
