// Package repository keeps the configured cards and users in memory.
// Nothing is persisted: the configuration file is the source of truth and
// edits live until the process exits.
package repository

import (
	"errors"

	"heating_card/internal/models"
)

var ErrCardNotFound = errors.New("card not found")

type Authorization interface {
	GetByUsername(username string) (*models.User, error)
}

type CardRepo interface {
	List() []models.CardRecord
	Get(id string) (models.CardRecord, error)
	Save(rec models.CardRecord) error
}

type Repository struct {
	Cards CardRepo
	Auth  Authorization
}

func NewRepository(cards []models.CardRecord, users []models.User) (*Repository, error) {
	cardRepo, err := NewCardMemory(cards)
	if err != nil {
		return nil, err
	}
	return &Repository{
		Cards: cardRepo,
		Auth:  NewUserMemory(users),
	}, nil
}
