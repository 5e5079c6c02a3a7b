package repository

import "heating_card/internal/models"

type UserMemory struct {
	users map[string]models.User
}

// Ensure implementation of Authorization interface at compile time.
var _ Authorization = (*UserMemory)(nil)

func NewUserMemory(users []models.User) *UserMemory {
	m := &UserMemory{users: make(map[string]models.User, len(users))}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

// GetByUsername fetches a user by username. Returns (nil, nil) if not found.
func (m *UserMemory) GetByUsername(username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
