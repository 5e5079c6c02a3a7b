package handlers

import (
	"context"
	"net/http"

	"heating_card/internal/card"
	"heating_card/internal/hass"
	"heating_card/internal/models"
	"heating_card/internal/repository"
	"heating_card/internal/service"
	"heating_card/internal/widget"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	genTokenToken string
	genTokenErr   error
	parseUser     string
	parseErr      error

	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseUser, m.parseErr
}

// mockCards serves records from a map and mounts real widgets against a
// fake Home Assistant.
type mockCards struct {
	records  map[string]models.CardRecord
	fake     *hass.FakeClient
	mountErr error
}

func (m *mockCards) List(ctx context.Context) []models.CardRecord {
	out := make([]models.CardRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out
}

func (m *mockCards) Get(ctx context.Context, id string) (models.CardRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return models.CardRecord{}, repository.ErrCardNotFound
	}
	return rec, nil
}

func (m *mockCards) Mount(ctx context.Context, id string) (*widget.Widget, error) {
	if m.mountErr != nil {
		return nil, m.mountErr
	}
	rec, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	w, err := widget.New(widget.Options{CardID: id, Config: rec.Config, Feed: m.fake, Caller: m.fake})
	if err != nil {
		return nil, err
	}
	go w.Run(ctx)
	return w, nil
}

type mockEditor struct {
	resp      models.CardRecord
	err       error
	lastID    string
	lastPatch service.ConfigPatch
}

func (m *mockEditor) UpdateConfig(ctx context.Context, id string, p service.ConfigPatch) (models.CardRecord, error) {
	m.lastID = id
	m.lastPatch = p
	return m.resp, m.err
}

type mockCatalog struct {
	entries []card.CatalogEntry
}

func (m *mockCatalog) Entries() []card.CatalogEntry { return m.entries }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
