package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/weatherdesk/weatherdesk-go/internal/middleware"
	"github.com/weatherdesk/weatherdesk-go/internal/model"
	"github.com/weatherdesk/weatherdesk-go/internal/repository"
	"github.com/weatherdesk/weatherdesk-go/internal/service"
)

// memUserStore is an in-memory stand-in for the user repository.
type memUserStore struct {
	users map[string]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*model.User)}
}

func (m *memUserStore) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	u := *user
	m.users[user.Email] = &u
	return nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memUserStore) UpdateToken(_ context.Context, email, token string) error {
	u, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Token = token
	return nil
}

// memWeatherStore is an in-memory stand-in for the weather repository.
type memWeatherStore struct {
	records []model.WeatherRecord
}

func (m *memWeatherStore) FindByDate(_ context.Context, date time.Time) (*model.WeatherRecord, error) {
	for i := range m.records {
		if m.records[i].Date.Equal(date) {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (m *memWeatherStore) FindPage(_ context.Context, offset, limit int) ([]model.WeatherRecord, error) {
	sorted := m.sortedDesc()
	if offset >= len(sorted) {
		return nil, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (m *memWeatherStore) FindAll(_ context.Context) ([]model.WeatherRecord, error) {
	return m.sortedDesc(), nil
}

func (m *memWeatherStore) Create(_ context.Context, rec *model.WeatherRecord) error {
	m.records = append(m.records, *rec)
	return nil
}

func (m *memWeatherStore) UpsertByDate(_ context.Context, rec *model.WeatherRecord) error {
	for i := range m.records {
		if m.records[i].Date.Equal(rec.Date) {
			rec.ID = m.records[i].ID
			m.records[i] = *rec
			return nil
		}
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *memWeatherStore) UpdateByID(_ context.Context, rec *model.WeatherRecord) error {
	for i := range m.records {
		if m.records[i].ID == rec.ID {
			m.records[i] = *rec
			return nil
		}
	}
	return repository.ErrRecordNotFound
}

func (m *memWeatherStore) sortedDesc() []model.WeatherRecord {
	sorted := append([]model.WeatherRecord(nil), m.records...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

const testSecret = "test-secret"

type testServer struct {
	router      *chi.Mux
	authService *service.AuthService
	users       *memUserStore
	weather     *memWeatherStore
}

// newTestServer wires handlers, services and in-memory stores into the same
// route tree cmd/api builds.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := newMemUserStore()
	weather := &memWeatherStore{}

	authService := service.NewAuthService(users, testSecret, time.Hour)
	authHandler := NewAuthHandler(authService)

	weatherService := service.NewWeatherService(weather)
	weatherHandler := NewWeatherHandler(weatherService)

	r := chi.NewRouter()
	r.Post("/api/auth/register", authHandler.HandleRegister)
	r.Post("/api/auth/login", authHandler.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authService))

		r.Get("/api/auth/check", authHandler.HandleCheck)

		r.Get("/api/weather/range", weatherHandler.HandleRange)
		r.Get("/api/weather/all", weatherHandler.HandleAll)
		r.Get("/api/weather/{date}", weatherHandler.HandleGetByDate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleAdmin))
			r.Post("/api/weather", weatherHandler.HandleCreate)
			r.Post("/api/weather/update", weatherHandler.HandleUpsert)
			r.Put("/api/weather/{id}", weatherHandler.HandleUpdate)
		})
	})

	return &testServer{
		router:      r,
		authService: authService,
		users:       users,
		weather:     weather,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// register creates a user through the API and returns its token.
func (s *testServer) register(t *testing.T, email, password string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp model.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Token
}

// registerAdmin registers a user and promotes it to ADMIN in the backing
// store, then logs in so the returned token carries the admin role.
func (s *testServer) registerAdmin(t *testing.T, email, password string) string {
	t.Helper()

	s.register(t, email, password)
	s.users.users[email].Role = model.RoleAdmin

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp model.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Token
}
