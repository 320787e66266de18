package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wanderlogue/backend/internal/auth"
	"github.com/pkordes/wanderlogue/backend/internal/client"
	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/handler"
	"github.com/pkordes/wanderlogue/backend/internal/middleware"
	"github.com/pkordes/wanderlogue/backend/internal/repo"
	"github.com/pkordes/wanderlogue/backend/internal/service"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// ---- in-memory repositories ------------------------------------------------

type memTripRepo struct {
	mu    sync.Mutex
	trips map[uuid.UUID]domain.Trip
}

func (m *memTripRepo) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	m.trips[t.ID] = t
	return t, nil
}

func (m *memTripRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (m *memTripRepo) List(_ context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var owned []domain.Trip
	for _, t := range m.trips {
		if t.OwnerID == ownerID {
			owned = append(owned, t)
		}
	}
	return tripquery.Apply(owned, q), nil
}

func (m *memTripRepo) Update(_ context.Context, t domain.Trip) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[t.ID]; !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	m.trips[t.ID] = t
	return t, nil
}

func (m *memTripRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.trips, id)
	return nil
}

func (m *memTripRepo) IncrementViews(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.modify(id, func(t *domain.Trip) { t.Views++ })
}

func (m *memTripRepo) ToggleFavorite(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.modify(id, func(t *domain.Trip) { t.IsFavorite = !t.IsFavorite })
}

func (m *memTripRepo) modify(id uuid.UUID, fn func(*domain.Trip)) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	fn(&t)
	m.trips[id] = t
	return t, nil
}

var _ repo.TripRepo = (*memTripRepo)(nil)

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func (m *memUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, have := range m.users {
		if strings.EqualFold(have.Email, u.Email) || strings.EqualFold(have.Username, u.Username) {
			return domain.User{}, domain.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, p domain.Profile) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	u.FirstName, u.LastName = p.FirstName, p.LastName
	m.users[id] = u
	return u, nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

var _ repo.UserRepo = (*memUserRepo)(nil)

// ---- server ----------------------------------------------------------------

// newTestServer runs the real HTTP stack over in-memory storage and returns
// the base URL.
func newTestServer(t *testing.T) string {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	require.NoError(t, err)

	trips := &memTripRepo{trips: make(map[uuid.UUID]domain.Trip)}
	users := &memUserRepo{users: make(map[uuid.UUID]domain.User)}
	srv := handler.NewServer(handler.Deps{
		Trips:  service.NewTripService(trips),
		Auth:   service.NewAuthService(users, tokens),
		Media:  service.NewMediaService(nil),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, handler.Options{})

	ts := httptest.NewServer(middleware.NewIdentityResolver(tokens)(srv.Routes()))
	t.Cleanup(ts.Close)
	return ts.URL
}

// newSignedInClient registers a fresh account against baseURL.
func newSignedInClient(t *testing.T, baseURL, username string) *client.Client {
	t.Helper()
	c, err := client.New(baseURL)
	require.NoError(t, err)
	_, err = c.Register(context.Background(), domain.Registration{
		Email:    username + "@example.com",
		Username: username,
		Password: "secret123",
	})
	require.NoError(t, err)
	return c
}

func newTrip(title, destination string, start time.Time, tags ...string) domain.Trip {
	return domain.Trip{
		Title:       title,
		Destination: destination,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 5),
		Description: "A trip to " + destination,
		CoverImage:  "https://images.example.com/cover.jpg",
		Tags:        tags,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ids(trips []domain.Trip) []uuid.UUID {
	out := make([]uuid.UUID, len(trips))
	for i, t := range trips {
		out[i] = t.ID
	}
	return out
}
