package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// ErrStaleFetch is returned by Fetch when a newer Fetch started before this
// one finished. The stale result is discarded.
var ErrStaleFetch = errors.New("client: fetch superseded by a newer fetch")

// Status is the load state of a TripStore.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// TripAPI is the subset of Client the store needs.
type TripAPI interface {
	ListTrips(ctx context.Context, q tripquery.Query) ([]domain.Trip, error)
	CreateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error)
	UpdateTrip(ctx context.Context, id uuid.UUID, p domain.TripPatch) (domain.Trip, error)
	DeleteTrip(ctx context.Context, id uuid.UUID) error
	ToggleFavorite(ctx context.Context, id uuid.UUID) (domain.Trip, error)
}

// TripStore caches the signed-in user's full trip list and derives the
// visible list locally with the same filter and sort rules the server uses.
// It is safe for concurrent use.
type TripStore struct {
	api TripAPI

	mu     sync.Mutex
	status Status
	err    error
	trips  []domain.Trip
	query  tripquery.Query
	seq    uint64
	cancel context.CancelFunc
}

// NewTripStore returns an idle store backed by api.
func NewTripStore(api TripAPI) *TripStore {
	return &TripStore{api: api}
}

// Fetch loads the full trip list and replaces the cache. Starting a Fetch
// cancels any Fetch still in flight. On failure the previous cache is kept
// and the error is recorded.
func (s *TripStore) Fetch(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.status = StatusLoading
	s.err = nil
	s.mu.Unlock()

	trips, err := s.api.ListTrips(ctx, tripquery.Query{})

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return ErrStaleFetch
	}
	s.cancel = nil
	if err != nil {
		s.status = StatusError
		s.err = err
		return err
	}
	s.trips = slices.Clone(trips)
	if s.trips == nil {
		s.trips = []domain.Trip{}
	}
	s.status = StatusReady
	return nil
}

// Status returns the load state and the error of the last failed Fetch.
func (s *TripStore) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.err
}

// Trips returns a copy of the cached list in cache order.
func (s *TripStore) Trips() []domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.trips)
}

// Trip returns the cached trip with id.
func (s *TripStore) Trip(id uuid.UUID) (domain.Trip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.trips[i], true
	}
	return domain.Trip{}, false
}

// SetQuery replaces the local filter and sort.
func (s *TripStore) SetQuery(q tripquery.Query) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// Query returns the local filter and sort.
func (s *TripStore) Query() tripquery.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Visible returns the cached trips that match the current query, in query
// order. It equals what the server would return for the same query.
func (s *TripStore) Visible() []domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tripquery.Apply(s.trips, s.query)
}

// Create creates a trip on the server and adds it to the front of the cache.
func (s *TripStore) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	created, err := s.api.CreateTrip(ctx, t)
	if err != nil {
		return domain.Trip{}, err
	}
	s.mu.Lock()
	s.trips = append([]domain.Trip{created}, s.trips...)
	s.mu.Unlock()
	return created, nil
}

// Update patches a trip on the server and replaces the cached copy.
func (s *TripStore) Update(ctx context.Context, id uuid.UUID, p domain.TripPatch) (domain.Trip, error) {
	updated, err := s.api.UpdateTrip(ctx, id, p)
	if err != nil {
		return domain.Trip{}, err
	}
	s.replace(updated)
	return updated, nil
}

// ToggleFavorite flips the flag on the server and replaces the cached copy.
func (s *TripStore) ToggleFavorite(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	updated, err := s.api.ToggleFavorite(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	s.replace(updated)
	return updated, nil
}

// Delete removes a trip on the server and drops it from the cache.
func (s *TripStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeleteTrip(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		s.trips = slices.Delete(s.trips, i, i+1)
	}
	return nil
}

func (s *TripStore) replace(t domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(t.ID); i >= 0 {
		s.trips[i] = t
		return
	}
	s.trips = append([]domain.Trip{t}, s.trips...)
}

// index must be called with mu held.
func (s *TripStore) index(id uuid.UUID) int {
	return slices.IndexFunc(s.trips, func(t domain.Trip) bool { return t.ID == id })
}
