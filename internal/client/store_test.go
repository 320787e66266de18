package client_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wanderlogue/backend/internal/client"
	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// mockTripAPI is a hand-written mock. Set only the fields a test needs.
type mockTripAPI struct {
	ListTripsFn      func(ctx context.Context, q tripquery.Query) ([]domain.Trip, error)
	CreateTripFn     func(ctx context.Context, t domain.Trip) (domain.Trip, error)
	UpdateTripFn     func(ctx context.Context, id uuid.UUID, p domain.TripPatch) (domain.Trip, error)
	DeleteTripFn     func(ctx context.Context, id uuid.UUID) error
	ToggleFavoriteFn func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
}

func (m *mockTripAPI) ListTrips(ctx context.Context, q tripquery.Query) ([]domain.Trip, error) {
	return m.ListTripsFn(ctx, q)
}

func (m *mockTripAPI) CreateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.CreateTripFn(ctx, t)
}

func (m *mockTripAPI) UpdateTrip(ctx context.Context, id uuid.UUID, p domain.TripPatch) (domain.Trip, error) {
	return m.UpdateTripFn(ctx, id, p)
}

func (m *mockTripAPI) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	return m.DeleteTripFn(ctx, id)
}

func (m *mockTripAPI) ToggleFavorite(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.ToggleFavoriteFn(ctx, id)
}

var _ client.TripAPI = (*mockTripAPI)(nil)

func cached(title string) domain.Trip {
	t := newTrip(title, "Somewhere", date(2023, 1, 1))
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	return t
}

func TestTripStore_StartsIdle(t *testing.T) {
	s := client.NewTripStore(&mockTripAPI{})
	status, err := s.Status()
	assert.Equal(t, client.StatusIdle, status)
	assert.NoError(t, err)
	assert.Empty(t, s.Visible())
}

func TestTripStore_Fetch_ReplacesCache(t *testing.T) {
	a, b := cached("A"), cached("B")
	var gotQuery tripquery.Query
	api := &mockTripAPI{ListTripsFn: func(_ context.Context, q tripquery.Query) ([]domain.Trip, error) {
		gotQuery = q
		return []domain.Trip{a, b}, nil
	}}
	s := client.NewTripStore(api)
	s.SetQuery(tripquery.Query{Sort: tripquery.SortTitleDesc})

	require.NoError(t, s.Fetch(context.Background()))

	assert.Empty(t, gotQuery.Filters, "fetch always loads the full list")
	status, _ := s.Status()
	assert.Equal(t, client.StatusReady, status)
	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, ids(s.Visible()))
}

func TestTripStore_Fetch_FailureKeepsCache(t *testing.T) {
	a := cached("A")
	boom := errors.New("connection refused")
	fail := false
	api := &mockTripAPI{ListTripsFn: func(context.Context, tripquery.Query) ([]domain.Trip, error) {
		if fail {
			return nil, boom
		}
		return []domain.Trip{a}, nil
	}}
	s := client.NewTripStore(api)
	require.NoError(t, s.Fetch(context.Background()))

	fail = true
	err := s.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)

	status, lastErr := s.Status()
	assert.Equal(t, client.StatusError, status)
	assert.ErrorIs(t, lastErr, boom)
	assert.Equal(t, []uuid.UUID{a.ID}, ids(s.Trips()))
}

func TestTripStore_Fetch_StaleResultDiscarded(t *testing.T) {
	older, newer := cached("older"), cached("newer")
	started := make(chan struct{})
	release := make(chan struct{})
	var firstCtx context.Context
	var calls atomic.Int32

	api := &mockTripAPI{ListTripsFn: func(ctx context.Context, _ tripquery.Query) ([]domain.Trip, error) {
		if calls.Add(1) == 1 {
			firstCtx = ctx
			close(started)
			<-release
			return []domain.Trip{older}, nil
		}
		return []domain.Trip{newer}, nil
	}}
	s := client.NewTripStore(api)

	firstErr := make(chan error, 1)
	go func() { firstErr <- s.Fetch(context.Background()) }()
	<-started

	require.NoError(t, s.Fetch(context.Background()))
	assert.ErrorIs(t, firstCtx.Err(), context.Canceled, "newer fetch cancels the older one")

	close(release)
	assert.ErrorIs(t, <-firstErr, client.ErrStaleFetch)

	status, err := s.Status()
	assert.Equal(t, client.StatusReady, status)
	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newer.ID}, ids(s.Trips()))
}

func TestTripStore_Mutations(t *testing.T) {
	a, b := cached("A"), cached("B")
	c := cached("C")
	api := &mockTripAPI{
		ListTripsFn: func(context.Context, tripquery.Query) ([]domain.Trip, error) {
			return []domain.Trip{a, b}, nil
		},
		CreateTripFn: func(context.Context, domain.Trip) (domain.Trip, error) { return c, nil },
		UpdateTripFn: func(_ context.Context, id uuid.UUID, p domain.TripPatch) (domain.Trip, error) {
			return p.Apply(a), nil
		},
		ToggleFavoriteFn: func(context.Context, uuid.UUID) (domain.Trip, error) {
			fav := b
			fav.IsFavorite = true
			return fav, nil
		},
		DeleteTripFn: func(context.Context, uuid.UUID) error { return nil },
	}
	s := client.NewTripStore(api)
	ctx := context.Background()
	require.NoError(t, s.Fetch(ctx))

	_, err := s.Create(ctx, domain.Trip{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, ids(s.Trips()))

	title := "A renamed"
	_, err = s.Update(ctx, a.ID, domain.TripPatch{Title: &title})
	require.NoError(t, err)
	got, ok := s.Trip(a.ID)
	require.True(t, ok)
	assert.Equal(t, title, got.Title)

	_, err = s.ToggleFavorite(ctx, b.ID)
	require.NoError(t, err)
	s.SetQuery(tripquery.Query{}.With(tripquery.FavoritesOnly{}))
	assert.Equal(t, []uuid.UUID{b.ID}, ids(s.Visible()))

	require.NoError(t, s.Delete(ctx, b.ID))
	assert.Empty(t, s.Visible())
	_, ok = s.Trip(b.ID)
	assert.False(t, ok)
}

func TestTripStore_MutationFailureLeavesCache(t *testing.T) {
	a := cached("A")
	api := &mockTripAPI{
		ListTripsFn: func(context.Context, tripquery.Query) ([]domain.Trip, error) {
			return []domain.Trip{a}, nil
		},
		DeleteTripFn: func(context.Context, uuid.UUID) error { return domain.ErrForbidden },
	}
	s := client.NewTripStore(api)
	require.NoError(t, s.Fetch(context.Background()))

	assert.ErrorIs(t, s.Delete(context.Background(), a.ID), domain.ErrForbidden)
	assert.Equal(t, []uuid.UUID{a.ID}, ids(s.Trips()))
}

// The locally derived list must equal what the server returns for the same
// query.
func TestTripStore_VisibleMatchesServer(t *testing.T) {
	c := newSignedInClient(t, newTestServer(t), "alice")
	ctx := context.Background()

	seed := []domain.Trip{
		newTrip("Magical Kyoto", "Kyoto, Japan", date(2023, 3, 15), "japan", "temples"),
		newTrip("Paris Weekend", "Paris, France", date(2022, 6, 1), "europe", "food"),
		newTrip("alpine hike", "Zermatt, Switzerland", date(2023, 8, 20), "europe", "mountains"),
		newTrip("Tokyo Nights", "Tokyo, Japan", date(2023, 3, 15), "japan", "food"),
		newTrip("Zanzibar", "Stone Town, Tanzania", date(2021, 12, 24)),
		newTrip("Magical Kyoto", "Kyoto, Japan", date(2024, 1, 2), "japan"),
		newTrip("Big Apple", "New York, USA", date(2022, 12, 20), "New York, NY"),
		newTrip("Été à Paris", "Paris, France", date(2021, 6, 1), "europe"),
	}
	var created []domain.Trip
	for _, trip := range seed {
		got, err := c.CreateTrip(ctx, trip)
		require.NoError(t, err)
		created = append(created, got)
	}
	_, err := c.ToggleFavorite(ctx, created[1].ID)
	require.NoError(t, err)
	_, err = c.ToggleFavorite(ctx, created[3].ID)
	require.NoError(t, err)

	store := client.NewTripStore(c)
	require.NoError(t, store.Fetch(ctx))

	queries := map[string]tripquery.Query{
		"default":    {},
		"oldest":     {Sort: tripquery.SortOldest},
		"title asc":  {Sort: tripquery.SortTitleAsc},
		"title desc": {Sort: tripquery.SortTitleDesc},
		"search":     tripquery.Query{}.With(tripquery.Search{Term: "japan"}),
		"year":       tripquery.Query{}.With(tripquery.Year{Year: 2023}),
		"tags":       tripquery.Query{}.With(tripquery.Tags{Tags: []string{"food", "europe"}}),
		"favorites":  tripquery.Query{}.With(tripquery.FavoritesOnly{}),
		"comma tag":  tripquery.Query{}.With(tripquery.Tags{Tags: []string{"new york, ny"}}),
		"padded":     tripquery.Query{}.With(tripquery.Search{Term: "kyoto "}),
		"blank":      tripquery.Query{}.With(tripquery.Search{Term: "   "}),
		"non-ascii":  tripquery.Query{}.With(tripquery.Search{Term: "ÉTÉ"}),
		"combined": tripquery.Query{Sort: tripquery.SortTitleAsc}.
			With(tripquery.Year{Year: 2023}).
			With(tripquery.Tags{Tags: []string{"japan"}}),
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			fromServer, err := c.ListTrips(ctx, q)
			require.NoError(t, err)

			store.SetQuery(q)
			assert.Equal(t, ids(fromServer), ids(store.Visible()))
		})
	}
}
