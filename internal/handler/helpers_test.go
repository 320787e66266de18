package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/handler"
	"github.com/pkordes/wanderlogue/backend/internal/middleware"
	"github.com/pkordes/wanderlogue/backend/internal/service"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	list           func(ctx context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.Trip, error)
	create         func(ctx context.Context, ownerID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	get            func(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error)
	update         func(ctx context.Context, ownerID, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	delete         func(ctx context.Context, ownerID, id uuid.UUID) error
	toggleFavorite func(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error)
	stats          func(ctx context.Context, ownerID uuid.UUID) (domain.TripStats, error)
	export         func(ctx context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.ExportRow, error)
}

func (m *mockTripServicer) List(ctx context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.Trip, error) {
	return m.list(ctx, ownerID, q)
}
func (m *mockTripServicer) Create(ctx context.Context, ownerID uuid.UUID, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, ownerID, t)
}
func (m *mockTripServicer) Get(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, ownerID, id)
}
func (m *mockTripServicer) Update(ctx context.Context, ownerID, id uuid.UUID, p domain.TripPatch) (domain.Trip, error) {
	return m.update(ctx, ownerID, id, p)
}
func (m *mockTripServicer) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.delete(ctx, ownerID, id)
}
func (m *mockTripServicer) ToggleFavorite(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error) {
	return m.toggleFavorite(ctx, ownerID, id)
}
func (m *mockTripServicer) Stats(ctx context.Context, ownerID uuid.UUID) (domain.TripStats, error) {
	return m.stats(ctx, ownerID)
}
func (m *mockTripServicer) Export(ctx context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.ExportRow, error) {
	return m.export(ctx, ownerID, q)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockAuthServicer is a test double for handler.AuthServicer.
type mockAuthServicer struct {
	register       func(ctx context.Context, reg domain.Registration) (service.Session, error)
	login          func(ctx context.Context, creds domain.Credentials) (service.Session, error)
	me             func(ctx context.Context, userID uuid.UUID) (domain.User, error)
	updateProfile  func(ctx context.Context, userID uuid.UUID, p domain.Profile) (domain.User, error)
	changePassword func(ctx context.Context, userID uuid.UUID, c domain.PasswordChange) error
}

func (m *mockAuthServicer) Register(ctx context.Context, reg domain.Registration) (service.Session, error) {
	return m.register(ctx, reg)
}
func (m *mockAuthServicer) Login(ctx context.Context, creds domain.Credentials) (service.Session, error) {
	return m.login(ctx, creds)
}
func (m *mockAuthServicer) Me(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return m.me(ctx, userID)
}
func (m *mockAuthServicer) UpdateProfile(ctx context.Context, userID uuid.UUID, p domain.Profile) (domain.User, error) {
	return m.updateProfile(ctx, userID, p)
}
func (m *mockAuthServicer) ChangePassword(ctx context.Context, userID uuid.UUID, c domain.PasswordChange) error {
	return m.changePassword(ctx, userID, c)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

// mockMediaServicer is a test double for handler.MediaServicer.
type mockMediaServicer struct {
	presign func(ctx context.Context, ownerID uuid.UUID, req service.UploadRequest) (service.Upload, error)
}

func (m *mockMediaServicer) PresignUpload(ctx context.Context, ownerID uuid.UUID, req service.UploadRequest) (service.Upload, error) {
	return m.presign(ctx, ownerID, req)
}

var _ handler.MediaServicer = (*mockMediaServicer)(nil)

// ---- harness ---------------------------------------------------------------

// aliceID is the identity bound to requests sent with aliceToken.
var aliceID = uuid.MustParse("11111111-1111-4111-8111-111111111111")

const aliceToken = "alice-token"

type staticVerifier struct{}

func (staticVerifier) Verify(token string) (uuid.UUID, error) {
	if token == aliceToken {
		return aliceID, nil
	}
	return uuid.Nil, errors.New("unknown token")
}

// newHTTPHandler wires a Server with the given deps behind the identity
// resolver, mirroring how main.go wires it in production.
func newHTTPHandler(d handler.Deps, opts handler.Options) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := handler.NewServer(d, opts)
	return middleware.NewIdentityResolver(staticVerifier{})(srv.Routes())
}

func newTripHandler(svc handler.TripServicer) http.Handler {
	return newHTTPHandler(handler.Deps{Trips: svc}, handler.Options{})
}

// do sends a request as alice unless token is overridden with "".
func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decode parses a JSON response body into a generic map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:          uuid.New(),
		OwnerID:     aliceID,
		Title:       "Magical Kyoto",
		Destination: "Kyoto, Japan",
		StartDate:   time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2023, 3, 22, 0, 0, 0, 0, time.UTC),
		Description: "Temples and tea houses.",
		CoverImage:  "https://images.example.com/kyoto.jpg",
		Media:       []domain.MediaItem{},
		Tags:        []string{"japan"},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}
