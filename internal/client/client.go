// Package client is a typed Go client for the Wanderlogue REST API, plus
// TripStore, a local cache that filters and sorts trips without a round trip.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/service"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// APIError is a non-2xx response decoded from the failure envelope.
// It unwraps to the domain sentinel matching its status code, so callers can
// use errors.Is(err, domain.ErrNotFound) and friends.
type APIError struct {
	Status  int
	Message string
	Fields  []domain.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap maps the status code to a domain sentinel. A 400 carrying field
// errors is a validation failure; any other 400 is a bad parameter.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		if len(e.Fields) > 0 {
			return domain.ErrValidation
		}
		return domain.ErrInvalidParameter
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	}
	return nil
}

// Session is the result of Register and Login.
type Session struct {
	Token string
	User  domain.User
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken starts the client with an existing session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a Client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client.New: %w", err)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the bearer token sent with each request.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ---- wire types ------------------------------------------------------------

type wireUser struct {
	ID        uuid.UUID           `json:"id"`
	Email     openapi_types.Email `json:"email"`
	Username  string              `json:"username"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	CreatedAt time.Time           `json:"createdAt"`
}

func (w wireUser) toDomain() domain.User {
	return domain.User{
		ID:        w.ID,
		Email:     string(w.Email),
		Username:  w.Username,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		CreatedAt: w.CreatedAt,
	}
}

type wireTrip struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"userId"`
	Title       string             `json:"title"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	Description string             `json:"description"`
	Story       string             `json:"story"`
	CoverImage  string             `json:"coverImage"`
	Media       []domain.MediaItem `json:"media"`
	Location    *domain.Location   `json:"location"`
	Tags        []string           `json:"tags"`
	IsFavorite  bool               `json:"isFavorite"`
	IsPublic    bool               `json:"isPublic"`
	Views       int                `json:"views"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (w wireTrip) toDomain() domain.Trip {
	return domain.Trip{
		ID:          w.ID,
		OwnerID:     w.UserID,
		Title:       w.Title,
		Destination: w.Destination,
		StartDate:   w.StartDate.Time,
		EndDate:     w.EndDate.Time,
		Description: w.Description,
		Story:       w.Story,
		CoverImage:  w.CoverImage,
		Media:       w.Media,
		Location:    w.Location,
		Tags:        w.Tags,
		IsFavorite:  w.IsFavorite,
		IsPublic:    w.IsPublic,
		Views:       w.Views,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

type tripBody struct {
	Title       string             `json:"title"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	Description string             `json:"description"`
	Story       string             `json:"story,omitempty"`
	CoverImage  string             `json:"coverImage"`
	Media       []domain.MediaItem `json:"media,omitempty"`
	Location    *domain.Location   `json:"location,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	IsPublic    bool               `json:"isPublic,omitempty"`
}

// patchBody encodes only the fields set on p.
func patchBody(p domain.TripPatch) map[string]any {
	out := make(map[string]any)
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Destination != nil {
		out["destination"] = *p.Destination
	}
	if p.StartDate != nil {
		out["startDate"] = openapi_types.Date{Time: *p.StartDate}
	}
	if p.EndDate != nil {
		out["endDate"] = openapi_types.Date{Time: *p.EndDate}
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.Story != nil {
		out["story"] = *p.Story
	}
	if p.CoverImage != nil {
		out["coverImage"] = *p.CoverImage
	}
	if p.Media != nil {
		out["media"] = *p.Media
	}
	if p.Tags != nil {
		out["tags"] = *p.Tags
	}
	if p.IsPublic != nil {
		out["isPublic"] = *p.IsPublic
	}
	switch {
	case p.ClearLocation:
		out["location"] = nil
	case p.Location != nil:
		out["location"] = *p.Location
	}
	return out
}

// ---- auth ------------------------------------------------------------------

// Register creates an account and adopts the returned session token.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (Session, error) {
	return c.startSession(ctx, "/api/auth/register", reg)
}

// Login signs in and adopts the returned session token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (Session, error) {
	return c.startSession(ctx, "/api/auth/login", creds)
}

func (c *Client) startSession(ctx context.Context, path string, body any) (Session, error) {
	var out struct {
		Token string   `json:"token"`
		User  wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return Session{}, err
	}
	c.SetToken(out.Token)
	return Session{Token: out.Token, User: out.User.toDomain()}, nil
}

// Logout ends the session and forgets the token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var out struct {
		User wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return domain.User{}, err
	}
	return out.User.toDomain(), nil
}

// UpdateProfile replaces the user's display names.
func (c *Client) UpdateProfile(ctx context.Context, p domain.Profile) (domain.User, error) {
	var out struct {
		User wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", nil, p, &out); err != nil {
		return domain.User{}, err
	}
	return out.User.toDomain(), nil
}

// ChangePassword replaces the password.
func (c *Client) ChangePassword(ctx context.Context, change domain.PasswordChange) error {
	return c.do(ctx, http.MethodPut, "/api/auth/password", nil, change, nil)
}

// ---- trips -----------------------------------------------------------------

// ListTrips returns the caller's trips filtered and sorted by the server.
func (c *Client) ListTrips(ctx context.Context, q tripquery.Query) ([]domain.Trip, error) {
	var out struct {
		Trips []wireTrip `json:"trips"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/trips", q.Values(), nil, &out); err != nil {
		return nil, err
	}
	trips := make([]domain.Trip, len(out.Trips))
	for i, w := range out.Trips {
		trips[i] = w.toDomain()
	}
	return trips, nil
}

// GetTrip returns one trip. The server counts a view.
func (c *Client) GetTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return c.tripCall(ctx, http.MethodGet, "/api/trips/"+id.String(), nil)
}

// CreateTrip creates a trip from the user-editable fields of t.
func (c *Client) CreateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return c.tripCall(ctx, http.MethodPost, "/api/trips", tripBody{
		Title:       t.Title,
		Destination: t.Destination,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		Description: t.Description,
		Story:       t.Story,
		CoverImage:  t.CoverImage,
		Media:       t.Media,
		Location:    t.Location,
		Tags:        t.Tags,
		IsPublic:    t.IsPublic,
	})
}

// UpdateTrip sends the set fields of p.
func (c *Client) UpdateTrip(ctx context.Context, id uuid.UUID, p domain.TripPatch) (domain.Trip, error) {
	return c.tripCall(ctx, http.MethodPut, "/api/trips/"+id.String(), patchBody(p))
}

// DeleteTrip permanently removes a trip.
func (c *Client) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/trips/"+id.String(), nil, nil, nil)
}

// ToggleFavorite flips a trip's favorite flag.
func (c *Client) ToggleFavorite(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return c.tripCall(ctx, http.MethodPut, "/api/trips/"+id.String()+"/favorite", nil)
}

// Stats returns the caller's journal summary.
func (c *Client) Stats(ctx context.Context) (domain.TripStats, error) {
	var out struct {
		Stats struct {
			TotalTrips        int `json:"totalTrips"`
			TotalDestinations int `json:"totalDestinations"`
			TotalFavorites    int `json:"totalFavorites"`
			TotalPhotos       int `json:"totalPhotos"`
		} `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/trips/stats", nil, nil, &out); err != nil {
		return domain.TripStats{}, err
	}
	return domain.TripStats(out.Stats), nil
}

// PresignUpload requests a signed upload slot for a media file.
func (c *Client) PresignUpload(ctx context.Context, req service.UploadRequest) (service.Upload, error) {
	var out struct {
		Upload service.Upload `json:"upload"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/uploads/presign", nil, req, &out); err != nil {
		return service.Upload{}, err
	}
	return out.Upload, nil
}

func (c *Client) tripCall(ctx context.Context, method, path string, body any) (domain.Trip, error) {
	var out struct {
		Trip wireTrip `json:"trip"`
	}
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return domain.Trip{}, err
	}
	return out.Trip.toDomain(), nil
}

// ---- transport -------------------------------------------------------------

// do sends one request and decodes a 2xx body into out (which may be nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path += path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeFailure(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Message string              `json:"message"`
		Errors  []domain.FieldError `json:"errors"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
	}
	return apiErr
}
