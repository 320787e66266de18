package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/wanderlogue/backend/internal/auth"
	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// requestDate accepts "2006-01-02" as well as a full RFC 3339 timestamp, the
// form browsers produce from a Date object. Only the calendar day is kept.
type requestDate struct {
	openapi_types.Date
}

func (d *requestDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = domain.DateOnly(t.UTC())
	return nil
}

// nullableLocation tells an absent "location" key apart from an explicit
// null, which removes the trip's location.
type nullableLocation struct {
	set   bool
	value *domain.Location
}

func (n *nullableLocation) UnmarshalJSON(b []byte) error {
	n.set = true
	if string(b) == "null" {
		n.value = nil
		return nil
	}
	var loc domain.Location
	if err := json.Unmarshal(b, &loc); err != nil {
		return err
	}
	n.value = &loc
	return nil
}

func (d *requestDate) timeOrZero() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

// createTripRequest is the body of POST /api/trips.
type createTripRequest struct {
	Title       string             `json:"title"`
	Destination string             `json:"destination"`
	StartDate   *requestDate       `json:"startDate"`
	EndDate     *requestDate       `json:"endDate"`
	Description string             `json:"description"`
	Story       string             `json:"story"`
	CoverImage  string             `json:"coverImage"`
	Media       []domain.MediaItem `json:"media"`
	Location    *domain.Location   `json:"location"`
	Tags        []string           `json:"tags"`
	IsPublic    bool               `json:"isPublic"`
}

func (b createTripRequest) toDomain() domain.Trip {
	return domain.Trip{
		Title:       b.Title,
		Destination: b.Destination,
		StartDate:   b.StartDate.timeOrZero(),
		EndDate:     b.EndDate.timeOrZero(),
		Description: b.Description,
		Story:       b.Story,
		CoverImage:  b.CoverImage,
		Media:       b.Media,
		Location:    b.Location,
		Tags:        b.Tags,
		IsPublic:    b.IsPublic,
	}
}

// updateTripRequest is the body of PUT /api/trips/{id}. Absent fields are
// left unchanged; "location": null removes the location.
type updateTripRequest struct {
	Title       *string             `json:"title"`
	Destination *string             `json:"destination"`
	StartDate   *requestDate        `json:"startDate"`
	EndDate     *requestDate        `json:"endDate"`
	Description *string             `json:"description"`
	Story       *string             `json:"story"`
	CoverImage  *string             `json:"coverImage"`
	Media       *[]domain.MediaItem `json:"media"`
	Location    nullableLocation    `json:"location"`
	Tags        *[]string           `json:"tags"`
	IsPublic    *bool               `json:"isPublic"`
}

func (b updateTripRequest) toPatch() domain.TripPatch {
	p := domain.TripPatch{
		Title:       b.Title,
		Destination: b.Destination,
		Description: b.Description,
		Story:       b.Story,
		CoverImage:  b.CoverImage,
		Media:       b.Media,
		Tags:        b.Tags,
		IsPublic:    b.IsPublic,
	}
	if b.StartDate != nil {
		p.StartDate = &b.StartDate.Time
	}
	if b.EndDate != nil {
		p.EndDate = &b.EndDate.Time
	}
	if b.Location.set {
		p.Location = b.Location.value
		p.ClearLocation = b.Location.value == nil
	}
	return p
}

// tripResponse is the JSON representation of a trip.
type tripResponse struct {
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
	Year        int                `json:"year"`
	Duration    int                `json:"duration"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func tripToResponse(t domain.Trip) tripResponse {
	media := t.Media
	if media == nil {
		media = []domain.MediaItem{}
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return tripResponse{
		ID:          t.ID,
		UserID:      t.OwnerID,
		Title:       t.Title,
		Destination: t.Destination,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		Description: t.Description,
		Story:       t.Story,
		CoverImage:  t.CoverImage,
		Media:       media,
		Location:    t.Location,
		Tags:        tags,
		IsFavorite:  t.IsFavorite,
		IsPublic:    t.IsPublic,
		Views:       t.Views,
		Year:        t.Year(),
		Duration:    t.DurationDays(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// statsResponse is the JSON representation of domain.TripStats.
type statsResponse struct {
	TotalTrips        int `json:"totalTrips"`
	TotalDestinations int `json:"totalDestinations"`
	TotalFavorites    int `json:"totalFavorites"`
	TotalPhotos       int `json:"totalPhotos"`
}

// tripID binds the {id} path parameter.
func tripID(r *http.Request) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, badRequest("Invalid trip id")
	}
	return id, nil
}

// ListTrips handles GET /api/trips.
// Supports ?search=, ?year=, ?tags= (comma-joined), ?isFavorite=true and ?sort=.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	q, err := tripquery.FromValues(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	trips, err := s.trips.List(r.Context(), auth.UserIDFrom(r.Context()), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]tripResponse, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, envelope{"count": len(out), "trips": out})
}

// TripStats handles GET /api/trips/stats.
func (s *Server) TripStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.trips.Stats(r.Context(), auth.UserIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"stats": statsResponse{
		TotalTrips:        stats.TotalTrips,
		TotalDestinations: stats.TotalDestinations,
		TotalFavorites:    stats.TotalFavorites,
		TotalPhotos:       stats.TotalPhotos,
	}})
}

// CreateTrip handles POST /api/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body createTripRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.trips.Create(r.Context(), auth.UserIDFrom(r.Context()), body.toDomain())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"trip": tripToResponse(created)})
}

// GetTrip handles GET /api/trips/{id}. Each successful read counts a view.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	trip, err := s.trips.Get(r.Context(), auth.UserIDFrom(r.Context()), id)
	if err != nil {
		s.writeTripError(w, r, err, "access")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"trip": tripToResponse(trip)})
}

// UpdateTrip handles PUT /api/trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body updateTripRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.trips.Update(r.Context(), auth.UserIDFrom(r.Context()), id, body.toPatch())
	if err != nil {
		s.writeTripError(w, r, err, "update")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"trip": tripToResponse(updated)})
}

// DeleteTrip handles DELETE /api/trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.trips.Delete(r.Context(), auth.UserIDFrom(r.Context()), id); err != nil {
		s.writeTripError(w, r, err, "delete")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Trip deleted successfully"})
}

// ToggleFavorite handles PUT /api/trips/{id}/favorite.
func (s *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	trip, err := s.trips.ToggleFavorite(r.Context(), auth.UserIDFrom(r.Context()), id)
	if err != nil {
		s.writeTripError(w, r, err, "update")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"trip": tripToResponse(trip)})
}
