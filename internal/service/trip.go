// Package service contains the business logic for the Wanderlogue API.
// Services normalize and validate inputs, enforce ownership, and orchestrate
// repo calls. No SQL lives here; services depend on repo interfaces only.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/repo"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
	"github.com/pkordes/wanderlogue/backend/internal/validation"
)

// TripService implements business logic for Trip operations.
// Every method takes the caller's user ID; uuid.Nil means anonymous and is
// rejected with domain.ErrUnauthorized before the repo is touched.
type TripService struct {
	repo repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{repo: r}
}

// List returns the owner's trips matching q, in q's sort order.
// Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.Trip, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("service.TripService.List: %w", domain.ErrUnauthorized)
	}
	trips, err := s.repo.List(ctx, ownerID, q)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Create normalizes and validates trip, then persists it under ownerID.
// Server-managed fields (ID, views, favorite flag, timestamps) are reset.
func (s *TripService) Create(ctx context.Context, ownerID uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	if ownerID == uuid.Nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", domain.ErrUnauthorized)
	}

	trip = normalizeTrip(trip)
	trip.ID = uuid.Nil
	trip.OwnerID = ownerID
	trip.Views = 0
	trip.IsFavorite = false

	if err := validation.Struct(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// Get returns one trip and records a view.
// A trip owned by someone else yields domain.ErrForbidden and its view count
// is left unchanged.
func (s *TripService) Get(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	result, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return result, nil
}

// Update applies patch to an owned trip and re-validates the merged result
// under the same rules as Create.
func (s *TripService) Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	current, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	merged := normalizeTrip(patch.Apply(current))
	if err := validation.Struct(merged); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	result, err := s.repo.Update(ctx, merged)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return result, nil
}

// Delete removes an owned trip.
func (s *TripService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag of an owned trip.
func (s *TripService) ToggleFavorite(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.ToggleFavorite: %w", err)
	}
	result, err := s.repo.ToggleFavorite(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.ToggleFavorite: %w", err)
	}
	return result, nil
}

// Stats summarises all of the owner's trips.
func (s *TripService) Stats(ctx context.Context, ownerID uuid.UUID) (domain.TripStats, error) {
	trips, err := s.List(ctx, ownerID, tripquery.Query{})
	if err != nil {
		return domain.TripStats{}, fmt.Errorf("service.TripService.Stats: %w", err)
	}
	return domain.ComputeStats(trips), nil
}

// owned loads id and checks it belongs to ownerID.
func (s *TripService) owned(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error) {
	if ownerID == uuid.Nil {
		return domain.Trip{}, domain.ErrUnauthorized
	}
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.OwnerID != ownerID {
		return domain.Trip{}, domain.ErrForbidden
	}
	return trip, nil
}

// normalizeTrip trims free-text fields, normalizes tags, truncates dates to
// calendar days and replaces nil media with an empty list.
func normalizeTrip(t domain.Trip) domain.Trip {
	t.Title = strings.TrimSpace(t.Title)
	t.Destination = strings.TrimSpace(t.Destination)
	t.Description = strings.TrimSpace(t.Description)
	t.Story = strings.TrimSpace(t.Story)
	t.CoverImage = strings.TrimSpace(t.CoverImage)
	t.Tags = domain.NormalizeTags(t.Tags)
	if t.Location != nil {
		loc := *t.Location
		loc.Address = strings.TrimSpace(loc.Address)
		t.Location = &loc
	}
	if !t.StartDate.IsZero() {
		t.StartDate = domain.DateOnly(t.StartDate)
	}
	if !t.EndDate.IsZero() {
		t.EndDate = domain.DateOnly(t.EndDate)
	}
	if t.Media == nil {
		t.Media = []domain.MediaItem{}
	}
	return t
}
