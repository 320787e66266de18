// Package domain contains the core data types for the Wanderlogue travel journal.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (repo, service, handler, client).
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaType distinguishes photos from videos attached to a trip.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaItem is one photo or video attached to a trip.
// ProviderID is the object key returned by the upload signer, empty for
// media hosted elsewhere.
type MediaItem struct {
	Type       MediaType `json:"type" validate:"required,oneof=image video"`
	URL        string    `json:"url" validate:"required"`
	Caption    string    `json:"caption,omitempty"`
	ProviderID string    `json:"publicId,omitempty"`
}

// Location pins a trip to a point on the map. Address is free text shown
// alongside the coordinates.
type Location struct {
	Lat     float64 `json:"lat" validate:"latitude"`
	Lng     float64 `json:"lng" validate:"longitude"`
	Address string  `json:"address,omitempty" validate:"max=200"`
}

// Trip is one travel record. A trip belongs to exactly one user for its
// whole lifetime; OwnerID is never changed after creation.
//
// StartDate and EndDate are calendar dates. They are always held as UTC
// midnight so that year filtering and ordering agree with the database.
type Trip struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string      `json:"title" validate:"required,max=100"`
	Destination string      `json:"destination" validate:"required"`
	StartDate   time.Time   `json:"startDate" validate:"required"`
	EndDate     time.Time   `json:"endDate" validate:"required,gtefield=StartDate"`
	Description string      `json:"description" validate:"required,max=500"`
	Story       string      `json:"story" validate:"max=10000"`
	CoverImage  string      `json:"coverImage" validate:"required,coverimage"`
	Media       []MediaItem `json:"media" validate:"dive"`
	Location    *Location   `json:"location"`
	Tags        []string    `json:"tags" validate:"dive,excludesall=0x2C"`
	IsFavorite  bool
	IsPublic    bool
	Views       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Year returns the calendar year the trip started in.
func (t Trip) Year() int {
	return t.StartDate.UTC().Year()
}

// DurationDays returns the number of whole days between the start and end date.
// A same-day trip has a duration of 0.
func (t Trip) DurationDays() int {
	return int(t.EndDate.Sub(t.StartDate).Hours() / 24)
}

// HasTag reports whether the trip carries tag, compared case-insensitively.
func (t Trip) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, have := range t.Tags {
		if strings.ToLower(have) == tag {
			return true
		}
	}
	return false
}

// TripPatch carries a partial update. Nil fields are left unchanged.
type TripPatch struct {
	Title       *string
	Destination *string
	StartDate   *time.Time
	EndDate     *time.Time
	Description *string
	Story       *string
	CoverImage  *string
	Media       *[]MediaItem
	Tags        *[]string
	IsPublic    *bool

	// Location replaces the trip's location; ClearLocation removes it.
	Location      *Location
	ClearLocation bool
}

// Apply returns a copy of t with every non-nil field of p written over it.
func (p TripPatch) Apply(t Trip) Trip {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Destination != nil {
		t.Destination = *p.Destination
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Story != nil {
		t.Story = *p.Story
	}
	if p.CoverImage != nil {
		t.CoverImage = *p.CoverImage
	}
	if p.Media != nil {
		t.Media = append([]MediaItem(nil), (*p.Media)...)
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.IsPublic != nil {
		t.IsPublic = *p.IsPublic
	}
	switch {
	case p.ClearLocation:
		t.Location = nil
	case p.Location != nil:
		loc := *p.Location
		t.Location = &loc
	}
	return t
}

// NormalizeTags trims and lowercases each tag, drops empties and duplicates,
// and keeps the first-seen order. The result is never nil.
//
// A comma separates tags in query strings, so an entry holding commas is
// split into several tags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		for _, part := range strings.Split(tag, ",") {
			t := strings.ToLower(strings.TrimSpace(part))
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// DateOnly truncates t to UTC midnight of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
