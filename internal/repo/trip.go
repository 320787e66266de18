// Package repo contains all database access logic for the Wanderlogue API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here: only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, so it can be unit-tested with a mock.
// Ownership is not checked here; that is the service's job.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with
	// DB-generated id, views, created_at and updated_at populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns the owner's trips matching q, in q's sort order.
	List(ctx context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip and returns the
	// updated record. Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementViews adds one to the view counter and returns the updated trip.
	IncrementViews(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ToggleFavorite flips is_favorite and returns the updated trip.
	ToggleFavorite(ctx context.Context, id uuid.UUID) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, owner_id, title, destination, start_date, end_date, description,
		story, cover_image, media, latitude, longitude, address, tags, is_favorite, is_public,
		views, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		INSERT INTO trips (owner_id, title, destination, title_fold, destination_fold,
		                   start_date, end_date, description, story, cover_image, media,
		                   latitude, longitude, address, tags, is_favorite, is_public)
		VALUES (@owner_id, @title, @destination, @title_fold, @destination_fold,
		        @start_date, @end_date, @description, @story, @cover_image, @media,
		        @latitude, @longitude, @address, @tags, @is_favorite, @is_public)
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["owner_id"] = trip.OwnerID
	args["is_favorite"] = trip.IsFavorite

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns the owner's trips filtered and ordered per q.
// Always returns a non-nil slice.
func (r *pgTripRepo) List(ctx context.Context, ownerID uuid.UUID, query tripquery.Query) ([]domain.Trip, error) {
	where, args, err := listWhere(ownerID, query)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	q := `SELECT ` + tripColumns + ` FROM trips WHERE ` + where + ` ORDER BY ` + listOrder(query.SortOrder())

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}
	return trips, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
// owner_id, views and is_favorite are never written here.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		UPDATE trips
		SET title            = @title,
		    destination      = @destination,
		    title_fold       = @title_fold,
		    destination_fold = @destination_fold,
		    start_date       = @start_date,
		    end_date         = @end_date,
		    description      = @description,
		    story            = @story,
		    cover_image      = @cover_image,
		    media            = @media,
		    latitude         = @latitude,
		    longitude        = @longitude,
		    address          = @address,
		    tags             = @tags,
		    is_public        = @is_public,
		    updated_at       = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// IncrementViews bumps the counter in a single statement so concurrent reads
// never lose an increment. updated_at is left alone: a view is not an edit.
func (r *pgTripRepo) IncrementViews(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `UPDATE trips SET views = views + 1 WHERE id = @id RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.IncrementViews: %w", err)
	}
	return result, nil
}

// ToggleFavorite flips the flag in SQL rather than writing back a value read
// earlier, so two concurrent toggles cancel out.
func (r *pgTripRepo) ToggleFavorite(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `
		UPDATE trips
		SET is_favorite = NOT is_favorite,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.ToggleFavorite: %w", err)
	}
	return result, nil
}

// tripArgs maps the user-editable fields shared by insert and update.
// Nil slices become empty ones so the NOT NULL columns are satisfied.
// The *_fold columns hold tripquery.Fold of their source so search matches
// exactly what tripquery.Search.Match does.
func tripArgs(trip domain.Trip) pgx.NamedArgs {
	media := trip.Media
	if media == nil {
		media = []domain.MediaItem{}
	}
	tags := trip.Tags
	if tags == nil {
		tags = []string{}
	}
	var lat, lng pgtype.Float8
	var address pgtype.Text
	if loc := trip.Location; loc != nil {
		lat = pgtype.Float8{Float64: loc.Lat, Valid: true}
		lng = pgtype.Float8{Float64: loc.Lng, Valid: true}
		address = pgtype.Text{String: loc.Address, Valid: true}
	}
	return pgx.NamedArgs{
		"title":            trip.Title,
		"destination":      trip.Destination,
		"title_fold":       tripquery.Fold(trip.Title),
		"destination_fold": tripquery.Fold(trip.Destination),
		"start_date":       trip.StartDate,
		"end_date":         trip.EndDate,
		"description":      trip.Description,
		"story":            trip.Story,
		"cover_image":      trip.CoverImage,
		"media":            media,
		"latitude":         lat,
		"longitude":        lng,
		"address":          address,
		"tags":             tags,
		"is_public":        trip.IsPublic,
	}
}

// listWhere renders the WHERE clause for List. Every filter kind in
// tripquery has a case; an unknown kind is an error rather than being
// silently ignored.
func listWhere(ownerID uuid.UUID, query tripquery.Query) (string, pgx.NamedArgs, error) {
	conds := []string{"owner_id = @owner_id"}
	args := pgx.NamedArgs{"owner_id": ownerID}

	for i, f := range query.Filters {
		switch f := f.(type) {
		case tripquery.Search:
			name := fmt.Sprintf("search_%d", i)
			conds = append(conds, fmt.Sprintf(
				"(strpos(title_fold, @%[1]s) > 0 OR strpos(destination_fold, @%[1]s) > 0)", name))
			args[name] = f.Folded()
		case tripquery.Year:
			from, to := f.Bounds()
			lo, hi := fmt.Sprintf("year_from_%d", i), fmt.Sprintf("year_to_%d", i)
			conds = append(conds, fmt.Sprintf("start_date >= @%s AND start_date < @%s", lo, hi))
			args[lo], args[hi] = from, to
		case tripquery.Tags:
			name := fmt.Sprintf("tags_%d", i)
			conds = append(conds, fmt.Sprintf("tags && @%s::text[]", name))
			args[name] = domain.NormalizeTags(f.Tags)
		case tripquery.FavoritesOnly:
			conds = append(conds, "is_favorite")
		default:
			return "", nil, fmt.Errorf("unsupported filter %T", f)
		}
	}
	return strings.Join(conds, " AND "), args, nil
}

// listOrder mirrors tripquery.Sort.Compare. COLLATE "C" gives the same
// byte-wise title order as strings.Compare.
func listOrder(s tripquery.Sort) string {
	const tail = `created_at ASC, id ASC`
	switch s {
	case tripquery.SortOldest:
		return `start_date ASC, title COLLATE "C" ASC, ` + tail
	case tripquery.SortTitleAsc:
		return `title COLLATE "C" ASC, ` + tail
	case tripquery.SortTitleDesc:
		return `title COLLATE "C" DESC, ` + tail
	default:
		return `start_date DESC, title COLLATE "C" ASC, ` + tail
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id, owner pgtype.UUID
		start     pgtype.Date
		end       pgtype.Date
		lat, lng  pgtype.Float8
		address   pgtype.Text
	)

	err := s.Scan(&id, &owner, &t.Title, &t.Destination, &start, &end, &t.Description,
		&t.Story, &t.CoverImage, &t.Media, &lat, &lng, &address, &t.Tags, &t.IsFavorite,
		&t.IsPublic, &t.Views, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(owner.Bytes)
	t.StartDate = start.Time
	t.EndDate = end.Time
	if lat.Valid && lng.Valid {
		t.Location = &domain.Location{Lat: lat.Float64, Lng: lng.Float64, Address: address.String}
	}
	if t.Media == nil {
		t.Media = []domain.MediaItem{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}
