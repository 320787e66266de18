// Package handler implements the HTTP handlers for the Wanderlogue API.
// All handlers are methods on Server. They are split into domain-specific
// files (health.go, trip.go, auth.go, ...) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/service"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interface in the consumer package lets handler tests inject a
// mock without touching the database or service layer.
type TripServicer interface {
	List(ctx context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.Trip, error)
	Create(ctx context.Context, ownerID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ToggleFavorite(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (domain.TripStats, error)
	Export(ctx context.Context, ownerID uuid.UUID, q tripquery.Query) ([]domain.ExportRow, error)
}

// AuthServicer defines the account operations the handlers depend on.
type AuthServicer interface {
	Register(ctx context.Context, reg domain.Registration) (service.Session, error)
	Login(ctx context.Context, creds domain.Credentials) (service.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, p domain.Profile) (domain.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, change domain.PasswordChange) error
}

// MediaServicer signs media uploads.
type MediaServicer interface {
	PresignUpload(ctx context.Context, ownerID uuid.UUID, req service.UploadRequest) (service.Upload, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators a Server calls into.
type Deps struct {
	Trips  TripServicer
	Auth   AuthServicer
	Media  MediaServicer
	DB     Pinger // optional; nil skips the database check in /healthz
	Logger *slog.Logger
}

// Options tune response behaviour.
type Options struct {
	// SecureCookies sets the Secure flag on the session cookie.
	SecureCookies bool
	// SessionTTL is the session cookie lifetime; it should match the token expiry.
	SessionTTL time.Duration
	// AuthRateLimit caps register and login requests per client IP per
	// minute. Zero disables the limit.
	AuthRateLimit int
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	trips TripServicer
	auth  AuthServicer
	media MediaServicer
	db    Pinger
	log   *slog.Logger
	opts  Options
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps, opts Options) *Server {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	return &Server{
		trips: d.Trips,
		auth:  d.Auth,
		media: d.Media,
		db:    d.DB,
		log:   log,
		opts:  opts,
	}
}

// Routes returns the router for /healthz, /openapi.yaml and the /api surface. Cross-cutting
// middleware (request IDs, logging, identity, CORS) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if s.opts.AuthRateLimit > 0 {
					r.Use(httprate.Limit(s.opts.AuthRateLimit, time.Minute,
						httprate.WithKeyFuncs(httprate.KeyByIP),
						httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
							writeFailure(w, http.StatusTooManyRequests, "Too many attempts, please try again later", nil)
						}),
					))
				}
				r.Post("/register", s.Register)
				r.Post("/login", s.Login)
			})
			r.Post("/logout", s.Logout)
			r.Get("/me", s.Me)
			r.Put("/profile", s.UpdateProfile)
			r.Put("/password", s.ChangePassword)
			r.Get("/sso/{provider}", s.SSO)
		})

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)
			r.Get("/stats", s.TripStats)
			r.Get("/export", s.ExportTrips)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Put("/favorite", s.ToggleFavorite)
			})
		})

		r.Post("/uploads/presign", s.PresignUpload)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})
	return r
}
