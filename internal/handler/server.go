// Package handler implements the HTTP handlers for the JoliDay API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/middleware"
	"github.com/joliday/backend/internal/service"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, caller domain.User, in service.TripInput) (domain.Trip, error)
	Get(ctx context.Context, caller domain.User, id uuid.UUID) (domain.Trip, error)
	ListMine(ctx context.Context, caller domain.User) ([]domain.Trip, error)
	ListAll(ctx context.Context) ([]domain.Trip, error)
	Edit(ctx context.Context, caller domain.User, id uuid.UUID, in service.TripInput) (domain.Trip, error)
	Delete(ctx context.Context, caller domain.User, id uuid.UUID) error
	RemoveMember(ctx context.Context, caller domain.User, tripID, userID uuid.UUID) error
	Statistics(ctx context.Context, date time.Time) ([]domain.CountryCount, error)
}

// ActivityServicer defines the activity operations the handlers depend on.
type ActivityServicer interface {
	List(ctx context.Context, caller domain.User, tripID uuid.UUID) ([]domain.Activity, error)
	Get(ctx context.Context, caller domain.User, tripID, activityID uuid.UUID) (domain.Activity, error)
	Create(ctx context.Context, caller domain.User, tripID uuid.UUID, in service.ActivityInput) (domain.Activity, error)
	Edit(ctx context.Context, caller domain.User, tripID, activityID uuid.UUID, in service.ActivityInput) (domain.Activity, error)
	Delete(ctx context.Context, caller domain.User, tripID, activityID uuid.UUID) error
	CalendarExport(ctx context.Context, caller domain.User, tripID uuid.UUID) ([]byte, error)
}

// InviteServicer defines the invitation operations the handlers depend on.
type InviteServicer interface {
	Create(ctx context.Context, caller domain.User, tripID uuid.UUID, email string) (domain.Invite, error)
	MarkRead(ctx context.Context, caller domain.User, inviteID uuid.UUID) error
	ListMine(ctx context.Context, caller domain.User) ([]domain.Invite, error)
	Handle(ctx context.Context, caller domain.User, inviteID uuid.UUID, accept bool) (*domain.Trip, error)
}

// MessageServicer defines the chat operations the handlers depend on.
type MessageServicer interface {
	Send(ctx context.Context, caller domain.User, tripID uuid.UUID, content string) (domain.Message, error)
	List(ctx context.Context, caller domain.User, tripID uuid.UUID) ([]domain.Message, error)
}

// UserServicer defines the account operations the handlers depend on.
type UserServicer interface {
	Current(ctx context.Context, email string) (domain.User, error)
	SignInWithGoogle(ctx context.Context, idToken string) (domain.User, string, error)
	WatchCount(ctx context.Context, interval time.Duration, emit func(int64) error) error
}

// ContactServicer defines the contact form operation.
type ContactServicer interface {
	Send(ctx context.Context, req service.ContactRequest) error
}

// Deps groups everything the Server needs. Wire it in main.go.
type Deps struct {
	Trips      TripServicer
	Activities ActivityServicer
	Invites    InviteServicer
	Messages   MessageServicer
	Users      UserServicer
	Contact    ContactServicer

	// Tokens validates bearer tokens on protected routes.
	Tokens middleware.TokenParser

	Logger *slog.Logger

	// UserStreamInterval is the poll period of GET /users/count/stream.
	// Defaults to one second.
	UserStreamInterval time.Duration

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	trips      TripServicer
	activities ActivityServicer
	invites    InviteServicer
	messages   MessageServicer
	users      UserServicer
	contact    ContactServicer
	tokens     middleware.TokenParser
	log        *slog.Logger
	interval   time.Duration
	maxBody    int64
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.UserStreamInterval <= 0 {
		d.UserStreamInterval = time.Second
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 1 << 20
	}
	return &Server{
		trips:      d.Trips,
		activities: d.Activities,
		invites:    d.Invites,
		messages:   d.Messages,
		users:      d.Users,
		contact:    d.Contact,
		tokens:     d.Tokens,
		log:        d.Logger,
		interval:   d.UserStreamInterval,
		maxBody:    d.MaxBodyBytes,
	}
}

// Routes returns the chi router serving the whole API.
// Cross-cutting middleware (request id, logging, CORS, ...) is applied by the
// caller; the body size cap lives here so its 413 shares the error body.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewMaxBodySizeHandler(s.maxBody, s.writeError))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, domain.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
			Code: "method_not_allowed", Message: http.StatusText(http.StatusMethodNotAllowed),
		}})
	})

	// Anonymous.
	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)
	r.Post("/auth/google", s.signInWithGoogle)
	r.Get("/users/count/stream", s.streamUserCount)
	r.Post("/contact", s.sendContact)
	r.Get("/trips/statistics/{date}", s.getStatistics)

	// Bearer token required.
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthenticator(s.tokens, s.writeError))
		r.Use(middleware.NewUserResolver(s.users, s.writeError))

		r.Get("/users/me", s.getCurrentUser)

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.listTrips)
			r.Post("/", s.createTrip)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.getTrip)
				r.Put("/", s.editTrip)
				r.Delete("/", s.deleteTrip)
				r.Delete("/members/{userID}", s.removeMember)

				r.Get("/activities", s.listActivities)
				r.Post("/activities", s.createActivity)
				r.Get("/activities/{activityID}", s.getActivity)
				r.Put("/activities/{activityID}", s.editActivity)
				r.Delete("/activities/{activityID}", s.deleteActivity)
				r.Get("/calendar.ics", s.exportCalendar)

				r.Get("/messages", s.listMessages)
				r.Post("/messages", s.sendMessage)
			})
		})

		r.Route("/invites", func(r chi.Router) {
			r.Get("/", s.listInvites)
			r.Post("/", s.createInvite)
			r.Put("/{inviteID}/read", s.markInviteRead)
			r.Post("/{inviteID}/response", s.respondToInvite)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin, s.writeError))
			r.Get("/trips", s.listAllTrips)
		})
	})

	return r
}
