package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/joliday/backend/internal/auth"
	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/handler"
	"github.com/joliday/backend/internal/service"
)

// ---- mocks -----------------------------------------------------------------
// Each mock is a test double with one function field per method.
// Set only the fields your test needs.

type mockTrips struct {
	create       func(ctx context.Context, caller domain.User, in service.TripInput) (domain.Trip, error)
	get          func(ctx context.Context, caller domain.User, id uuid.UUID) (domain.Trip, error)
	listMine     func(ctx context.Context, caller domain.User) ([]domain.Trip, error)
	listAll      func(ctx context.Context) ([]domain.Trip, error)
	edit         func(ctx context.Context, caller domain.User, id uuid.UUID, in service.TripInput) (domain.Trip, error)
	delete       func(ctx context.Context, caller domain.User, id uuid.UUID) error
	removeMember func(ctx context.Context, caller domain.User, tripID, userID uuid.UUID) error
	statistics   func(ctx context.Context, date time.Time) ([]domain.CountryCount, error)
}

func (m *mockTrips) Create(ctx context.Context, c domain.User, in service.TripInput) (domain.Trip, error) {
	return m.create(ctx, c, in)
}
func (m *mockTrips) Get(ctx context.Context, c domain.User, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, c, id)
}
func (m *mockTrips) ListMine(ctx context.Context, c domain.User) ([]domain.Trip, error) {
	return m.listMine(ctx, c)
}
func (m *mockTrips) ListAll(ctx context.Context) ([]domain.Trip, error) {
	return m.listAll(ctx)
}
func (m *mockTrips) Edit(ctx context.Context, c domain.User, id uuid.UUID, in service.TripInput) (domain.Trip, error) {
	return m.edit(ctx, c, id, in)
}
func (m *mockTrips) Delete(ctx context.Context, c domain.User, id uuid.UUID) error {
	return m.delete(ctx, c, id)
}
func (m *mockTrips) RemoveMember(ctx context.Context, c domain.User, tripID, userID uuid.UUID) error {
	return m.removeMember(ctx, c, tripID, userID)
}
func (m *mockTrips) Statistics(ctx context.Context, date time.Time) ([]domain.CountryCount, error) {
	return m.statistics(ctx, date)
}

type mockActivities struct {
	list     func(ctx context.Context, caller domain.User, tripID uuid.UUID) ([]domain.Activity, error)
	get      func(ctx context.Context, caller domain.User, tripID, id uuid.UUID) (domain.Activity, error)
	create   func(ctx context.Context, caller domain.User, tripID uuid.UUID, in service.ActivityInput) (domain.Activity, error)
	edit     func(ctx context.Context, caller domain.User, tripID, id uuid.UUID, in service.ActivityInput) (domain.Activity, error)
	delete   func(ctx context.Context, caller domain.User, tripID, id uuid.UUID) error
	calendar func(ctx context.Context, caller domain.User, tripID uuid.UUID) ([]byte, error)
}

func (m *mockActivities) List(ctx context.Context, c domain.User, tripID uuid.UUID) ([]domain.Activity, error) {
	return m.list(ctx, c, tripID)
}
func (m *mockActivities) Get(ctx context.Context, c domain.User, tripID, id uuid.UUID) (domain.Activity, error) {
	return m.get(ctx, c, tripID, id)
}
func (m *mockActivities) Create(ctx context.Context, c domain.User, tripID uuid.UUID, in service.ActivityInput) (domain.Activity, error) {
	return m.create(ctx, c, tripID, in)
}
func (m *mockActivities) Edit(ctx context.Context, c domain.User, tripID, id uuid.UUID, in service.ActivityInput) (domain.Activity, error) {
	return m.edit(ctx, c, tripID, id, in)
}
func (m *mockActivities) Delete(ctx context.Context, c domain.User, tripID, id uuid.UUID) error {
	return m.delete(ctx, c, tripID, id)
}
func (m *mockActivities) CalendarExport(ctx context.Context, c domain.User, tripID uuid.UUID) ([]byte, error) {
	return m.calendar(ctx, c, tripID)
}

type mockInvites struct {
	create   func(ctx context.Context, caller domain.User, tripID uuid.UUID, email string) (domain.Invite, error)
	markRead func(ctx context.Context, caller domain.User, id uuid.UUID) error
	listMine func(ctx context.Context, caller domain.User) ([]domain.Invite, error)
	handle   func(ctx context.Context, caller domain.User, id uuid.UUID, accept bool) (*domain.Trip, error)
}

func (m *mockInvites) Create(ctx context.Context, c domain.User, tripID uuid.UUID, email string) (domain.Invite, error) {
	return m.create(ctx, c, tripID, email)
}
func (m *mockInvites) MarkRead(ctx context.Context, c domain.User, id uuid.UUID) error {
	return m.markRead(ctx, c, id)
}
func (m *mockInvites) ListMine(ctx context.Context, c domain.User) ([]domain.Invite, error) {
	return m.listMine(ctx, c)
}
func (m *mockInvites) Handle(ctx context.Context, c domain.User, id uuid.UUID, accept bool) (*domain.Trip, error) {
	return m.handle(ctx, c, id, accept)
}

type mockMessages struct {
	send func(ctx context.Context, caller domain.User, tripID uuid.UUID, content string) (domain.Message, error)
	list func(ctx context.Context, caller domain.User, tripID uuid.UUID) ([]domain.Message, error)
}

func (m *mockMessages) Send(ctx context.Context, c domain.User, tripID uuid.UUID, content string) (domain.Message, error) {
	return m.send(ctx, c, tripID, content)
}
func (m *mockMessages) List(ctx context.Context, c domain.User, tripID uuid.UUID) ([]domain.Message, error) {
	return m.list(ctx, c, tripID)
}

type mockUsers struct {
	current    func(ctx context.Context, email string) (domain.User, error)
	signIn     func(ctx context.Context, idToken string) (domain.User, string, error)
	watchCount func(ctx context.Context, interval time.Duration, emit func(int64) error) error
}

func (m *mockUsers) Current(ctx context.Context, email string) (domain.User, error) {
	return m.current(ctx, email)
}
func (m *mockUsers) SignInWithGoogle(ctx context.Context, idToken string) (domain.User, string, error) {
	return m.signIn(ctx, idToken)
}
func (m *mockUsers) WatchCount(ctx context.Context, interval time.Duration, emit func(int64) error) error {
	return m.watchCount(ctx, interval, emit)
}

type mockContact struct {
	send func(ctx context.Context, req service.ContactRequest) error
}

func (m *mockContact) Send(ctx context.Context, req service.ContactRequest) error {
	return m.send(ctx, req)
}

// compile-time checks: the mocks and the real services satisfy the handler interfaces.
var (
	_ handler.TripServicer     = (*mockTrips)(nil)
	_ handler.ActivityServicer = (*mockActivities)(nil)
	_ handler.InviteServicer   = (*mockInvites)(nil)
	_ handler.MessageServicer  = (*mockMessages)(nil)
	_ handler.UserServicer     = (*mockUsers)(nil)
	_ handler.ContactServicer  = (*mockContact)(nil)

	_ handler.TripServicer     = (*service.TripService)(nil)
	_ handler.ActivityServicer = (*service.ActivityService)(nil)
	_ handler.InviteServicer   = (*service.InviteService)(nil)
	_ handler.MessageServicer  = (*service.MessageService)(nil)
	_ handler.UserServicer     = (*service.UserService)(nil)
	_ handler.ContactServicer  = (*service.ContactService)(nil)
)

// ---- helpers ---------------------------------------------------------------

var tokens = auth.NewIssuer(auth.IssuerConfig{
	Secret:    "handler-test-secret",
	Issuer:    "joliday",
	Audience:  "joliday-app",
	ExpiresIn: time.Hour,
})

// accounts holds every user a test token was issued for through bearer,
// keyed by email. Protected routes resolve their caller from it unless the
// test sets its own Users.current.
var accounts sync.Map

func registeredAccount(_ context.Context, email string) (domain.User, error) {
	u, ok := accounts.Load(email)
	if !ok {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", domain.ErrNotFound)
	}
	return u.(domain.User), nil
}

// newHTTPHandler wires a Server with the given deps into its chi router,
// the same way main.go does. The token parser is always the real issuer.
func newHTTPHandler(d handler.Deps) http.Handler {
	users, _ := d.Users.(*mockUsers)
	if d.Users == nil {
		users = &mockUsers{}
		d.Users = users
	}
	if users != nil && users.current == nil {
		users.current = registeredAccount
	}
	d.Tokens = tokens
	d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(d).Routes()
}

func user(role domain.Role) domain.User {
	return domain.User{
		ID:        uuid.New(),
		Email:     uuid.NewString()[:8] + "@example.com",
		Name:      "Doe",
		FirstName: "Jane",
		AvatarURL: domain.DefaultAvatarURL,
		Role:      role,
		CreatedAt: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
	}
}

// bearer issues a token for u and registers u as an existing account.
func bearer(t *testing.T, u domain.User) string {
	t.Helper()
	accounts.Store(u.Email, u)
	return unregisteredBearer(t, u)
}

// unregisteredBearer issues a valid token for an account the store does not know.
func unregisteredBearer(t *testing.T, u domain.User) string {
	t.Helper()
	tok, err := tokens.Issue(u)
	require.NoError(t, err)
	return tok
}

// do performs a request against h. body is JSON-encoded unless it is nil or
// already a string. token may be empty for anonymous calls.
func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addressBody() map[string]any {
	return map[string]any{
		"country":       "France",
		"postal_code":   "06000",
		"city":          "Nice",
		"street_name":   "Promenade des Anglais",
		"street_number": "1",
	}
}

func tripFixture(owner domain.User) domain.Trip {
	return domain.Trip{
		ID:        uuid.New(),
		Name:      "Beach",
		StartDate: date(2025, 7, 1),
		EndDate:   date(2025, 7, 10),
		Address: domain.Address{
			Country: "France", PostalCode: "06000", City: "Nice",
			StreetName: "Promenade des Anglais", StreetNumber: "1",
		},
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}
