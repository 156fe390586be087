package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/repo"
)

// memStore is an in-memory stand-in for the Postgres repos. It keeps the same
// shape as the schema (trips, member edges, activities, invites, messages) so
// workflows spanning several repos can be tested without a database.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]domain.User
	trips      map[uuid.UUID]domain.Trip
	members    map[uuid.UUID][]uuid.UUID
	activities map[uuid.UUID]domain.Activity
	invites    map[uuid.UUID]domain.Invite
	messages   []domain.Message
	seq        int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uuid.UUID]domain.User{},
		trips:      map[uuid.UUID]domain.Trip{},
		members:    map[uuid.UUID][]uuid.UUID{},
		activities: map[uuid.UUID]domain.Activity{},
		invites:    map[uuid.UUID]domain.Invite{},
	}
}

func (s *memStore) Users() memUsers           { return memUsers{s} }
func (s *memStore) Trips() memTrips           { return memTrips{s} }
func (s *memStore) Activities() memActivities { return memActivities{s} }
func (s *memStore) Invites() memInvites       { return memInvites{s} }
func (s *memStore) Messages() memMessages     { return memMessages{s} }

// tick returns a strictly increasing timestamp so orderings are deterministic.
func (s *memStore) tick() time.Time {
	s.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

// aggregate fills members and activities the way the Postgres repo does.
// Callers must hold mu.
func (s *memStore) aggregate(t domain.Trip) domain.Trip {
	if u, ok := s.users[t.Owner.ID]; ok {
		t.Owner = u
	}
	t.Members = []domain.User{}
	for _, id := range s.members[t.ID] {
		t.Members = append(t.Members, s.users[id])
	}
	t.Activities = []domain.Activity{}
	for _, a := range s.activities {
		if a.TripID == t.ID {
			t.Activities = append(t.Activities, a)
		}
	}
	sort.Slice(t.Activities, func(i, j int) bool {
		return t.Activities[i].CreatedAt.Before(t.Activities[j].CreatedAt)
	})
	t.Transactions = []domain.Transaction{}
	return t
}

func (s *memStore) sortedTrips(keep func(domain.Trip) bool) []domain.Trip {
	out := []domain.Trip{}
	for _, t := range s.trips {
		if keep(t) {
			out = append(out, s.aggregate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *memStore) isMember(tripID, userID uuid.UUID) bool {
	for _, id := range s.members[tripID] {
		if id == userID {
			return true
		}
	}
	return false
}

// ---- users -----------------------------------------------------------------

type memUsers struct{ *memStore }

var _ repo.UserRepo = memUsers{}

func (r memUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if equalFold(existing.Email, u.Email) {
			return domain.User{}, domain.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = r.tick()
	r.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if equalFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r memUsers) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r memUsers) RoleExists(context.Context, domain.Role) (bool, error) { return true, nil }
func (r memUsers) CreateRole(context.Context, domain.Role) error         { return nil }

// ---- trips -----------------------------------------------------------------

type memTrips struct{ *memStore }

var _ repo.TripRepo = memTrips{}

func (r memTrips) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = r.tick()
	t.UpdatedAt = t.CreatedAt
	r.trips[t.ID] = t
	return r.aggregate(t), nil
}

func (r memTrips) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return r.aggregate(t), nil
}

func (r memTrips) ListForUser(_ context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedTrips(func(t domain.Trip) bool {
		return t.Owner.ID == userID || r.isMember(t.ID, userID)
	}), nil
}

func (r memTrips) ListActiveOn(_ context.Context, date time.Time) ([]domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedTrips(func(t domain.Trip) bool { return t.ActiveOn(date) }), nil
}

func (r memTrips) List(_ context.Context) ([]domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedTrips(func(domain.Trip) bool { return true }), nil
}

func (r memTrips) Update(_ context.Context, t domain.Trip) (domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[t.ID]; !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	t.UpdatedAt = r.tick()
	r.trips[t.ID] = t
	return r.aggregate(t), nil
}

func (r memTrips) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[id]; !ok {
		return domain.ErrNotFound
	}
	for aid, a := range r.activities {
		if a.TripID == id {
			delete(r.activities, aid)
		}
	}
	for iid, inv := range r.invites {
		if inv.TripID == id {
			delete(r.invites, iid)
		}
	}
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.TripID != id {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	delete(r.members, id)
	delete(r.trips, id)
	return nil
}

func (r memTrips) AddMember(_ context.Context, tripID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isMember(tripID, userID) {
		r.members[tripID] = append(r.members[tripID], userID)
	}
	return nil
}

func (r memTrips) RemoveMember(_ context.Context, tripID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.members[tripID]
	for i, id := range ids {
		if id == userID {
			r.members[tripID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ---- activities ------------------------------------------------------------

type memActivities struct{ *memStore }

var _ repo.ActivityRepo = memActivities{}

func (r memActivities) Create(_ context.Context, a domain.Activity) (domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = r.tick()
	a.UpdatedAt = a.CreatedAt
	r.activities[a.ID] = a
	return a, nil
}

func (r memActivities) Update(_ context.Context, a domain.Activity) (domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.activities[a.ID]
	if !ok || cur.TripID != a.TripID {
		return domain.Activity{}, domain.ErrNotFound
	}
	a.UpdatedAt = r.tick()
	r.activities[a.ID] = a
	return a, nil
}

func (r memActivities) Delete(_ context.Context, tripID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.activities[id]
	if !ok || cur.TripID != tripID {
		return domain.ErrNotFound
	}
	delete(r.activities, id)
	return nil
}

// ---- invites ---------------------------------------------------------------

type memInvites struct{ *memStore }

var _ repo.InviteRepo = memInvites{}

func (r memInvites) Create(_ context.Context, tripID, userID uuid.UUID) (domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.TripID == tripID && inv.UserID == userID {
			return domain.Invite{}, domain.ErrConflict
		}
	}
	inv := domain.Invite{
		ID:        uuid.New(),
		TripID:    tripID,
		TripName:  r.trips[tripID].Name,
		UserID:    userID,
		CreatedAt: r.tick(),
	}
	r.invites[inv.ID] = inv
	return inv, nil
}

func (r memInvites) GetByID(_ context.Context, id uuid.UUID) (domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[id]
	if !ok {
		return domain.Invite{}, domain.ErrNotFound
	}
	return inv, nil
}

func (r memInvites) Exists(_ context.Context, tripID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.TripID == tripID && inv.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r memInvites) ListForUser(_ context.Context, userID uuid.UUID) ([]domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Invite{}
	for _, inv := range r.invites {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memInvites) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.IsRead = true
	r.invites[id] = inv
	return nil
}

func (r memInvites) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.invites, id)
	return nil
}

func (r memInvites) Accept(_ context.Context, inv domain.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	if !r.isMember(inv.TripID, inv.UserID) {
		r.members[inv.TripID] = append(r.members[inv.TripID], inv.UserID)
	}
	delete(r.invites, inv.ID)
	return nil
}

// ---- messages --------------------------------------------------------------

type memMessages struct{ *memStore }

var _ repo.MessageRepo = memMessages{}

func (r memMessages) Create(_ context.Context, m domain.Message) (domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uuid.New()
	m.SentAt = r.tick()
	r.messages = append(r.messages, m)
	return m, nil
}

func (r memMessages) ListRecent(_ context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.messages {
		if m.TripID == tripID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// ---- helpers ---------------------------------------------------------------

func equalFold(a, b string) bool { return strings.EqualFold(a, b) }
