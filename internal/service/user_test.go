package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/repo"
	"github.com/joliday/backend/internal/service"
)

type stubVerifier struct {
	identity domain.ExternalIdentity
	err      error
}

func (v stubVerifier) Verify(context.Context, string) (domain.ExternalIdentity, error) {
	return v.identity, v.err
}

type stubIssuer struct{ err error }

func (i stubIssuer) Issue(u domain.User) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	return "token-for-" + u.Email, nil
}

var (
	_ service.IdentityVerifier = stubVerifier{}
	_ service.TokenIssuer      = stubIssuer{}
)

func TestUserService_Current(t *testing.T) {
	s := newMemStore()
	a := mustUser(t, s, "a@example.com")
	svc := service.NewUserService(s.Users(), nil, stubIssuer{})

	got, err := svc.Current(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.Current(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_SignInWithGoogle_Registers(t *testing.T) {
	s := newMemStore()
	v := stubVerifier{identity: domain.ExternalIdentity{
		Email: "yuji@example.com", GivenName: "Yuji", FamilyName: "Itadori",
	}}
	svc := service.NewUserService(s.Users(), v, stubIssuer{})

	u, token, err := svc.SignInWithGoogle(context.Background(), "id-token")

	require.NoError(t, err)
	assert.Equal(t, "token-for-yuji@example.com", token)
	assert.Equal(t, "Yuji", u.FirstName)
	assert.Equal(t, "Itadori", u.Name)
	assert.Equal(t, domain.RoleVacationer, u.Role)
	assert.Equal(t, domain.DefaultAvatarURL, u.AvatarURL)
	assert.Len(t, s.users, 1)
}

func TestUserService_SignInWithGoogle_ExistingUser(t *testing.T) {
	s := newMemStore()
	existing := mustUser(t, s, "yuji@example.com")
	v := stubVerifier{identity: domain.ExternalIdentity{Email: "Yuji@example.com"}}
	svc := service.NewUserService(s.Users(), v, stubIssuer{})

	u, _, err := svc.SignInWithGoogle(context.Background(), "id-token")

	require.NoError(t, err)
	assert.Equal(t, existing.ID, u.ID)
	assert.Len(t, s.users, 1)
}

func TestUserService_SignInWithGoogle_Failures(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	_, _, err := service.NewUserService(s.Users(), nil, stubIssuer{}).SignInWithGoogle(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidExternalToken, "sign-in disabled")

	bad := stubVerifier{err: domain.ErrInvalidExternalToken}
	_, _, err = service.NewUserService(s.Users(), bad, stubIssuer{}).SignInWithGoogle(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidExternalToken)

	good := stubVerifier{identity: domain.ExternalIdentity{Email: "a@example.com"}}
	_, _, err = service.NewUserService(s.Users(), good, stubIssuer{}).SignInWithGoogle(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = service.NewUserService(s.Users(), good, stubIssuer{err: domain.ErrTokenIssue}).SignInWithGoogle(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrTokenIssue)
}

// countingUsers returns successive counts from a script, then repeats the last.
type countingUsers struct {
	repo.UserRepo
	counts []int64
	calls  atomic.Int32
	err    error
}

func (c *countingUsers) Count(context.Context) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	i := int(c.calls.Add(1)) - 1
	if i >= len(c.counts) {
		i = len(c.counts) - 1
	}
	return c.counts[i], nil
}

func TestUserService_WatchCount_EmitsIncreasesOnly(t *testing.T) {
	users := &countingUsers{counts: []int64{0, 2, 2, 1, 3, 3}}
	svc := service.NewUserService(users, nil, stubIssuer{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []int64
	err := svc.WatchCount(ctx, time.Millisecond, func(n int64) error {
		got = append(got, n)
		if n == 3 {
			cancel()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, got)
}

func TestUserService_WatchCount_StopsOnCancel(t *testing.T) {
	users := &countingUsers{counts: []int64{1}}
	svc := service.NewUserService(users, nil, stubIssuer{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	emitted := 0
	err := svc.WatchCount(ctx, time.Millisecond, func(int64) error { emitted++; return nil })

	assert.NoError(t, err)
	assert.Equal(t, 1, emitted)
	assert.Greater(t, users.calls.Load(), int32(1), "keeps polling until cancelled")
}

func TestUserService_WatchCount_EmitError(t *testing.T) {
	users := &countingUsers{counts: []int64{1}}
	svc := service.NewUserService(users, nil, stubIssuer{})
	gone := errors.New("client gone")

	err := svc.WatchCount(context.Background(), time.Millisecond, func(int64) error { return gone })
	assert.ErrorIs(t, err, gone)
}

func TestUserService_WatchCount_StoreError(t *testing.T) {
	users := &countingUsers{err: domain.ErrDataAccess}
	svc := service.NewUserService(users, nil, stubIssuer{})

	err := svc.WatchCount(context.Background(), time.Millisecond, func(int64) error { return nil })
	assert.ErrorIs(t, err, domain.ErrDataAccess)
}
