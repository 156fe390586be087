package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/repo"
)

// IdentityVerifier checks a token minted by an external identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (domain.ExternalIdentity, error)
}

// TokenIssuer signs API tokens for a user.
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

// UserService resolves callers and signs them in.
type UserService struct {
	users    repo.UserRepo
	verifier IdentityVerifier
	issuer   TokenIssuer
}

// NewUserService constructs a UserService. A nil verifier disables
// external sign-in.
func NewUserService(users repo.UserRepo, verifier IdentityVerifier, issuer TokenIssuer) *UserService {
	return &UserService{users: users, verifier: verifier, issuer: issuer}
}

// Current returns the account behind a token's email claim.
// Returns domain.ErrNotFound if the account row is missing.
func (s *UserService) Current(ctx context.Context, email string) (domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Current: %w", err)
	}
	return u, nil
}

// SignInWithGoogle verifies a Google ID token, registers the user on first
// sight with the Vacationer role, and returns the user with a fresh API token.
func (s *UserService) SignInWithGoogle(ctx context.Context, idToken string) (domain.User, string, error) {
	if s.verifier == nil {
		return domain.User{}, "", fmt.Errorf("service.UserService.SignInWithGoogle: %w: sign-in is not configured", domain.ErrInvalidExternalToken)
	}
	if strings.TrimSpace(idToken) == "" {
		return domain.User{}, "", fmt.Errorf("%w: token is required", domain.ErrValidation)
	}

	id, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.UserService.SignInWithGoogle: %w", err)
	}

	u, err := s.findOrCreate(ctx, id)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.UserService.SignInWithGoogle: %w", err)
	}

	token, err := s.issuer.Issue(u)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.UserService.SignInWithGoogle: %w", err)
	}
	return u, token, nil
}

func (s *UserService) findOrCreate(ctx context.Context, id domain.ExternalIdentity) (domain.User, error) {
	u, err := s.users.GetByEmail(ctx, id.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	avatar := id.Picture
	if avatar == "" {
		avatar = domain.DefaultAvatarURL
	}
	u, err = s.users.Create(ctx, domain.User{
		Email:     id.Email,
		Name:      id.FamilyName,
		FirstName: id.GivenName,
		AvatarURL: avatar,
		Role:      domain.RoleVacationer,
	})
	if errors.Is(err, domain.ErrConflict) {
		// Registered concurrently by another sign-in.
		return s.users.GetByEmail(ctx, id.Email)
	}
	return u, err
}

// WatchCount polls the number of registered users every interval and calls
// emit whenever it grows. The first value is emitted as soon as it is
// positive. It returns nil once ctx is cancelled and the first error from
// emit or the store otherwise.
func (s *UserService) WatchCount(ctx context.Context, interval time.Duration, emit func(int64) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last int64
	for {
		n, err := s.users.Count(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("service.UserService.WatchCount: %w", err)
		}
		if n > last {
			if err := emit(n); err != nil {
				return fmt.Errorf("service.UserService.WatchCount: emit: %w", err)
			}
			last = n
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
