// Package auth issues and verifies the bearer tokens of the API and
// verifies identity tokens minted by Google.
package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/joliday/backend/internal/domain"
)

// Claims is the payload of an API token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	UID   string `json:"uid"`
	jwt.RegisteredClaims
}

// IssuerConfig configures an Issuer.
type IssuerConfig struct {
	Secret    string
	Issuer    string
	Audience  string
	ExpiresIn time.Duration
}

// Issuer signs and parses HS256 API tokens.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer constructs an Issuer.
func NewIssuer(cfg IssuerConfig) *Issuer {
	return &Issuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.ExpiresIn,
		now:      time.Now,
	}
}

// Issue signs a token for u carrying its email and role.
// Returns domain.ErrTokenIssue if signing fails.
func (i *Issuer) Issue(u domain.User) (string, error) {
	now := i.now()
	claims := Claims{
		Email: u.Email,
		Role:  string(u.Role),
		UID:   u.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Issuer.Issue: %w: %w", domain.ErrTokenIssue, err)
	}
	return signed, nil
}

// Parse validates signature, issuer, audience and expiry of an API token.
// Returns domain.ErrUnauthenticated for any invalid token.
func (i *Issuer) Parse(token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("auth.Issuer.Parse: %w: %w", domain.ErrUnauthenticated, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Email == "" {
		return nil, fmt.Errorf("auth.Issuer.Parse: %w: invalid token", domain.ErrUnauthenticated)
	}
	return c, nil
}
