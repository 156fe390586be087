package auth

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/joliday/backend/internal/domain"
)

// GoogleJWKSURL publishes the keys Google signs ID tokens with.
const GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// GoogleVerifier checks Google ID tokens issued for one OAuth client.
type GoogleVerifier struct {
	clientID string
	keyfunc  jwt.Keyfunc
}

// NewGoogleVerifier constructs a GoogleVerifier. keys resolves the signing
// key of a token, normally from NewGoogleKeyfunc.
func NewGoogleVerifier(clientID string, keys jwt.Keyfunc) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, keyfunc: keys}
}

// NewGoogleKeyfunc fetches the JWKS at url and keeps it refreshed in the
// background until ctx is cancelled.
func NewGoogleKeyfunc(ctx context.Context, url string) (jwt.Keyfunc, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return nil, fmt.Errorf("auth.NewGoogleKeyfunc: %w", err)
	}
	return k.Keyfunc, nil
}

// Verify returns the identity vouched for by an ID token.
// Returns domain.ErrInvalidExternalToken unless the token is signed by Google,
// addressed to this client, unexpired, and carries a verified email.
func (v *GoogleVerifier) Verify(_ context.Context, token string) (domain.ExternalIdentity, error) {
	t, err := jwt.ParseWithClaims(token, &googleClaims{}, v.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.ExternalIdentity{}, fmt.Errorf("auth.GoogleVerifier.Verify: %w: %w", domain.ErrInvalidExternalToken, err)
	}

	c, ok := t.Claims.(*googleClaims)
	switch {
	case !ok || !t.Valid:
		return domain.ExternalIdentity{}, fmt.Errorf("auth.GoogleVerifier.Verify: %w: invalid token", domain.ErrInvalidExternalToken)
	case !googleIssuers[c.Issuer]:
		return domain.ExternalIdentity{}, fmt.Errorf("auth.GoogleVerifier.Verify: %w: unexpected issuer %q", domain.ErrInvalidExternalToken, c.Issuer)
	case c.Email == "" || !c.EmailVerified:
		return domain.ExternalIdentity{}, fmt.Errorf("auth.GoogleVerifier.Verify: %w: email not verified", domain.ErrInvalidExternalToken)
	}

	return domain.ExternalIdentity{
		Email:      c.Email,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
		Picture:    c.Picture,
	}, nil
}
