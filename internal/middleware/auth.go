package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/joliday/backend/internal/auth"
	"github.com/joliday/backend/internal/domain"
)

// TokenParser validates a raw bearer token and returns its claims.
// *auth.Issuer satisfies this interface.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// ErrorWriter renders an error response. Handlers pass their own so that
// authentication failures share the API's error body.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// UserResolver loads the account behind a token's email claim.
// *service.UserService satisfies this interface.
type UserResolver interface {
	Current(ctx context.Context, email string) (domain.User, error)
}

type claimsKey struct{}

type userKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by NewAuthenticator, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok && c != nil
}

// WithUser returns a copy of ctx carrying the resolved caller.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the caller stored by NewUserResolver, if any.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	return u, ok
}

// NewAuthenticator returns a middleware that requires an
// "Authorization: Bearer <token>" header. The parsed claims are stored in the
// request context; missing or invalid tokens are answered through onError
// with domain.ErrUnauthenticated.
func NewAuthenticator(p TokenParser, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				onError(w, r, fmt.Errorf("middleware.Authenticator: %w: missing bearer token", domain.ErrUnauthenticated))
				return
			}
			claims, err := p.Parse(token)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// NewUserResolver returns a middleware that loads the account named by the
// claims of NewAuthenticator and stores it in the request context. A token
// whose account is gone, or was recreated under a new id, is answered with
// domain.ErrNotFound. Wire it after NewAuthenticator.
func NewUserResolver(users UserResolver, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFromContext(r.Context())
			if !ok {
				onError(w, r, fmt.Errorf("middleware.UserResolver: %w", domain.ErrUnauthenticated))
				return
			}
			u, err := users.Current(r.Context(), c.Email)
			if err != nil {
				onError(w, r, fmt.Errorf("middleware.UserResolver: %w", err))
				return
			}
			if c.UID != u.ID.String() {
				onError(w, r, fmt.Errorf("middleware.UserResolver: %w: account %s was replaced", domain.ErrNotFound, c.UID))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireRole returns a middleware that lets through only callers holding
// role. The stored account's role wins over the token's once
// NewUserResolver has run.
func RequireRole(role domain.Role, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFromContext(r.Context())
			if !ok {
				onError(w, r, fmt.Errorf("middleware.RequireRole: %w", domain.ErrUnauthenticated))
				return
			}
			held := domain.Role(c.Role)
			if u, ok := UserFromContext(r.Context()); ok {
				held = u.Role
			}
			if held != role {
				onError(w, r, fmt.Errorf("middleware.RequireRole: %w: role %s required", domain.ErrForbidden, role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
