// Package auth provides authentication and authorization functionality for the task manager API.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// contextKey is a private type for context keys to prevent collisions.
type contextKey struct{}

// principalKey stores the resolved Principal on the request context.
var principalKey = contextKey{}

// ErrUnauthenticated is returned when a request carries no usable credentials.
var ErrUnauthenticated = utils.ErrUnauthorized

// Principal is the authenticated caller of one request: the loaded user and
// the exact token string that was presented.
type Principal struct {
	User  *models.User
	Token string
}

// UserID returns the id of the authenticated user
func (p *Principal) UserID() string {
	return p.User.ID
}

// Gate resolves bearer tokens into principals.
type Gate struct {
	tokens TokenVerifier
	users  UserLoader
	set    TokenSet
}

// NewGate creates a new Gate.
//
// Parameters:
//   - tokens: Verifies the token signature and expiry
//   - users: Loads the user named in the token
//   - set: Confirms the token has not been revoked
//
// Returns:
//   - A ready Gate
func NewGate(tokens TokenVerifier, users UserLoader, set TokenSet) *Gate {
	return &Gate{
		tokens: tokens,
		users:  users,
		set:    set,
	}
}

// Resolve turns an Authorization header value into a Principal.
//
// The token must verify, its user must exist, and the token must still be in
// that user's token set. A revoked but unexpired token is rejected. Storage
// failures other than a missing user are returned as internal errors.
func (g *Gate) Resolve(ctx context.Context, authorization string) (*Principal, error) {
	if !strings.HasPrefix(authorization, constants.BearerTokenPrefix) {
		return nil, ErrUnauthenticated
	}
	token := strings.TrimSpace(strings.TrimPrefix(authorization, constants.BearerTokenPrefix))
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, ErrUnauthenticated
		}
		return nil, utils.NewInternalServerError(err)
	}

	live, err := g.set.Exists(ctx, user.ID, token)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}
	if !live {
		return nil, ErrUnauthenticated
	}

	return &Principal{User: user, Token: token}, nil
}

// RequireAuth is a middleware that rejects requests without a live session token.
// Rejections are a 401 with no body. On success the Principal is stored on the
// request context for PrincipalFromContext.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.Resolve(r.Context(), r.Header.Get(constants.HeaderAuthorization))
		if err != nil {
			var appErr *utils.AppError
			if errors.As(err, &appErr) && appErr.StatusCode == http.StatusInternalServerError {
				utils.ErrorFromAppError(w, appErr)
				return
			}

			log.Debug().
				Err(err).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("Authentication failed")
			utils.Unauthorized(w)
			return
		}

		log.Debug().
			Str(constants.LogFieldUserID, principal.UserID()).
			Str("path", r.URL.Path).
			Msg("User authenticated")

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// WithPrincipal returns a copy of ctx carrying principal
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext extracts the Principal stored by RequireAuth.
//
// Returns:
//   - The principal if present
//   - A boolean indicating if it was found
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalKey).(*Principal)
	return principal, ok && principal != nil
}
