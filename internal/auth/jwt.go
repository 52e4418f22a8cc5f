package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/yasinhessnawi1/taskmanager/internal/config"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// ErrInvalidSigningMethod is returned by the key func for non-HMAC tokens
var ErrInvalidSigningMethod = errors.New("invalid signing method")

// Claims represents the claims in a session token
type Claims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// TokenAuthority signs and verifies session tokens with one shared secret.
// The secret is fixed at construction and never changes afterwards.
type TokenAuthority struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenAuthority creates a new TokenAuthority.
//
// Parameters:
//   - secret: The HMAC signing secret
//   - expiry: Token lifetime, zero selects the default session validity
//   - issuer: The issuer claim, empty selects the default issuer
//
// Returns:
//   - A ready TokenAuthority
func NewTokenAuthority(secret string, expiry time.Duration, issuer string) *TokenAuthority {
	if expiry <= 0 {
		expiry = constants.SessionTokenValidity
	}
	if issuer == "" {
		issuer = constants.DefaultJWTIssuer
	}
	return &TokenAuthority{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}
}

// NewTokenAuthorityFromConfig creates a TokenAuthority from the JWT settings
func NewTokenAuthorityFromConfig(cfg *config.JWTSettings) *TokenAuthority {
	return NewTokenAuthority(cfg.Secret, cfg.Expiry, cfg.Issuer)
}

// Expiry returns the lifetime given to issued tokens
func (a *TokenAuthority) Expiry() time.Duration {
	return a.expiry
}

// Issue signs a new token for userID.
//
// Every token carries a fresh JWT ID, so two tokens issued for the same
// user within the same second are still different strings.
//
// Returns:
//   - The signed token
//   - Its expiry time
//   - An error if signing fails
func (a *TokenAuthority) Issue(userID string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.expiry)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
// Every failure is an unauthenticated AppError.
func (a *TokenAuthority) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return a.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.NewExpiredTokenError()
		}
		return nil, utils.NewInvalidTokenError()
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, utils.NewInvalidTokenError()
	}

	return claims, nil
}
