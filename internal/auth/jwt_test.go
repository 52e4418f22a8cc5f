package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yasinhessnawi1/taskmanager/internal/config"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

const testSecret = "test-secret"

func TestNewTokenAuthority(t *testing.T) {
	authority := NewTokenAuthority(testSecret, 0, "")

	if authority.Expiry() != constants.SessionTokenValidity {
		t.Errorf("Expected default expiry %v, got %v", constants.SessionTokenValidity, authority.Expiry())
	}
	if authority.issuer != constants.DefaultJWTIssuer {
		t.Errorf("Expected default issuer %q, got %q", constants.DefaultJWTIssuer, authority.issuer)
	}

	fromConfig := NewTokenAuthorityFromConfig(&config.JWTSettings{Secret: testSecret, Expiry: time.Hour, Issuer: "test-issuer"})
	if fromConfig.Expiry() != time.Hour {
		t.Errorf("Expected expiry 1h, got %v", fromConfig.Expiry())
	}
}

func TestIssueAndVerify(t *testing.T) {
	authority := NewTokenAuthority(testSecret, time.Hour, "test-issuer")
	userID := "5b0c1f0e-8a55-4d3c-9a4e-3f1f6c2b7d10"

	token, expiresAt, err := authority.Issue(userID)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}
	if time.Until(expiresAt) > time.Hour || time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("Expected expiry about an hour away, got %v", expiresAt)
	}

	claims, err := authority.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("Expected _id %q, got %q", userID, claims.UserID)
	}
	if claims.Subject != userID {
		t.Errorf("Expected subject %q, got %q", userID, claims.Subject)
	}
	if claims.Issuer != "test-issuer" {
		t.Errorf("Expected issuer test-issuer, got %q", claims.Issuer)
	}
}

func TestIssueProducesDistinctTokens(t *testing.T) {
	authority := NewTokenAuthority(testSecret, time.Hour, "")
	fixed := time.Now()
	authority.now = func() time.Time { return fixed }

	first, _, err := authority.Issue("user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	second, _, err := authority.Issue("user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if first == second {
		t.Error("Expected two tokens issued at the same instant to differ")
	}
}

func TestVerifyRejects(t *testing.T) {
	authority := NewTokenAuthority(testSecret, time.Hour, "")
	valid, _, err := authority.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expiredAuthority := NewTokenAuthority(testSecret, time.Hour, "")
	expiredAuthority.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredAuthority.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	otherSecret, _, err := NewTokenAuthority("another-secret", time.Hour, "").Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"Expired", expired, utils.ErrExpiredToken},
		{"Wrong secret", otherSecret, utils.ErrInvalidToken},
		{"Tampered payload", tampered, utils.ErrInvalidToken},
		{"Malformed", "not.a.token", utils.ErrInvalidToken},
		{"Empty", "", utils.ErrInvalidToken},
		{"Missing user id", noUser, utils.ErrInvalidToken},
		{"None algorithm", unsigned, utils.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := authority.Verify(tt.token)
			if claims != nil {
				t.Errorf("Expected nil claims, got %+v", claims)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
			if utils.StatusCode(err) != 401 {
				t.Errorf("Expected status 401, got %d", utils.StatusCode(err))
			}
		})
	}
}
