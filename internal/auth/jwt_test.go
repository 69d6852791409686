package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerifyToken(t *testing.T) {
	tokens := NewTokens("test-secret-key", time.Hour)

	token, err := tokens.Issue(1, "admin@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if claims.UserID() != 1 {
		t.Errorf("expected user id 1, got %d", claims.UserID())
	}
	if claims.Subject != "1" {
		t.Errorf("expected subject '1', got %q", claims.Subject)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("expected email 'admin@example.com', got %q", claims.Email)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestTokensHaveUniqueIDs(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	a, _ := tokens.Issue(1, "a@example.com")
	b, _ := tokens.Issue(1, "a@example.com")

	ca, _ := tokens.Verify(a)
	cb, _ := tokens.Verify(b)
	if ca.ID == cb.ID {
		t.Error("expected distinct JTIs")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _ := NewTokens("secret1", time.Hour).Issue(1, "a@example.com")

	_, err := NewTokens("secret2", time.Hour).Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyInvalid(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Verify("not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := tokens.Issue(1, "a@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tokens.now = time.Now
	if _, err := tokens.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Email: "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := NewTokens("secret", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for alg none, got %v", err)
	}
}

func TestVerifyRejectsBadSubject(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))

	if _, err := NewTokens("secret", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for bad subject, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	tokens := NewTokens("test", 0)
	token, _ := tokens.Issue(1, "a@example.com")
	claims, _ := tokens.Verify(token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(DefaultTokenTTL)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
