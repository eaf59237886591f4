package app

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue("3b631aca-7b07-4f01-b8dc-78ae6a1a2e24", "a@x.edu")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "3b631aca-7b07-4f01-b8dc-78ae6a1a2e24" {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if claims.Email != "a@x.edu" {
		t.Fatalf("email = %q", claims.Email)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Fatalf("token validity = %v, want about 24h", remaining)
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a").Issue("user-1", "a@x.edu")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := NewTokenIssuer("secret-b").Verify(token); err == nil {
		t.Fatal("expected verification failure with a different secret")
	}
}

func TestVerify_RejectsTamperedToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	token, err := issuer.Issue("user-1", "a@x.edu")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := issuer.Verify(tampered); err == nil {
		t.Fatal("expected verification failure for tampered signature")
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	secret := "test-secret"
	claims := SessionClaims{
		Email: "a@x.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	if _, err := NewTokenIssuer(secret).Verify(expired); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := NewTokenIssuer("test-secret").Verify(unsigned); err == nil {
		t.Fatal("expected verification failure for alg=none token")
	}
}
