package api

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestBearerTokenSuccess(t *testing.T) {
	token, err := bearerToken("  Bearer header.payload.signature ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "header.payload.signature" {
		t.Fatalf("unexpected token content: %s", token)
	}
}

func TestBearerTokenMissing(t *testing.T) {
	if _, err := bearerToken(""); err == nil || err.Error() != "missing authorization header" {
		t.Fatalf("expected missing header error, got %v", err)
	}
}

func TestBearerTokenManyPeriods(t *testing.T) {
	header := "Bearer " + strings.Repeat(".", 1000)
	if _, err := bearerToken(header); err == nil || err.Error() != "bad auth header" {
		t.Fatalf("expected bad auth header error, got %v", err)
	}
	if _, err := bearerToken("Basic a.b.c"); err != errBadAuthorization {
		t.Fatalf("expected bad auth header for basic scheme, got %v", err)
	}
}

func signHS256(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestUserIDFromBearerHS256(t *testing.T) {
	secret := []byte("test-secret")
	signed := signHS256(t, secret, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"nbf": time.Now().Add(-time.Minute).Unix(),
	})

	auth := NewSharedSecretAuth(secret)
	userID, err := auth.UserIDFromAuthHeader("Bearer " + signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("unexpected user id: %s", userID)
	}
}

func TestUserIDFromBearerRejects(t *testing.T) {
	secret := []byte("test-secret")
	auth := NewSharedSecretAuth(secret)

	cases := map[string]string{
		"expired": signHS256(t, secret, jwt.MapClaims{
			"sub": "u",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"no sub": signHS256(t, secret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
		"wrong secret": signHS256(t, []byte("other"), jwt.MapClaims{
			"sub": "u",
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
		"no exp": signHS256(t, secret, jwt.MapClaims{"sub": "u"}),
	}
	for name, token := range cases {
		if _, err := auth.UserIDFromBearer(token); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestAudienceAndIssuerChecked(t *testing.T) {
	secret := []byte("s")
	auth := NewSharedSecretAuth(secret)
	auth.Audience = "api://todo"
	auth.Issuer = "https://issuer/"

	good := signHS256(t, secret, jwt.MapClaims{
		"sub": "u",
		"aud": "api://todo",
		"iss": "https://issuer/",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := auth.UserIDFromBearer(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := signHS256(t, secret, jwt.MapClaims{
		"sub": "u",
		"aud": "api://other",
		"iss": "https://issuer/",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := auth.UserIDFromBearer(bad); err == nil || err.Error() != "invalid audience" {
		t.Fatalf("expected invalid audience, got %v", err)
	}
}

func TestKeyForTokenWithoutJWKS(t *testing.T) {
	auth := NewAuth(nil, "", "", time.Minute)
	if _, err := auth.keyForToken(&jwt.Token{Header: map[string]any{"kid": "k"}}); err == nil {
		t.Fatalf("expected error without jwks")
	}
}

func TestSingleUser(t *testing.T) {
	id, err := SingleUser("local").UserIDFromAuthHeader("")
	if err != nil || id != "local" {
		t.Fatalf("unexpected single user result %q %v", id, err)
	}
}
