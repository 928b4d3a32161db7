package utils

import (
	"testing"
	"time"
)

var testKey = []byte("test-secret-key")

func TestJwtTokenRoundTrip(t *testing.T) {
	token, err := CreateJwtToken(42, "a@b.com", "Ada", "Lovelace", testKey, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	claims, err := VerifyToken(token, testKey)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.ID != 42 || claims.Email != "a@b.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyToken_StripsBearerPrefix(t *testing.T) {
	token, err := CreateJwtToken(1, "a@b.com", "Ada", "Lovelace", testKey, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if _, err := VerifyToken("Bearer "+token, testKey); err != nil {
		t.Fatalf("verify with Bearer prefix: %v", err)
	}
}

func TestVerifyToken_RejectsWrongKey(t *testing.T) {
	token, err := CreateJwtToken(1, "a@b.com", "Ada", "Lovelace", testKey, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if _, err := VerifyToken(token, []byte("other-key")); err == nil {
		t.Fatalf("expected verification to fail with the wrong key")
	}
}

func TestVerifyToken_RejectsExpired(t *testing.T) {
	token, err := CreateJwtToken(1, "a@b.com", "Ada", "Lovelace", testKey, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if _, err := VerifyToken(token, testKey); err == nil {
		t.Fatalf("expected verification to fail for an expired token")
	}
}
