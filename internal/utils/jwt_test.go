package utils

import (
	"errors"
	"testing"
	"time"
)

func newTestCodec() *TokenCodec {
	return NewTokenCodec("test-secret", 15*time.Minute, 24*time.Hour, 30*time.Minute)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	codec := newTestCodec()
	token, err := codec.IssueAccess("8a4f7e62-9d3b-4c1a-b6e5-2f8d91c0a374", "admin")
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("unexpected error decoding token: %v", err)
	}
	if claims.UserID != "8a4f7e62-9d3b-4c1a-b6e5-2f8d91c0a374" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}
	if claims.UserRole != "admin" {
		t.Fatalf("unexpected role %q", claims.UserRole)
	}
	if claims.Refresh {
		t.Fatal("access token must not carry the refresh marker")
	}
}

func TestRefreshTokenCarriesMarker(t *testing.T) {
	codec := newTestCodec()
	token, err := codec.IssueRefresh("user-1", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claims.Refresh {
		t.Fatal("refresh token must carry the refresh marker")
	}
}

func TestPurposeTokenHasNoRole(t *testing.T) {
	codec := newTestCodec()
	token, err := codec.IssuePurpose("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserRole != "" {
		t.Fatalf("purpose token must not carry a role, got %q", claims.UserRole)
	}
	if claims.Refresh {
		t.Fatal("purpose token must not carry the refresh marker")
	}
}

func TestDecodeExpiredToken(t *testing.T) {
	codec := NewTokenCodec("test-secret", -time.Minute, 24*time.Hour, 30*time.Minute)
	token, err := codec.IssueAccess("user-1", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := codec.Decode(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	codec := newTestCodec()
	token, err := codec.IssueAccess("user-1", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := NewTokenCodec("other-secret", 15*time.Minute, 24*time.Hour, 30*time.Minute)
	if _, err := other.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeMalformedToken(t *testing.T) {
	codec := newTestCodec()
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := codec.Decode(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tok, err)
		}
	}
}

func TestDecodeTamperedToken(t *testing.T) {
	codec := newTestCodec()
	token, err := codec.IssueAccess("user-1", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := codec.Decode(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
