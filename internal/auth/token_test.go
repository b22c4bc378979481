package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42, "ann@x.com", []string{RoleUser, RoleAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("claims user id: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected subject 42, got %d", id)
	}
	if claims.Email != "ann@x.com" {
		t.Fatalf("expected email ann@x.com, got %q", claims.Email)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != RoleUser || claims.Roles[1] != RoleAdmin {
		t.Fatalf("roles not preserved: %v", claims.Roles)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := &TokenIssuer{secret: []byte("test-secret"), ttl: -time.Minute}

	token, err := issuer.Issue(1, "ann@x.com", []string{RoleUser})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue(1, "ann@x.com", []string{RoleUser})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := NewTokenIssuer("secret-b", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}
