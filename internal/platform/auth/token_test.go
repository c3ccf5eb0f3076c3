package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	manager, err := NewTokenManager("unit-test-secret", WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	principal := Principal{ID: "adm_01", Email: "ops@example.com", Role: RoleSuperAdmin}
	token, err := manager.Issue(principal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != principal {
		t.Fatalf("expected %+v got %+v", principal, got)
	}
}

func TestTokenManagerExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	manager, err := NewTokenManager("unit-test-secret", WithTokenTTL(time.Hour), WithClock(clock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := manager.Issue(Principal{ID: "adm_01", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := manager.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired got %v", err)
	}
}

func TestTokenManagerVerifyUsesInjectedClock(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	manager, err := NewTokenManager("unit-test-secret", WithTokenTTL(time.Hour), WithClock(clock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := manager.Issue(Principal{ID: "adm_01", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Just inside the window.
	now = now.Add(59 * time.Minute)
	if _, err := manager.Verify(token); err != nil {
		t.Fatalf("expected token still valid, got %v", err)
	}

	// Rewound before issuance the token is not yet acceptable.
	now = now.Add(-2 * time.Hour)
	if _, err := manager.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestTokenManagerRejectsForeignTokens(t *testing.T) {
	issuerA, err := NewTokenManager("secret-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	issuerB, err := NewTokenManager("secret-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := issuerA.Issue(Principal{ID: "adm_01", Role: RoleSuperAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuerB.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
	if _, err := issuerA.Verify("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("  "); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
