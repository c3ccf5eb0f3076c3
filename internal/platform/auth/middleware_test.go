package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticVerifier struct {
	principal Principal
	err       error
}

func (v staticVerifier) Verify(string) (Principal, error) {
	return v.principal, v.err
}

func TestRequireRole(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Fatalf("expected principal in context")
		}
		w.Header().Set("X-Principal", principal.ID)
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing header is unauthenticated", func(t *testing.T) {
		authn := NewAuthenticator(staticVerifier{})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/categories", nil)

		authn.RequireRole(RoleSuperAdmin)(okHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
	})

	t.Run("expired token is unauthenticated", func(t *testing.T) {
		authn := NewAuthenticator(staticVerifier{err: ErrTokenExpired})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/categories", nil)
		req.Header.Set("Authorization", "Bearer expired")

		authn.RequireRole(RoleSuperAdmin)(okHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		authn := NewAuthenticator(staticVerifier{principal: Principal{ID: "u1", Role: RoleAdmin}})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.Header.Set("Authorization", "Bearer token")

		authn.RequireRole(RoleSuperAdmin)(okHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 got %d", rec.Code)
		}
	})

	t.Run("allowed role passes principal through", func(t *testing.T) {
		authn := NewAuthenticator(staticVerifier{principal: Principal{ID: "u1", Role: RoleAdmin}})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/categories", nil)
		req.Header.Set("Authorization", "Bearer token")

		authn.RequireRole(RoleSuperAdmin, RoleAdmin)(okHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 got %d", rec.Code)
		}
		if got := rec.Header().Get("X-Principal"); got != "u1" {
			t.Fatalf("expected principal u1 got %q", got)
		}
	})
}

func TestExtractBearerToken(t *testing.T) {
	if _, ok := extractBearerToken(""); ok {
		t.Fatalf("expected empty header to fail")
	}
	if _, ok := extractBearerToken("Basic abc"); ok {
		t.Fatalf("expected non-bearer scheme to fail")
	}
	token, ok := extractBearerToken("bearer abc123")
	if !ok || token != "abc123" {
		t.Fatalf("expected abc123 got %q ok=%v", token, ok)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("expected length error")
	}
}
