package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/services"
)

type stubAuthService struct {
	result  services.LoginResult
	err     error
	lastCmd services.LoginCommand
}

func (s *stubAuthService) Login(_ context.Context, cmd services.LoginCommand) (services.LoginResult, error) {
	s.lastCmd = cmd
	if s.err != nil {
		return services.LoginResult{}, s.err
	}
	return s.result, nil
}

var _ services.AuthService = (*stubAuthService)(nil)

func TestAuthLoginReturnsTokenAndProfile(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubAuthService{result: services.LoginResult{
		Token:     "header.payload.signature",
		ExpiresAt: expires,
		User: domain.AdminUser{
			ID:        "usr_1",
			Email:     "root@anvileather.vn",
			FirstName: "Lan",
			LastName:  "Nguyen",
			Role:      domain.AdminRoleSuperAdmin,
			Active:    true,
		},
	}}
	handlers := NewAuthHandlers(svc)

	body := []byte(`{"email":"root@anvileather.vn","password":"s3cret-pass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handlers.login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if svc.lastCmd.Email != "root@anvileather.vn" || svc.lastCmd.Password != "s3cret-pass" {
		t.Fatalf("unexpected login command: %+v", svc.lastCmd)
	}

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Token     string `json:"token"`
			ExpiresAt string `json:"expiresAt"`
			User      struct {
				Email    string `json:"email"`
				FullName string `json:"fullName"`
				Role     string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !response.Success || response.Data.Token != "header.payload.signature" {
		t.Fatalf("unexpected token payload: %+v", response.Data)
	}
	if response.Data.ExpiresAt != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected expiry: %q", response.Data.ExpiresAt)
	}
	if response.Data.User.FullName != "Lan Nguyen" || response.Data.User.Role != "SUPER_ADMIN" {
		t.Fatalf("unexpected user payload: %+v", response.Data.User)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: services.ErrInvalidCredentials}
	handlers := NewAuthHandlers(svc)

	body := []byte(`{"email":"root@anvileather.vn","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handlers.login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}

	var response struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Error != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials code, got %q", response.Error)
	}
}

func TestAuthLoginRejectsMalformedBody(t *testing.T) {
	handlers := NewAuthHandlers(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"email":`)))
	rr := httptest.NewRecorder()
	handlers.login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
