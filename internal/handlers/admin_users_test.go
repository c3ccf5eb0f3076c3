package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/services"
)

type stubAdminUserService struct {
	user domain.AdminUser
	err  error

	lastPrincipal *services.Principal
	lastCreate    services.CreateAdminUserCommand
	lastUpdate    services.UpdateAdminUserCommand
	lastActive    *bool
	bulkResult    services.BulkDeleteResult
}

var _ services.AdminUserService = (*stubAdminUserService)(nil)

func (s *stubAdminUserService) ListAdminUsers(_ context.Context, principal *services.Principal, _ services.AdminUserListQuery) (domain.Page[domain.AdminUser], error) {
	s.lastPrincipal = principal
	if s.err != nil {
		return domain.Page[domain.AdminUser]{}, s.err
	}
	return domain.Page[domain.AdminUser]{Items: []domain.AdminUser{s.user}, Total: 1}, nil
}

func (s *stubAdminUserService) GetAdminUser(_ context.Context, principal *services.Principal, _ string) (domain.AdminUser, error) {
	s.lastPrincipal = principal
	if s.err != nil {
		return domain.AdminUser{}, s.err
	}
	return s.user, nil
}

func (s *stubAdminUserService) CreateAdminUser(_ context.Context, principal *services.Principal, cmd services.CreateAdminUserCommand) (domain.AdminUser, error) {
	s.lastPrincipal = principal
	s.lastCreate = cmd
	if s.err != nil {
		return domain.AdminUser{}, s.err
	}
	return s.user, nil
}

func (s *stubAdminUserService) UpdateAdminUser(_ context.Context, principal *services.Principal, _ string, cmd services.UpdateAdminUserCommand) (domain.AdminUser, error) {
	s.lastPrincipal = principal
	s.lastUpdate = cmd
	if s.err != nil {
		return domain.AdminUser{}, s.err
	}
	return s.user, nil
}

func (s *stubAdminUserService) DeleteAdminUser(_ context.Context, principal *services.Principal, _ string) error {
	s.lastPrincipal = principal
	return s.err
}

func (s *stubAdminUserService) SetAdminUserActive(_ context.Context, principal *services.Principal, _ string, active bool) (domain.AdminUser, error) {
	s.lastPrincipal = principal
	s.lastActive = &active
	if s.err != nil {
		return domain.AdminUser{}, s.err
	}
	return s.user, nil
}

func (s *stubAdminUserService) BulkDeleteAdminUsers(_ context.Context, principal *services.Principal, _ []string) (services.BulkDeleteResult, error) {
	s.lastPrincipal = principal
	if s.err != nil {
		return services.BulkDeleteResult{}, s.err
	}
	return s.bulkResult, nil
}

func newAdminUserRouter(svc services.AdminUserService) chi.Router {
	router := chi.NewRouter()
	NewAdminUserHandlers(svc).Routes(router)
	return router
}

func TestAdminCreateUserNeverEchoesPassword(t *testing.T) {
	svc := &stubAdminUserService{user: domain.AdminUser{
		ID:        "usr_2",
		Email:     "sales@anvileather.vn",
		FirstName: "Binh",
		LastName:  "Tran",
		Role:      domain.AdminRoleAdmin,
		Active:    true,
	}}
	router := newAdminUserRouter(svc)

	body := []byte(`{"email":"Sales@AnviLeather.vn","password":"s3cret-pass","firstName":"Binh","lastName":"Tran","role":"ADMIN"}`)
	req := withSuperAdmin(httptest.NewRequest(http.MethodPost, "/users/", bytes.NewReader(body)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if svc.lastCreate.Password != "s3cret-pass" {
		t.Fatalf("expected password forwarded to service, got %q", svc.lastCreate.Password)
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("s3cret-pass")) || bytes.Contains(rr.Body.Bytes(), []byte("password")) {
		t.Fatalf("response must not leak credentials: %s", rr.Body.String())
	}

	var response struct {
		Data struct {
			Email    string `json:"email"`
			FullName string `json:"fullName"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Data.Email != "sales@anvileather.vn" || response.Data.FullName != "Binh Tran" {
		t.Fatalf("unexpected user payload: %+v", response.Data)
	}
}

func TestAdminUpdateUserSelfProtectionSurfacesValidation(t *testing.T) {
	svc := &stubAdminUserService{err: &services.ValidationError{Fields: []services.FieldError{
		{Field: "role", Message: "cannot change your own role"},
	}}}
	router := newAdminUserRouter(svc)

	body := []byte(`{"role":"ADMIN"}`)
	req := withSuperAdmin(httptest.NewRequest(http.MethodPut, "/users/usr_1", bytes.NewReader(body)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	var response struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(response.Fields) != 1 || response.Fields[0].Field != "role" {
		t.Fatalf("expected role field error, got %+v", response.Fields)
	}
}

func TestAdminSetUserActiveRequiresFlag(t *testing.T) {
	svc := &stubAdminUserService{}
	router := newAdminUserRouter(svc)

	req := withSuperAdmin(httptest.NewRequest(http.MethodPatch, "/users/usr_2/status", bytes.NewReader([]byte(`{}`))))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without isActive, got %d", rr.Code)
	}
	if svc.lastActive != nil {
		t.Fatal("service must not be called without isActive")
	}
}

func TestAdminSetUserActiveTogglesFlag(t *testing.T) {
	svc := &stubAdminUserService{user: domain.AdminUser{ID: "usr_2", Active: false}}
	router := newAdminUserRouter(svc)

	req := withSuperAdmin(httptest.NewRequest(http.MethodPatch, "/users/usr_2/status", bytes.NewReader([]byte(`{"isActive":false}`))))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if svc.lastActive == nil || *svc.lastActive {
		t.Fatalf("expected deactivation, got %v", svc.lastActive)
	}
}

func TestAdminDeleteUserSelfForbidden(t *testing.T) {
	svc := &stubAdminUserService{err: services.ErrForbidden}
	router := newAdminUserRouter(svc)

	req := withSuperAdmin(httptest.NewRequest(http.MethodDelete, "/users/usr_1", nil))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}
}
