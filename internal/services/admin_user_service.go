package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/platform/auth"
	"github.com/anvi-leather/api/internal/repositories"
)

// AdminUserServiceDeps bundles constructor inputs for the admin user service.
type AdminUserServiceDeps struct {
	Users repositories.AdminUserRepository
	Clock func() time.Time
	IDGen func() string
}

type adminUserService struct {
	users repositories.AdminUserRepository
	clock func() time.Time
	idGen func() string
}

// ErrAdminUserRepositoryMissing indicates the repository dependency is absent.
var ErrAdminUserRepositoryMissing = errors.New("admin user service: repository is not configured")

// NewAdminUserService constructs the admin user service.
func NewAdminUserService(deps AdminUserServiceDeps) (AdminUserService, error) {
	if deps.Users == nil {
		return nil, ErrAdminUserRepositoryMissing
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return "usr_" + ulid.Make().String() }
	}
	return &adminUserService{
		users: deps.Users,
		clock: func() time.Time { return clock().UTC() },
		idGen: idGen,
	}, nil
}

func (s *adminUserService) ListAdminUsers(ctx context.Context, principal *Principal, query AdminUserListQuery) (domain.Page[AdminUser], error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return domain.Page[AdminUser]{}, err
	}

	roles, ok := parseAdminRoles(query.Role)
	if !ok {
		return domain.Page[AdminUser]{Items: []AdminUser{}}, nil
	}
	page, err := s.users.List(ctx, repositories.AdminUserFilter{
		Role:       roles,
		Active:     query.Active,
		Search:     strings.TrimSpace(query.Search),
		Pagination: query.Pagination,
	})
	if err != nil {
		return domain.Page[AdminUser]{}, classifyRepoError(err, "user")
	}
	for i := range page.Items {
		page.Items[i].PasswordHash = ""
	}
	return page, nil
}

func (s *adminUserService) GetAdminUser(ctx context.Context, principal *Principal, userID string) (AdminUser, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return AdminUser{}, err
	}
	user, err := s.users.FindByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return AdminUser{}, classifyRepoError(err, "user")
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *adminUserService) CreateAdminUser(ctx context.Context, principal *Principal, cmd CreateAdminUserCommand) (AdminUser, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return AdminUser{}, err
	}

	var fields []FieldError
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		fields = append(fields, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	role := domain.AdminRole(strings.TrimSpace(cmd.Role))
	if role == "" {
		role = domain.AdminRoleAdmin
	}
	if !validAdminRole(role) {
		fields = append(fields, FieldError{Field: "role", Message: "unknown role"})
	}
	if strings.TrimSpace(cmd.FirstName) == "" {
		fields = append(fields, FieldError{Field: "firstName", Message: "is required"})
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		fields = append(fields, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	if err := newValidationError(fields); err != nil {
		return AdminUser{}, err
	}

	now := s.clock()
	active := true
	if cmd.Active != nil {
		active = *cmd.Active
	}
	user := domain.AdminUser{
		ID:           s.idGen(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(cmd.FirstName),
		LastName:     strings.TrimSpace(cmd.LastName),
		Role:         role,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AdminUser{}, &ConflictError{Field: "email", Message: fmt.Sprintf("email %q is already in use", email)}
	} else if classified := classifyRepoError(err, "email"); !errors.Is(classified, ErrNotFound) {
		return AdminUser{}, classified
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return AdminUser{}, classifyRepoError(err, "email")
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *adminUserService) UpdateAdminUser(ctx context.Context, principal *Principal, userID string, cmd UpdateAdminUserCommand) (AdminUser, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return AdminUser{}, err
	}
	userID = strings.TrimSpace(userID)
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return AdminUser{}, classifyRepoError(err, "user")
	}

	self := principal.ID == user.ID
	var fields []FieldError

	if cmd.Role != nil {
		role := domain.AdminRole(strings.TrimSpace(*cmd.Role))
		if !validAdminRole(role) {
			fields = append(fields, FieldError{Field: "role", Message: "unknown role"})
		} else if self && role != user.Role {
			fields = append(fields, FieldError{Field: "role", Message: "cannot change your own role"})
		} else {
			user.Role = role
		}
	}
	if cmd.Active != nil {
		if self && !*cmd.Active {
			fields = append(fields, FieldError{Field: "isActive", Message: "cannot deactivate your own account"})
		} else {
			user.Active = *cmd.Active
		}
	}
	if cmd.FirstName != nil {
		if strings.TrimSpace(*cmd.FirstName) == "" {
			fields = append(fields, FieldError{Field: "firstName", Message: "is required"})
		} else {
			user.FirstName = strings.TrimSpace(*cmd.FirstName)
		}
	}
	if cmd.LastName != nil {
		user.LastName = strings.TrimSpace(*cmd.LastName)
	}
	if cmd.Password != nil {
		hash, err := auth.HashPassword(*cmd.Password)
		if err != nil {
			fields = append(fields, FieldError{Field: "password", Message: "must be at least 8 characters"})
		} else {
			user.PasswordHash = hash
		}
	}
	if err := newValidationError(fields); err != nil {
		return AdminUser{}, err
	}

	user.UpdatedAt = s.clock()
	if err := s.users.Update(ctx, user); err != nil {
		return AdminUser{}, classifyRepoError(err, "user")
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *adminUserService) DeleteAdminUser(ctx context.Context, principal *Principal, userID string) error {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if principal.ID == userID {
		return fmt.Errorf("%w: cannot delete your own account", ErrForbidden)
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return classifyRepoError(err, "user")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return classifyRepoError(err, "user")
	}
	return nil
}

func (s *adminUserService) SetAdminUserActive(ctx context.Context, principal *Principal, userID string, active bool) (AdminUser, error) {
	return s.UpdateAdminUser(ctx, principal, userID, UpdateAdminUserCommand{Active: &active})
}

func (s *adminUserService) BulkDeleteAdminUsers(ctx context.Context, principal *Principal, ids []string) (BulkDeleteResult, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return BulkDeleteResult{}, err
	}
	result := BulkDeleteResult{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := s.DeleteAdminUser(ctx, principal, id); err != nil {
			result.Failed = append(result.Failed, BulkDeleteFailure{ID: id, Reason: bulkFailureReason(err)})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result, nil
}

func parseAdminRoles(values []string) ([]domain.AdminRole, bool) {
	roles := make([]domain.AdminRole, 0, len(values))
	for _, value := range values {
		role := domain.AdminRole(strings.TrimSpace(value))
		if role == "" {
			continue
		}
		if !validAdminRole(role) {
			return nil, false
		}
		roles = append(roles, role)
	}
	return roles, true
}

func validAdminRole(role domain.AdminRole) bool {
	for _, candidate := range domain.AdminRoles {
		if candidate == role {
			return true
		}
	}
	return false
}
