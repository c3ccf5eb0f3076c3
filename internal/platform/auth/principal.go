package auth

import (
	"context"
	"strings"
)

// Role constants used throughout the API when checking authorisation boundaries.
const (
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// Principal captures the authenticated back-office account making a request.
// It is threaded explicitly into service mutations so authorisation decisions
// never depend on ambient state.
type Principal struct {
	ID    string
	Email string
	Role  string
}

// HasRole reports whether the principal carries the requested role (case-insensitive).
func (p Principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	return strings.EqualFold(p.Role, role)
}

// HasAnyRole reports whether the principal carries any of the provided roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

type contextKey string

const principalContextKey contextKey = "github.com/anvi-leather/api/internal/platform/auth/principal"

// WithPrincipal stores the principal within the context for downstream handlers.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext retrieves the principal previously stored in context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(Principal)
	if !ok || principal.ID == "" {
		return Principal{}, false
	}
	return principal, true
}
