package storage

import (
	"context"
	"errors"

	"github.com/anvi-leather/api/internal/platform/auth"
)

// ErrPermissionDenied is returned when the caller lacks permission to access the asset.
var ErrPermissionDenied = errors.New("storage: permission denied")

// AuthorizeDownload validates whether the provided principal may access the asset owned by ownerID.
func AuthorizeDownload(principal *auth.Principal, ownerID string, allowAnonymous bool) error {
	if allowAnonymous {
		return nil
	}
	if principal == nil {
		return ErrPermissionDenied
	}
	if ownerID != "" && principal.ID == ownerID {
		return nil
	}
	if principal.HasAnyRole(auth.RoleAdmin, auth.RoleSuperAdmin) {
		return nil
	}
	return ErrPermissionDenied
}

// AuthorizeDownloadFromContext extracts the principal from context and validates access.
func AuthorizeDownloadFromContext(ctx context.Context, ownerID string, allowAnonymous bool) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		if !allowAnonymous {
			return nil, ErrPermissionDenied
		}
		return nil, nil
	}
	if err := AuthorizeDownload(&principal, ownerID, allowAnonymous); err != nil {
		return nil, err
	}
	return &principal, nil
}
