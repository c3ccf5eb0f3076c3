package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anvi-leather/api/internal/repositories"
)

// Sentinel errors shared across the service layer. Handlers translate these
// into transport status codes.
var (
	// ErrUnauthenticated indicates the caller presented no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates an authenticated caller lacks permission for the
	// requested operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates the target entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates a failed login. It deliberately does not
	// distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUpstreamFailure indicates a dependency (datastore, object storage)
	// failed while handling an otherwise valid request.
	ErrUpstreamFailure = errors.New("upstream failure")
)

// FieldError names a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field rejected by input validation so the
// caller can surface them all at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		names = append(names, field.Field)
	}
	return "validation failed: " + strings.Join(names, ", ")
}

// newValidationError builds a ValidationError, returning nil when no fields
// were rejected.
func newValidationError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ConflictError reports a uniqueness or referential violation. Field names the
// conflicting attribute; BlockedBy counts dependants blocking a delete.
type ConflictError struct {
	Field     string
	Message   string
	BlockedBy int
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "conflict"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("conflict on %s", e.Field)
	}
	return "conflict"
}

// requirePrincipal distinguishes a missing caller identity from an
// insufficient role so handlers can answer 401 and 403 respectively.
func requirePrincipal(principal *Principal, roles ...string) error {
	if principal == nil || strings.TrimSpace(principal.ID) == "" {
		return ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	if !principal.HasAnyRole(roles...) {
		return ErrForbidden
	}
	return nil
}

// classifyRepoError maps repository failures onto the service error taxonomy.
// conflictField names the attribute a uniqueness violation would concern.
func classifyRepoError(err error, conflictField string) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case repoErr.IsConflict():
			return &ConflictError{
				Field:   conflictField,
				Message: fmt.Sprintf("%s already in use", conflictField),
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
}
