package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anvi-leather/api/internal/platform/auth"
	"github.com/anvi-leather/api/internal/platform/httpx"
	"github.com/anvi-leather/api/internal/platform/pagination"
	"github.com/anvi-leather/api/internal/services"
)

const maxRequestBody = 256 * 1024

// envelope is the JSON shape returned by every successful endpoint.
type envelope struct {
	Success bool             `json:"success"`
	Data    any              `json:"data"`
	Meta    *pagination.Meta `json:"meta,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeList(w http.ResponseWriter, data any, meta pagination.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data, Meta: &meta})
}

// writeServiceError translates the service error taxonomy into HTTP responses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		httpx.WriteError(ctx, w, httpx.NewError("validation_failed", "request validation failed", http.StatusBadRequest).
			WithDetails(map[string]any{"success": false, "fields": validationErr.Fields}))
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		details := map[string]any{"success": false}
		if conflictErr.Field != "" {
			details["field"] = conflictErr.Field
		}
		if conflictErr.BlockedBy > 0 {
			details["blockedBy"] = conflictErr.BlockedBy
		}
		httpx.WriteError(ctx, w, httpx.NewError("conflict", conflictErr.Error(), http.StatusConflict).WithDetails(details))
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized).
			WithDetails(map[string]any{"success": false}))
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "email or password is incorrect", http.StatusUnauthorized).
			WithDetails(map[string]any{"success": false}))
	case errors.Is(err, services.ErrForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "account role does not permit this operation", http.StatusForbidden).
			WithDetails(map[string]any{"success": false}))
	case errors.Is(err, services.ErrNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", "resource not found", http.StatusNotFound).
			WithDetails(map[string]any{"success": false}))
	case errors.Is(err, services.ErrUpstreamFailure):
		httpx.WriteError(ctx, w, httpx.NewError("upstream_failure", "a downstream dependency failed", http.StatusInternalServerError).
			WithDetails(map[string]any{"success": false}))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", err.Error(), http.StatusInternalServerError).
			WithDetails(map[string]any{"success": false}))
	}
}

func writeBadRequest(ctx context.Context, w http.ResponseWriter, message string) {
	httpx.WriteError(ctx, w, httpx.NewError("invalid_request", message, http.StatusBadRequest).
		WithDetails(map[string]any{"success": false}))
}

// decodeRequest parses a JSON body, rejecting oversized or trailing payloads.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer func() { _ = body.Close() }()

	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// principalFrom extracts the authenticated caller, or nil for anonymous requests.
func principalFrom(r *http.Request) *services.Principal {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return nil
	}
	return &principal
}

func parseOptionalBoolParam(name, raw string) (*bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	switch strings.ToLower(trimmed) {
	case "true", "1":
		value := true
		return &value, nil
	case "false", "0":
		value := false
		return &value, nil
	default:
		return nil, fmt.Errorf("invalid %s: expected true or false", name)
	}
}

func parseOptionalInt64Param(name, raw string) (*int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: expected an integer", name)
	}
	if value < 0 {
		return nil, fmt.Errorf("invalid %s: must not be negative", name)
	}
	return &value, nil
}

// parseMultiParam collects repeated and comma-separated query values.
func parseMultiParam(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	var result []string
	for _, entry := range values {
		for _, part := range strings.Split(entry, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func copyStringSlice(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
