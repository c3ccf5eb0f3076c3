package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/platform/pagination"
	"github.com/anvi-leather/api/internal/services"
)

// AdminUserHandlers exposes back-office account management endpoints. Access
// control lives in the service layer; the handlers only thread the principal.
type AdminUserHandlers struct {
	users services.AdminUserService
}

// NewAdminUserHandlers constructs admin account handlers.
func NewAdminUserHandlers(users services.AdminUserService) *AdminUserHandlers {
	return &AdminUserHandlers{users: users}
}

// Routes registers admin account endpoints.
func (h *AdminUserHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/users", func(rt chi.Router) {
		rt.Get("/", h.list)
		rt.Post("/", h.create)
		rt.Post("/bulk-delete", h.bulkDelete)
		rt.Get("/{userID}", h.get)
		rt.Put("/{userID}", h.update)
		rt.Delete("/{userID}", h.delete)
		rt.Patch("/{userID}/status", h.setActive)
	})
}

func (h *AdminUserHandlers) list(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	values := r.URL.Query()
	query := services.AdminUserListQuery{
		Role:       parseMultiParam(values["role"]),
		Search:     strings.TrimSpace(values.Get("search")),
		Pagination: paginationFrom(r),
	}

	active, err := parseOptionalBoolParam("isActive", values.Get("isActive"))
	if err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}
	query.Active = active

	page, err := h.users.ListAdminUsers(r.Context(), principalFrom(r), query)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	items := make([]adminUserPayload, 0, len(page.Items))
	for _, user := range page.Items {
		items = append(items, newAdminUserPayload(user))
	}

	writeList(w, items, pagination.NewMeta(page.Total, pagination.Params{
		Page:     query.Pagination.Page,
		PageSize: query.Pagination.PageSize,
	}))
}

func (h *AdminUserHandlers) get(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeBadRequest(r.Context(), w, "user id is required")
		return
	}

	user, err := h.users.GetAdminUser(r.Context(), principalFrom(r), userID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newAdminUserPayload(user))
}

type createAdminUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"isActive"`
}

func (h *AdminUserHandlers) create(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	var req createAdminUserRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	user, err := h.users.CreateAdminUser(r.Context(), principalFrom(r), services.CreateAdminUserCommand{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Active:    req.IsActive,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusCreated, newAdminUserPayload(user))
}

type updateAdminUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
	Password  *string `json:"password"`
}

func (h *AdminUserHandlers) update(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeBadRequest(r.Context(), w, "user id is required")
		return
	}

	var req updateAdminUserRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	user, err := h.users.UpdateAdminUser(r.Context(), principalFrom(r), userID, services.UpdateAdminUserCommand{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Active:    req.IsActive,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newAdminUserPayload(user))
}

type setActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

// setActive toggles account activation without accepting any other fields.
func (h *AdminUserHandlers) setActive(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeBadRequest(r.Context(), w, "user id is required")
		return
	}

	var req setActiveRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}
	if req.IsActive == nil {
		writeBadRequest(r.Context(), w, "isActive is required")
		return
	}

	user, err := h.users.SetAdminUserActive(r.Context(), principalFrom(r), userID, *req.IsActive)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newAdminUserPayload(user))
}

func (h *AdminUserHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeBadRequest(r.Context(), w, "user id is required")
		return
	}

	if err := h.users.DeleteAdminUser(r.Context(), principalFrom(r), userID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type bulkDeleteResponse struct {
	Deleted []string                     `json:"deleted"`
	Failed  []services.BulkDeleteFailure `json:"failed"`
}

func newBulkDeleteResponse(result services.BulkDeleteResult) bulkDeleteResponse {
	response := bulkDeleteResponse{
		Deleted: result.Deleted,
		Failed:  result.Failed,
	}
	if response.Deleted == nil {
		response.Deleted = []string{}
	}
	if response.Failed == nil {
		response.Failed = []services.BulkDeleteFailure{}
	}
	return response
}

func (h *AdminUserHandlers) bulkDelete(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	var req bulkDeleteRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeBadRequest(r.Context(), w, "ids must not be empty")
		return
	}

	result, err := h.users.BulkDeleteAdminUsers(r.Context(), principalFrom(r), req.IDs)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newBulkDeleteResponse(result))
}

type adminUserPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	FullName    string `json:"fullName"`
	Role        string `json:"role"`
	IsActive    bool   `json:"isActive"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func newAdminUserPayload(user domain.AdminUser) adminUserPayload {
	payload := adminUserPayload{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		Role:      string(user.Role),
		IsActive:  user.Active,
		CreatedAt: formatTimestamp(user.CreatedAt),
		UpdatedAt: formatTimestamp(user.UpdatedAt),
	}
	if user.LastLoginAt != nil {
		payload.LastLoginAt = formatTimestamp(*user.LastLoginAt)
	}
	return payload
}
