package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/anvi-leather/api/internal/platform/pagination"
	"github.com/anvi-leather/api/internal/services"
)

// AdminInquiryHandlers exposes back-office inquiry management endpoints.
type AdminInquiryHandlers struct {
	inquiries services.InquiryService
}

// NewAdminInquiryHandlers constructs admin inquiry handlers.
func NewAdminInquiryHandlers(inquiries services.InquiryService) *AdminInquiryHandlers {
	return &AdminInquiryHandlers{inquiries: inquiries}
}

// Routes registers admin inquiry endpoints.
func (h *AdminInquiryHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/inquiries", func(rt chi.Router) {
		rt.Get("/", h.list)
		rt.Post("/bulk-delete", h.bulkDelete)
		rt.Get("/{inquiryID}", h.get)
		rt.Put("/{inquiryID}", h.update)
		rt.Delete("/{inquiryID}", h.delete)
		rt.Patch("/{inquiryID}/status", h.setStatus)
	})
}

func (h *AdminInquiryHandlers) list(w http.ResponseWriter, r *http.Request) {
	if h.inquiries == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	values := r.URL.Query()
	query := services.InquiryListQuery{
		Status:     parseMultiParam(values["status"]),
		ProductID:  strings.TrimSpace(values.Get("productId")),
		Search:     strings.TrimSpace(values.Get("search")),
		Pagination: paginationFrom(r),
	}

	page, err := h.inquiries.ListInquiries(r.Context(), principalFrom(r), query)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	items := make([]inquiryPayload, 0, len(page.Items))
	for _, inquiry := range page.Items {
		items = append(items, newInquiryPayload(inquiry))
	}

	writeList(w, items, pagination.NewMeta(page.Total, pagination.Params{
		Page:     query.Pagination.Page,
		PageSize: query.Pagination.PageSize,
	}))
}

func (h *AdminInquiryHandlers) get(w http.ResponseWriter, r *http.Request) {
	if h.inquiries == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	inquiryID := strings.TrimSpace(chi.URLParam(r, "inquiryID"))
	if inquiryID == "" {
		writeBadRequest(r.Context(), w, "inquiry id is required")
		return
	}

	inquiry, err := h.inquiries.GetInquiry(r.Context(), principalFrom(r), inquiryID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newInquiryPayload(inquiry))
}

type updateInquiryRequest struct {
	Status    *string `json:"status"`
	AdminNote *string `json:"adminNote"`
}

func (h *AdminInquiryHandlers) update(w http.ResponseWriter, r *http.Request) {
	if h.inquiries == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	inquiryID := strings.TrimSpace(chi.URLParam(r, "inquiryID"))
	if inquiryID == "" {
		writeBadRequest(r.Context(), w, "inquiry id is required")
		return
	}

	var req updateInquiryRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	inquiry, err := h.inquiries.UpdateInquiry(r.Context(), principalFrom(r), inquiryID, services.UpdateInquiryCommand{
		Status:    req.Status,
		AdminNote: req.AdminNote,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newInquiryPayload(inquiry))
}

// setStatus updates only the status field. Transitions between inquiry
// statuses are unordered, so any defined status is accepted.
func (h *AdminInquiryHandlers) setStatus(w http.ResponseWriter, r *http.Request) {
	if h.inquiries == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	inquiryID := strings.TrimSpace(chi.URLParam(r, "inquiryID"))
	if inquiryID == "" {
		writeBadRequest(r.Context(), w, "inquiry id is required")
		return
	}

	var req setStatusRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		writeBadRequest(r.Context(), w, "status is required")
		return
	}

	inquiry, err := h.inquiries.UpdateInquiry(r.Context(), principalFrom(r), inquiryID, services.UpdateInquiryCommand{
		Status: &status,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newInquiryPayload(inquiry))
}

func (h *AdminInquiryHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if h.inquiries == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	inquiryID := strings.TrimSpace(chi.URLParam(r, "inquiryID"))
	if inquiryID == "" {
		writeBadRequest(r.Context(), w, "inquiry id is required")
		return
	}

	if err := h.inquiries.DeleteInquiry(r.Context(), principalFrom(r), inquiryID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminInquiryHandlers) bulkDelete(w http.ResponseWriter, r *http.Request) {
	if h.inquiries == nil {
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

	result, err := h.inquiries.BulkDeleteInquiries(r.Context(), principalFrom(r), req.IDs)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newBulkDeleteResponse(result))
}
