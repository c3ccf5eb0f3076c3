package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/platform/httpx"
	"github.com/anvi-leather/api/internal/services"
)

const (
	defaultInquiryRateLimit  = 10
	defaultInquiryRateWindow = time.Minute
)

// InquiryHandlers exposes the public inquiry form endpoints: upload target
// issuance and inquiry submission.
type InquiryHandlers struct {
	inquiries services.InquiryService
	uploads   services.UploadService
	limiter   rateLimiter
}

// InquiryOption customises construction of InquiryHandlers.
type InquiryOption func(*InquiryHandlers)

// WithInquiryService injects the inquiry service dependency.
func WithInquiryService(svc services.InquiryService) InquiryOption {
	return func(h *InquiryHandlers) {
		h.inquiries = svc
	}
}

// WithInquiryUploadService injects the upload service dependency.
func WithInquiryUploadService(svc services.UploadService) InquiryOption {
	return func(h *InquiryHandlers) {
		h.uploads = svc
	}
}

// WithInquiryRateLimit throttles submissions per client address.
func WithInquiryRateLimit(limit int, window time.Duration, clock func() time.Time) InquiryOption {
	return func(h *InquiryHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, clock)
	}
}

// NewInquiryHandlers constructs handlers for the public inquiry endpoints.
func NewInquiryHandlers(opts ...InquiryOption) *InquiryHandlers {
	handlers := &InquiryHandlers{
		limiter: newSimpleRateLimiter(defaultInquiryRateLimit, defaultInquiryRateWindow, nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(handlers)
		}
	}
	return handlers
}

// Routes registers the public inquiry endpoints.
func (h *InquiryHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/upload-url", h.createUploadTargets)
	r.Post("/inquiry", h.submit)
}

type uploadTargetsRequest struct {
	Files []uploadFileRequest `json:"files"`
}

type uploadFileRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type uploadTargetPayload struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	ObjectKey string `json:"objectKey"`
	ExpiresAt string `json:"expiresAt"`
}

func (h *InquiryHandlers) createUploadTargets(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}
	if h.limiter != nil && !h.limiter.Allow(r.RemoteAddr) {
		httpx.WriteError(r.Context(), w, httpx.NewError("rate_limited", "too many requests, slow down", http.StatusTooManyRequests).
			WithDetails(map[string]any{"success": false}))
		return
	}

	var req uploadTargetsRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	files := make([]services.UploadFileSpec, 0, len(req.Files))
	for _, file := range req.Files {
		files = append(files, services.UploadFileSpec{
			FileName:    file.FileName,
			ContentType: file.ContentType,
			Size:        file.Size,
		})
	}

	targets, err := h.uploads.CreateUploadTargets(r.Context(), services.CreateUploadTargetsCommand{Files: files})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	payloads := make([]uploadTargetPayload, 0, len(targets))
	for _, target := range targets {
		payloads = append(payloads, uploadTargetPayload{
			UploadURL: target.UploadURL,
			PublicURL: target.PublicURL,
			ObjectKey: target.ObjectKey,
			ExpiresAt: formatTimestamp(target.ExpiresAt),
		})
	}
	writeData(w, http.StatusCreated, payloads)
}

type submitInquiryRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Company   string   `json:"company"`
	Country   string   `json:"country"`
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Content   string   `json:"content"`
	Images    []string `json:"images"`
}

func (h *InquiryHandlers) submit(w http.ResponseWriter, r *http.Request) {
	if h.inquiries == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}
	if h.limiter != nil && !h.limiter.Allow(r.RemoteAddr) {
		httpx.WriteError(r.Context(), w, httpx.NewError("rate_limited", "too many requests, slow down", http.StatusTooManyRequests).
			WithDetails(map[string]any{"success": false}))
		return
	}

	var req submitInquiryRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	inquiry, err := h.inquiries.Submit(r.Context(), services.SubmitInquiryCommand{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Country:   req.Country,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Content:   req.Content,
		Images:    req.Images,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusCreated, newInquiryPayload(inquiry))
}

type inquiryPayload struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Company   string   `json:"company,omitempty"`
	Country   string   `json:"country,omitempty"`
	ProductID string   `json:"productId,omitempty"`
	Quantity  int      `json:"quantity,omitempty"`
	Content   string   `json:"content"`
	Images    []string `json:"images"`
	Status    string   `json:"status"`
	AdminNote string   `json:"adminNote,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

func newInquiryPayload(inquiry domain.CustomerInquiry) inquiryPayload {
	return inquiryPayload{
		ID:        inquiry.ID,
		Name:      inquiry.Name,
		Email:     inquiry.Email,
		Phone:     inquiry.Phone,
		Company:   inquiry.Company,
		Country:   inquiry.Country,
		ProductID: inquiry.ProductID,
		Quantity:  inquiry.Quantity,
		Content:   inquiry.Content,
		Images:    copyStringSlice(inquiry.Images),
		Status:    string(inquiry.Status),
		AdminNote: inquiry.AdminNote,
		CreatedAt: formatTimestamp(inquiry.CreatedAt),
		UpdatedAt: formatTimestamp(inquiry.UpdatedAt),
	}
}
