package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/platform/auth"
	"github.com/anvi-leather/api/internal/repositories"
)

// minInquiryContentLength is the shortest acceptable inquiry message, counted
// in runes so Vietnamese text is not penalised for multi-byte characters.
const minInquiryContentLength = 10

// InquiryServiceDeps bundles constructor inputs for the inquiry service.
type InquiryServiceDeps struct {
	Inquiries repositories.InquiryRepository
	Products  repositories.ProductRepository
	Publisher InquiryEventPublisher
	Logger    *zap.Logger
	Clock     func() time.Time
	IDGen     func() string
}

type inquiryService struct {
	inquiries repositories.InquiryRepository
	products  repositories.ProductRepository
	publisher InquiryEventPublisher
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
	clock     func() time.Time
	idGen     func() string
}

// NewInquiryService constructs the inquiry submission and management service.
func NewInquiryService(deps InquiryServiceDeps) (InquiryService, error) {
	if deps.Inquiries == nil {
		return nil, errors.New("inquiry service: inquiry repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return "inq_" + ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inquiryService{
		inquiries: deps.Inquiries,
		products:  deps.Products,
		publisher: deps.Publisher,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
		clock:     func() time.Time { return clock().UTC() },
		idGen:     idGen,
	}, nil
}

// Submit validates and stores an anonymous public inquiry. Client-side checks
// are never trusted: email format, content length and the image cap are all
// re-validated here.
func (s *inquiryService) Submit(ctx context.Context, cmd SubmitInquiryCommand) (CustomerInquiry, error) {
	var fields []FieldError

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		fields = append(fields, FieldError{Field: "email", Message: "must be a valid email address"})
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(cmd.Content))
	if utf8.RuneCountInString(content) < minInquiryContentLength {
		fields = append(fields, FieldError{Field: "content", Message: fmt.Sprintf("must be at least %d characters", minInquiryContentLength)})
	}

	if len(cmd.Images) > domain.MaxInquiryImages {
		fields = append(fields, FieldError{Field: "imageUrls", Message: fmt.Sprintf("at most %d images are allowed", domain.MaxInquiryImages)})
	}
	images := trimStrings(cmd.Images)
	for i, image := range images {
		if !validHTTPURL(image) {
			fields = append(fields, FieldError{Field: fmt.Sprintf("imageUrls[%d]", i), Message: "must be an http(s) URL"})
		}
	}

	if cmd.Quantity < 0 {
		fields = append(fields, FieldError{Field: "quantity", Message: "must not be negative"})
	}

	productID := strings.TrimSpace(cmd.ProductID)
	if productID != "" && s.products != nil {
		if _, err := s.products.FindByID(ctx, productID); err != nil {
			classified := classifyRepoError(err, "productId")
			if errors.Is(classified, ErrNotFound) {
				fields = append(fields, FieldError{Field: "productId", Message: "product does not exist"})
			} else {
				return CustomerInquiry{}, classified
			}
		}
	}

	if err := newValidationError(fields); err != nil {
		return CustomerInquiry{}, err
	}

	now := s.clock()
	inquiry := domain.CustomerInquiry{
		ID:        s.idGen(),
		Name:      s.sanitize(cmd.Name),
		Email:     email,
		Phone:     s.sanitize(cmd.Phone),
		Company:   s.sanitize(cmd.Company),
		Country:   s.sanitize(cmd.Country),
		ProductID: productID,
		Quantity:  cmd.Quantity,
		Content:   content,
		Images:    images,
		Status:    domain.InquiryStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.inquiries.Insert(ctx, inquiry); err != nil {
		return CustomerInquiry{}, classifyRepoError(err, "inquiry")
	}

	if s.publisher != nil {
		// Notification fan-out is best effort; the inquiry is already stored.
		if _, err := s.publisher.PublishInquiryEvent(ctx, InquiryEventMessage{
			Event:     "inquiry.created",
			InquiryID: inquiry.ID,
			ProductID: inquiry.ProductID,
			Name:      inquiry.Name,
			Email:     inquiry.Email,
			Company:   inquiry.Company,
			CreatedAt: inquiry.CreatedAt,
		}); err != nil {
			s.logger.Warn("publish inquiry event failed",
				zap.String("inquiryId", inquiry.ID),
				zap.Error(err))
		}
	}
	return inquiry, nil
}

func (s *inquiryService) ListInquiries(ctx context.Context, principal *Principal, query InquiryListQuery) (domain.Page[CustomerInquiry], error) {
	if err := requirePrincipal(principal, auth.RoleAdmin, auth.RoleSuperAdmin); err != nil {
		return domain.Page[CustomerInquiry]{}, err
	}
	statuses, ok := parseInquiryStatuses(query.Status)
	if !ok {
		return domain.Page[CustomerInquiry]{Items: []CustomerInquiry{}}, nil
	}
	page, err := s.inquiries.List(ctx, repositories.InquiryFilter{
		Status:     statuses,
		ProductID:  strings.TrimSpace(query.ProductID),
		Search:     strings.TrimSpace(query.Search),
		Pagination: query.Pagination,
	})
	if err != nil {
		return domain.Page[CustomerInquiry]{}, classifyRepoError(err, "inquiry")
	}
	return page, nil
}

func (s *inquiryService) GetInquiry(ctx context.Context, principal *Principal, inquiryID string) (CustomerInquiry, error) {
	if err := requirePrincipal(principal, auth.RoleAdmin, auth.RoleSuperAdmin); err != nil {
		return CustomerInquiry{}, err
	}
	inquiry, err := s.inquiries.FindByID(ctx, strings.TrimSpace(inquiryID))
	if err != nil {
		return CustomerInquiry{}, classifyRepoError(err, "inquiry")
	}
	return inquiry, nil
}

// UpdateInquiry applies back-office edits. Status transitions are deliberately
// unordered: an operator may move an inquiry between any two statuses.
func (s *inquiryService) UpdateInquiry(ctx context.Context, principal *Principal, inquiryID string, cmd UpdateInquiryCommand) (CustomerInquiry, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return CustomerInquiry{}, err
	}
	inquiry, err := s.inquiries.FindByID(ctx, strings.TrimSpace(inquiryID))
	if err != nil {
		return CustomerInquiry{}, classifyRepoError(err, "inquiry")
	}

	var fields []FieldError
	if cmd.Status != nil {
		status := domain.InquiryStatus(strings.TrimSpace(*cmd.Status))
		if !validInquiryStatus(status) {
			fields = append(fields, FieldError{Field: "status", Message: "unknown status"})
		} else {
			inquiry.Status = status
		}
	}
	if cmd.AdminNote != nil {
		inquiry.AdminNote = s.sanitize(*cmd.AdminNote)
	}
	if err := newValidationError(fields); err != nil {
		return CustomerInquiry{}, err
	}

	inquiry.UpdatedAt = s.clock()
	if err := s.inquiries.Update(ctx, inquiry); err != nil {
		return CustomerInquiry{}, classifyRepoError(err, "inquiry")
	}
	return inquiry, nil
}

func (s *inquiryService) DeleteInquiry(ctx context.Context, principal *Principal, inquiryID string) error {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return err
	}
	if err := s.inquiries.Delete(ctx, strings.TrimSpace(inquiryID)); err != nil {
		return classifyRepoError(err, "inquiry")
	}
	return nil
}

func (s *inquiryService) BulkDeleteInquiries(ctx context.Context, principal *Principal, ids []string) (BulkDeleteResult, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return BulkDeleteResult{}, err
	}
	result := BulkDeleteResult{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := s.DeleteInquiry(ctx, principal, id); err != nil {
			result.Failed = append(result.Failed, BulkDeleteFailure{ID: id, Reason: bulkFailureReason(err)})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result, nil
}

func (s *inquiryService) sanitize(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func parseInquiryStatuses(values []string) ([]domain.InquiryStatus, bool) {
	statuses := make([]domain.InquiryStatus, 0, len(values))
	for _, value := range values {
		status := domain.InquiryStatus(strings.TrimSpace(value))
		if status == "" {
			continue
		}
		if !validInquiryStatus(status) {
			return nil, false
		}
		statuses = append(statuses, status)
	}
	return statuses, true
}

func validInquiryStatus(status domain.InquiryStatus) bool {
	for _, candidate := range domain.InquiryStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}
