package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/platform/auth"
	"github.com/anvi-leather/api/internal/platform/textutil"
	"github.com/anvi-leather/api/internal/repositories"
)

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Categories repositories.CategoryRepository
	Products   repositories.ProductRepository
	Inquiries  repositories.InquiryRepository
	Logger     *zap.Logger
	Clock      func() time.Time
	IDGen      func(prefix string) string
}

type catalogService struct {
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
	inquiries  repositories.InquiryRepository
	logger     *zap.Logger
	clock      func() time.Time
	idGen      func(prefix string) string
}

var (
	// ErrCatalogRepositoryMissing indicates a repository dependency is absent.
	ErrCatalogRepositoryMissing = errors.New("catalog service: repository is not configured")
)

// NewCatalogService constructs the catalog service with the supplied dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Categories == nil {
		return nil, fmt.Errorf("catalog service: category repository is required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("catalog service: product repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func(prefix string) string { return prefix + ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogService{
		categories: deps.Categories,
		products:   deps.Products,
		inquiries:  deps.Inquiries,
		logger:     logger,
		clock:      func() time.Time { return clock().UTC() },
		idGen:      idGen,
	}, nil
}

// Categories -----------------------------------------------------------------

func (s *catalogService) ListCategories(ctx context.Context, query CategoryListQuery) (domain.Page[Category], error) {
	if s.categories == nil {
		return domain.Page[Category]{}, ErrCatalogRepositoryMissing
	}

	statuses, ok := parseCategoryStatuses(query.Status, query.PublicOnly)
	if !ok {
		return domain.Page[Category]{Items: []Category{}}, nil
	}

	page, err := s.categories.List(ctx, repositories.CategoryFilter{
		Status:     statuses,
		Featured:   query.Featured,
		Search:     strings.TrimSpace(query.Search),
		Sort:       normalizeCatalogSort(query.Sort),
		SortDesc:   query.SortDesc,
		Pagination: query.Pagination,
	})
	if err != nil {
		return domain.Page[Category]{}, classifyRepoError(err, "category")
	}
	return page, nil
}

func (s *catalogService) GetCategory(ctx context.Context, categoryID string) (Category, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return Category{}, fmt.Errorf("%w: category", ErrNotFound)
	}
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return Category{}, classifyRepoError(err, "category")
	}
	return category, nil
}

func (s *catalogService) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Category{}, fmt.Errorf("%w: category", ErrNotFound)
	}
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return Category{}, classifyRepoError(err, "category")
	}
	// Public lookups only surface published categories.
	if category.Status != domain.CategoryStatusActive {
		return Category{}, fmt.Errorf("%w: category", ErrNotFound)
	}
	return category, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, principal *Principal, cmd SaveCategoryCommand) (Category, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return Category{}, err
	}

	category, err := s.buildCategory(cmd)
	if err != nil {
		return Category{}, err
	}
	now := s.clock()
	category.ID = s.idGen("cat_")
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := s.checkCategorySlug(ctx, category.Slug, ""); err != nil {
		return Category{}, err
	}
	if err := s.categories.Insert(ctx, category); err != nil {
		return Category{}, classifyRepoError(err, "slug")
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, principal *Principal, categoryID string, cmd SaveCategoryCommand) (Category, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return Category{}, err
	}
	categoryID = strings.TrimSpace(categoryID)
	existing, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return Category{}, classifyRepoError(err, "category")
	}

	category, err := s.buildCategory(cmd)
	if err != nil {
		return Category{}, err
	}
	category.ID = existing.ID
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = s.clock()

	if category.Slug != existing.Slug {
		if err := s.checkCategorySlug(ctx, category.Slug, existing.ID); err != nil {
			return Category{}, err
		}
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return Category{}, classifyRepoError(err, "slug")
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, principal *Principal, categoryID string) error {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return err
	}
	categoryID = strings.TrimSpace(categoryID)
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return classifyRepoError(err, "category")
	}

	count, err := s.products.CountByCategory(ctx, categoryID)
	if err != nil {
		return classifyRepoError(err, "category")
	}
	if count > 0 {
		return &ConflictError{
			Field:     "products",
			Message:   fmt.Sprintf("category has %d associated products", count),
			BlockedBy: count,
		}
	}
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return classifyRepoError(err, "category")
	}
	return nil
}

func (s *catalogService) SetCategoryStatus(ctx context.Context, principal *Principal, categoryID string, status CategoryStatus) (Category, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return Category{}, err
	}
	if !validCategoryStatus(status) {
		return Category{}, &ValidationError{Fields: []FieldError{{Field: "status", Message: "unknown status"}}}
	}
	category, err := s.categories.FindByID(ctx, strings.TrimSpace(categoryID))
	if err != nil {
		return Category{}, classifyRepoError(err, "category")
	}
	category.Status = status
	category.UpdatedAt = s.clock()
	if err := s.categories.Update(ctx, category); err != nil {
		return Category{}, classifyRepoError(err, "category")
	}
	return category, nil
}

func (s *catalogService) BulkDeleteCategories(ctx context.Context, principal *Principal, ids []string) (BulkDeleteResult, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return BulkDeleteResult{}, err
	}
	result := BulkDeleteResult{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := s.DeleteCategory(ctx, principal, id); err != nil {
			result.Failed = append(result.Failed, BulkDeleteFailure{ID: id, Reason: bulkFailureReason(err)})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result, nil
}

// Products -------------------------------------------------------------------

func (s *catalogService) ListProducts(ctx context.Context, query ProductListQuery) (domain.Page[Product], error) {
	if s.products == nil {
		return domain.Page[Product]{}, ErrCatalogRepositoryMissing
	}

	statuses, ok := parseProductStatuses(query.Status, query.PublicOnly)
	if !ok {
		return domain.Page[Product]{Items: []Product{}}, nil
	}

	page, err := s.products.List(ctx, repositories.ProductFilter{
		Status:     statuses,
		CategoryID: strings.TrimSpace(query.CategoryID),
		Featured:   query.Featured,
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
		Search:     strings.TrimSpace(query.Search),
		Sort:       normalizeCatalogSort(query.Sort),
		SortDesc:   query.SortDesc,
		Pagination: query.Pagination,
	})
	if err != nil {
		return domain.Page[Product]{}, classifyRepoError(err, "product")
	}
	return page, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product", ErrNotFound)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Product{}, classifyRepoError(err, "product")
	}
	return product, nil
}

func (s *catalogService) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Product{}, fmt.Errorf("%w: product", ErrNotFound)
	}
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return Product{}, classifyRepoError(err, "product")
	}
	if product.Status != domain.ProductStatusActive {
		return Product{}, fmt.Errorf("%w: product", ErrNotFound)
	}
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, principal *Principal, cmd SaveProductCommand) (Product, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return Product{}, err
	}

	product, err := s.buildProduct(cmd)
	if err != nil {
		return Product{}, err
	}
	if err := s.checkProductCategory(ctx, product.CategoryID); err != nil {
		return Product{}, err
	}
	now := s.clock()
	product.ID = s.idGen("prod_")
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.checkProductSlug(ctx, product.Slug, ""); err != nil {
		return Product{}, err
	}
	if err := s.products.Insert(ctx, product); err != nil {
		return Product{}, classifyRepoError(err, "slug")
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, principal *Principal, productID string, cmd SaveProductCommand) (Product, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return Product{}, err
	}
	productID = strings.TrimSpace(productID)
	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Product{}, classifyRepoError(err, "product")
	}

	product, err := s.buildProduct(cmd)
	if err != nil {
		return Product{}, err
	}
	if err := s.checkProductCategory(ctx, product.CategoryID); err != nil {
		return Product{}, err
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.clock()

	if product.Slug != existing.Slug {
		if err := s.checkProductSlug(ctx, product.Slug, existing.ID); err != nil {
			return Product{}, err
		}
	}
	if err := s.products.Update(ctx, product); err != nil {
		return Product{}, classifyRepoError(err, "slug")
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, principal *Principal, productID string) error {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return err
	}
	productID = strings.TrimSpace(productID)
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return classifyRepoError(err, "product")
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return classifyRepoError(err, "product")
	}
	// Inquiries keep working when their product disappears; the reference is
	// cleared, never cascaded. Best effort: the delete already succeeded.
	if s.inquiries != nil {
		if err := s.inquiries.ClearProductRef(ctx, productID); err != nil {
			s.logger.Warn("clear inquiry product references failed",
				zap.String("productId", productID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *catalogService) SetProductStatus(ctx context.Context, principal *Principal, productID string, status ProductStatus) (Product, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return Product{}, err
	}
	if !validProductStatus(status) {
		return Product{}, &ValidationError{Fields: []FieldError{{Field: "status", Message: "unknown status"}}}
	}
	product, err := s.products.FindByID(ctx, strings.TrimSpace(productID))
	if err != nil {
		return Product{}, classifyRepoError(err, "product")
	}
	product.Status = status
	product.UpdatedAt = s.clock()
	if err := s.products.Update(ctx, product); err != nil {
		return Product{}, classifyRepoError(err, "product")
	}
	return product, nil
}

func (s *catalogService) BulkDeleteProducts(ctx context.Context, principal *Principal, ids []string) (BulkDeleteResult, error) {
	if err := requirePrincipal(principal, auth.RoleSuperAdmin); err != nil {
		return BulkDeleteResult{}, err
	}
	result := BulkDeleteResult{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := s.DeleteProduct(ctx, principal, id); err != nil {
			result.Failed = append(result.Failed, BulkDeleteFailure{ID: id, Reason: bulkFailureReason(err)})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result, nil
}

// Validation helpers ---------------------------------------------------------

func (s *catalogService) buildCategory(cmd SaveCategoryCommand) (Category, error) {
	var fields []FieldError

	name := cmd.Name.Clone()
	if name.IsEmpty() {
		fields = append(fields, FieldError{Field: "name", Message: "at least one locale is required"})
	}

	slug := strings.TrimSpace(cmd.Slug)
	if slug == "" {
		slug = domain.GenerateSlug(name.Resolve(domain.LocaleVI, ""))
	}
	if !domain.ValidSlug(slug) {
		fields = append(fields, FieldError{Field: "slug", Message: "must match [a-z0-9-]"})
	}

	status := domain.CategoryStatus(strings.TrimSpace(cmd.Status))
	if status == "" {
		status = domain.CategoryStatusDraft
	}
	if !validCategoryStatus(status) {
		fields = append(fields, FieldError{Field: "status", Message: "unknown status"})
	}

	if cmd.SortOrder < 0 {
		fields = append(fields, FieldError{Field: "sortOrder", Message: "must not be negative"})
	}
	thumbnail := strings.TrimSpace(cmd.Thumbnail)
	if thumbnail != "" && !validHTTPURL(thumbnail) {
		fields = append(fields, FieldError{Field: "thumbnail", Message: "must be an http(s) URL"})
	}

	if err := newValidationError(fields); err != nil {
		return Category{}, err
	}
	return Category{
		Name:        name,
		Slug:        slug,
		Description: cmd.Description.Clone(),
		Thumbnail:   thumbnail,
		Featured:    cmd.Featured,
		Status:      status,
		SortOrder:   cmd.SortOrder,
	}, nil
}

func (s *catalogService) buildProduct(cmd SaveProductCommand) (Product, error) {
	var fields []FieldError

	name := cmd.Name.Clone()
	if name.IsEmpty() {
		fields = append(fields, FieldError{Field: "name", Message: "at least one locale is required"})
	}

	slug := strings.TrimSpace(cmd.Slug)
	if slug == "" {
		slug = domain.GenerateSlug(name.Resolve(domain.LocaleVI, ""))
	}
	if !domain.ValidSlug(slug) {
		fields = append(fields, FieldError{Field: "slug", Message: "must match [a-z0-9-]"})
	}

	if strings.TrimSpace(cmd.CategoryID) == "" {
		fields = append(fields, FieldError{Field: "categoryId", Message: "is required"})
	}

	if cmd.Price != nil && *cmd.Price < 0 {
		fields = append(fields, FieldError{Field: "price", Message: "must not be negative"})
	}
	if cmd.OriginalPrice != nil && *cmd.OriginalPrice < 0 {
		fields = append(fields, FieldError{Field: "originalPrice", Message: "must not be negative"})
	}
	if cmd.Price != nil && cmd.OriginalPrice != nil && *cmd.OriginalPrice < *cmd.Price {
		fields = append(fields, FieldError{Field: "originalPrice", Message: "must be greater than or equal to price"})
	}

	status := domain.ProductStatus(strings.TrimSpace(cmd.Status))
	if status == "" {
		status = domain.ProductStatusDraft
	}
	if !validProductStatus(status) {
		fields = append(fields, FieldError{Field: "status", Message: "unknown status"})
	}

	if cmd.MOQ < 0 {
		fields = append(fields, FieldError{Field: "moq", Message: "must not be negative"})
	}
	if cmd.SortOrder < 0 {
		fields = append(fields, FieldError{Field: "sortOrder", Message: "must not be negative"})
	}
	for i, image := range cmd.Images {
		if !validHTTPURL(strings.TrimSpace(image)) {
			fields = append(fields, FieldError{Field: fmt.Sprintf("images[%d]", i), Message: "must be an http(s) URL"})
		}
	}

	if err := newValidationError(fields); err != nil {
		return Product{}, err
	}
	return Product{
		Name:           name,
		Slug:           slug,
		Description:    cmd.Description.Clone(),
		ShortDesc:      cmd.ShortDesc.Clone(),
		CategoryID:     strings.TrimSpace(cmd.CategoryID),
		Price:          cmd.Price,
		OriginalPrice:  cmd.OriginalPrice,
		Images:         trimStrings(cmd.Images),
		Materials:      cmd.Materials.Clone(),
		Colors:         trimStrings(cmd.Colors),
		MOQ:            cmd.MOQ,
		LeadTime:       cmd.LeadTime.Clone(),
		Specifications: cloneSpecifications(cmd.Specifications),
		SEOTitle:       cmd.SEOTitle.Clone(),
		SEODesc:        cmd.SEODesc.Clone(),
		Featured:       cmd.Featured,
		Status:         status,
		SortOrder:      cmd.SortOrder,
	}, nil
}

// checkCategorySlug rejects a slug already owned by a different category. The
// store's slug claim remains the backstop against concurrent inserts.
func (s *catalogService) checkCategorySlug(ctx context.Context, slug, selfID string) error {
	existing, err := s.categories.FindBySlug(ctx, slug)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return &ConflictError{Field: "slug", Message: fmt.Sprintf("slug %q is already in use", slug)}
		}
		return nil
	case errors.Is(classifyRepoError(err, "slug"), ErrNotFound):
		return nil
	default:
		return classifyRepoError(err, "slug")
	}
}

func (s *catalogService) checkProductSlug(ctx context.Context, slug, selfID string) error {
	existing, err := s.products.FindBySlug(ctx, slug)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return &ConflictError{Field: "slug", Message: fmt.Sprintf("slug %q is already in use", slug)}
		}
		return nil
	case errors.Is(classifyRepoError(err, "slug"), ErrNotFound):
		return nil
	default:
		return classifyRepoError(err, "slug")
	}
}

// checkProductCategory rejects writes whose category reference does not resolve.
func (s *catalogService) checkProductCategory(ctx context.Context, categoryID string) error {
	if strings.TrimSpace(categoryID) == "" {
		return nil
	}
	_, err := s.categories.FindByID(ctx, categoryID)
	if err == nil {
		return nil
	}
	classified := classifyRepoError(err, "categoryId")
	if errors.Is(classified, ErrNotFound) {
		return &ValidationError{Fields: []FieldError{{Field: "categoryId", Message: "category does not exist"}}}
	}
	return classified
}

func parseCategoryStatuses(values []string, publicOnly bool) ([]domain.CategoryStatus, bool) {
	if publicOnly {
		return []domain.CategoryStatus{domain.CategoryStatusActive}, true
	}
	statuses := make([]domain.CategoryStatus, 0, len(values))
	for _, value := range values {
		status := domain.CategoryStatus(strings.TrimSpace(value))
		if status == "" {
			continue
		}
		if !validCategoryStatus(status) {
			// A known filter key with an unknown value matches nothing.
			return nil, false
		}
		statuses = append(statuses, status)
	}
	return statuses, true
}

func parseProductStatuses(values []string, publicOnly bool) ([]domain.ProductStatus, bool) {
	if publicOnly {
		return []domain.ProductStatus{domain.ProductStatusActive}, true
	}
	statuses := make([]domain.ProductStatus, 0, len(values))
	for _, value := range values {
		status := domain.ProductStatus(strings.TrimSpace(value))
		if status == "" {
			continue
		}
		if !validProductStatus(status) {
			return nil, false
		}
		statuses = append(statuses, status)
	}
	return statuses, true
}

func normalizeCatalogSort(sort string) repositories.CatalogSort {
	switch repositories.CatalogSort(strings.TrimSpace(sort)) {
	case repositories.CatalogSortName:
		return repositories.CatalogSortName
	case repositories.CatalogSortPrice:
		return repositories.CatalogSortPrice
	case repositories.CatalogSortCreatedAt:
		return repositories.CatalogSortCreatedAt
	case repositories.CatalogSortSortOrder:
		return repositories.CatalogSortSortOrder
	default:
		return repositories.CatalogSortDefault
	}
}

func validCategoryStatus(status domain.CategoryStatus) bool {
	for _, candidate := range domain.CategoryStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func validProductStatus(status domain.ProductStatus) bool {
	for _, candidate := range domain.ProductStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func validHTTPURL(raw string) bool {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func trimStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func cloneSpecifications(specs map[string]LocalizedText) map[string]LocalizedText {
	if len(specs) == 0 {
		return nil
	}
	out := make(map[string]LocalizedText, len(specs))
	for key, value := range textutil.NormalizeKeys(specs) {
		out[key] = value.Clone()
	}
	return out
}

// bulkFailureReason flattens a service error into the stable reason code
// reported per item by bulk deletes.
func bulkFailureReason(err error) string {
	var conflict *ConflictError
	var validation *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &validation):
		return "validation_failed"
	default:
		return "upstream_failure"
	}
}
