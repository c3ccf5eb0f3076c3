package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/services"
)

// stubCatalogService records the last query and principal it saw and serves
// canned data. Individual behaviours are overridable per test via errors.
type stubCatalogService struct {
	categories []domain.Category
	products   []domain.Product

	lastCategoryQuery services.CategoryListQuery
	lastProductQuery  services.ProductListQuery
	lastPrincipal     *services.Principal
	lastCategoryCmd   services.SaveCategoryCommand
	lastProductCmd    services.SaveProductCommand
	lastStatus        string

	err        error
	bulkResult services.BulkDeleteResult
}

var _ services.CatalogService = (*stubCatalogService)(nil)

func (s *stubCatalogService) ListCategories(_ context.Context, query services.CategoryListQuery) (domain.Page[domain.Category], error) {
	s.lastCategoryQuery = query
	if s.err != nil {
		return domain.Page[domain.Category]{}, s.err
	}
	return domain.Page[domain.Category]{Items: s.categories, Total: len(s.categories)}, nil
}

func (s *stubCatalogService) GetCategory(_ context.Context, categoryID string) (domain.Category, error) {
	if s.err != nil {
		return domain.Category{}, s.err
	}
	for _, category := range s.categories {
		if category.ID == categoryID {
			return category, nil
		}
	}
	return domain.Category{}, services.ErrNotFound
}

func (s *stubCatalogService) GetCategoryBySlug(_ context.Context, slug string) (domain.Category, error) {
	if s.err != nil {
		return domain.Category{}, s.err
	}
	for _, category := range s.categories {
		if category.Slug == slug {
			return category, nil
		}
	}
	return domain.Category{}, services.ErrNotFound
}

func (s *stubCatalogService) CreateCategory(_ context.Context, principal *services.Principal, cmd services.SaveCategoryCommand) (domain.Category, error) {
	s.lastPrincipal = principal
	s.lastCategoryCmd = cmd
	if s.err != nil {
		return domain.Category{}, s.err
	}
	return domain.Category{ID: "cat_1", Name: cmd.Name, Slug: cmd.Slug, Status: domain.CategoryStatus(cmd.Status)}, nil
}

func (s *stubCatalogService) UpdateCategory(_ context.Context, principal *services.Principal, categoryID string, cmd services.SaveCategoryCommand) (domain.Category, error) {
	s.lastPrincipal = principal
	s.lastCategoryCmd = cmd
	if s.err != nil {
		return domain.Category{}, s.err
	}
	return domain.Category{ID: categoryID, Name: cmd.Name, Slug: cmd.Slug, Status: domain.CategoryStatus(cmd.Status)}, nil
}

func (s *stubCatalogService) DeleteCategory(_ context.Context, principal *services.Principal, _ string) error {
	s.lastPrincipal = principal
	return s.err
}

func (s *stubCatalogService) SetCategoryStatus(_ context.Context, principal *services.Principal, categoryID string, status domain.CategoryStatus) (domain.Category, error) {
	s.lastPrincipal = principal
	s.lastStatus = string(status)
	if s.err != nil {
		return domain.Category{}, s.err
	}
	return domain.Category{ID: categoryID, Status: status}, nil
}

func (s *stubCatalogService) BulkDeleteCategories(_ context.Context, principal *services.Principal, _ []string) (services.BulkDeleteResult, error) {
	s.lastPrincipal = principal
	if s.err != nil {
		return services.BulkDeleteResult{}, s.err
	}
	return s.bulkResult, nil
}

func (s *stubCatalogService) ListProducts(_ context.Context, query services.ProductListQuery) (domain.Page[domain.Product], error) {
	s.lastProductQuery = query
	if s.err != nil {
		return domain.Page[domain.Product]{}, s.err
	}
	return domain.Page[domain.Product]{Items: s.products, Total: len(s.products)}, nil
}

func (s *stubCatalogService) GetProduct(_ context.Context, productID string) (domain.Product, error) {
	if s.err != nil {
		return domain.Product{}, s.err
	}
	for _, product := range s.products {
		if product.ID == productID {
			return product, nil
		}
	}
	return domain.Product{}, services.ErrNotFound
}

func (s *stubCatalogService) GetProductBySlug(_ context.Context, slug string) (domain.Product, error) {
	if s.err != nil {
		return domain.Product{}, s.err
	}
	for _, product := range s.products {
		if product.Slug == slug {
			return product, nil
		}
	}
	return domain.Product{}, services.ErrNotFound
}

func (s *stubCatalogService) CreateProduct(_ context.Context, principal *services.Principal, cmd services.SaveProductCommand) (domain.Product, error) {
	s.lastPrincipal = principal
	s.lastProductCmd = cmd
	if s.err != nil {
		return domain.Product{}, s.err
	}
	return domain.Product{ID: "prod_1", Name: cmd.Name, Slug: cmd.Slug, CategoryID: cmd.CategoryID, Status: domain.ProductStatus(cmd.Status)}, nil
}

func (s *stubCatalogService) UpdateProduct(_ context.Context, principal *services.Principal, productID string, cmd services.SaveProductCommand) (domain.Product, error) {
	s.lastPrincipal = principal
	s.lastProductCmd = cmd
	if s.err != nil {
		return domain.Product{}, s.err
	}
	return domain.Product{ID: productID, Name: cmd.Name, Slug: cmd.Slug, CategoryID: cmd.CategoryID, Status: domain.ProductStatus(cmd.Status)}, nil
}

func (s *stubCatalogService) DeleteProduct(_ context.Context, principal *services.Principal, _ string) error {
	s.lastPrincipal = principal
	return s.err
}

func (s *stubCatalogService) SetProductStatus(_ context.Context, principal *services.Principal, productID string, status domain.ProductStatus) (domain.Product, error) {
	s.lastPrincipal = principal
	s.lastStatus = string(status)
	if s.err != nil {
		return domain.Product{}, s.err
	}
	return domain.Product{ID: productID, Status: status}, nil
}

func (s *stubCatalogService) BulkDeleteProducts(_ context.Context, principal *services.Principal, _ []string) (services.BulkDeleteResult, error) {
	s.lastPrincipal = principal
	if s.err != nil {
		return services.BulkDeleteResult{}, s.err
	}
	return s.bulkResult, nil
}

func int64Ptr(v int64) *int64 { return &v }

func TestPublicListProductsParsesFiltersAndEnvelope(t *testing.T) {
	svc := &stubCatalogService{
		products: []domain.Product{
			{
				ID:     "prod_1",
				Name:   domain.LocalizedText{"vi": "Túi xách da", "en": "Leather handbag"},
				Slug:   "tui-xach-da",
				Price:  int64Ptr(450000),
				Images: []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
				Status: domain.ProductStatusActive,
			},
		},
	}
	handlers := NewPublicCatalogHandlers(svc)

	req := httptest.NewRequest(http.MethodGet, "/products?categoryId=cat_1&featured=true&minPrice=100000&maxPrice=500000&sort=price&order=desc&page=2&pageSize=5&lang=en", nil)
	rr := httptest.NewRecorder()
	handlers.listProducts(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	query := svc.lastProductQuery
	if !query.PublicOnly {
		t.Fatal("expected PublicOnly to be forced on the public listing")
	}
	if query.CategoryID != "cat_1" {
		t.Fatalf("expected categoryId cat_1, got %q", query.CategoryID)
	}
	if query.Featured == nil || !*query.Featured {
		t.Fatal("expected featured filter true")
	}
	if query.MinPrice == nil || *query.MinPrice != 100000 {
		t.Fatalf("expected minPrice 100000, got %v", query.MinPrice)
	}
	if query.MaxPrice == nil || *query.MaxPrice != 500000 {
		t.Fatalf("expected maxPrice 500000, got %v", query.MaxPrice)
	}
	if query.Sort != "price" || !query.SortDesc {
		t.Fatalf("expected price desc sort, got %q desc=%v", query.Sort, query.SortDesc)
	}
	if query.Pagination.Page != 2 || query.Pagination.PageSize != 5 {
		t.Fatalf("unexpected pagination: %+v", query.Pagination)
	}

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			Name       string `json:"name"`
			CoverImage string `json:"coverImage"`
		} `json:"data"`
		Meta struct {
			Total      int  `json:"total"`
			Page       int  `json:"page"`
			PageSize   int  `json:"pageSize"`
			TotalPages int  `json:"totalPages"`
			HasNext    bool `json:"hasNext"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success true")
	}
	if len(body.Data) != 1 || body.Data[0].Name != "Leather handbag" {
		t.Fatalf("expected English product name, got %+v", body.Data)
	}
	if body.Data[0].CoverImage != "https://cdn.example.com/a.jpg" {
		t.Fatalf("expected first image as cover, got %q", body.Data[0].CoverImage)
	}
	if body.Meta.Total != 1 || body.Meta.Page != 2 || body.Meta.PageSize != 5 || body.Meta.TotalPages != 1 {
		t.Fatalf("unexpected meta: %+v", body.Meta)
	}
	if body.Meta.HasNext {
		t.Fatal("expected hasNext false on the last page")
	}
}

func TestPublicListProductsRejectsMalformedFilter(t *testing.T) {
	handlers := NewPublicCatalogHandlers(&stubCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/products?featured=maybe", nil)
	rr := httptest.NewRecorder()
	handlers.listProducts(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestPublicGetProductHidesNonActive(t *testing.T) {
	svc := &stubCatalogService{
		products: []domain.Product{
			{ID: "prod_1", Slug: "ban-nhap", Status: domain.ProductStatusDraft},
		},
	}
	handlers := NewPublicCatalogHandlers(svc)

	router := chi.NewRouter()
	router.Get("/products/{slug}", handlers.getProduct)

	req := httptest.NewRequest(http.MethodGet, "/products/ban-nhap", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for non-active product, got %d", rr.Code)
	}
}

func TestPublicGetCategoryResolvesLocaleFromAcceptLanguage(t *testing.T) {
	svc := &stubCatalogService{
		categories: []domain.Category{
			{
				ID:     "cat_1",
				Name:   domain.LocalizedText{"vi": "Túi tote", "en": "Tote bags"},
				Slug:   "tui-tote",
				Status: domain.CategoryStatusActive,
			},
		},
	}
	handlers := NewPublicCatalogHandlers(svc)

	router := chi.NewRouter()
	router.Get("/categories/{slug}", handlers.getCategory)

	req := httptest.NewRequest(http.MethodGet, "/categories/tui-tote", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Data.Name != "Tote bags" {
		t.Fatalf("expected English category name, got %q", body.Data.Name)
	}
}

func TestPublicListCategoriesForcesActiveOnly(t *testing.T) {
	svc := &stubCatalogService{}
	handlers := NewPublicCatalogHandlers(svc)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	rr := httptest.NewRecorder()
	handlers.listCategories(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !svc.lastCategoryQuery.PublicOnly {
		t.Fatal("expected PublicOnly to be forced on the public listing")
	}
}
