package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/platform/pagination"
	"github.com/anvi-leather/api/internal/services"
)

const (
	defaultPublicPageSize = 12
	catalogCacheControl   = "public, max-age=300"
)

// PublicCatalogHandlers exposes unauthenticated catalog endpoints. Responses
// resolve localized fields to the locale negotiated from the lang parameter
// and Accept-Language header.
type PublicCatalogHandlers struct {
	catalog services.CatalogService
}

// NewPublicCatalogHandlers constructs handlers for public catalog endpoints.
func NewPublicCatalogHandlers(catalog services.CatalogService) *PublicCatalogHandlers {
	return &PublicCatalogHandlers{catalog: catalog}
}

// Routes registers public catalog endpoints against the provided router.
func (h *PublicCatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{slug}", h.getCategory)
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.getProduct)
}

func (h *PublicCatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	locale := requestLocale(r)
	query := services.CategoryListQuery{
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		PublicOnly: true,
		Pagination: paginationFrom(r),
	}

	page, err := h.catalog.ListCategories(r.Context(), query)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	items := make([]publicCategoryPayload, 0, len(page.Items))
	for _, category := range page.Items {
		items = append(items, newPublicCategoryPayload(category, locale))
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	writeList(w, items, pagination.NewMeta(page.Total, pagination.Params{
		Page:     query.Pagination.Page,
		PageSize: query.Pagination.PageSize,
	}))
}

func (h *PublicCatalogHandlers) getCategory(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		writeBadRequest(r.Context(), w, "category slug is required")
		return
	}

	category, err := h.catalog.GetCategoryBySlug(r.Context(), slug)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	if category.Status != domain.CategoryStatusActive {
		writeServiceError(r.Context(), w, services.ErrNotFound)
		return
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	writeData(w, http.StatusOK, newPublicCategoryPayload(category, requestLocale(r)))
}

func (h *PublicCatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	locale := requestLocale(r)
	query, err := parsePublicProductQuery(r)
	if err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	page, err := h.catalog.ListProducts(r.Context(), query)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	items := make([]publicProductPayload, 0, len(page.Items))
	for _, product := range page.Items {
		items = append(items, newPublicProductPayload(product, locale, false))
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	writeList(w, items, pagination.NewMeta(page.Total, pagination.Params{
		Page:     query.Pagination.Page,
		PageSize: query.Pagination.PageSize,
	}))
}

func (h *PublicCatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		writeBadRequest(r.Context(), w, "product slug is required")
		return
	}

	product, err := h.catalog.GetProductBySlug(r.Context(), slug)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	if product.Status != domain.ProductStatusActive {
		writeServiceError(r.Context(), w, services.ErrNotFound)
		return
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	writeData(w, http.StatusOK, newPublicProductPayload(product, requestLocale(r), true))
}

func parsePublicProductQuery(r *http.Request) (services.ProductListQuery, error) {
	values := r.URL.Query()

	query := services.ProductListQuery{
		CategoryID: strings.TrimSpace(values.Get("categoryId")),
		Search:     strings.TrimSpace(values.Get("search")),
		PublicOnly: true,
		Pagination: paginationFrom(r),
	}

	featured, err := parseOptionalBoolParam("featured", values.Get("featured"))
	if err != nil {
		return services.ProductListQuery{}, err
	}
	query.Featured = featured

	minPrice, err := parseOptionalInt64Param("minPrice", values.Get("minPrice"))
	if err != nil {
		return services.ProductListQuery{}, err
	}
	query.MinPrice = minPrice

	maxPrice, err := parseOptionalInt64Param("maxPrice", values.Get("maxPrice"))
	if err != nil {
		return services.ProductListQuery{}, err
	}
	query.MaxPrice = maxPrice

	query.Sort, query.SortDesc = parseSortParams(values.Get("sort"), values.Get("order"))

	return query, nil
}

// parseSortParams reads the sort field and direction. Unknown fields fall
// through to the service default ordering.
func parseSortParams(sortRaw, orderRaw string) (string, bool) {
	sortField := strings.ToLower(strings.TrimSpace(sortRaw))
	desc := strings.EqualFold(strings.TrimSpace(orderRaw), "desc")
	return sortField, desc
}

func paginationFrom(r *http.Request) domain.Pagination {
	params := pagination.FromRequest(r, pagination.Options{DefaultPageSize: defaultPublicPageSize})
	return domain.Pagination{Page: params.Page, PageSize: params.PageSize}
}

func requestLocale(r *http.Request) domain.Locale {
	return domain.MatchLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

type publicCategoryPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Featured    bool   `json:"featured"`
	SortOrder   int    `json:"sortOrder"`
}

func newPublicCategoryPayload(category domain.Category, locale domain.Locale) publicCategoryPayload {
	return publicCategoryPayload{
		ID:          category.ID,
		Name:        category.Name.Resolve(locale, ""),
		Slug:        category.Slug,
		Description: category.Description.Resolve(locale, ""),
		Thumbnail:   category.Thumbnail,
		Featured:    category.Featured,
		SortOrder:   category.SortOrder,
	}
}

type publicProductPayload struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	ShortDesc      string            `json:"shortDesc,omitempty"`
	Description    string            `json:"description,omitempty"`
	CategoryID     string            `json:"categoryId"`
	Price          *int64            `json:"price"`
	OriginalPrice  *int64            `json:"originalPrice,omitempty"`
	CoverImage     string            `json:"coverImage,omitempty"`
	Images         []string          `json:"images"`
	Materials      string            `json:"materials,omitempty"`
	Colors         []string          `json:"colors,omitempty"`
	MOQ            int               `json:"moq,omitempty"`
	LeadTime       string            `json:"leadTime,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	SEOTitle       string            `json:"seoTitle,omitempty"`
	SEODesc        string            `json:"seoDescription,omitempty"`
	Featured       bool              `json:"featured"`
	SortOrder      int               `json:"sortOrder"`
}

// newPublicProductPayload flattens localized fields to the requested locale.
// A nil price is kept as JSON null so clients render "contact for price".
func newPublicProductPayload(product domain.Product, locale domain.Locale, detail bool) publicProductPayload {
	images := copyStringSlice(product.Images)
	cover := ""
	if len(images) > 0 {
		cover = images[0]
	}

	payload := publicProductPayload{
		ID:         product.ID,
		Name:       product.Name.Resolve(locale, ""),
		Slug:       product.Slug,
		ShortDesc:  product.ShortDesc.Resolve(locale, ""),
		CategoryID: product.CategoryID,
		Price:      product.Price,
		CoverImage: cover,
		Images:     images,
		Featured:   product.Featured,
		SortOrder:  product.SortOrder,
	}
	if !detail {
		return payload
	}

	payload.Description = product.Description.Resolve(locale, "")
	payload.OriginalPrice = product.OriginalPrice
	payload.Materials = product.Materials.Resolve(locale, "")
	payload.Colors = copyStringSlice(product.Colors)
	payload.MOQ = product.MOQ
	payload.LeadTime = product.LeadTime.Resolve(locale, "")
	payload.SEOTitle = product.SEOTitle.Resolve(locale, "")
	payload.SEODesc = product.SEODesc.Resolve(locale, "")

	if len(product.Specifications) > 0 {
		specs := make(map[string]string, len(product.Specifications))
		keys := make([]string, 0, len(product.Specifications))
		for key := range product.Specifications {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if value := product.Specifications[key].Resolve(locale, ""); value != "" {
				specs[key] = value
			}
		}
		payload.Specifications = specs
	}

	return payload
}
