package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/platform/pagination"
	"github.com/anvi-leather/api/internal/services"
)

// AdminCatalogHandlers exposes back-office category and product endpoints.
// Admin listings see every status; writes are authorised in the service layer.
type AdminCatalogHandlers struct {
	catalog services.CatalogService
}

// NewAdminCatalogHandlers constructs admin catalog handlers.
func NewAdminCatalogHandlers(catalog services.CatalogService) *AdminCatalogHandlers {
	return &AdminCatalogHandlers{catalog: catalog}
}

// Routes registers admin catalog endpoints.
func (h *AdminCatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/categories", func(rt chi.Router) {
		rt.Get("/", h.listCategories)
		rt.Post("/", h.createCategory)
		rt.Post("/bulk-delete", h.bulkDeleteCategories)
		rt.Get("/{categoryID}", h.getCategory)
		rt.Put("/{categoryID}", h.updateCategory)
		rt.Delete("/{categoryID}", h.deleteCategory)
		rt.Patch("/{categoryID}/status", h.setCategoryStatus)
	})
	r.Route("/products", func(rt chi.Router) {
		rt.Get("/", h.listProducts)
		rt.Post("/", h.createProduct)
		rt.Post("/bulk-delete", h.bulkDeleteProducts)
		rt.Get("/{productID}", h.getProduct)
		rt.Put("/{productID}", h.updateProduct)
		rt.Delete("/{productID}", h.deleteProduct)
		rt.Patch("/{productID}/status", h.setProductStatus)
	})
}

// Categories -----------------------------------------------------------------

func (h *AdminCatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	values := r.URL.Query()
	query := services.CategoryListQuery{
		Status:     parseMultiParam(values["status"]),
		Search:     strings.TrimSpace(values.Get("search")),
		Pagination: paginationFrom(r),
	}

	featured, err := parseOptionalBoolParam("featured", values.Get("featured"))
	if err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}
	query.Featured = featured
	query.Sort, query.SortDesc = parseSortParams(values.Get("sort"), values.Get("order"))

	page, err := h.catalog.ListCategories(r.Context(), query)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	items := make([]categoryPayload, 0, len(page.Items))
	for _, category := range page.Items {
		items = append(items, newCategoryPayload(category))
	}

	writeList(w, items, pagination.NewMeta(page.Total, pagination.Params{
		Page:     query.Pagination.Page,
		PageSize: query.Pagination.PageSize,
	}))
}

func (h *AdminCatalogHandlers) getCategory(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	categoryID := strings.TrimSpace(chi.URLParam(r, "categoryID"))
	if categoryID == "" {
		writeBadRequest(r.Context(), w, "category id is required")
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), categoryID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newCategoryPayload(category))
}

type saveCategoryRequest struct {
	Name        map[string]string `json:"name"`
	Slug        string            `json:"slug"`
	Description map[string]string `json:"description"`
	Thumbnail   string            `json:"thumbnail"`
	Featured    bool              `json:"featured"`
	Status      string            `json:"status"`
	SortOrder   int               `json:"sortOrder"`
}

func (req saveCategoryRequest) command() services.SaveCategoryCommand {
	return services.SaveCategoryCommand{
		Name:        domain.LocalizedText(req.Name),
		Slug:        req.Slug,
		Description: domain.LocalizedText(req.Description),
		Thumbnail:   req.Thumbnail,
		Featured:    req.Featured,
		Status:      req.Status,
		SortOrder:   req.SortOrder,
	}
}

func (h *AdminCatalogHandlers) createCategory(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	var req saveCategoryRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), principalFrom(r), req.command())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusCreated, newCategoryPayload(category))
}

func (h *AdminCatalogHandlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	categoryID := strings.TrimSpace(chi.URLParam(r, "categoryID"))
	if categoryID == "" {
		writeBadRequest(r.Context(), w, "category id is required")
		return
	}

	var req saveCategoryRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), principalFrom(r), categoryID, req.command())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newCategoryPayload(category))
}

func (h *AdminCatalogHandlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	categoryID := strings.TrimSpace(chi.URLParam(r, "categoryID"))
	if categoryID == "" {
		writeBadRequest(r.Context(), w, "category id is required")
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), principalFrom(r), categoryID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// setCategoryStatus updates only the status field, re-running authorisation.
func (h *AdminCatalogHandlers) setCategoryStatus(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	categoryID := strings.TrimSpace(chi.URLParam(r, "categoryID"))
	if categoryID == "" {
		writeBadRequest(r.Context(), w, "category id is required")
		return
	}

	var req setStatusRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	category, err := h.catalog.SetCategoryStatus(r.Context(), principalFrom(r), categoryID, domain.CategoryStatus(strings.ToUpper(strings.TrimSpace(req.Status))))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newCategoryPayload(category))
}

func (h *AdminCatalogHandlers) bulkDeleteCategories(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
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

	result, err := h.catalog.BulkDeleteCategories(r.Context(), principalFrom(r), req.IDs)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newBulkDeleteResponse(result))
}

// Products -------------------------------------------------------------------

func (h *AdminCatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	values := r.URL.Query()
	query := services.ProductListQuery{
		Status:     parseMultiParam(values["status"]),
		CategoryID: strings.TrimSpace(values.Get("categoryId")),
		Search:     strings.TrimSpace(values.Get("search")),
		Pagination: paginationFrom(r),
	}

	featured, err := parseOptionalBoolParam("featured", values.Get("featured"))
	if err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}
	query.Featured = featured

	minPrice, err := parseOptionalInt64Param("minPrice", values.Get("minPrice"))
	if err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}
	query.MinPrice = minPrice

	maxPrice, err := parseOptionalInt64Param("maxPrice", values.Get("maxPrice"))
	if err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}
	query.MaxPrice = maxPrice

	query.Sort, query.SortDesc = parseSortParams(values.Get("sort"), values.Get("order"))

	page, err := h.catalog.ListProducts(r.Context(), query)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	items := make([]productPayload, 0, len(page.Items))
	for _, product := range page.Items {
		items = append(items, newProductPayload(product))
	}

	writeList(w, items, pagination.NewMeta(page.Total, pagination.Params{
		Page:     query.Pagination.Page,
		PageSize: query.Pagination.PageSize,
	}))
}

func (h *AdminCatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		writeBadRequest(r.Context(), w, "product id is required")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newProductPayload(product))
}

type saveProductRequest struct {
	Name           map[string]string            `json:"name"`
	Slug           string                       `json:"slug"`
	Description    map[string]string            `json:"description"`
	ShortDesc      map[string]string            `json:"shortDesc"`
	CategoryID     string                       `json:"categoryId"`
	Price          *int64                       `json:"price"`
	OriginalPrice  *int64                       `json:"originalPrice"`
	Images         []string                     `json:"images"`
	Materials      map[string]string            `json:"materials"`
	Colors         []string                     `json:"colors"`
	MOQ            int                          `json:"moq"`
	LeadTime       map[string]string            `json:"leadTime"`
	Specifications map[string]map[string]string `json:"specifications"`
	SEOTitle       map[string]string            `json:"seoTitle"`
	SEODesc        map[string]string            `json:"seoDescription"`
	Featured       bool                         `json:"featured"`
	Status         string                       `json:"status"`
	SortOrder      int                          `json:"sortOrder"`
}

func (req saveProductRequest) command() services.SaveProductCommand {
	var specs map[string]domain.LocalizedText
	if len(req.Specifications) > 0 {
		specs = make(map[string]domain.LocalizedText, len(req.Specifications))
		for key, value := range req.Specifications {
			specs[key] = domain.LocalizedText(value)
		}
	}
	return services.SaveProductCommand{
		Name:           domain.LocalizedText(req.Name),
		Slug:           req.Slug,
		Description:    domain.LocalizedText(req.Description),
		ShortDesc:      domain.LocalizedText(req.ShortDesc),
		CategoryID:     req.CategoryID,
		Price:          req.Price,
		OriginalPrice:  req.OriginalPrice,
		Images:         req.Images,
		Materials:      domain.LocalizedText(req.Materials),
		Colors:         req.Colors,
		MOQ:            req.MOQ,
		LeadTime:       domain.LocalizedText(req.LeadTime),
		Specifications: specs,
		SEOTitle:       domain.LocalizedText(req.SEOTitle),
		SEODesc:        domain.LocalizedText(req.SEODesc),
		Featured:       req.Featured,
		Status:         req.Status,
		SortOrder:      req.SortOrder,
	}
}

func (h *AdminCatalogHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	var req saveProductRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), principalFrom(r), req.command())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusCreated, newProductPayload(product))
}

func (h *AdminCatalogHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		writeBadRequest(r.Context(), w, "product id is required")
		return
	}

	var req saveProductRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), principalFrom(r), productID, req.command())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newProductPayload(product))
}

func (h *AdminCatalogHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		writeBadRequest(r.Context(), w, "product id is required")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), principalFrom(r), productID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminCatalogHandlers) setProductStatus(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeServiceError(r.Context(), w, services.ErrUpstreamFailure)
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		writeBadRequest(r.Context(), w, "product id is required")
		return
	}

	var req setStatusRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeBadRequest(r.Context(), w, err.Error())
		return
	}

	product, err := h.catalog.SetProductStatus(r.Context(), principalFrom(r), productID, domain.ProductStatus(strings.ToUpper(strings.TrimSpace(req.Status))))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newProductPayload(product))
}

func (h *AdminCatalogHandlers) bulkDeleteProducts(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
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

	result, err := h.catalog.BulkDeleteProducts(r.Context(), principalFrom(r), req.IDs)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeData(w, http.StatusOK, newBulkDeleteResponse(result))
}

// Payloads -------------------------------------------------------------------

type categoryPayload struct {
	ID          string            `json:"id"`
	Name        map[string]string `json:"name"`
	Slug        string            `json:"slug"`
	Description map[string]string `json:"description,omitempty"`
	Thumbnail   string            `json:"thumbnail,omitempty"`
	Featured    bool              `json:"featured"`
	Status      string            `json:"status"`
	SortOrder   int               `json:"sortOrder"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
}

func newCategoryPayload(category domain.Category) categoryPayload {
	return categoryPayload{
		ID:          category.ID,
		Name:        category.Name.Clone(),
		Slug:        category.Slug,
		Description: category.Description.Clone(),
		Thumbnail:   category.Thumbnail,
		Featured:    category.Featured,
		Status:      string(category.Status),
		SortOrder:   category.SortOrder,
		CreatedAt:   formatTimestamp(category.CreatedAt),
		UpdatedAt:   formatTimestamp(category.UpdatedAt),
	}
}

type productPayload struct {
	ID             string                       `json:"id"`
	Name           map[string]string            `json:"name"`
	Slug           string                       `json:"slug"`
	Description    map[string]string            `json:"description,omitempty"`
	ShortDesc      map[string]string            `json:"shortDesc,omitempty"`
	CategoryID     string                       `json:"categoryId"`
	Price          *int64                       `json:"price"`
	OriginalPrice  *int64                       `json:"originalPrice,omitempty"`
	Images         []string                     `json:"images"`
	Materials      map[string]string            `json:"materials,omitempty"`
	Colors         []string                     `json:"colors,omitempty"`
	MOQ            int                          `json:"moq,omitempty"`
	LeadTime       map[string]string            `json:"leadTime,omitempty"`
	Specifications map[string]map[string]string `json:"specifications,omitempty"`
	SEOTitle       map[string]string            `json:"seoTitle,omitempty"`
	SEODesc        map[string]string            `json:"seoDescription,omitempty"`
	Featured       bool                         `json:"featured"`
	Status         string                       `json:"status"`
	SortOrder      int                          `json:"sortOrder"`
	CreatedAt      string                       `json:"createdAt,omitempty"`
	UpdatedAt      string                       `json:"updatedAt,omitempty"`
}

func newProductPayload(product domain.Product) productPayload {
	var specs map[string]map[string]string
	if len(product.Specifications) > 0 {
		specs = make(map[string]map[string]string, len(product.Specifications))
		for key, value := range product.Specifications {
			specs[key] = value.Clone()
		}
	}
	return productPayload{
		ID:             product.ID,
		Name:           product.Name.Clone(),
		Slug:           product.Slug,
		Description:    product.Description.Clone(),
		ShortDesc:      product.ShortDesc.Clone(),
		CategoryID:     product.CategoryID,
		Price:          product.Price,
		OriginalPrice:  product.OriginalPrice,
		Images:         copyStringSlice(product.Images),
		Materials:      product.Materials.Clone(),
		Colors:         copyStringSlice(product.Colors),
		MOQ:            product.MOQ,
		LeadTime:       product.LeadTime.Clone(),
		Specifications: specs,
		SEOTitle:       product.SEOTitle.Clone(),
		SEODesc:        product.SEODesc.Clone(),
		Featured:       product.Featured,
		Status:         string(product.Status),
		SortOrder:      product.SortOrder,
		CreatedAt:      formatTimestamp(product.CreatedAt),
		UpdatedAt:      formatTimestamp(product.UpdatedAt),
	}
}
