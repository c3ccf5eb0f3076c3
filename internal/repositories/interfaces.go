package repositories

import (
	"context"

	domain "github.com/anvi-leather/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Categories() CategoryRepository
	Products() ProductRepository
	AdminUsers() AdminUserRepository
	Inquiries() InquiryRepository
	Health() HealthRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork allows grouping repository operations in a transactional boundary when supported.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CategoryRepository persists catalog categories. Insert and Update enforce
// slug uniqueness at the store level; duplicate slugs surface as conflicts.
type CategoryRepository interface {
	Insert(ctx context.Context, category domain.Category) error
	Update(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, categoryID string) error
	FindByID(ctx context.Context, categoryID string) (domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (domain.Category, error)
	List(ctx context.Context, filter CategoryFilter) (domain.Page[domain.Category], error)
}

// ProductRepository persists catalog products with the same slug guarantees.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (domain.Product, error)
	List(ctx context.Context, filter ProductFilter) (domain.Page[domain.Product], error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// AdminUserRepository persists back-office accounts. Email is unique and
// duplicate inserts surface as conflicts.
type AdminUserRepository interface {
	Insert(ctx context.Context, user domain.AdminUser) error
	Update(ctx context.Context, user domain.AdminUser) error
	Delete(ctx context.Context, userID string) error
	FindByID(ctx context.Context, userID string) (domain.AdminUser, error)
	FindByEmail(ctx context.Context, email string) (domain.AdminUser, error)
	List(ctx context.Context, filter AdminUserFilter) (domain.Page[domain.AdminUser], error)
}

// InquiryRepository persists customer inquiries.
type InquiryRepository interface {
	Insert(ctx context.Context, inquiry domain.CustomerInquiry) error
	Update(ctx context.Context, inquiry domain.CustomerInquiry) error
	Delete(ctx context.Context, inquiryID string) error
	FindByID(ctx context.Context, inquiryID string) (domain.CustomerInquiry, error)
	List(ctx context.Context, filter InquiryFilter) (domain.Page[domain.CustomerInquiry], error)
	ClearProductRef(ctx context.Context, productID string) error
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}

// Filter DTOs shared across repositories ------------------------------------

// CategoryFilter narrows and pages category listings. Search matches every
// locale of Name and Description case-insensitively.
type CategoryFilter struct {
	Status     []domain.CategoryStatus
	Featured   *bool
	Search     string
	Sort       CatalogSort
	SortDesc   bool
	Pagination domain.Pagination
}

// ProductFilter narrows and pages product listings. Price bounds are whole
// VND amounts; products without a price never match a bounded query.
type ProductFilter struct {
	Status     []domain.ProductStatus
	CategoryID string
	Featured   *bool
	MinPrice   *int64
	MaxPrice   *int64
	Search     string
	Sort       CatalogSort
	SortDesc   bool
	Pagination domain.Pagination
}

// AdminUserFilter narrows and pages admin account listings.
type AdminUserFilter struct {
	Role       []domain.AdminRole
	Active     *bool
	Search     string
	Pagination domain.Pagination
}

// InquiryFilter narrows and pages inquiry listings.
type InquiryFilter struct {
	Status     []domain.InquiryStatus
	ProductID  string
	Search     string
	Pagination domain.Pagination
}

// CatalogSort names the explicit orderings accepted by catalog listings.
// The zero value applies the default featured-first ordering.
type CatalogSort string

const (
	// CatalogSortDefault orders by featured desc, sortOrder asc, createdAt desc.
	CatalogSortDefault CatalogSort = ""
	// CatalogSortName orders by the primary-locale name ascending.
	CatalogSortName CatalogSort = "name"
	// CatalogSortPrice orders by price ascending; unpriced products sort last.
	CatalogSortPrice CatalogSort = "price"
	// CatalogSortCreatedAt orders by creation time, newest first.
	CatalogSortCreatedAt CatalogSort = "createdAt"
	// CatalogSortSortOrder orders by the manual sort index ascending.
	CatalogSortSortOrder CatalogSort = "sortOrder"
)
