package services

import (
	"context"
	"time"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/platform/auth"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination         = domain.Pagination
	Category           = domain.Category
	CategoryStatus     = domain.CategoryStatus
	Product            = domain.Product
	ProductStatus      = domain.ProductStatus
	AdminUser          = domain.AdminUser
	AdminRole          = domain.AdminRole
	CustomerInquiry    = domain.CustomerInquiry
	InquiryStatus      = domain.InquiryStatus
	LocalizedText      = domain.LocalizedText
	SystemHealthReport = domain.SystemHealthReport
)

// Principal identifies the authenticated back-office caller for mutations.
type Principal = auth.Principal

// CatalogService manages categories and products, enforcing slug uniqueness,
// referential integrity, and role-gated mutation rules.
type CatalogService interface {
	ListCategories(ctx context.Context, query CategoryListQuery) (domain.Page[Category], error)
	GetCategory(ctx context.Context, categoryID string) (Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (Category, error)
	CreateCategory(ctx context.Context, principal *Principal, cmd SaveCategoryCommand) (Category, error)
	UpdateCategory(ctx context.Context, principal *Principal, categoryID string, cmd SaveCategoryCommand) (Category, error)
	DeleteCategory(ctx context.Context, principal *Principal, categoryID string) error
	SetCategoryStatus(ctx context.Context, principal *Principal, categoryID string, status CategoryStatus) (Category, error)
	BulkDeleteCategories(ctx context.Context, principal *Principal, ids []string) (BulkDeleteResult, error)

	ListProducts(ctx context.Context, query ProductListQuery) (domain.Page[Product], error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	GetProductBySlug(ctx context.Context, slug string) (Product, error)
	CreateProduct(ctx context.Context, principal *Principal, cmd SaveProductCommand) (Product, error)
	UpdateProduct(ctx context.Context, principal *Principal, productID string, cmd SaveProductCommand) (Product, error)
	DeleteProduct(ctx context.Context, principal *Principal, productID string) error
	SetProductStatus(ctx context.Context, principal *Principal, productID string, status ProductStatus) (Product, error)
	BulkDeleteProducts(ctx context.Context, principal *Principal, ids []string) (BulkDeleteResult, error)
}

// AdminUserService manages back-office accounts. Every operation requires the
// admin role and accounts may never act on themselves destructively.
type AdminUserService interface {
	ListAdminUsers(ctx context.Context, principal *Principal, query AdminUserListQuery) (domain.Page[AdminUser], error)
	GetAdminUser(ctx context.Context, principal *Principal, userID string) (AdminUser, error)
	CreateAdminUser(ctx context.Context, principal *Principal, cmd CreateAdminUserCommand) (AdminUser, error)
	UpdateAdminUser(ctx context.Context, principal *Principal, userID string, cmd UpdateAdminUserCommand) (AdminUser, error)
	DeleteAdminUser(ctx context.Context, principal *Principal, userID string) error
	SetAdminUserActive(ctx context.Context, principal *Principal, userID string, active bool) (AdminUser, error)
	BulkDeleteAdminUsers(ctx context.Context, principal *Principal, ids []string) (BulkDeleteResult, error)
}

// AuthService authenticates back-office accounts and issues session tokens.
type AuthService interface {
	Login(ctx context.Context, cmd LoginCommand) (LoginResult, error)
}

// InquiryService accepts public inquiry submissions and manages them in the
// back office.
type InquiryService interface {
	Submit(ctx context.Context, cmd SubmitInquiryCommand) (CustomerInquiry, error)
	ListInquiries(ctx context.Context, principal *Principal, query InquiryListQuery) (domain.Page[CustomerInquiry], error)
	GetInquiry(ctx context.Context, principal *Principal, inquiryID string) (CustomerInquiry, error)
	UpdateInquiry(ctx context.Context, principal *Principal, inquiryID string, cmd UpdateInquiryCommand) (CustomerInquiry, error)
	DeleteInquiry(ctx context.Context, principal *Principal, inquiryID string) error
	BulkDeleteInquiries(ctx context.Context, principal *Principal, ids []string) (BulkDeleteResult, error)
}

// UploadService issues pre-signed upload targets for inquiry image attachments.
type UploadService interface {
	CreateUploadTargets(ctx context.Context, cmd CreateUploadTargetsCommand) ([]UploadTarget, error)
}

// SystemService reports process and dependency health.
type SystemService interface {
	Health(ctx context.Context) (SystemHealthReport, error)
}

// InquiryEventPublisher forwards inquiry lifecycle events to the notification
// pipeline. Publish failures must never fail the originating request.
type InquiryEventPublisher interface {
	PublishInquiryEvent(ctx context.Context, message InquiryEventMessage) (string, error)
}

// InquiryEventMessage is the payload published when an inquiry is created.
type InquiryEventMessage struct {
	Event     string    `json:"event"`
	InquiryID string    `json:"inquiryId"`
	ProductID string    `json:"productId,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Commands and queries --------------------------------------------------------

// CategoryListQuery filters and pages category listings. Status values the
// catalog does not define yield an empty page rather than an error.
type CategoryListQuery struct {
	Status     []string
	Featured   *bool
	Search     string
	Sort       string
	SortDesc   bool
	PublicOnly bool
	Pagination Pagination
}

// ProductListQuery filters and pages product listings. Price bounds are whole
// VND amounts.
type ProductListQuery struct {
	Status     []string
	CategoryID string
	Featured   *bool
	MinPrice   *int64
	MaxPrice   *int64
	Search     string
	Sort       string
	SortDesc   bool
	PublicOnly bool
	Pagination Pagination
}

// SaveCategoryCommand carries category create/update input. Slug is derived
// from the Vietnamese name when empty.
type SaveCategoryCommand struct {
	Name        LocalizedText
	Slug        string
	Description LocalizedText
	Thumbnail   string
	Featured    bool
	Status      string
	SortOrder   int
}

// SaveProductCommand carries product create/update input.
type SaveProductCommand struct {
	Name           LocalizedText
	Slug           string
	Description    LocalizedText
	ShortDesc      LocalizedText
	CategoryID     string
	Price          *int64
	OriginalPrice  *int64
	Images         []string
	Materials      LocalizedText
	Colors         []string
	MOQ            int
	LeadTime       LocalizedText
	Specifications map[string]LocalizedText
	SEOTitle       LocalizedText
	SEODesc        LocalizedText
	Featured       bool
	Status         string
	SortOrder      int
}

// AdminUserListQuery filters and pages admin account listings.
type AdminUserListQuery struct {
	Role       []string
	Active     *bool
	Search     string
	Pagination Pagination
}

// CreateAdminUserCommand carries new account input. Password is hashed before
// storage and never persisted in clear text.
type CreateAdminUserCommand struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	Active    *bool
}

// UpdateAdminUserCommand carries account updates. Nil fields keep their stored
// value; a non-nil Password rotates the hash. Email is immutable and has no
// update field.
type UpdateAdminUserCommand struct {
	FirstName *string
	LastName  *string
	Role      *string
	Active    *bool
	Password  *string
}

// LoginCommand carries login credentials.
type LoginCommand struct {
	Email    string
	Password string
}

// LoginResult carries the issued session token alongside the account profile.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      AdminUser
}

// SubmitInquiryCommand carries a public inquiry submission.
type SubmitInquiryCommand struct {
	Name      string
	Email     string
	Phone     string
	Company   string
	Country   string
	ProductID string
	Quantity  int
	Content   string
	Images    []string
}

// InquiryListQuery filters and pages inquiry listings.
type InquiryListQuery struct {
	Status     []string
	ProductID  string
	Search     string
	Pagination Pagination
}

// UpdateInquiryCommand carries back-office inquiry edits. Nil fields keep
// their stored value.
type UpdateInquiryCommand struct {
	Status    *string
	AdminNote *string
}

// CreateUploadTargetsCommand requests pre-signed upload URLs for inquiry
// attachments.
type CreateUploadTargetsCommand struct {
	Files []UploadFileSpec
}

// UploadFileSpec describes one file the client intends to upload.
type UploadFileSpec struct {
	FileName    string
	ContentType string
	Size        int64
}

// UploadTarget is a pre-signed PUT destination for one attachment.
type UploadTarget struct {
	UploadURL string
	PublicURL string
	ObjectKey string
	ExpiresAt time.Time
}

// BulkDeleteResult reports the per-item outcome of a non-atomic bulk delete.
type BulkDeleteResult struct {
	Deleted []string
	Failed  []BulkDeleteFailure
}

// BulkDeleteFailure names one item a bulk delete could not remove.
type BulkDeleteFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
