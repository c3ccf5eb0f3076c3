package domain

import "time"

// CategoryStatus describes the publication state of a category.
type CategoryStatus string

const (
	// CategoryStatusActive makes a category visible on the public site.
	CategoryStatusActive CategoryStatus = "ACTIVE"
	// CategoryStatusInactive hides a category from the public site.
	CategoryStatusInactive CategoryStatus = "INACTIVE"
	// CategoryStatusDraft marks a category still being authored.
	CategoryStatusDraft CategoryStatus = "DRAFT"
)

// CategoryStatuses lists every accepted category status.
var CategoryStatuses = []CategoryStatus{CategoryStatusActive, CategoryStatusInactive, CategoryStatusDraft}

// Category groups products for navigation and filtering.
type Category struct {
	ID          string
	Name        LocalizedText
	Slug        string
	Description LocalizedText
	Thumbnail   string
	Featured    bool
	Status      CategoryStatus
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductStatus describes the publication state of a product.
type ProductStatus string

const (
	// ProductStatusActive makes a product visible on the public site.
	ProductStatusActive ProductStatus = "ACTIVE"
	// ProductStatusInactive hides a product without deleting it.
	ProductStatusInactive ProductStatus = "INACTIVE"
	// ProductStatusDraft marks a product still being authored.
	ProductStatusDraft ProductStatus = "DRAFT"
)

// ProductStatuses lists every accepted product status.
var ProductStatuses = []ProductStatus{ProductStatusActive, ProductStatusInactive, ProductStatusDraft}

// Product is a manufacturable handbag model shown in the catalog.
// Price and OriginalPrice are whole VND amounts; a nil Price renders as
// "contact for price". When both are present OriginalPrice must be >= Price.
type Product struct {
	ID             string
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
	Status         ProductStatus
	SortOrder      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
