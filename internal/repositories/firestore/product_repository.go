package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/anvi-leather/api/internal/domain"
	pfirestore "github.com/anvi-leather/api/internal/platform/firestore"
	"github.com/anvi-leather/api/internal/repositories"
)

const (
	productsCollection     = "products"
	productSlugsCollection = "productSlugs"
)

// ProductRepository persists catalog products with transactional slug claims,
// mirroring the category repository.
type ProductRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[domain.Product]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Product) (any, error) {
		return encodeProductDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Product, error) {
		var doc productDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Product{}, err
		}
		doc.ID = snap.Ref.ID
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = snap.UpdateTime
		}
		return decodeProductDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.Product](provider, productsCollection, encoder, decoder)
	return &ProductRepository{provider: provider, base: base}, nil
}

// Insert stores a new product and claims its slug atomically.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		return errors.New("product repository: id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	docRef := client.Collection(productsCollection).Doc(product.ID)
	slugRef := client.Collection(productSlugsCollection).Doc(product.Slug)
	payload := encodeProductDocument(product)

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(slugRef, slugIndexDocument{OwnerID: product.ID, CreatedAt: product.CreatedAt.UTC()}); err != nil {
			return err
		}
		return tx.Create(docRef, payload)
	})
	if err != nil {
		return pfirestore.WrapError("products.insert", err)
	}
	return nil
}

// Update replaces the product document and moves its slug claim when the slug changed.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		return errors.New("product repository: id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	docRef := client.Collection(productsCollection).Doc(product.ID)
	payload := encodeProductDocument(product)

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		previousSlug, _ := snap.DataAt("slug")
		oldSlug, _ := previousSlug.(string)
		if oldSlug != product.Slug {
			if oldSlug != "" {
				if err := tx.Delete(client.Collection(productSlugsCollection).Doc(oldSlug)); err != nil {
					return err
				}
			}
			newSlugRef := client.Collection(productSlugsCollection).Doc(product.Slug)
			if err := tx.Create(newSlugRef, slugIndexDocument{OwnerID: product.ID, CreatedAt: product.UpdatedAt.UTC()}); err != nil {
				return err
			}
		}
		return tx.Set(docRef, payload)
	})
	if err != nil {
		return pfirestore.WrapError("products.update", err)
	}
	return nil
}

// Delete removes the product and releases its slug claim.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return errors.New("product repository: id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	docRef := client.Collection(productsCollection).Doc(productID)

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		slugValue, _ := snap.DataAt("slug")
		if slug, _ := slugValue.(string); slug != "" {
			if err := tx.Delete(client.Collection(productSlugsCollection).Doc(slug)); err != nil {
				return err
			}
		}
		return tx.Delete(docRef)
	})
	if err != nil {
		return pfirestore.WrapError("products.delete", err)
	}
	return nil
}

// FindByID loads a product by its identifier.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, errors.New("product repository: id is required")
	}
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return doc.Data, nil
}

// FindBySlug loads a product by its public slug.
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	slug = strings.TrimSpace(slug)
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", slug).Limit(1)
	})
	if err != nil {
		return domain.Product{}, err
	}
	if len(docs) == 0 {
		return domain.Product{}, pfirestore.WrapError("products.find_by_slug", status.Error(codes.NotFound, "product not found"))
	}
	return docs[0].Data, nil
}

// List returns the filtered page of products. Locale search runs in memory.
func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductFilter) (domain.Page[domain.Product], error) {
	if r == nil || r.base == nil {
		return domain.Page[domain.Product]{}, errors.New("product repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if categoryID := strings.TrimSpace(filter.CategoryID); categoryID != "" {
			q = q.Where("categoryId", "==", categoryID)
		}
		if len(filter.Status) == 1 {
			q = q.Where("status", "==", string(filter.Status[0]))
		}
		return q
	})
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}

	items := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.Data)
	}
	items = filterProducts(items, filter)
	sortProducts(items, filter.Sort, filter.SortDesc)

	page, total := pageWindow(items, filter.Pagination)
	return domain.Page[domain.Product]{Items: page, Total: total}, nil
}

// CountByCategory reports how many products reference the category.
func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	if r == nil || r.base == nil {
		return 0, errors.New("product repository not initialised")
	}
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return 0, nil
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("categoryId", "==", categoryID)
	})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// sortProducts orders the slice. Explicit name and price sorts replace the
// featured-first rule and honour the requested direction; every other
// ordering keeps featured items ahead.
func sortProducts(items []domain.Product, order repositories.CatalogSort, desc bool) {
	switch order {
	case repositories.CatalogSortName:
		sort.SliceStable(items, func(i, j int) bool {
			if desc {
				i, j = j, i
			}
			return items[i].Name.Primary() < items[j].Name.Primary()
		})
	case repositories.CatalogSortPrice:
		sort.SliceStable(items, func(i, j int) bool {
			if desc {
				i, j = j, i
			}
			// Products without a price sort after priced ones.
			switch {
			case items[i].Price == nil:
				return false
			case items[j].Price == nil:
				return true
			default:
				return *items[i].Price < *items[j].Price
			}
		})
	case repositories.CatalogSortCreatedAt:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Featured != items[j].Featured {
				return items[i].Featured
			}
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	case repositories.CatalogSortSortOrder:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Featured != items[j].Featured {
				return items[i].Featured
			}
			return items[i].SortOrder < items[j].SortOrder
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Featured != items[j].Featured {
				return items[i].Featured
			}
			if items[i].SortOrder != items[j].SortOrder {
				return items[i].SortOrder < items[j].SortOrder
			}
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
}

func encodeProductDocument(product domain.Product) productDocument {
	return productDocument{
		Name:           cloneLocalized(product.Name),
		Slug:           strings.TrimSpace(product.Slug),
		Description:    cloneLocalized(product.Description),
		ShortDesc:      cloneLocalized(product.ShortDesc),
		CategoryID:     strings.TrimSpace(product.CategoryID),
		Price:          cloneInt64Ptr(product.Price),
		OriginalPrice:  cloneInt64Ptr(product.OriginalPrice),
		Images:         cloneStrings(product.Images),
		Materials:      cloneLocalized(product.Materials),
		Colors:         cloneStrings(product.Colors),
		MOQ:            product.MOQ,
		LeadTime:       cloneLocalized(product.LeadTime),
		Specifications: encodeSpecifications(product.Specifications),
		SEOTitle:       cloneLocalized(product.SEOTitle),
		SEODesc:        cloneLocalized(product.SEODesc),
		Featured:       product.Featured,
		Status:         string(product.Status),
		SortOrder:      product.SortOrder,
		CreatedAt:      product.CreatedAt.UTC(),
		UpdatedAt:      product.UpdatedAt.UTC(),
	}
}

func decodeProductDocument(doc productDocument) domain.Product {
	return domain.Product{
		ID:             doc.ID,
		Name:           domain.LocalizedText(doc.Name),
		Slug:           doc.Slug,
		Description:    domain.LocalizedText(doc.Description),
		ShortDesc:      domain.LocalizedText(doc.ShortDesc),
		CategoryID:     doc.CategoryID,
		Price:          cloneInt64Ptr(doc.Price),
		OriginalPrice:  cloneInt64Ptr(doc.OriginalPrice),
		Images:         cloneStrings(doc.Images),
		Materials:      domain.LocalizedText(doc.Materials),
		Colors:         cloneStrings(doc.Colors),
		MOQ:            doc.MOQ,
		LeadTime:       domain.LocalizedText(doc.LeadTime),
		Specifications: decodeSpecifications(doc.Specifications),
		SEOTitle:       domain.LocalizedText(doc.SEOTitle),
		SEODesc:        domain.LocalizedText(doc.SEODesc),
		Featured:       doc.Featured,
		Status:         domain.ProductStatus(doc.Status),
		SortOrder:      doc.SortOrder,
		CreatedAt:      doc.CreatedAt.UTC(),
		UpdatedAt:      doc.UpdatedAt.UTC(),
	}
}

type productDocument struct {
	ID             string                       `firestore:"-"`
	Name           map[string]string            `firestore:"name"`
	Slug           string                       `firestore:"slug"`
	Description    map[string]string            `firestore:"description,omitempty"`
	ShortDesc      map[string]string            `firestore:"shortDesc,omitempty"`
	CategoryID     string                       `firestore:"categoryId"`
	Price          *int64                       `firestore:"price,omitempty"`
	OriginalPrice  *int64                       `firestore:"originalPrice,omitempty"`
	Images         []string                     `firestore:"images,omitempty"`
	Materials      map[string]string            `firestore:"materials,omitempty"`
	Colors         []string                     `firestore:"colors,omitempty"`
	MOQ            int                          `firestore:"moq"`
	LeadTime       map[string]string            `firestore:"leadTime,omitempty"`
	Specifications map[string]map[string]string `firestore:"specifications,omitempty"`
	SEOTitle       map[string]string            `firestore:"seoTitle,omitempty"`
	SEODesc        map[string]string            `firestore:"seoDesc,omitempty"`
	Featured       bool                         `firestore:"featured"`
	Status         string                       `firestore:"status"`
	SortOrder      int                          `firestore:"sortOrder"`
	CreatedAt      time.Time                    `firestore:"createdAt"`
	UpdatedAt      time.Time                    `firestore:"updatedAt"`
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func cloneInt64Ptr(value *int64) *int64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func encodeSpecifications(specs map[string]domain.LocalizedText) map[string]map[string]string {
	if len(specs) == 0 {
		return nil
	}
	out := make(map[string]map[string]string, len(specs))
	for key, value := range specs {
		out[key] = cloneLocalized(value)
	}
	return out
}

func decodeSpecifications(specs map[string]map[string]string) map[string]domain.LocalizedText {
	if len(specs) == 0 {
		return nil
	}
	out := make(map[string]domain.LocalizedText, len(specs))
	for key, value := range specs {
		out[key] = domain.LocalizedText(value)
	}
	return out
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)
