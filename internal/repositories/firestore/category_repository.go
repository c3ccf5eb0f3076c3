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
	categoriesCollection    = "categories"
	categorySlugsCollection = "categorySlugs"
)

// CategoryRepository persists catalog categories. Slug uniqueness is enforced
// with index documents keyed by slug and created in the same transaction as
// the category write, so a racing duplicate fails with a conflict.
type CategoryRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[domain.Category]
}

// NewCategoryRepository constructs a Firestore-backed category repository.
func NewCategoryRepository(provider *pfirestore.Provider) (*CategoryRepository, error) {
	if provider == nil {
		return nil, errors.New("category repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Category) (any, error) {
		return encodeCategoryDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Category, error) {
		var doc categoryDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Category{}, err
		}
		doc.ID = snap.Ref.ID
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = snap.UpdateTime
		}
		return decodeCategoryDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.Category](provider, categoriesCollection, encoder, decoder)
	return &CategoryRepository{provider: provider, base: base}, nil
}

// Insert stores a new category and claims its slug atomically.
func (r *CategoryRepository) Insert(ctx context.Context, category domain.Category) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	category.ID = strings.TrimSpace(category.ID)
	if category.ID == "" {
		return errors.New("category repository: id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	docRef := client.Collection(categoriesCollection).Doc(category.ID)
	slugRef := client.Collection(categorySlugsCollection).Doc(category.Slug)
	payload := encodeCategoryDocument(category)

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(slugRef, slugIndexDocument{OwnerID: category.ID, CreatedAt: category.CreatedAt.UTC()}); err != nil {
			return err
		}
		return tx.Create(docRef, payload)
	})
	if err != nil {
		return pfirestore.WrapError("categories.insert", err)
	}
	return nil
}

// Update replaces the category document and moves its slug claim when the slug changed.
func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	category.ID = strings.TrimSpace(category.ID)
	if category.ID == "" {
		return errors.New("category repository: id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	docRef := client.Collection(categoriesCollection).Doc(category.ID)
	payload := encodeCategoryDocument(category)

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		previousSlug, _ := snap.DataAt("slug")
		oldSlug, _ := previousSlug.(string)
		if oldSlug != category.Slug {
			if oldSlug != "" {
				if err := tx.Delete(client.Collection(categorySlugsCollection).Doc(oldSlug)); err != nil {
					return err
				}
			}
			newSlugRef := client.Collection(categorySlugsCollection).Doc(category.Slug)
			if err := tx.Create(newSlugRef, slugIndexDocument{OwnerID: category.ID, CreatedAt: category.UpdatedAt.UTC()}); err != nil {
				return err
			}
		}
		return tx.Set(docRef, payload)
	})
	if err != nil {
		return pfirestore.WrapError("categories.update", err)
	}
	return nil
}

// Delete removes the category and releases its slug claim.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID string) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return errors.New("category repository: id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	docRef := client.Collection(categoriesCollection).Doc(categoryID)

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		slugValue, _ := snap.DataAt("slug")
		if slug, _ := slugValue.(string); slug != "" {
			if err := tx.Delete(client.Collection(categorySlugsCollection).Doc(slug)); err != nil {
				return err
			}
		}
		return tx.Delete(docRef)
	})
	if err != nil {
		return pfirestore.WrapError("categories.delete", err)
	}
	return nil
}

// FindByID loads a category by its identifier.
func (r *CategoryRepository) FindByID(ctx context.Context, categoryID string) (domain.Category, error) {
	if r == nil || r.base == nil {
		return domain.Category{}, errors.New("category repository not initialised")
	}
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return domain.Category{}, errors.New("category repository: id is required")
	}
	doc, err := r.base.Get(ctx, categoryID)
	if err != nil {
		return domain.Category{}, err
	}
	return doc.Data, nil
}

// FindBySlug loads a category by its public slug.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (domain.Category, error) {
	if r == nil || r.base == nil {
		return domain.Category{}, errors.New("category repository not initialised")
	}
	slug = strings.TrimSpace(slug)
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", slug).Limit(1)
	})
	if err != nil {
		return domain.Category{}, err
	}
	if len(docs) == 0 {
		return domain.Category{}, pfirestore.WrapError("categories.find_by_slug", status.Error(codes.NotFound, "category not found"))
	}
	return docs[0].Data, nil
}

// List returns the filtered page of categories. Search spans every locale of
// the localized fields so the match runs in memory on the fetched set.
func (r *CategoryRepository) List(ctx context.Context, filter repositories.CategoryFilter) (domain.Page[domain.Category], error) {
	if r == nil || r.base == nil {
		return domain.Page[domain.Category]{}, errors.New("category repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if len(filter.Status) == 1 {
			q = q.Where("status", "==", string(filter.Status[0]))
		}
		return q
	})
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}

	items := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.Data)
	}
	items = filterCategories(items, filter)
	sortCategories(items, filter.Sort, filter.SortDesc)

	page, total := pageWindow(items, filter.Pagination)
	return domain.Page[domain.Category]{Items: page, Total: total}, nil
}

// sortCategories orders the slice. An explicit name sort replaces the
// featured-first rule and honours the requested direction.
func sortCategories(items []domain.Category, order repositories.CatalogSort, desc bool) {
	switch order {
	case repositories.CatalogSortName:
		sort.SliceStable(items, func(i, j int) bool {
			if desc {
				i, j = j, i
			}
			return items[i].Name.Primary() < items[j].Name.Primary()
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

func encodeCategoryDocument(category domain.Category) categoryDocument {
	return categoryDocument{
		Name:        cloneLocalized(category.Name),
		Slug:        strings.TrimSpace(category.Slug),
		Description: cloneLocalized(category.Description),
		Thumbnail:   strings.TrimSpace(category.Thumbnail),
		Featured:    category.Featured,
		Status:      string(category.Status),
		SortOrder:   category.SortOrder,
		CreatedAt:   category.CreatedAt.UTC(),
		UpdatedAt:   category.UpdatedAt.UTC(),
	}
}

func decodeCategoryDocument(doc categoryDocument) domain.Category {
	return domain.Category{
		ID:          doc.ID,
		Name:        domain.LocalizedText(doc.Name),
		Slug:        doc.Slug,
		Description: domain.LocalizedText(doc.Description),
		Thumbnail:   doc.Thumbnail,
		Featured:    doc.Featured,
		Status:      domain.CategoryStatus(doc.Status),
		SortOrder:   doc.SortOrder,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}

type categoryDocument struct {
	ID          string            `firestore:"-"`
	Name        map[string]string `firestore:"name"`
	Slug        string            `firestore:"slug"`
	Description map[string]string `firestore:"description,omitempty"`
	Thumbnail   string            `firestore:"thumbnail,omitempty"`
	Featured    bool              `firestore:"featured"`
	Status      string            `firestore:"status"`
	SortOrder   int               `firestore:"sortOrder"`
	CreatedAt   time.Time         `firestore:"createdAt"`
	UpdatedAt   time.Time         `firestore:"updatedAt"`
}

// slugIndexDocument claims a slug for its owning entity within a kind.
type slugIndexDocument struct {
	OwnerID   string    `firestore:"ownerId"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func cloneLocalized(values domain.LocalizedText) map[string]string {
	if len(values) == 0 {
		return nil
	}
	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}

var _ repositories.CategoryRepository = (*CategoryRepository)(nil)
