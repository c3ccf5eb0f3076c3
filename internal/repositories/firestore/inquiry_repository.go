package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/anvi-leather/api/internal/domain"
	pfirestore "github.com/anvi-leather/api/internal/platform/firestore"
	"github.com/anvi-leather/api/internal/repositories"
)

const inquiriesCollection = "inquiries"

// InquiryRepository persists customer inquiries.
type InquiryRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[domain.CustomerInquiry]
}

// NewInquiryRepository constructs a Firestore-backed inquiry repository.
func NewInquiryRepository(provider *pfirestore.Provider) (*InquiryRepository, error) {
	if provider == nil {
		return nil, errors.New("inquiry repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.CustomerInquiry) (any, error) {
		return encodeInquiryDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.CustomerInquiry, error) {
		var doc inquiryDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.CustomerInquiry{}, err
		}
		doc.ID = snap.Ref.ID
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = snap.UpdateTime
		}
		return decodeInquiryDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.CustomerInquiry](provider, inquiriesCollection, encoder, decoder)
	return &InquiryRepository{provider: provider, base: base}, nil
}

// Insert stores a new inquiry document.
func (r *InquiryRepository) Insert(ctx context.Context, inquiry domain.CustomerInquiry) error {
	if r == nil || r.base == nil {
		return errors.New("inquiry repository not initialised")
	}
	inquiry.ID = strings.TrimSpace(inquiry.ID)
	if inquiry.ID == "" {
		return errors.New("inquiry repository: id is required")
	}

	docRef, err := r.base.DocumentRef(ctx, inquiry.ID)
	if err != nil {
		return err
	}
	if _, err := docRef.Create(ctx, encodeInquiryDocument(inquiry)); err != nil {
		return pfirestore.WrapError("inquiries.insert", err)
	}
	return nil
}

// Update replaces the inquiry document state.
func (r *InquiryRepository) Update(ctx context.Context, inquiry domain.CustomerInquiry) error {
	if r == nil || r.base == nil {
		return errors.New("inquiry repository not initialised")
	}
	inquiry.ID = strings.TrimSpace(inquiry.ID)
	if inquiry.ID == "" {
		return errors.New("inquiry repository: id is required")
	}
	if _, err := r.base.Set(ctx, inquiry.ID, inquiry); err != nil {
		return err
	}
	return nil
}

// Delete removes the inquiry document.
func (r *InquiryRepository) Delete(ctx context.Context, inquiryID string) error {
	if r == nil || r.base == nil {
		return errors.New("inquiry repository not initialised")
	}
	inquiryID = strings.TrimSpace(inquiryID)
	if inquiryID == "" {
		return errors.New("inquiry repository: id is required")
	}
	if _, err := r.base.Get(ctx, inquiryID); err != nil {
		return err
	}
	docRef, err := r.base.DocumentRef(ctx, inquiryID)
	if err != nil {
		return err
	}
	if _, err := docRef.Delete(ctx); err != nil {
		return pfirestore.WrapError("inquiries.delete", err)
	}
	return nil
}

// FindByID loads an inquiry by its identifier.
func (r *InquiryRepository) FindByID(ctx context.Context, inquiryID string) (domain.CustomerInquiry, error) {
	if r == nil || r.base == nil {
		return domain.CustomerInquiry{}, errors.New("inquiry repository not initialised")
	}
	inquiryID = strings.TrimSpace(inquiryID)
	if inquiryID == "" {
		return domain.CustomerInquiry{}, errors.New("inquiry repository: id is required")
	}
	doc, err := r.base.Get(ctx, inquiryID)
	if err != nil {
		return domain.CustomerInquiry{}, err
	}
	return doc.Data, nil
}

// List returns the filtered page of inquiries, newest first. Search spans
// name, email, company, and content and runs in memory.
func (r *InquiryRepository) List(ctx context.Context, filter repositories.InquiryFilter) (domain.Page[domain.CustomerInquiry], error) {
	if r == nil || r.base == nil {
		return domain.Page[domain.CustomerInquiry]{}, errors.New("inquiry repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if productID := strings.TrimSpace(filter.ProductID); productID != "" {
			q = q.Where("productId", "==", productID)
		}
		if len(filter.Status) == 1 {
			q = q.Where("status", "==", string(filter.Status[0]))
		}
		return q
	})
	if err != nil {
		return domain.Page[domain.CustomerInquiry]{}, err
	}

	items := make([]domain.CustomerInquiry, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.Data)
	}
	items = filterInquiries(items, filter)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	page, total := pageWindow(items, filter.Pagination)
	return domain.Page[domain.CustomerInquiry]{Items: page, Total: total}, nil
}

// ClearProductRef blanks the product reference on every inquiry pointing at
// the product. Used when a product is deleted; each update is independent.
func (r *InquiryRepository) ClearProductRef(ctx context.Context, productID string) error {
	if r == nil || r.base == nil {
		return errors.New("inquiry repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("productId", "==", productID)
	})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		docRef, err := r.base.DocumentRef(ctx, doc.ID)
		if err != nil {
			return err
		}
		updates := []firestore.Update{
			{Path: "productId", Value: ""},
			{Path: "updatedAt", Value: time.Now().UTC()},
		}
		if _, err := docRef.Update(ctx, updates); err != nil {
			return pfirestore.WrapError("inquiries.clear_product_ref", err)
		}
	}
	return nil
}

func inquiryMatches(inquiry domain.CustomerInquiry, needle string) bool {
	for _, value := range []string{inquiry.Name, inquiry.Email, inquiry.Company, inquiry.Content} {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

func encodeInquiryDocument(inquiry domain.CustomerInquiry) inquiryDocument {
	return inquiryDocument{
		Name:      strings.TrimSpace(inquiry.Name),
		Email:     normaliseEmail(inquiry.Email),
		Phone:     strings.TrimSpace(inquiry.Phone),
		Company:   strings.TrimSpace(inquiry.Company),
		Country:   strings.TrimSpace(inquiry.Country),
		ProductID: strings.TrimSpace(inquiry.ProductID),
		Quantity:  inquiry.Quantity,
		Content:   inquiry.Content,
		Images:    cloneStrings(inquiry.Images),
		Status:    string(inquiry.Status),
		AdminNote: inquiry.AdminNote,
		CreatedAt: inquiry.CreatedAt.UTC(),
		UpdatedAt: inquiry.UpdatedAt.UTC(),
	}
}

func decodeInquiryDocument(doc inquiryDocument) domain.CustomerInquiry {
	return domain.CustomerInquiry{
		ID:        doc.ID,
		Name:      doc.Name,
		Email:     doc.Email,
		Phone:     doc.Phone,
		Company:   doc.Company,
		Country:   doc.Country,
		ProductID: doc.ProductID,
		Quantity:  doc.Quantity,
		Content:   doc.Content,
		Images:    cloneStrings(doc.Images),
		Status:    domain.InquiryStatus(doc.Status),
		AdminNote: doc.AdminNote,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

type inquiryDocument struct {
	ID        string    `firestore:"-"`
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Phone     string    `firestore:"phone,omitempty"`
	Company   string    `firestore:"company,omitempty"`
	Country   string    `firestore:"country,omitempty"`
	ProductID string    `firestore:"productId,omitempty"`
	Quantity  int       `firestore:"quantity"`
	Content   string    `firestore:"content"`
	Images    []string  `firestore:"images,omitempty"`
	Status    string    `firestore:"status"`
	AdminNote string    `firestore:"adminNote,omitempty"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

var _ repositories.InquiryRepository = (*InquiryRepository)(nil)
