package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	pfirestore "github.com/anvi-leather/api/internal/platform/firestore"
	"github.com/anvi-leather/api/internal/repositories"
)

// Registry bundles the Firestore repositories behind the repositories.Registry
// contract for dependency injection.
type Registry struct {
	provider   *pfirestore.Provider
	categories *CategoryRepository
	products   *ProductRepository
	adminUsers *AdminUserRepository
	inquiries  *InquiryRepository
	health     repositories.HealthRepository
}

// NewRegistry constructs every repository against the shared provider.
func NewRegistry(provider *pfirestore.Provider, health repositories.HealthRepository) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry: firestore provider is required")
	}
	categories, err := NewCategoryRepository(provider)
	if err != nil {
		return nil, err
	}
	products, err := NewProductRepository(provider)
	if err != nil {
		return nil, err
	}
	adminUsers, err := NewAdminUserRepository(provider)
	if err != nil {
		return nil, err
	}
	inquiries, err := NewInquiryRepository(provider)
	if err != nil {
		return nil, err
	}
	return &Registry{
		provider:   provider,
		categories: categories,
		products:   products,
		adminUsers: adminUsers,
		inquiries:  inquiries,
		health:     health,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

// Categories returns the category repository.
func (r *Registry) Categories() repositories.CategoryRepository { return r.categories }

// Products returns the product repository.
func (r *Registry) Products() repositories.ProductRepository { return r.products }

// AdminUsers returns the admin account repository.
func (r *Registry) AdminUsers() repositories.AdminUserRepository { return r.adminUsers }

// Inquiries returns the inquiry repository.
func (r *Registry) Inquiries() repositories.InquiryRepository { return r.inquiries }

// Health returns the dependency health repository when configured.
func (r *Registry) Health() repositories.HealthRepository { return r.health }

// RunInTx groups repository operations inside a Firestore transaction.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil || r.provider == nil {
		return errors.New("registry: firestore provider is required")
	}
	return r.provider.RunTransaction(ctx, func(ctx context.Context, _ *firestore.Transaction) error {
		return fn(ctx)
	})
}

var _ repositories.Registry = (*Registry)(nil)
