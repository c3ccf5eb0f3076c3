package firestore

import (
	"strings"

	domain "github.com/anvi-leather/api/internal/domain"
	"github.com/anvi-leather/api/internal/repositories"
)

// pageWindow applies offset paging to the sorted result set and reports the
// pre-window total. A non-positive page size returns everything.
func pageWindow[T any](items []T, p domain.Pagination) ([]T, int) {
	total := len(items)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if p.PageSize <= 0 || end > total {
		end = total
	}
	return items[start:end], total
}

// filterCategories applies the in-memory half of a category listing: status
// set, featured flag, and case-insensitive search across every locale.
func filterCategories(items []domain.Category, filter repositories.CategoryFilter) []domain.Category {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	statuses := make(map[domain.CategoryStatus]struct{}, len(filter.Status))
	for _, s := range filter.Status {
		statuses[s] = struct{}{}
	}

	out := make([]domain.Category, 0, len(items))
	for _, category := range items {
		if len(statuses) > 0 {
			if _, ok := statuses[category.Status]; !ok {
				continue
			}
		}
		if filter.Featured != nil && category.Featured != *filter.Featured {
			continue
		}
		if needle != "" && !category.Name.Matches(needle) && !category.Description.Matches(needle) {
			continue
		}
		out = append(out, category)
	}
	return out
}

// filterProducts applies the in-memory half of a product listing. Price
// bounds exclude unpriced products.
func filterProducts(items []domain.Product, filter repositories.ProductFilter) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	statuses := make(map[domain.ProductStatus]struct{}, len(filter.Status))
	for _, s := range filter.Status {
		statuses[s] = struct{}{}
	}

	out := make([]domain.Product, 0, len(items))
	for _, product := range items {
		if len(statuses) > 0 {
			if _, ok := statuses[product.Status]; !ok {
				continue
			}
		}
		if filter.Featured != nil && product.Featured != *filter.Featured {
			continue
		}
		if filter.MinPrice != nil && (product.Price == nil || *product.Price < *filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && (product.Price == nil || *product.Price > *filter.MaxPrice) {
			continue
		}
		if needle != "" && !product.Name.Matches(needle) && !product.Description.Matches(needle) &&
			!product.ShortDesc.Matches(needle) && !product.Materials.Matches(needle) {
			continue
		}
		out = append(out, product)
	}
	return out
}

// filterAdminUsers applies role, active flag, and name/email search.
func filterAdminUsers(items []domain.AdminUser, filter repositories.AdminUserFilter) []domain.AdminUser {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	roles := make(map[domain.AdminRole]struct{}, len(filter.Role))
	for _, role := range filter.Role {
		roles[role] = struct{}{}
	}

	out := make([]domain.AdminUser, 0, len(items))
	for _, user := range items {
		if len(roles) > 0 {
			if _, ok := roles[user.Role]; !ok {
				continue
			}
		}
		if filter.Active != nil && user.Active != *filter.Active {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(user.FirstName), needle) &&
			!strings.Contains(strings.ToLower(user.LastName), needle) &&
			!strings.Contains(strings.ToLower(user.Email), needle) {
			continue
		}
		out = append(out, user)
	}
	return out
}

// filterInquiries applies status set and contact/content search.
func filterInquiries(items []domain.CustomerInquiry, filter repositories.InquiryFilter) []domain.CustomerInquiry {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	statuses := make(map[domain.InquiryStatus]struct{}, len(filter.Status))
	for _, s := range filter.Status {
		statuses[s] = struct{}{}
	}

	out := make([]domain.CustomerInquiry, 0, len(items))
	for _, inquiry := range items {
		if len(statuses) > 0 {
			if _, ok := statuses[inquiry.Status]; !ok {
				continue
			}
		}
		if needle != "" && !inquiryMatches(inquiry, needle) {
			continue
		}
		out = append(out, inquiry)
	}
	return out
}
