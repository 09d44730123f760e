// Package catalog Application Layer - product listing and detail views over
// the upstream catalog. Filtering and sorting run in-process on the fetched
// listing; the upstream API only serves the raw collection.
package catalog

import (
	"context"
	"sort"
	"strings"

	"storefront/domain/catalog"
)

// Sort orders accepted by List.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

// ApplicationService serves catalog read operations.
type ApplicationService struct {
	lookup catalog.Lookup
}

// NewApplicationService creates the catalog application service.
func NewApplicationService(lookup catalog.Lookup) *ApplicationService {
	return &ApplicationService{lookup: lookup}
}

// ListRequest filters and orders the product listing.
type ListRequest struct {
	Category string `form:"category"`
	Brand    string `form:"brand"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
}

// ProductResponse is one catalog entry as served to clients. Prices are in
// minor currency units.
type ProductResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	Description   string   `json:"description,omitempty"`
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"original_price,omitempty"`
	Currency      string   `json:"currency"`
	Discount      int      `json:"discount,omitempty"`
	Sizes         []string `json:"sizes,omitempty"`
	Images        []string `json:"images,omitempty"`
	Stock         int      `json:"stock"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	Assured       bool     `json:"assured"`
}

// List returns the product listing after filtering and sorting.
func (s *ApplicationService) List(ctx context.Context, req ListRequest) ([]ProductResponse, error) {
	products, err := s.lookup.Products(ctx)
	if err != nil {
		return nil, err
	}

	filtered := products[:0:0]
	for _, p := range products {
		if req.Category != "" && !strings.EqualFold(p.Category, req.Category) {
			continue
		}
		if req.Brand != "" && !strings.EqualFold(p.Brand, req.Brand) {
			continue
		}
		if req.Search != "" && !matchesSearch(p, req.Search) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch req.Sort {
	case SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price.Amount() < filtered[j].Price.Amount()
		})
	case SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price.Amount() > filtered[j].Price.Amount()
		})
	case SortRating:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Rating > filtered[j].Rating
		})
	}

	responses := make([]ProductResponse, len(filtered))
	for i, p := range filtered {
		responses[i] = convertToResponse(p)
	}
	return responses, nil
}

// Get returns a single product.
func (s *ApplicationService) Get(ctx context.Context, id string) (*ProductResponse, error) {
	product, err := s.lookup.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := convertToResponse(*product)
	return &resp, nil
}

func matchesSearch(p catalog.Product, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Brand), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func convertToResponse(p catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		Description:   p.Description,
		Price:         p.Price.Amount(),
		OriginalPrice: p.OriginalPrice.Amount(),
		Currency:      p.Price.Currency(),
		Discount:      p.Discount,
		Sizes:         p.Sizes,
		Images:        p.Images,
		Stock:         p.Stock,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Assured:       p.Assured,
	}
}
