// Package catalog is the read model over the upstream product catalog. The
// storefront never owns product data; it looks products up to seed checkouts
// and to serve listing pages, and applies filtering and sorting client-side.
package catalog

import (
	"context"
	"errors"

	"storefront/domain/shared"
)

// ErrProductNotFound is returned when the upstream catalog has no product
// with the requested ID.
var ErrProductNotFound = errors.New("product not found")

// Product is a catalog entry as served by the upstream API.
type Product struct {
	ID            string
	Name          string
	Brand         string
	Category      string
	Description   string
	Price         shared.Money
	OriginalPrice shared.Money
	Discount      int
	Sizes         []string
	Images        []string
	Stock         int
	Rating        float64
	ReviewCount   int
	Assured       bool
}

// Lookup resolves products from the upstream catalog.
type Lookup interface {
	// Product fetches a single product by ID. Returns an error satisfying
	// errors.Is(err, ErrProductNotFound) when it does not exist.
	Product(ctx context.Context, id string) (*Product, error)

	// Products fetches the full catalog listing.
	Products(ctx context.Context) ([]Product, error)
}
