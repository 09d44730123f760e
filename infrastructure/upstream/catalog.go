package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/config"
	"storefront/domain/catalog"
	"storefront/domain/shared"
)

// CatalogClient reads products from the upstream catalog endpoint.
type CatalogClient struct {
	client   *Client
	currency string
}

// NewCatalogClient builds a catalog lookup backed by the products API.
// Upstream prices arrive as decimal floats and convert to the configured
// currency's minor units.
func NewCatalogClient(cfg config.EndpointConfig, currency string) *CatalogClient {
	return &CatalogClient{client: NewClient(cfg), currency: currency}
}

var _ catalog.Lookup = (*CatalogClient)(nil)

type productPayload struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice"`
	Discount      int      `json:"discount"`
	Sizes         []string `json:"sizes"`
	Images        []string `json:"images"`
	Stock         int      `json:"stock"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	Assured       bool     `json:"assured"`
}

func (c *CatalogClient) toProduct(p productPayload) catalog.Product {
	return catalog.Product{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		Description:   p.Description,
		Price:         *shared.NewMoneyFromFloat(p.Price, c.currency),
		OriginalPrice: *shared.NewMoneyFromFloat(p.OriginalPrice, c.currency),
		Discount:      p.Discount,
		Sizes:         p.Sizes,
		Images:        p.Images,
		Stock:         p.Stock,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Assured:       p.Assured,
	}
}

// Product fetches a single product by id.
func (c *CatalogClient) Product(ctx context.Context, id string) (*catalog.Product, error) {
	var payload productPayload
	if err := c.client.getJSON(ctx, "/api/products/"+id, "", &payload); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}
	product := c.toProduct(payload)
	return &product, nil
}

// Products fetches the full product listing.
func (c *CatalogClient) Products(ctx context.Context) ([]catalog.Product, error) {
	var payloads []productPayload
	if err := c.client.getJSON(ctx, "/api/products", "", &payloads); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	products := make([]catalog.Product, 0, len(payloads))
	for _, p := range payloads {
		products = append(products, c.toProduct(p))
	}
	return products, nil
}

// Ping probes the catalog endpoint.
func (c *CatalogClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
