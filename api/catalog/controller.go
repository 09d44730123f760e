// Package catalog - product listing API controller.
package catalog

import (
	"net/http"

	"storefront/api/ctxutil"
	"storefront/api/response"
	catalogapp "storefront/application/catalog"

	"github.com/gin-gonic/gin"
)

// Controller handles the catalog routes.
type Controller struct {
	catalogService *catalogapp.ApplicationService
}

// NewController creates the catalog controller.
func NewController(catalogService *catalogapp.ApplicationService) *Controller {
	return &Controller{
		catalogService: catalogService,
	}
}

// RegisterRoutes registers the catalog routes.
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/products")
	{
		group.GET("", c.ListProducts)
		group.GET("/:id", c.GetProduct)
	}
}

// ListProducts returns the filtered, sorted product listing.
// GET /api/v1/products?category=&brand=&search=&sort=
func (c *Controller) ListProducts(ctx *gin.Context) {
	var req catalogapp.ListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	products, err := c.catalogService.List(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, products, "products retrieved")
}

// GetProduct returns a single product.
// GET /api/v1/products/:id
func (c *Controller) GetProduct(ctx *gin.Context) {
	id := ctx.Param("id")

	product, err := c.catalogService.Get(ctxutil.WithRequestID(ctx), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, product, "product retrieved")
}
