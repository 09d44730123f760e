/*
Package checkout - checkout flow API controller

Responsibilities:
1. Parse HTTP requests and bind parameters
2. Call the checkout application service
3. Handle responses and errors through the response package

Error handling:
1. Binding failures: response.HandleError returns 400 directly
2. Flow errors: response.HandleAppError maps the error code to a status,
   e.g. a blocked transition to 400 with the missing field names, a
   duplicate order activation to 409, a rejected submission to 502
*/
package checkout

import (
	"net/http"

	"storefront/api/ctxutil"
	"storefront/api/middleware"
	"storefront/api/response"
	checkoutapp "storefront/application/checkout"
	"storefront/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Controller handles the checkout flow routes.
type Controller struct {
	checkoutService *checkoutapp.ApplicationService
}

// NewController creates the checkout controller.
func NewController(checkoutService *checkoutapp.ApplicationService) *Controller {
	return &Controller{
		checkoutService: checkoutService,
	}
}

// RegisterRoutes registers the checkout routes.
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/checkouts")
	{
		group.POST("", c.StartCheckout)
		group.GET("/:id", c.GetCheckout)
		group.PUT("/:id/shipping", c.UpdateShipping)
		group.PUT("/:id/payment", c.UpdatePayment)
		group.POST("/:id/advance", c.Advance)
		group.POST("/:id/back", c.Retreat)
		group.POST("/:id/order", c.PlaceOrder)
		group.DELETE("/:id", c.Teardown)
	}
}

// StartCheckout initializes a checkout session from a product selection.
// POST /api/v1/checkouts
func (c *Controller) StartCheckout(ctx *gin.Context) {
	var req checkoutapp.StartCheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	token := ctx.GetHeader(middleware.SessionTokenHeader)
	session, err := c.checkoutService.Start(ctxutil.WithRequestID(ctx), token, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, session, "checkout started")
}

// GetCheckout returns the current session view.
// GET /api/v1/checkouts/:id
func (c *Controller) GetCheckout(ctx *gin.Context) {
	id := ctx.Param("id")

	session, err := c.checkoutService.Get(ctxutil.WithRequestID(ctx), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, session, "checkout retrieved")
}

// UpdateShipping merges one shipping field.
// PUT /api/v1/checkouts/:id/shipping
func (c *Controller) UpdateShipping(ctx *gin.Context) {
	id := ctx.Param("id")

	var req checkoutapp.UpdateFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	session, err := c.checkoutService.UpdateShipping(ctxutil.WithRequestID(ctx), id, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, session, "shipping updated")
}

// UpdatePayment merges one payment field. Card number and expiry come back
// in their display format.
// PUT /api/v1/checkouts/:id/payment
func (c *Controller) UpdatePayment(ctx *gin.Context) {
	id := ctx.Param("id")

	var req checkoutapp.UpdateFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	session, err := c.checkoutService.UpdatePayment(ctxutil.WithRequestID(ctx), id, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, session, "payment updated")
}

// Advance validates the current step and moves the flow forward.
// POST /api/v1/checkouts/:id/advance
func (c *Controller) Advance(ctx *gin.Context) {
	id := ctx.Param("id")

	session, err := c.checkoutService.Advance(ctxutil.WithRequestID(ctx), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, session, "step advanced")
}

// Retreat moves the flow back one step.
// POST /api/v1/checkouts/:id/back
func (c *Controller) Retreat(ctx *gin.Context) {
	id := ctx.Param("id")

	session, err := c.checkoutService.Retreat(ctxutil.WithRequestID(ctx), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, session, "step retreated")
}

// PlaceOrder submits the reviewed checkout to the order API.
// POST /api/v1/checkouts/:id/order
func (c *Controller) PlaceOrder(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.HandleError(ctx, errors.BadRequest("checkout ID is required"), "checkout ID is required", http.StatusBadRequest)
		return
	}

	session, err := c.checkoutService.PlaceOrder(ctxutil.WithRequestID(ctx), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, session, "order placed")
}

// Teardown discards the session.
// DELETE /api/v1/checkouts/:id
func (c *Controller) Teardown(ctx *gin.Context) {
	id := ctx.Param("id")
	c.checkoutService.Teardown(ctxutil.WithRequestID(ctx), id)
	response.HandleNoContent(ctx)
}
