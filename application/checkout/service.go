/*
Package checkout Application Layer - checkout flow orchestration

Responsibilities:
1. Receive controller requests and resolve the caller's identity
2. Seed new sessions from the upstream catalog
3. Run aggregate operations under the session store's per-session lock
4. Keep the order submission outside that lock so a slow order API never
   blocks other operations on the session map
5. Publish domain events after the mutation committed
*/
package checkout

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"storefront/domain/catalog"
	"storefront/domain/checkout"
	"storefront/domain/identity"
	"storefront/domain/shared"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

// ApplicationService coordinates the checkout flow end to end.
type ApplicationService struct {
	store     checkout.SessionStore
	catalog   catalog.Lookup
	identity  identity.Provider
	gateway   checkout.OrderGateway
	publisher shared.EventPublisher
	metrics   *metrics.CheckoutMetrics

	pricing         checkout.Pricing
	confirmationTTL time.Duration
}

// NewApplicationService creates the checkout application service.
func NewApplicationService(
	store checkout.SessionStore,
	catalogLookup catalog.Lookup,
	identityProvider identity.Provider,
	gateway checkout.OrderGateway,
	publisher shared.EventPublisher,
	m *metrics.CheckoutMetrics,
	pricing checkout.Pricing,
	confirmationTTL time.Duration,
) *ApplicationService {
	return &ApplicationService{
		store:           store,
		catalog:         catalogLookup,
		identity:        identityProvider,
		gateway:         gateway,
		publisher:       publisher,
		metrics:         m,
		pricing:         pricing,
		confirmationTTL: confirmationTTL,
	}
}

// ============================================================================
// DTO Definitions - Data Transfer Objects
// ============================================================================

// StartCheckoutRequest starts a new checkout session from a product
// selection.
type StartCheckoutRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1,max=10"`
}

// UpdateFieldRequest merges one field of the current step's record.
type UpdateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// MoneyResponse Money response DTO. Amount is in minor currency units;
// Display carries the formatted decimal string.
type MoneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

// ItemResponse one checkout line item.
type ItemResponse struct {
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name"`
	Image       string        `json:"image,omitempty"`
	Size        string        `json:"size"`
	Quantity    int           `json:"quantity"`
	UnitPrice   MoneyResponse `json:"unit_price"`
	LineTotal   MoneyResponse `json:"line_total"`
}

// SummaryResponse the derived order summary.
type SummaryResponse struct {
	Subtotal MoneyResponse `json:"subtotal"`
	Shipping MoneyResponse `json:"shipping"`
	Tax      MoneyResponse `json:"tax"`
	Total    MoneyResponse `json:"total"`
}

// PaymentResponse the payment record as exposed to clients. The CVV is
// never serialized.
type PaymentResponse struct {
	NameOnCard string `json:"name_on_card"`
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
}

// CheckoutResponse the full session view the UI renders a step from.
type CheckoutResponse struct {
	ID          string                `json:"id"`
	Step        string                `json:"step"`
	StepNumber  int                   `json:"step_number"`
	Items       []ItemResponse        `json:"items"`
	Shipping    checkout.ShippingInfo `json:"shipping"`
	Payment     PaymentResponse       `json:"payment"`
	Summary     SummaryResponse       `json:"summary"`
	OrderNumber string                `json:"order_number,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ============================================================================
// Application Service Methods
// ============================================================================

// Start initializes a new checkout session from a product selection.
// Checkout requires a signed-in user: a missing or stale session token fails
// with identity.ErrNoSession and the host redirects to sign-in. The shipping
// record is pre-populated from the resolved identity.
func (s *ApplicationService) Start(ctx context.Context, token string, req StartCheckoutRequest) (*CheckoutResponse, error) {
	ident, err := s.resolveIdentity(ctx, token)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.Product(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	seed := &checkout.Seed{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Size:        req.Size,
		Quantity:    req.Quantity,
	}
	if len(product.Images) > 0 {
		seed.Image = product.Images[0]
	}

	session, err := checkout.NewCheckout(seed, ident, s.pricing)
	if err != nil {
		return nil, err
	}

	if err := s.store.Add(session); err != nil {
		return nil, err
	}

	s.metrics.SessionsStarted.Inc()
	s.publishEvents(ctx, session.PullEvents())

	return convertToResponse(session), nil
}

// Get returns the current session view.
func (s *ApplicationService) Get(ctx context.Context, id string) (*CheckoutResponse, error) {
	var resp *CheckoutResponse
	err := s.store.View(id, func(c *checkout.Checkout) error {
		resp = convertToResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateShipping merges one shipping field.
func (s *ApplicationService) UpdateShipping(ctx context.Context, id string, req UpdateFieldRequest) (*CheckoutResponse, error) {
	return s.mutate(id, func(c *checkout.Checkout) error {
		return c.UpdateShippingField(req.Field, req.Value)
	})
}

// UpdatePayment merges one payment field, applying the card-number and
// expiry formatting transforms.
func (s *ApplicationService) UpdatePayment(ctx context.Context, id string, req UpdateFieldRequest) (*CheckoutResponse, error) {
	return s.mutate(id, func(c *checkout.Checkout) error {
		return c.UpdatePaymentField(req.Field, req.Value)
	})
}

// Advance validates the current step and moves the flow forward.
func (s *ApplicationService) Advance(ctx context.Context, id string) (*CheckoutResponse, error) {
	return s.mutate(id, func(c *checkout.Checkout) error {
		return c.Advance()
	})
}

// Retreat moves the flow back one step, keeping all entered data.
func (s *ApplicationService) Retreat(ctx context.Context, id string) (*CheckoutResponse, error) {
	return s.mutate(id, func(c *checkout.Checkout) error {
		return c.Retreat()
	})
}

// PlaceOrder submits the reviewed checkout to the order API. The aggregate
// is locked only to enter and leave the submitting state; the network call
// runs between the two lock windows. A failed submission leaves the session
// at the review step with all data intact, a successful one transitions to
// confirmation and schedules the session's teardown.
func (s *ApplicationService) PlaceOrder(ctx context.Context, id string) (*CheckoutResponse, error) {
	var draft *checkout.OrderDraft
	err := s.store.Update(id, func(c *checkout.Checkout) error {
		var beginErr error
		draft, beginErr = c.BeginPlaceOrder()
		return beginErr
	})
	if err != nil {
		return nil, err
	}

	conf, err := s.gateway.Submit(ctx, draft)
	if err != nil {
		s.metrics.SubmissionFailures.Inc()
		logger.Warn("order submission failed",
			zap.String("checkout_id", id),
			zap.Error(err),
		)
		if storeErr := s.store.Update(id, func(c *checkout.Checkout) error {
			c.FailPlaceOrder()
			return nil
		}); storeErr != nil {
			logger.Error("failed to reset submission state",
				zap.String("checkout_id", id),
				zap.Error(storeErr),
			)
		}
		return nil, err
	}

	var resp *CheckoutResponse
	var events []shared.DomainEvent
	err = s.store.Update(id, func(c *checkout.Checkout) error {
		if completeErr := c.CompletePlaceOrder(*conf); completeErr != nil {
			// The submitting flag must not outlive the submission, or the
			// session rejects every operation from here on.
			c.FailPlaceOrder()
			return completeErr
		}
		events = c.PullEvents()
		resp = convertToResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrdersPlaced.Inc()
	s.publishEvents(ctx, events)
	s.store.ScheduleExpiry(id, s.confirmationTTL)

	logger.Info("order placed",
		zap.String("checkout_id", id),
		zap.String("order_number", conf.OrderNumber),
	)
	return resp, nil
}

// Teardown discards the session. Idempotent: tearing down an unknown or
// already-expired session is not an error.
func (s *ApplicationService) Teardown(ctx context.Context, id string) {
	s.store.Remove(id)
}

// mutate runs op under the session lock and returns the fresh view.
func (s *ApplicationService) mutate(id string, op func(*checkout.Checkout) error) (*CheckoutResponse, error) {
	var resp *CheckoutResponse
	err := s.store.Update(id, func(c *checkout.Checkout) error {
		if err := op(c); err != nil {
			return err
		}
		resp = convertToResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// resolveIdentity turns a session token into an identity. An empty token
// short-circuits to ErrNoSession without a provider round trip; provider
// failures other than an absent session are reported as ErrNoSession too,
// since the caller cannot be authenticated either way.
func (s *ApplicationService) resolveIdentity(ctx context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, identity.ErrNoSession
	}
	ident, err := s.identity.Current(ctx, token)
	if err != nil {
		if !errors.Is(err, identity.ErrNoSession) {
			logger.Warn("identity lookup failed", zap.Error(err))
			return nil, identity.ErrNoSession
		}
		return nil, err
	}
	return ident, nil
}

func (s *ApplicationService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	for _, event := range events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			logger.Error("failed to publish domain event",
				zap.String("event", event.EventName()),
				zap.String("aggregate_id", event.AggregateID()),
				zap.Error(err),
			)
		}
	}
}

// ============================================================================
// Response Conversion
// ============================================================================

func toMoneyResponse(m shared.Money) MoneyResponse {
	return MoneyResponse{
		Amount:   m.Amount(),
		Currency: m.Currency(),
		Display:  m.String(),
	}
}

func convertToResponse(c *checkout.Checkout) *CheckoutResponse {
	domainItems := c.Items()
	items := make([]ItemResponse, len(domainItems))
	for i, item := range domainItems {
		items[i] = ItemResponse{
			ProductID:   item.ProductID(),
			ProductName: item.ProductName(),
			Image:       item.Image(),
			Size:        item.Size(),
			Quantity:    item.Quantity(),
			UnitPrice:   toMoneyResponse(item.UnitPrice()),
			LineTotal:   toMoneyResponse(item.LineTotal()),
		}
	}

	summary := c.Summary()
	payment := c.Payment()

	return &CheckoutResponse{
		ID:         c.ID(),
		Step:       c.Step().String(),
		StepNumber: int(c.Step()),
		Items:      items,
		Shipping:   c.Shipping(),
		Payment: PaymentResponse{
			NameOnCard: payment.NameOnCard,
			CardNumber: payment.CardNumber,
			ExpiryDate: payment.ExpiryDate,
		},
		Summary: SummaryResponse{
			Subtotal: toMoneyResponse(summary.Subtotal),
			Shipping: toMoneyResponse(summary.Shipping),
			Tax:      toMoneyResponse(summary.Tax),
			Total:    toMoneyResponse(summary.Total),
		},
		OrderNumber: c.OrderNumber(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}
