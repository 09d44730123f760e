package checkout

import (
	"time"

	"storefront/domain/shared"
)

// CheckoutStartedEvent records that a checkout session was initialized from
// a product selection.
type CheckoutStartedEvent struct {
	checkoutID string
	productID  string
	total      shared.Money
	occurredOn time.Time
}

func NewCheckoutStartedEvent(checkoutID, productID string, total shared.Money) *CheckoutStartedEvent {
	return &CheckoutStartedEvent{
		checkoutID: checkoutID,
		productID:  productID,
		total:      total,
		occurredOn: time.Now(),
	}
}

func (e *CheckoutStartedEvent) EventName() string     { return "checkout.started" }
func (e *CheckoutStartedEvent) OccurredOn() time.Time { return e.occurredOn }
func (e *CheckoutStartedEvent) AggregateID() string   { return e.checkoutID }
func (e *CheckoutStartedEvent) ProductID() string     { return e.productID }
func (e *CheckoutStartedEvent) Total() shared.Money   { return e.total }

// OrderPlacedEvent records that the order API acknowledged the order and the
// session reached Confirmation.
type OrderPlacedEvent struct {
	checkoutID  string
	orderNumber string
	identityRef string
	total       shared.Money
	occurredOn  time.Time
}

func NewOrderPlacedEvent(checkoutID, orderNumber, identityRef string, total shared.Money) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		checkoutID:  checkoutID,
		orderNumber: orderNumber,
		identityRef: identityRef,
		total:       total,
		occurredOn:  time.Now(),
	}
}

func (e *OrderPlacedEvent) EventName() string     { return "checkout.order_placed" }
func (e *OrderPlacedEvent) OccurredOn() time.Time { return e.occurredOn }
func (e *OrderPlacedEvent) AggregateID() string   { return e.checkoutID }
func (e *OrderPlacedEvent) OrderNumber() string   { return e.orderNumber }
func (e *OrderPlacedEvent) IdentityRef() string   { return e.identityRef }
func (e *OrderPlacedEvent) Total() shared.Money   { return e.total }
