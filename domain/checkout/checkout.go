/*
Package checkout owns the four-step checkout flow: step sequencing, per-step
field validation, and order-summary derivation from the cart contents.

The Checkout aggregate is the only entry point for mutating a checkout
session. Fields are private and behavior is exposed through methods, so the
flow invariants hold no matter who calls:

  - the cart is non-empty for steps 1-3 (an empty cart never produces an
    aggregate at all),
  - forward transitions are gated on validation,
  - Review's forward transition is order placement, never a plain advance,
  - Confirmation is terminal,
  - at most one order submission is in flight per session, the session is
    frozen against step and field mutations while it is, and after a
    successful one only the last four card digits remain in memory.
*/
package checkout

import (
	"fmt"
	"time"

	"storefront/domain/identity"
	"storefront/domain/shared"

	"github.com/google/uuid"
)

const (
	minQuantity = 1
	maxQuantity = 10

	defaultQuantity = 1
	defaultSize     = "M"
)

// Item is one line item of a checkout session. It snapshots the unit price
// at checkout time and is immutable thereafter; there is no in-checkout
// quantity editing.
type Item struct {
	productID   string
	productName string
	image       string
	size        string
	quantity    int
	unitPrice   shared.Money
	lineTotal   shared.Money
}

func (i Item) ProductID() string      { return i.productID }
func (i Item) ProductName() string    { return i.productName }
func (i Item) Image() string          { return i.image }
func (i Item) Size() string           { return i.size }
func (i Item) Quantity() int          { return i.quantity }
func (i Item) UnitPrice() shared.Money { return i.unitPrice }
func (i Item) LineTotal() shared.Money { return i.lineTotal }

// Seed is the product selection a checkout is initialized from.
type Seed struct {
	ProductID   string
	ProductName string
	Image       string
	UnitPrice   shared.Money
	Size        string
	Quantity    int
}

// Checkout is the aggregate root of one checkout session: a single cart
// snapshot walked through the Shipping, Payment, Review and Confirmation
// steps.
type Checkout struct {
	id          string
	identityRef string
	items       []Item
	shipping    ShippingInfo
	payment     PaymentInfo
	summary     Summary
	pricing     Pricing
	step        Step
	submitting  bool
	orderNumber string
	createdAt   time.Time
	updatedAt   time.Time

	events []shared.DomainEvent
}

// NewCheckout initializes a checkout session from a single product
// selection. Quantity defaults to 1 and size to "M" when unset. Shipping
// fields are pre-populated from the identity when one is present; the
// aggregate never reaches into ambient session state itself.
//
// A nil or empty seed fails with ErrEmptyCheckout: the empty cart is an
// unrecoverable state that short-circuits the whole flow before any step.
func NewCheckout(seed *Seed, ident *identity.Identity, pricing Pricing) (*Checkout, error) {
	if seed == nil || seed.ProductID == "" {
		return nil, ErrEmptyCheckout
	}

	quantity := seed.Quantity
	if quantity == 0 {
		quantity = defaultQuantity
	}
	if quantity < minQuantity || quantity > maxQuantity {
		return nil, ErrInvalidQuantity
	}

	size := seed.Size
	if size == "" {
		size = defaultSize
	}

	lineTotal, err := seed.UnitPrice.Multiply(quantity)
	if err != nil {
		return nil, err
	}

	items := []Item{{
		productID:   seed.ProductID,
		productName: seed.ProductName,
		image:       seed.Image,
		size:        size,
		quantity:    quantity,
		unitPrice:   seed.UnitPrice,
		lineTotal:   *lineTotal,
	}}

	summary, err := RecomputeSummary(items, pricing)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate checkout ID: %w", err)
	}

	now := time.Now()
	c := &Checkout{
		id:        id.String(),
		items:     items,
		summary:   summary,
		pricing:   pricing,
		step:      StepShipping,
		createdAt: now,
		updatedAt: now,
		events:    make([]shared.DomainEvent, 0),
	}

	if ident != nil {
		c.identityRef = ident.ID
		c.shipping.FullName = ident.FullName
		c.shipping.Email = ident.Email
		c.shipping.Phone = ident.Mobile
	}

	c.events = append(c.events, NewCheckoutStartedEvent(c.id, seed.ProductID, summary.Total))

	return c, nil
}

// UpdateShippingField merges one shipping field by its wire name. No
// validation happens here; incomplete data only blocks Advance.
func (c *Checkout) UpdateShippingField(field, value string) error {
	if c.submitting {
		return ErrSubmissionInFlight
	}
	if c.step.IsTerminal() {
		return NewInvalidTransitionError(c.step, "edit shipping")
	}
	if err := c.shipping.merge(field, value); err != nil {
		return err
	}
	c.updatedAt = time.Now()
	return nil
}

// UpdatePaymentField merges one payment field by its wire name, applying the
// card-number and expiry formatting transforms.
func (c *Checkout) UpdatePaymentField(field, value string) error {
	if c.submitting {
		return ErrSubmissionInFlight
	}
	if c.step.IsTerminal() {
		return NewInvalidTransitionError(c.step, "edit payment")
	}
	if err := c.payment.merge(field, value); err != nil {
		return err
	}
	c.updatedAt = time.Now()
	return nil
}

// Advance validates the current step's required fields and moves the flow
// one step forward. It cannot pass Review: Review's forward transition is
// order placement, not a plain advance.
func (c *Checkout) Advance() error {
	if c.submitting {
		return ErrSubmissionInFlight
	}
	switch c.step {
	case StepShipping:
		if fields := c.shipping.missing(); len(fields) > 0 {
			return &ValidationError{Step: c.step, MissingFields: fields}
		}
		c.step = StepPayment
	case StepPayment:
		if fields := c.payment.missing(); len(fields) > 0 {
			return &ValidationError{Step: c.step, MissingFields: fields}
		}
		c.step = StepReview
	default:
		return NewInvalidTransitionError(c.step, "advance")
	}
	c.updatedAt = time.Now()
	return nil
}

// Retreat moves the flow back exactly one step. Shipping has nothing below
// it and Confirmation is terminal; both reject the move. Entered field data
// is untouched.
func (c *Checkout) Retreat() error {
	if c.submitting {
		return ErrSubmissionInFlight
	}
	switch c.step {
	case StepPayment:
		c.step = StepShipping
	case StepReview:
		c.step = StepPayment
	default:
		return NewInvalidTransitionError(c.step, "retreat")
	}
	c.updatedAt = time.Now()
	return nil
}

// BeginPlaceOrder starts order placement. Only valid from Review, and only
// while no prior submission is pending, so repeated activations cannot
// produce duplicate orders. It returns the draft to submit to the order API;
// the card number in the draft is already masked to its last four digits and
// the CVV never leaves the aggregate.
func (c *Checkout) BeginPlaceOrder() (*OrderDraft, error) {
	if c.step != StepReview {
		return nil, NewInvalidTransitionError(c.step, "place order")
	}
	if c.submitting {
		return nil, ErrSubmissionInFlight
	}

	c.submitting = true
	items := make([]Item, len(c.items))
	copy(items, c.items)

	return &OrderDraft{
		CheckoutID:  c.id,
		IdentityRef: c.identityRef,
		Items:       items,
		Shipping:    c.shipping,
		Payment: MaskedPayment{
			NameOnCard: c.payment.NameOnCard,
			CardLast4:  LastFourDigits(c.payment.CardNumber),
			ExpiryDate: c.payment.ExpiryDate,
		},
		Summary: c.summary,
	}, nil
}

// CompletePlaceOrder records the order API's acknowledgement: the flow
// transitions to Confirmation, the full card number is discarded, and the
// placement event is recorded.
func (c *Checkout) CompletePlaceOrder(conf Confirmation) error {
	if !c.submitting || c.step != StepReview {
		return NewInvalidTransitionError(c.step, "confirm order")
	}

	c.submitting = false
	c.step = StepConfirmation
	c.orderNumber = conf.OrderNumber
	c.payment.mask()
	c.updatedAt = time.Now()
	c.events = append(c.events, NewOrderPlacedEvent(c.id, conf.OrderNumber, c.identityRef, c.summary.Total))
	return nil
}

// FailPlaceOrder records a failed submission. The flow stays at Review and
// every entered field survives, so the user retries without re-entering
// anything.
func (c *Checkout) FailPlaceOrder() {
	c.submitting = false
	c.updatedAt = time.Now()
}

// RecomputeSummary re-derives the summary from the current items. Items are
// immutable after initialization, so this is a fixpoint; it exists so the
// derivation stays observable as a pure function of the cart.
func (c *Checkout) RecomputeSummary() error {
	summary, err := RecomputeSummary(c.items, c.pricing)
	if err != nil {
		return err
	}
	c.summary = summary
	return nil
}

// ID returns the checkout session ID.
func (c *Checkout) ID() string { return c.id }

// IdentityRef returns the ID of the identity the session was started for.
func (c *Checkout) IdentityRef() string { return c.identityRef }

// Items returns a copy of the line items.
func (c *Checkout) Items() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Checkout) Shipping() ShippingInfo { return c.shipping }
func (c *Checkout) Payment() PaymentInfo   { return c.payment }
func (c *Checkout) Summary() Summary       { return c.summary }
func (c *Checkout) Step() Step             { return c.step }
func (c *Checkout) Submitting() bool       { return c.submitting }
func (c *Checkout) OrderNumber() string    { return c.orderNumber }
func (c *Checkout) CreatedAt() time.Time   { return c.createdAt }
func (c *Checkout) UpdatedAt() time.Time   { return c.updatedAt }

// PullEvents returns and clears the recorded domain events.
func (c *Checkout) PullEvents() []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(c.events))
	copy(events, c.events)
	c.events = c.events[:0]
	return events
}

// Compile-time check that Checkout implements AggregateRoot.
var _ shared.AggregateRoot = (*Checkout)(nil)
