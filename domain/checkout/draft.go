package checkout

import (
	"context"
	"time"
)

// MaskedPayment is the payment record as it is allowed to leave the
// aggregate: last four card digits only, no CVV.
type MaskedPayment struct {
	NameOnCard string
	CardLast4  string
	ExpiryDate string
}

// OrderDraft is the assembled order handed to the order API. It is produced
// by BeginPlaceOrder and already satisfies the privacy invariant.
type OrderDraft struct {
	CheckoutID  string
	IdentityRef string
	Items       []Item
	Shipping    ShippingInfo
	Payment     MaskedPayment
	Summary     Summary
}

// Confirmation is the order API's acknowledgement of a placed order.
type Confirmation struct {
	OrderNumber string
	PlacedAt    time.Time
}

// OrderGateway is the seam to the remote order API. Implementations must be
// real network boundaries: they honor the context deadline and report
// failures instead of fabricating success.
type OrderGateway interface {
	Submit(ctx context.Context, draft *OrderDraft) (*Confirmation, error)
}
