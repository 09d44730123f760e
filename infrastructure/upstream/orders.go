package upstream

import (
	"context"
	"net/http"
	"time"

	"storefront/config"
	"storefront/domain/checkout"
	"storefront/domain/shared"
)

// OrderClient submits finalized checkouts to the upstream orders endpoint.
type OrderClient struct {
	client *Client
}

// NewOrderClient builds an order gateway backed by the orders API.
func NewOrderClient(cfg config.EndpointConfig) *OrderClient {
	return &OrderClient{client: NewClient(cfg)}
}

var _ checkout.OrderGateway = (*OrderClient)(nil)

type orderItemPayload struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Size        string  `json:"size"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	LineTotal   float64 `json:"lineTotal"`
}

type orderShippingPayload struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type orderPaymentPayload struct {
	NameOnCard string `json:"nameOnCard"`
	CardLast4  string `json:"cardLast4"`
	ExpiryDate string `json:"expiryDate"`
}

type orderPayload struct {
	CheckoutID  string               `json:"checkoutId"`
	UserID      string               `json:"userId,omitempty"`
	Items       []orderItemPayload   `json:"items"`
	Shipping    orderShippingPayload `json:"shipping"`
	Payment     orderPaymentPayload  `json:"payment"`
	Subtotal    float64              `json:"subtotal"`
	ShippingFee float64              `json:"shippingFee"`
	Tax         float64              `json:"tax"`
	Total       float64              `json:"total"`
	Currency    string               `json:"currency"`
}

type orderResponse struct {
	OrderNumber string    `json:"orderNumber"`
	PlacedAt    time.Time `json:"placedAt"`
}

func toDecimal(m shared.Money) float64 {
	return float64(m.Amount()) / 100
}

// Submit places the order upstream. Network failures and non-2xx responses
// wrap into the submission failure error so the session can stay at the
// review step for a retry.
func (o *OrderClient) Submit(ctx context.Context, draft *checkout.OrderDraft) (*checkout.Confirmation, error) {
	items := make([]orderItemPayload, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, orderItemPayload{
			ProductID:   item.ProductID(),
			ProductName: item.ProductName(),
			Size:        item.Size(),
			Quantity:    item.Quantity(),
			UnitPrice:   toDecimal(item.UnitPrice()),
			LineTotal:   toDecimal(item.LineTotal()),
		})
	}

	payload := orderPayload{
		CheckoutID: draft.CheckoutID,
		UserID:     draft.IdentityRef,
		Items:      items,
		Shipping: orderShippingPayload{
			FullName: draft.Shipping.FullName,
			Address:  draft.Shipping.Address,
			City:     draft.Shipping.City,
			State:    draft.Shipping.State,
			ZipCode:  draft.Shipping.ZipCode,
			Phone:    draft.Shipping.Phone,
			Email:    draft.Shipping.Email,
		},
		Payment: orderPaymentPayload{
			NameOnCard: draft.Payment.NameOnCard,
			CardLast4:  draft.Payment.CardLast4,
			ExpiryDate: draft.Payment.ExpiryDate,
		},
		Subtotal:    toDecimal(draft.Summary.Subtotal),
		ShippingFee: toDecimal(draft.Summary.Shipping),
		Tax:         toDecimal(draft.Summary.Tax),
		Total:       toDecimal(draft.Summary.Total),
		Currency:    draft.Summary.Total.Currency(),
	}

	var resp orderResponse
	if err := o.client.doJSON(ctx, http.MethodPost, "/api/orders", "", payload, &resp); err != nil {
		return nil, checkout.NewSubmissionFailedError(err)
	}

	placedAt := resp.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now()
	}
	return &checkout.Confirmation{
		OrderNumber: resp.OrderNumber,
		PlacedAt:    placedAt,
	}, nil
}

// Ping probes the orders endpoint.
func (o *OrderClient) Ping(ctx context.Context) error {
	return o.client.Ping(ctx)
}
