package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"storefront/api/middleware"
	"storefront/api/response"
	checkoutapp "storefront/application/checkout"
	"storefront/domain/catalog"
	"storefront/domain/checkout"
	"storefront/domain/identity"
	"storefront/domain/shared"
	"storefront/infrastructure/memory"
	"storefront/pkg/metrics"
)

type stubCatalog struct{}

func (stubCatalog) Product(ctx context.Context, id string) (*catalog.Product, error) {
	if id != "p-1" {
		return nil, catalog.ErrProductNotFound
	}
	return &catalog.Product{
		ID:    "p-1",
		Name:  "Oversized Tee",
		Price: *shared.NewMoney(45000, "INR"),
		Sizes: []string{"S", "M", "L"},
	}, nil
}

func (stubCatalog) Products(ctx context.Context) ([]catalog.Product, error) {
	return nil, nil
}

type stubIdentity struct{}

func (stubIdentity) Current(ctx context.Context, token string) (*identity.Identity, error) {
	if token != "tok" {
		return nil, identity.ErrNoSession
	}
	return &identity.Identity{ID: "u-1", Username: "asha"}, nil
}

type stubGateway struct{}

func (stubGateway) Submit(ctx context.Context, draft *checkout.OrderDraft) (*checkout.Confirmation, error) {
	return &checkout.Confirmation{OrderNumber: "ORD-7", PlacedAt: time.Now()}, nil
}

type stubPublisher struct{}

func (stubPublisher) Publish(ctx context.Context, event shared.DomainEvent) error { return nil }

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := checkoutapp.NewApplicationService(
		memory.NewCheckoutStore(),
		stubCatalog{},
		stubIdentity{},
		stubGateway{},
		stubPublisher{},
		metrics.NewCheckoutMetrics(prometheus.NewRegistry()),
		checkout.Pricing{
			FreeShippingThreshold: *shared.NewMoney(50000, "INR"),
			ShippingFee:           *shared.NewMoney(4000, "INR"),
			TaxRatePercent:        18,
		},
		time.Minute,
	)

	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware())
	group := engine.Group("/api/v1")
	NewController(service).RegisterRoutes(group)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionTokenHeader, "tok")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var envelope response.Response
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, envelope
}

func sessionData(t *testing.T, envelope response.Response) checkoutapp.CheckoutResponse {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var session checkoutapp.CheckoutResponse
	if err := json.Unmarshal(raw, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session
}

func startSession(t *testing.T, engine *gin.Engine) checkoutapp.CheckoutResponse {
	t.Helper()
	rec, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/checkouts",
		checkoutapp.StartCheckoutRequest{ProductID: "p-1", Size: "L", Quantity: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
	return sessionData(t, envelope)
}

func TestStartCheckout(t *testing.T) {
	engine := newTestEngine(t)
	session := startSession(t, engine)

	if session.Step != "shipping" {
		t.Errorf("Step = %s, want shipping", session.Step)
	}
	if len(session.Items) != 1 || session.Items[0].Quantity != 2 || session.Items[0].Size != "L" {
		t.Errorf("items = %+v", session.Items)
	}
	// 900.00 subtotal crosses the free shipping threshold.
	if session.Summary.Shipping.Amount != 0 {
		t.Errorf("Shipping = %d, want 0", session.Summary.Shipping.Amount)
	}
	if session.Summary.Total.Amount != 106200 {
		t.Errorf("Total = %d, want 106200", session.Summary.Total.Amount)
	}
}

func TestStartCheckoutUnknownProduct(t *testing.T) {
	engine := newTestEngine(t)
	rec, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/checkouts",
		checkoutapp.StartCheckoutRequest{ProductID: "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if envelope.Error != "PRODUCT_NOT_FOUND" {
		t.Errorf("error = %s", envelope.Error)
	}
}

func TestStartCheckoutWithoutSession(t *testing.T) {
	engine := newTestEngine(t)

	body, _ := json.Marshal(checkoutapp.StartCheckoutRequest{ProductID: "p-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	var envelope response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error != "UNAUTHORIZED" {
		t.Errorf("error = %s", envelope.Error)
	}
}

func TestStartCheckoutBadBody(t *testing.T) {
	engine := newTestEngine(t)
	rec, _ := doJSON(t, engine, http.MethodPost, "/api/v1/checkouts", map[string]any{"quantity": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetUnknownCheckout(t *testing.T) {
	engine := newTestEngine(t)
	rec, envelope := doJSON(t, engine, http.MethodGet, "/api/v1/checkouts/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if envelope.Error != "CHECKOUT_NOT_FOUND" {
		t.Errorf("error = %s", envelope.Error)
	}
}

func TestAdvanceBlockedReportsFields(t *testing.T) {
	engine := newTestEngine(t)
	session := startSession(t, engine)

	rec, envelope := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/checkouts/%s/advance", session.ID), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if envelope.Error != "VALIDATION_ERROR" {
		t.Errorf("error = %s", envelope.Error)
	}
	if len(envelope.Fields) != 6 {
		t.Errorf("fields = %v, want the six required shipping fields", envelope.Fields)
	}
}

func TestPlaceOrderBeforeReview(t *testing.T) {
	engine := newTestEngine(t)
	session := startSession(t, engine)

	rec, envelope := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/checkouts/%s/order", session.ID), nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if envelope.Error != "INVALID_TRANSITION" {
		t.Errorf("error = %s", envelope.Error)
	}
}

func TestFullCheckoutFlow(t *testing.T) {
	engine := newTestEngine(t)
	session := startSession(t, engine)
	id := session.ID

	shippingFields := [][2]string{
		{"fullName", "Asha Rao"}, {"address", "12 Lane"}, {"city", "Pune"},
		{"state", "MH"}, {"zipCode", "411001"}, {"phone", "9876543210"},
	}
	for _, kv := range shippingFields {
		rec, _ := doJSON(t, engine, http.MethodPut,
			fmt.Sprintf("/api/v1/checkouts/%s/shipping", id),
			checkoutapp.UpdateFieldRequest{Field: kv[0], Value: kv[1]})
		if rec.Code != http.StatusOK {
			t.Fatalf("shipping %s status = %d", kv[0], rec.Code)
		}
	}

	rec, envelope := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/checkouts/%s/advance", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := sessionData(t, envelope).Step; got != "payment" {
		t.Fatalf("Step = %s, want payment", got)
	}

	paymentFields := [][2]string{
		{"nameOnCard", "Asha Rao"}, {"cardNumber", "4111111111111111"},
		{"expiryDate", "1227"}, {"cvv", "123"},
	}
	for _, kv := range paymentFields {
		rec, envelope = doJSON(t, engine, http.MethodPut,
			fmt.Sprintf("/api/v1/checkouts/%s/payment", id),
			checkoutapp.UpdateFieldRequest{Field: kv[0], Value: kv[1]})
		if rec.Code != http.StatusOK {
			t.Fatalf("payment %s status = %d", kv[0], rec.Code)
		}
	}
	if got := sessionData(t, envelope).Payment.CardNumber; got != "4111 1111 1111 1111" {
		t.Errorf("CardNumber = %q, want display format", got)
	}

	// Back to shipping and forward again: entered data survives.
	rec, _ = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/checkouts/%s/back", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("back status = %d", rec.Code)
	}
	rec, envelope = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/checkouts/%s/advance", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-advance status = %d", rec.Code)
	}
	if got := sessionData(t, envelope).Payment.ExpiryDate; got != "12/27" {
		t.Errorf("ExpiryDate = %q, want 12/27", got)
	}

	rec, envelope = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/checkouts/%s/advance", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance to review status = %d", rec.Code)
	}

	rec, envelope = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/checkouts/%s/order", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("order status = %d, body %s", rec.Code, rec.Body.String())
	}
	confirmed := sessionData(t, envelope)
	if confirmed.Step != "confirmation" {
		t.Errorf("Step = %s, want confirmation", confirmed.Step)
	}
	if confirmed.OrderNumber != "ORD-7" {
		t.Errorf("OrderNumber = %q", confirmed.OrderNumber)
	}
	if confirmed.Payment.CardNumber != "1111" {
		t.Errorf("CardNumber = %q, want masked", confirmed.Payment.CardNumber)
	}

	rec, _ = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/v1/checkouts/%s", id), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("teardown status = %d, want 204", rec.Code)
	}
	rec, _ = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/v1/checkouts/%s", id), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after teardown = %d, want 404", rec.Code)
	}
}
