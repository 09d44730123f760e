package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"storefront/domain/catalog"
	"storefront/domain/checkout"
	"storefront/domain/identity"
	"storefront/domain/shared"
	"storefront/infrastructure/memory"
	"storefront/pkg/metrics"
)

type fakeCatalog struct {
	products map[string]catalog.Product
}

func (f *fakeCatalog) Product(ctx context.Context, id string) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) Products(ctx context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

type fakeIdentity struct {
	ident *identity.Identity
}

func (f *fakeIdentity) Current(ctx context.Context, token string) (*identity.Identity, error) {
	if f.ident == nil {
		return nil, identity.ErrNoSession
	}
	return f.ident, nil
}

type fakeGateway struct {
	mu      sync.Mutex
	submits int
	err     error
	block   chan struct{}
}

func (f *fakeGateway) Submit(ctx context.Context, draft *checkout.OrderDraft) (*checkout.Confirmation, error) {
	f.mu.Lock()
	f.submits++
	block := f.block
	err := f.err
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, checkout.NewSubmissionFailedError(err)
	}
	return &checkout.Confirmation{OrderNumber: "ORD-42", PlacedAt: time.Now()}, nil
}

func (f *fakeGateway) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

type fakePublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (f *fakePublisher) Publish(ctx context.Context, event shared.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.EventName()
	}
	return out
}

func testIdentity() *identity.Identity {
	return &identity.Identity{
		ID:       "u-1",
		Username: "asha",
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Mobile:   "9876543210",
	}
}

type fixture struct {
	service   *ApplicationService
	store     *memory.CheckoutStore
	gateway   *fakeGateway
	publisher *fakePublisher
}

func newFixture(t *testing.T, ident *identity.Identity) *fixture {
	t.Helper()
	store := memory.NewCheckoutStore()
	gateway := &fakeGateway{}
	publisher := &fakePublisher{}
	pricing := checkout.Pricing{
		FreeShippingThreshold: *shared.NewMoney(50000, "INR"),
		ShippingFee:           *shared.NewMoney(4000, "INR"),
		TaxRatePercent:        18,
	}
	lookup := &fakeCatalog{products: map[string]catalog.Product{
		"p-1": {
			ID:     "p-1",
			Name:   "Oversized Tee",
			Price:  *shared.NewMoney(45000, "INR"),
			Sizes:  []string{"S", "M", "L"},
			Images: []string{"/img/tee.jpg"},
		},
	}}
	service := NewApplicationService(
		store,
		lookup,
		&fakeIdentity{ident: ident},
		gateway,
		publisher,
		metrics.NewCheckoutMetrics(prometheus.NewRegistry()),
		pricing,
		30*time.Millisecond,
	)
	return &fixture{service: service, store: store, gateway: gateway, publisher: publisher}
}

func fillAndReview(t *testing.T, f *fixture, id string) {
	t.Helper()
	ctx := context.Background()
	shippingFields := [][2]string{
		{"fullName", "Asha Rao"}, {"address", "12 Lane"}, {"city", "Pune"},
		{"state", "MH"}, {"zipCode", "411001"}, {"phone", "9876543210"},
	}
	for _, kv := range shippingFields {
		if _, err := f.service.UpdateShipping(ctx, id, UpdateFieldRequest{Field: kv[0], Value: kv[1]}); err != nil {
			t.Fatalf("UpdateShipping(%s): %v", kv[0], err)
		}
	}
	if _, err := f.service.Advance(ctx, id); err != nil {
		t.Fatalf("advance to payment: %v", err)
	}
	paymentFields := [][2]string{
		{"nameOnCard", "Asha Rao"}, {"cardNumber", "4111111111111111"},
		{"expiryDate", "1227"}, {"cvv", "123"},
	}
	for _, kv := range paymentFields {
		if _, err := f.service.UpdatePayment(ctx, id, UpdateFieldRequest{Field: kv[0], Value: kv[1]}); err != nil {
			t.Fatalf("UpdatePayment(%s): %v", kv[0], err)
		}
	}
	if _, err := f.service.Advance(ctx, id); err != nil {
		t.Fatalf("advance to review: %v", err)
	}
}

func TestStartSeedsFromIdentity(t *testing.T) {
	f := newFixture(t, testIdentity())

	resp, err := f.service.Start(context.Background(), "tok", StartCheckoutRequest{ProductID: "p-1", Quantity: 1})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if resp.Step != "shipping" || resp.StepNumber != 1 {
		t.Errorf("Step = %s/%d, want shipping/1", resp.Step, resp.StepNumber)
	}
	if resp.Shipping.FullName != "Asha Rao" || resp.Shipping.Email != "asha@example.com" {
		t.Errorf("shipping not seeded: %+v", resp.Shipping)
	}
	if resp.Summary.Total.Display != "571.00 INR" {
		t.Errorf("Total = %s, want 571.00 INR", resp.Summary.Total.Display)
	}
	if resp.Summary.Shipping.Amount != 4000 {
		t.Errorf("Shipping = %d, want 4000", resp.Summary.Shipping.Amount)
	}
	if len(resp.Items) != 1 || resp.Items[0].Size != "M" {
		t.Errorf("items = %+v, want one item with default size M", resp.Items)
	}
}

func TestStartWithoutSession(t *testing.T) {
	// Checkout never runs unauthenticated: no token and a stale token are
	// both rejected before anything is stored.
	f := newFixture(t, nil)

	for _, token := range []string{"", "stale-token"} {
		if _, err := f.service.Start(context.Background(), token, StartCheckoutRequest{ProductID: "p-1"}); !errors.Is(err, identity.ErrNoSession) {
			t.Errorf("Start(token=%q) error = %v, want ErrNoSession", token, err)
		}
	}
	if f.store.Len() != 0 {
		t.Errorf("store holds %d sessions, want 0", f.store.Len())
	}
}

func TestStartUnknownProduct(t *testing.T) {
	f := newFixture(t, testIdentity())
	_, err := f.service.Start(context.Background(), "tok", StartCheckoutRequest{ProductID: "nope"})
	if !errors.Is(err, catalog.ErrProductNotFound) {
		t.Errorf("error = %v, want ErrProductNotFound", err)
	}
}

func TestAdvanceReportsMissingFields(t *testing.T) {
	// A fresh account with no profile fields seeds nothing into shipping.
	f := newFixture(t, &identity.Identity{ID: "u-2", Username: "new"})
	resp, err := f.service.Start(context.Background(), "tok", StartCheckoutRequest{ProductID: "p-1"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = f.service.Advance(context.Background(), resp.ID)
	var verr *checkout.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.MissingFields) != 6 {
		t.Errorf("MissingFields = %v, want all six required shipping fields", verr.MissingFields)
	}
}

func TestPlaceOrderHappyPath(t *testing.T) {
	f := newFixture(t, testIdentity())
	ctx := context.Background()
	start, err := f.service.Start(ctx, "tok", StartCheckoutRequest{ProductID: "p-1"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	fillAndReview(t, f, start.ID)

	resp, err := f.service.PlaceOrder(ctx, start.ID)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if resp.Step != "confirmation" {
		t.Errorf("Step = %s, want confirmation", resp.Step)
	}
	if resp.OrderNumber != "ORD-42" {
		t.Errorf("OrderNumber = %q", resp.OrderNumber)
	}
	if resp.Payment.CardNumber != "1111" {
		t.Errorf("CardNumber = %q, want masked 1111", resp.Payment.CardNumber)
	}
	if got := f.gateway.submitCount(); got != 1 {
		t.Errorf("submits = %d, want 1", got)
	}
	names := f.publisher.names()
	if len(names) != 2 || names[0] != "checkout.started" || names[1] != "checkout.order_placed" {
		t.Errorf("published events = %v", names)
	}

	// The confirmed session tears itself down after the TTL.
	deadline := time.After(2 * time.Second)
	for f.store.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("confirmed session was not torn down")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPlaceOrderFailureKeepsSessionAtReview(t *testing.T) {
	f := newFixture(t, testIdentity())
	ctx := context.Background()
	start, err := f.service.Start(ctx, "tok", StartCheckoutRequest{ProductID: "p-1"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	fillAndReview(t, f, start.ID)

	f.gateway.err = errors.New("upstream down")
	if _, err := f.service.PlaceOrder(ctx, start.ID); !errors.Is(err, checkout.ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}

	view, err := f.service.Get(ctx, start.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Step != "review" {
		t.Errorf("Step = %s, want review after failure", view.Step)
	}
	if view.Shipping.City != "Pune" || view.Payment.CardNumber != "4111 1111 1111 1111" {
		t.Error("entered data must survive a failed submission")
	}

	// Retry is user-initiated and succeeds.
	f.gateway.err = nil
	resp, err := f.service.PlaceOrder(ctx, start.ID)
	if err != nil {
		t.Fatalf("retry PlaceOrder: %v", err)
	}
	if resp.Step != "confirmation" {
		t.Errorf("Step = %s, want confirmation", resp.Step)
	}
	if got := f.gateway.submitCount(); got != 2 {
		t.Errorf("submits = %d, want 2", got)
	}
}

func TestPlaceOrderSingleFlight(t *testing.T) {
	f := newFixture(t, testIdentity())
	ctx := context.Background()
	start, err := f.service.Start(ctx, "tok", StartCheckoutRequest{ProductID: "p-1"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	fillAndReview(t, f, start.ID)

	release := make(chan struct{})
	f.gateway.block = release

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.service.PlaceOrder(ctx, start.ID)
		firstDone <- err
	}()

	// Wait until the first submission is in flight.
	deadline := time.After(2 * time.Second)
	for f.gateway.submitCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("first submission never started")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := f.service.PlaceOrder(ctx, start.ID); !errors.Is(err, checkout.ErrSubmissionInFlight) {
		t.Errorf("second activation error = %v, want ErrSubmissionInFlight", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first PlaceOrder: %v", err)
	}
	if got := f.gateway.submitCount(); got != 1 {
		t.Errorf("submits = %d, want exactly 1", got)
	}
}

func TestEditRejectedDuringSubmission(t *testing.T) {
	// A step or field mutation racing a pending submission must not move
	// the session off Review: the order API may still accept the order, and
	// confirming it afterwards has to find the session where it was left.
	f := newFixture(t, testIdentity())
	ctx := context.Background()
	start, err := f.service.Start(ctx, "tok", StartCheckoutRequest{ProductID: "p-1"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	fillAndReview(t, f, start.ID)

	release := make(chan struct{})
	f.gateway.block = release

	done := make(chan error, 1)
	go func() {
		_, err := f.service.PlaceOrder(ctx, start.ID)
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for f.gateway.submitCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("submission never started")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := f.service.Retreat(ctx, start.ID); !errors.Is(err, checkout.ErrSubmissionInFlight) {
		t.Errorf("Retreat during submission = %v, want ErrSubmissionInFlight", err)
	}
	if _, err := f.service.UpdateShipping(ctx, start.ID, UpdateFieldRequest{Field: "city", Value: "Mumbai"}); !errors.Is(err, checkout.ErrSubmissionInFlight) {
		t.Errorf("UpdateShipping during submission = %v, want ErrSubmissionInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("PlaceOrder after rejected edits: %v", err)
	}

	view, err := f.service.Get(ctx, start.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Step != "confirmation" || view.OrderNumber != "ORD-42" {
		t.Errorf("session = step %s, order %q; want confirmation/ORD-42", view.Step, view.OrderNumber)
	}
	if got := f.gateway.submitCount(); got != 1 {
		t.Errorf("submits = %d, want exactly 1", got)
	}
}

func TestTeardown(t *testing.T) {
	f := newFixture(t, testIdentity())
	ctx := context.Background()
	start, err := f.service.Start(ctx, "tok", StartCheckoutRequest{ProductID: "p-1"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	f.service.Teardown(ctx, start.ID)
	if _, err := f.service.Get(ctx, start.ID); !errors.Is(err, checkout.ErrCheckoutNotFound) {
		t.Errorf("Get after teardown = %v, want ErrCheckoutNotFound", err)
	}
	// Idempotent.
	f.service.Teardown(ctx, start.ID)
}
