package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/razorpay"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/repo"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/shiprocket"
)

type stubGateway struct {
	intent      razorpay.Intent
	intentErr   error
	accept      bool
	intentCalls int
}

func (g *stubGateway) CreateIntent(_ context.Context, _ float64, _ string) (razorpay.Intent, error) {
	g.intentCalls++
	return g.intent, g.intentErr
}

func (g *stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return g.accept
}

type stubShipping struct {
	result shiprocket.ShipmentResult
	calls  int
}

func (s *stubShipping) CreateShipment(_ context.Context, order *domain.Order, _ *domain.User) shiprocket.ShipmentResult {
	s.calls++
	r := s.result
	if r.OrderID == "" {
		r.OrderID = order.ID
	}
	return r
}

func newOrderFixture(t *testing.T) (*OrderService, *repo.MemoryStore, *stubGateway, *stubShipping) {
	t.Helper()
	store := repo.NewMemoryStore()
	require.NoError(t, store.CreateUser(&domain.User{ID: "u1", Firstname: "Asha", Email: "asha@example.com", Role: domain.RoleUser}))
	cart := &domain.Cart{ID: "c1", UserID: "u1", Items: []domain.CartItem{
		{ProductID: "p1", ProductName: "Masala Chai", Price: 120, Quantity: 2},
		{ProductID: "p2", ProductName: "Jhal Muri", Price: 80.50, Quantity: 1},
	}}
	cart.RecomputeTotal()
	require.NoError(t, store.SaveCart(cart))

	gateway := &stubGateway{
		accept: true,
		intent: razorpay.Intent{ID: "rzp_order_1", Amount: 32050, Currency: "INR"},
	}
	shipping := &stubShipping{result: shiprocket.ShipmentResult{
		ShipmentID:  "784512",
		Awb:         "AWB-784512",
		TrackingURL: "https://shiprocket.in/track/784512",
		Status:      "CREATED",
	}}
	svc := &OrderService{
		Orders:   store,
		Carts:    store,
		Users:    store,
		Gateway:  gateway,
		Shipping: shipping,
		Log:      testLogger(),
	}
	return svc, store, gateway, shipping
}

// placeAndIntent runs checkout plus payment intent creation so tests can
// exercise the callback path against a real correlation id.
func placeAndIntent(t *testing.T, svc *OrderService) *domain.Order {
	t.Helper()
	order, err := svc.PlaceOrder("u1", domain.Address{RecipientName: "Asha", City: "Kolkata"}, "")
	require.NoError(t, err)
	order, _, err = svc.CreatePaymentOrder(context.Background(), order.ID)
	require.NoError(t, err)
	return order
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	_, err := svc.PlaceOrder("user-without-cart", domain.Address{}, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestPlaceOrderFreezesCartAndClearsIt(t *testing.T) {
	svc, store, _, _ := newOrderFixture(t)

	order, err := svc.PlaceOrder("u1", domain.Address{RecipientName: "Asha", City: "Kolkata"}, "")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Equal(t, "India", order.Address.Country)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 320.50, order.TotalPrice)

	cart, ok := store.CartByUser("u1")
	require.True(t, ok)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalPrice)

	stored, ok := store.OrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)
}

func TestCreatePaymentOrderStoresCorrelationID(t *testing.T) {
	svc, store, gateway, _ := newOrderFixture(t)

	order, err := svc.PlaceOrder("u1", domain.Address{}, "")
	require.NoError(t, err)
	_, intent, err := svc.CreatePaymentOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, "rzp_order_1", intent.ID)
	assert.Equal(t, 1, gateway.intentCalls)
	stored, ok := store.OrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, "rzp_order_1", stored.RazorpayOrderID)
	assert.Equal(t, domain.OrderPending, stored.Status)
}

func TestCreatePaymentOrderOnlyForPending(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	order := placeAndIntent(t, svc)
	_, err := svc.UpdateStatus(order.ID, domain.OrderPaid)
	require.NoError(t, err)

	_, _, err = svc.CreatePaymentOrder(context.Background(), order.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestCreatePaymentOrderGatewayFailureKeepsPending(t *testing.T) {
	svc, store, gateway, _ := newOrderFixture(t)
	gateway.intentErr = domain.ErrExternalService

	order, err := svc.PlaceOrder("u1", domain.Address{}, "")
	require.NoError(t, err)
	_, _, err = svc.CreatePaymentOrder(context.Background(), order.ID)
	assert.True(t, errors.Is(err, domain.ErrExternalService))

	stored, ok := store.OrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderPending, stored.Status)
	assert.Empty(t, stored.RazorpayOrderID)
}

func TestConfirmPaymentAndShipHappyPath(t *testing.T) {
	svc, store, _, shipping := newOrderFixture(t)
	order := placeAndIntent(t, svc)

	result, err := svc.ConfirmPaymentAndShip(context.Background(), "rzp_order_1", "pay_1", "sig_1")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderShipped, result.Status)
	assert.Equal(t, 1, shipping.calls)

	stored, ok := store.OrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderShipped, stored.Status)
	assert.Equal(t, "pay_1", stored.RazorpayPaymentID)
	assert.Equal(t, "784512", stored.ShiprocketShipmentID)
	assert.Equal(t, "AWB-784512", stored.ShiprocketAwb)
	assert.Equal(t, "https://shiprocket.in/track/784512", stored.ShiprocketTrackingURL)
}

func TestConfirmPaymentRepeatedCallbackIsNoOp(t *testing.T) {
	svc, store, _, shipping := newOrderFixture(t)
	order := placeAndIntent(t, svc)

	_, err := svc.ConfirmPaymentAndShip(context.Background(), "rzp_order_1", "pay_1", "sig_1")
	require.NoError(t, err)
	before, ok := store.OrderByID(order.ID)
	require.True(t, ok)

	again, err := svc.ConfirmPaymentAndShip(context.Background(), "rzp_order_1", "pay_1", "sig_1")
	require.NoError(t, err)

	assert.Equal(t, 1, shipping.calls)
	assert.Equal(t, before.Status, again.Status)
	after, ok := store.OrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestConfirmPaymentRejectsBadSignature(t *testing.T) {
	svc, store, gateway, shipping := newOrderFixture(t)
	order := placeAndIntent(t, svc)
	gateway.accept = false

	_, err := svc.ConfirmPaymentAndShip(context.Background(), "rzp_order_1", "pay_1", "forged")
	assert.True(t, errors.Is(err, domain.ErrVerificationFailed))
	assert.Equal(t, 0, shipping.calls)

	stored, ok := store.OrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderPending, stored.Status)
	assert.Empty(t, stored.RazorpayPaymentID)
}

func TestConfirmPaymentUnknownCorrelationID(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)
	placeAndIntent(t, svc)

	_, err := svc.ConfirmPaymentAndShip(context.Background(), "rzp_other", "pay_1", "sig_1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestConfirmPaymentCancelledOrder(t *testing.T) {
	svc, _, _, shipping := newOrderFixture(t)
	order := placeAndIntent(t, svc)
	_, err := svc.UpdateStatus(order.ID, domain.OrderCancelled)
	require.NoError(t, err)

	_, err = svc.ConfirmPaymentAndShip(context.Background(), "rzp_order_1", "pay_1", "sig_1")
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Equal(t, 0, shipping.calls)
}

func TestShipmentWithoutIDLeavesOrderPaid(t *testing.T) {
	svc, store, _, shipping := newOrderFixture(t)
	order := placeAndIntent(t, svc)
	shipping.result = shiprocket.ShipmentResult{Status: "TEST_MODE"}

	result, err := svc.ConfirmPaymentAndShip(context.Background(), "rzp_order_1", "pay_1", "sig_1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, result.Status)

	stored, ok := store.OrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderPaid, stored.Status)
	assert.Empty(t, stored.ShiprocketShipmentID)
}

func TestRetryShipmentOnlyForPaidOrders(t *testing.T) {
	svc, store, _, shipping := newOrderFixture(t)
	order := placeAndIntent(t, svc)

	_, err := svc.RetryShipment(context.Background(), order.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	shipping.result = shiprocket.ShipmentResult{Status: "TEST_MODE"}
	_, err = svc.ConfirmPaymentAndShip(context.Background(), "rzp_order_1", "pay_1", "sig_1")
	require.NoError(t, err)

	shipping.result = shiprocket.ShipmentResult{ShipmentID: "99", Awb: "AWB-99", TrackingURL: "https://shiprocket.in/track/99", Status: "CREATED"}
	result, err := svc.RetryShipment(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, result.Status)

	stored, ok := store.OrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, "99", stored.ShiprocketShipmentID)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)
	order := placeAndIntent(t, svc)

	_, err := svc.UpdateStatus(order.ID, domain.OrderStatus("REFUNDED"))
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestTrackByNumber(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)
	order := placeAndIntent(t, svc)

	found, err := svc.TrackByNumber(order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.TrackByNumber("ORD-DOESNOTEXIST")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
