package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/razorpay"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/shiprocket"
)

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountInRupees float64, receiptID string) (razorpay.Intent, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type ShippingClient interface {
	CreateShipment(ctx context.Context, order *domain.Order, user *domain.User) shiprocket.ShipmentResult
}

// OrderService drives the order lifecycle: cart checkout, payment intent
// creation, callback verification (PENDING→PAID) and best-effort shipment
// creation (PAID→SHIPPED).
type OrderService struct {
	Orders   OrderStore
	Carts    CartStore
	Users    UserStore
	Gateway  PaymentGateway
	Shipping ShippingClient
	Log      *logrus.Logger
}

// PlaceOrder converts the user's cart into a PENDING order. Line prices
// are frozen from the cart, the address is copied by value, and the order
// persist plus cart clear happen in one atomic unit of work.
func (s *OrderService) PlaceOrder(userID string, address domain.Address, razorpayOrderID string) (*domain.Order, error) {
	cart, ok := s.Carts.CartByUser(userID)
	if !ok || len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cannot place an order with an empty cart", domain.ErrInvalidState)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	order := &domain.Order{
		ID:              id,
		OrderNumber:     orderNumber(id),
		UserID:          userID,
		Address:         address,
		OrderDate:       now,
		TotalPrice:      cart.TotalPrice,
		Status:          domain.OrderPending,
		RazorpayOrderID: razorpayOrderID,
		UpdatedAt:       now,
	}
	if order.Address.Country == "" {
		order.Address.Country = "India"
	}
	for _, line := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
		})
	}

	if err := s.Orders.CreateOrderAndClearCart(order); err != nil {
		return nil, err
	}
	s.Log.Infof("Order %s placed for user %s with total %.2f", order.ID, userID, order.TotalPrice)
	return order, nil
}

// CreatePaymentOrder creates the gateway intent for a PENDING order and
// stores the correlation id. Gateway failures are returned as-is so the
// caller can retry; the order stays PENDING.
func (s *OrderService) CreatePaymentOrder(ctx context.Context, orderID string) (*domain.Order, razorpay.Intent, error) {
	order, ok := s.Orders.OrderByID(orderID)
	if !ok {
		return nil, razorpay.Intent{}, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	if order.Status != domain.OrderPending {
		return nil, razorpay.Intent{}, fmt.Errorf("%w: only PENDING orders can be processed for payment", domain.ErrInvalidState)
	}

	intent, err := s.Gateway.CreateIntent(ctx, order.TotalPrice, "ORDER_"+order.ID)
	if err != nil {
		return nil, razorpay.Intent{}, err
	}
	order.RazorpayOrderID = intent.ID
	order.UpdatedAt = time.Now().UTC()
	if err := s.Orders.SaveOrder(order); err != nil {
		return nil, razorpay.Intent{}, err
	}
	s.Log.Infof("Razorpay order created | Local ID: %s | Razorpay ID: %s", order.ID, intent.ID)
	return order, intent, nil
}

// VerifyPayment validates a payment callback and performs the
// PENDING→PAID transition. Re-verifying an already-paid order is a safe
// no-op. A signature mismatch never touches the order.
func (s *OrderService) VerifyPayment(razorpayOrderID, paymentID, signature string) (*domain.Order, error) {
	order, _, err := s.verifyPayment(razorpayOrderID, paymentID, signature)
	return order, err
}

func (s *OrderService) verifyPayment(razorpayOrderID, paymentID, signature string) (*domain.Order, bool, error) {
	if !s.Gateway.VerifySignature(razorpayOrderID, paymentID, signature) {
		return nil, false, domain.ErrVerificationFailed
	}
	order, ok := s.Orders.OrderByRazorpayID(razorpayOrderID)
	if !ok {
		// No such correlation id: a forged or stale callback.
		return nil, false, fmt.Errorf("%w: order for payment reference %s", domain.ErrNotFound, razorpayOrderID)
	}
	if order.Finalized() {
		return order, false, nil
	}
	if order.Status == domain.OrderCancelled {
		return nil, false, fmt.Errorf("%w: order %s is cancelled", domain.ErrInvalidState, order.ID)
	}

	order.RazorpayPaymentID = paymentID
	order.RazorpaySignature = signature
	order.Status = domain.OrderPaid
	order.UpdatedAt = time.Now().UTC()
	if err := s.Orders.SaveOrder(order); err != nil {
		return nil, false, err
	}
	s.Log.Infof("Payment verified for order %s | Payment ID: %s", order.ID, paymentID)
	return order, true, nil
}

// ConfirmPaymentAndShip verifies the callback and, after the PAID
// transition is durably persisted, creates the shipment. The shipment
// phase is best-effort: it can never fail the call or undo PAID.
func (s *OrderService) ConfirmPaymentAndShip(ctx context.Context, razorpayOrderID, paymentID, signature string) (*domain.Order, error) {
	order, transitioned, err := s.verifyPayment(razorpayOrderID, paymentID, signature)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return order, nil
	}
	s.createShipment(ctx, order)
	return order, nil
}

// RetryShipment re-attempts shipment creation for a PAID order whose
// earlier attempt produced no usable shipment id.
func (s *OrderService) RetryShipment(ctx context.Context, orderID string) (*domain.Order, error) {
	order, ok := s.Orders.OrderByID(orderID)
	if !ok {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	if order.Status != domain.OrderPaid {
		return nil, fmt.Errorf("%w: shipment can only be created for a PAID order", domain.ErrInvalidState)
	}
	s.createShipment(ctx, order)
	return order, nil
}

func (s *OrderService) createShipment(ctx context.Context, order *domain.Order) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.Errorf("Shipment creation panicked for order %s: %v", order.ID, r)
		}
	}()

	var user *domain.User
	if u, ok := s.Users.UserByID(order.UserID); ok {
		user = u
	}
	shipment := s.Shipping.CreateShipment(ctx, order, user)
	if strings.TrimSpace(shipment.ShipmentID) == "" {
		s.Log.Warnf("Shipping provider did not return shipment details for order %s", order.ID)
		return
	}

	order.ShiprocketOrderID = shipment.OrderID
	order.ShiprocketShipmentID = shipment.ShipmentID
	order.ShiprocketAwb = shipment.Awb
	order.ShiprocketTrackingURL = shipment.TrackingURL
	order.Status = domain.OrderShipped
	order.UpdatedAt = time.Now().UTC()
	if err := s.Orders.SaveOrder(order); err != nil {
		s.Log.Errorf("Failed to persist shipment fields for order %s: %v", order.ID, err)
		return
	}
	s.Log.Infof("Shipment created for order %s | Tracking: %s", order.ID, shipment.TrackingURL)
}

// UpdateStatus is the admin override: any valid status may be forced.
func (s *OrderService) UpdateStatus(orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidState, status)
	}
	order, ok := s.Orders.OrderByID(orderID)
	if !ok {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	if err := s.Orders.SaveOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) OrderByID(id string) (*domain.Order, error) {
	order, ok := s.Orders.OrderByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return order, nil
}

func (s *OrderService) TrackByNumber(orderNumber string) (*domain.Order, error) {
	order, ok := s.Orders.OrderByNumber(orderNumber)
	if !ok {
		return nil, fmt.Errorf("%w: order number %s", domain.ErrNotFound, orderNumber)
	}
	return order, nil
}

func (s *OrderService) MyOrders(userID string) ([]domain.Order, error) {
	return s.Orders.OrdersByUser(userID)
}

func (s *OrderService) AllOrders() ([]domain.Order, error) {
	return s.Orders.AllOrders()
}

func orderNumber(id string) string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:12])
}
