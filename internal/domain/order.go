package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}

// Address is a value object copied field-by-field into the order at
// checkout. It is never shared by reference with any other order.
type Address struct {
	RecipientName string `json:"recipientName"`
	PhoneNumber   string `json:"phoneNumber"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
}

// OrderItem freezes the product name and price at order time. Historical
// totals must survive later product edits and soft deletes.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type Order struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	UserID      string      `json:"userId"`
	Items       []OrderItem `json:"items"`
	Address     Address     `json:"shippingAddress"`
	OrderDate   time.Time   `json:"orderDate"`
	TotalPrice  float64     `json:"totalPrice"`
	Status      OrderStatus `json:"status"`

	RazorpayOrderID   string `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string `json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string `json:"razorpaySignature,omitempty"`

	ShiprocketOrderID     string `json:"shiprocketOrderId,omitempty"`
	ShiprocketShipmentID  string `json:"shiprocketShipmentId,omitempty"`
	ShiprocketAwb         string `json:"shiprocketAwb,omitempty"`
	ShiprocketTrackingURL string `json:"shiprocketTrackingUrl,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Finalized reports whether the order is already paid or beyond, i.e. a
// repeated payment callback must be a no-op.
func (o *Order) Finalized() bool {
	switch o.Status {
	case OrderPaid, OrderShipped, OrderDelivered:
		return true
	default:
		return false
	}
}
