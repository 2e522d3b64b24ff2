package domain

import "time"

// CartItem holds the live product price at the time of the last mutation.
// At most one CartItem exists per product within a cart.
type CartItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// RecomputeTotal keeps TotalPrice = Σ price × quantity. Call after every
// mutation of Items.
func (c *Cart) RecomputeTotal() {
	total := 0.0
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	c.TotalPrice = total
}
