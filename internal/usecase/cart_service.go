package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
)

// CartService mutates the per-user draft cart. The cart is the source of
// truth until checkout; every mutation recomputes the derived total.
type CartService struct {
	Carts    CartStore
	Products ProductStore
	Log      *logrus.Logger
}

// AddItem merges into an existing line when the product is already in the
// cart, otherwise appends a new line priced at the live product price.
func (s *CartService) AddItem(userID, productID string, qty int) (*domain.Cart, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidState)
	}
	product, ok := s.Products.ProductByID(productID)
	if !ok || !product.Active {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}

	cart := s.cartForUser(userID)
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    qty,
			ImageURL:    product.ImageURL,
		})
	}
	return s.save(cart)
}

// RemoveItem removes the product's line entirely.
func (s *CartService) RemoveItem(userID, productID string) (*domain.Cart, error) {
	cart := s.cartForUser(userID)
	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: item %s not in cart", domain.ErrNotFound, productID)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return s.save(cart)
}

// UpdateQuantity sets the line quantity; qty <= 0 removes the line.
func (s *CartService) UpdateQuantity(userID, productID string, qty int) (*domain.Cart, error) {
	if qty <= 0 {
		return s.RemoveItem(userID, productID)
	}
	cart := s.cartForUser(userID)
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = qty
			return s.save(cart)
		}
	}
	return nil, fmt.Errorf("%w: item %s not in cart", domain.ErrNotFound, productID)
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(userID string) *domain.Cart {
	return s.cartForUser(userID)
}

func (s *CartService) cartForUser(userID string) *domain.Cart {
	if cart, ok := s.Carts.CartByUser(userID); ok {
		return cart
	}
	cart := &domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []domain.CartItem{},
		UpdatedAt: time.Now().UTC(),
	}
	_ = s.Carts.SaveCart(cart)
	return cart
}

func (s *CartService) save(cart *domain.Cart) (*domain.Cart, error) {
	cart.RecomputeTotal()
	cart.UpdatedAt = time.Now().UTC()
	if err := s.Carts.SaveCart(cart); err != nil {
		return nil, err
	}
	return cart, nil
}
