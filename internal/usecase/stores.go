package usecase

import (
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
)

type UserStore interface {
	CreateUser(*domain.User) error
	UserByID(id string) (*domain.User, bool)
	UserByEmail(email string) (*domain.User, bool)
}

type ProductStore interface {
	SaveProduct(*domain.Product) error
	ProductByID(id string) (*domain.Product, bool)
	ListProducts(activeOnly bool) ([]domain.Product, error)
	SaveCategory(*domain.Category) error
	CategoryByID(id string) (*domain.Category, bool)
	ListCategories(activeOnly bool) ([]domain.Category, error)
}

type CartStore interface {
	CartByUser(userID string) (*domain.Cart, bool)
	SaveCart(*domain.Cart) error
}

type OrderStore interface {
	// CreateOrderAndClearCart persists the new order and empties the
	// owning user's cart as one atomic unit of work: both commit or
	// neither does.
	CreateOrderAndClearCart(order *domain.Order) error
	SaveOrder(*domain.Order) error
	OrderByID(id string) (*domain.Order, bool)
	OrderByRazorpayID(razorpayOrderID string) (*domain.Order, bool)
	OrderByNumber(orderNumber string) (*domain.Order, bool)
	OrdersByUser(userID string) ([]domain.Order, error)
	AllOrders() ([]domain.Order, error)
}
