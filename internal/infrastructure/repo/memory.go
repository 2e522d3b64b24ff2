package repo

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
)

// MemoryStore backs all store interfaces with mutex-guarded maps. Used by
// tests and by local runs without a DATABASE_URL. Reads hand out copies so
// callers never share mutable state with the store.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	products   map[string]*domain.Product
	categories map[string]*domain.Category
	carts      map[string]*domain.Cart // keyed by user id
	orders     map[string]*domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]*domain.User),
		products:   make(map[string]*domain.Product),
		categories: make(map[string]*domain.Category),
		carts:      make(map[string]*domain.Cart),
		orders:     make(map[string]*domain.Order),
	}
}

func (s *MemoryStore) CreateUser(u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user with email %s already exists", u.Email)
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) UserByID(id string) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

func (s *MemoryStore) UserByEmail(email string) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, true
		}
	}
	return nil, false
}

func (s *MemoryStore) SaveProduct(p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *MemoryStore) ProductByID(id string) (*domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (s *MemoryStore) ListProducts(activeOnly bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) SaveCategory(c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *MemoryStore) CategoryByID(id string) (*domain.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

func (s *MemoryStore) ListCategories(activeOnly bool) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CartByUser(userID string) (*domain.Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, false
	}
	return copyCart(c), true
}

func (s *MemoryStore) SaveCart(c *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.UserID] = copyCart(c)
	return nil
}

// CreateOrderAndClearCart stores the order and empties the user's cart
// under one lock section, mirroring the transactional contract of the
// Postgres store.
func (s *MemoryStore) CreateOrderAndClearCart(o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[o.ID]; exists {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	s.orders[o.ID] = copyOrder(o)
	if cart, ok := s.carts[o.UserID]; ok {
		cart.Items = nil
		cart.TotalPrice = 0
		cart.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *MemoryStore) SaveOrder(o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = copyOrder(o)
	return nil
}

func (s *MemoryStore) OrderByID(id string) (*domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	return copyOrder(o), true
}

func (s *MemoryStore) OrderByRazorpayID(razorpayOrderID string) (*domain.Order, bool) {
	if razorpayOrderID == "" {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.RazorpayOrderID == razorpayOrderID {
			return copyOrder(o), true
		}
	}
	return nil, false
}

func (s *MemoryStore) OrderByNumber(orderNumber string) (*domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.OrderNumber == orderNumber {
			return copyOrder(o), true
		}
	}
	return nil, false
}

func (s *MemoryStore) OrdersByUser(userID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (s *MemoryStore) AllOrders() ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func copyCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp
}
