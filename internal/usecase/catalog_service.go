package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
)

// CatalogService serves product and category reads and the admin write
// surface. Deletion is a soft delete: rows are flagged inactive so orders
// that snapshot a product keep a resolvable reference.
type CatalogService struct {
	Products ProductStore
}

func (s *CatalogService) ListProducts() ([]domain.Product, error) {
	return s.Products.ListProducts(true)
}

func (s *CatalogService) ProductByID(id string) (*domain.Product, error) {
	p, ok := s.Products.ProductByID(id)
	if !ok || !p.Active {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(p *domain.Product) (*domain.Product, error) {
	if p.Name == "" || p.Price < 0 {
		return nil, fmt.Errorf("%w: product needs a name and a non-negative price", domain.ErrInvalidState)
	}
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.Products.SaveProduct(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(id string, update *domain.Product) (*domain.Product, error) {
	p, ok := s.Products.ProductByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	p.Name = update.Name
	p.Description = update.Description
	p.Price = update.Price
	p.Stock = update.Stock
	p.ImageURL = update.ImageURL
	p.CategoryID = update.CategoryID
	p.UpdatedAt = time.Now().UTC()
	if err := s.Products.SaveProduct(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) DeactivateProduct(id string) error {
	p, ok := s.Products.ProductByID(id)
	if !ok {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	p.Active = false
	p.UpdatedAt = time.Now().UTC()
	return s.Products.SaveProduct(p)
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Products.ListCategories(true)
}

func (s *CatalogService) CreateCategory(name string) (*domain.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: category name required", domain.ErrInvalidState)
	}
	c := &domain.Category{ID: uuid.NewString(), Name: name, Active: true}
	if err := s.Products.SaveCategory(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeactivateCategory(id string) error {
	c, ok := s.Products.CategoryByID(id)
	if !ok {
		return fmt.Errorf("%w: category %s", domain.ErrNotFound, id)
	}
	c.Active = false
	return s.Products.SaveCategory(c)
}
