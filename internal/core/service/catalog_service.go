package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrEmptyName        = errors.New("name is required")
	ErrInvalidPrice     = errors.New("price must be positive")
)

// CatalogService manages products and categories. Mutations are admin
// only. Categories are soft-deleted (deactivated) so historical product
// references stay resolvable; product price edits never rewrite the
// frozen snapshots on past order lines.
type CatalogService struct {
	catalog port.CatalogRepository
}

func NewCatalogService(catalog port.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor *domain.User, p domain.Product) (*domain.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	if p.PriceUSD <= 0 {
		return nil, ErrInvalidPrice
	}
	p.ID = uuid.NewString()
	p.IsActive = true
	p.CreatedAt = time.Now()
	if err := s.catalog.CreateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor *domain.User, p domain.Product) (*domain.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	existing, err := s.catalog.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if existing == nil {
		return nil, ErrProductNotFound
	}
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	if p.PriceUSD <= 0 {
		return nil, ErrInvalidPrice
	}
	p.CreatedAt = existing.CreatedAt
	if err := s.catalog.UpdateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &p, nil
}

// GetProduct returns one product. Non-admin callers only see active
// products; an inactive one resolves to ErrProductNotFound for them.
func (s *CatalogService) GetProduct(ctx context.Context, actor *domain.User, productID string) (*domain.Product, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if !actor.IsAdmin() && !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// ListProducts returns products; non-admin callers only see active ones.
func (s *CatalogService) ListProducts(ctx context.Context, actor *domain.User) ([]domain.Product, error) {
	products, err := s.catalog.ListProducts(ctx, !actor.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor *domain.User, c domain.Category) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if c.Name == "" {
		return nil, ErrEmptyName
	}
	c.ID = uuid.NewString()
	c.IsActive = true
	c.CreatedAt = time.Now()
	if err := s.catalog.CreateCategory(ctx, &c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// DeactivateCategory soft-deletes a category. Products keep their
// reference; they just stop being grouped under an active category.
func (s *CatalogService) DeactivateCategory(ctx context.Context, actor *domain.User, categoryID string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	categories, err := s.catalog.ListCategories(ctx, false)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		if c.ID == categoryID {
			c.IsActive = false
			if err := s.catalog.UpdateCategory(ctx, &c); err != nil {
				return fmt.Errorf("deactivate category: %w", err)
			}
			return nil
		}
	}
	return ErrCategoryNotFound
}

func (s *CatalogService) ListCategories(ctx context.Context, actor *domain.User) ([]domain.Category, error) {
	categories, err := s.catalog.ListCategories(ctx, !actor.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
