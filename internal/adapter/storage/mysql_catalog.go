package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

func (m *MySQLAdapter) CreateProduct(ctx context.Context, p *domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price_usd, image_url, category_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.PriceUSD, nullString(p.ImageURL),
		nullString(p.CategoryID), p.IsActive, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateProduct(ctx context.Context, p *domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price_usd = ?, image_url = ?, category_id = ?, is_active = ?
		WHERE id = ?`,
		p.Name, p.Description, p.PriceUSD, nullString(p.ImageURL),
		nullString(p.CategoryID), p.IsActive, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	var imageURL, categoryID sql.NullString
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, description, price_usd, image_url, category_id, is_active, created_at
		FROM products WHERE id = ?`, productID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.PriceUSD, &imageURL, &categoryID, &p.IsActive, &p.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	p.ImageURL = imageURL.String
	p.CategoryID = categoryID.String
	return &p, nil
}

func (m *MySQLAdapter) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price_usd, image_url, category_id, is_active, created_at
		FROM products`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var imageURL, categoryID sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceUSD, &imageURL,
			&categoryID, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.ImageURL = imageURL.String
		p.CategoryID = categoryID.String
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) CreateCategory(ctx context.Context, c *domain.Category) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.IsActive, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateCategory(ctx context.Context, c *domain.Category) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, description = ?, is_active = ? WHERE id = ?`,
		c.Name, c.Description, c.IsActive, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := `SELECT id, name, description, is_active, created_at FROM categories`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
