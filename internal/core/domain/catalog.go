package domain

import "time"

// Product is a menu item. Price changes here never rewrite historical
// order lines, which carry their own price snapshot.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceUSD    float64   `json:"price_usd"`
	ImageURL    string    `json:"image_url,omitempty"`
	CategoryID  string    `json:"category_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Category groups products. Categories are deactivated, never deleted,
// so products keep a resolvable reference.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
