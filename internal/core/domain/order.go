package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order is one customer sale. TotalBS is frozen at creation time as
// TotalUSD * ExchangeRate and never recomputed when the rate moves.
type Order struct {
	ID           string      `json:"id"`
	SellerID     string      `json:"seller_id"`
	CustomerName string      `json:"customer_name"`
	TotalUSD     float64     `json:"total_usd"`
	TotalBS      float64     `json:"total_bs"`
	ExchangeRate float64     `json:"exchange_rate"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`

	ReadyBy     string     `json:"ready_by,omitempty"`
	ReadyAt     *time.Time `json:"ready_at,omitempty"`
	CompletedBy string     `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledBy string     `json:"cancelled_by,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of an order. ProductName and UnitPriceUSD are
// snapshots taken at order time; later edits to the product do not touch
// historical lines.
type OrderItem struct {
	ID                string  `json:"id"`
	OrderID           string  `json:"order_id"`
	ProductID         string  `json:"product_id"`
	ProductName       string  `json:"product_name"`
	Quantity          int     `json:"quantity"`
	UnitPriceUSD      float64 `json:"unit_price_usd"`
	TotalPriceUSD     float64 `json:"total_price_usd"`
	CustomDescription string  `json:"custom_description,omitempty"`
}

// OrderDigest is the lightweight projection the change poller fingerprints.
// Only the fields listed here participate in change detection.
type OrderDigest struct {
	ID        string
	Status    OrderStatus
	TotalUSD  float64
	CreatedAt time.Time
	ItemCount int
}
