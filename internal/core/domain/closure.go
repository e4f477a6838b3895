package domain

import "time"

// CashClosure is the immutable end-of-day snapshot for one calendar
// date. ScopeSellerID is empty for a register-wide closure and a seller
// id when a seller closes only their own sales.
type CashClosure struct {
	ID              string    `json:"id"`
	ClosureDate     string    `json:"closure_date"` // YYYY-MM-DD, local time
	ScopeSellerID   string    `json:"scope_seller_id,omitempty"`
	ClosedBy        string    `json:"closed_by"`
	ClosedByName    string    `json:"closed_by_name"`
	ClosedAt        time.Time `json:"closed_at"`
	TotalSalesUSD   float64   `json:"total_sales_usd"`
	TotalSalesBS    float64   `json:"total_sales_bs"`
	TotalOrders     int       `json:"total_orders"`
	CompletedOrders int       `json:"completed_orders"`
	CancelledOrders int       `json:"cancelled_orders"`
	PendingOrders   int       `json:"pending_orders"`
	ExchangeRateAvg float64   `json:"exchange_rate_avg"`
	Notes           string    `json:"notes,omitempty"`
}

// SuccessRate is the percentage of orders that completed, 0 when the
// day had no orders.
func (c *CashClosure) SuccessRate() float64 {
	if c.TotalOrders == 0 {
		return 0
	}
	return float64(c.CompletedOrders) / float64(c.TotalOrders) * 100
}
