package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

// DailySummary aggregates one calendar day of orders. Sales totals cover
// completed orders only; the pending bucket counts everything that is
// neither completed nor cancelled, ready orders included.
type DailySummary struct {
	TotalSalesUSD   float64 `json:"total_sales_usd"`
	TotalSalesBS    float64 `json:"total_sales_bs"`
	TotalOrders     int     `json:"total_orders"`
	CompletedOrders int     `json:"completed_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	PendingOrders   int     `json:"pending_orders"`
	AverageOrderUSD float64 `json:"average_order_usd"`
	AverageOrderBS  float64 `json:"average_order_bs"`
}

// ProductSales is the per-product rollup over a day's completed orders.
type ProductSales struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	QuantitySold    int     `json:"quantity_sold"`
	TotalRevenueUSD float64 `json:"total_revenue_usd"`
	TotalRevenueBS  float64 `json:"total_revenue_bs"`
	AveragePriceUSD float64 `json:"average_price_usd"`
}

// SummarizeDay reduces a day's orders into a DailySummary.
func SummarizeDay(orders []domain.Order) DailySummary {
	summary := DailySummary{TotalOrders: len(orders)}

	for _, order := range orders {
		switch order.Status {
		case domain.OrderStatusCompleted:
			summary.TotalSalesUSD += order.TotalUSD
			summary.TotalSalesBS += order.TotalBS
			summary.CompletedOrders++
		case domain.OrderStatusCancelled:
			summary.CancelledOrders++
		default:
			summary.PendingOrders++
		}
	}

	if summary.CompletedOrders > 0 {
		summary.AverageOrderUSD = summary.TotalSalesUSD / float64(summary.CompletedOrders)
		summary.AverageOrderBS = summary.TotalSalesBS / float64(summary.CompletedOrders)
	}
	return summary
}

// SummarizeProducts groups the line items of completed orders by product.
// Bs revenue converts each line at its order's frozen exchange rate. The
// result is sorted by USD revenue, highest first.
func SummarizeProducts(orders []domain.Order) []ProductSales {
	byProduct := make(map[string]*ProductSales)

	for _, order := range orders {
		if order.Status != domain.OrderStatusCompleted {
			continue
		}
		for _, item := range order.Items {
			p, ok := byProduct[item.ProductID]
			if !ok {
				p = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName}
				byProduct[item.ProductID] = p
			}
			p.QuantitySold += item.Quantity
			p.TotalRevenueUSD += item.TotalPriceUSD
			p.TotalRevenueBS += item.TotalPriceUSD * order.ExchangeRate
		}
	}

	result := make([]ProductSales, 0, len(byProduct))
	for _, p := range byProduct {
		if p.QuantitySold > 0 {
			p.AveragePriceUSD = p.TotalRevenueUSD / float64(p.QuantitySold)
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalRevenueUSD > result[j].TotalRevenueUSD
	})
	return result
}

// DayRange returns the inclusive bounds of one local calendar date,
// [00:00:00.000, 23:59:59.999]. The date must be formatted YYYY-MM-DD.
func DayRange(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	start := day
	end := day.Add(24*time.Hour - time.Millisecond)
	return start, end, nil
}
