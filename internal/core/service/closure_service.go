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
	ErrPendingOrders = errors.New("cannot close the register with pending orders")
	ErrClosureExists = errors.New("register already closed for this date")
)

// ClosureService computes daily summaries and performs the end-of-day
// register close. The close is guarded twice: a repository lookup, and a
// Redis idempotency key that also holds when two closes race on the same
// date.
type ClosureService struct {
	orders   port.OrderRepository
	closures port.ClosureRepository
	idem     port.IdempotencyStore
	loc      *time.Location
	now      func() time.Time
}

func NewClosureService(orders port.OrderRepository, closures port.ClosureRepository, idem port.IdempotencyStore, loc *time.Location) *ClosureService {
	if loc == nil {
		loc = time.Local
	}
	return &ClosureService{
		orders:   orders,
		closures: closures,
		idem:     idem,
		loc:      loc,
		now:      time.Now,
	}
}

// DayReport is everything the cash-control view needs for one date.
type DayReport struct {
	Summary  DailySummary   `json:"summary"`
	Products []ProductSales `json:"products"`
	Orders   []domain.Order `json:"orders"`
}

// Report loads the date's orders (optionally one seller's) and reduces
// them into the daily and per-product summaries.
func (s *ClosureService) Report(ctx context.Context, date, sellerID string) (*DayReport, error) {
	orders, err := s.dayOrders(ctx, date, sellerID)
	if err != nil {
		return nil, err
	}
	return &DayReport{
		Summary:  SummarizeDay(orders),
		Products: SummarizeProducts(orders),
		Orders:   orders,
	}, nil
}

// CloseCash snapshots the date into an immutable closure row. It fails
// with ErrPendingOrders while any order of the date is still open, and
// with ErrClosureExists when the date+scope was already closed. The
// average exchange rate is sales-weighted: totalBS / totalUSD, 0 when
// nothing was sold.
func (s *ClosureService) CloseCash(ctx context.Context, date, scopeSellerID string, closer *domain.User, notes string) (*domain.CashClosure, error) {
	orders, err := s.dayOrders(ctx, date, scopeSellerID)
	if err != nil {
		return nil, err
	}
	summary := SummarizeDay(orders)
	if summary.PendingOrders > 0 {
		return nil, ErrPendingOrders
	}

	if existing, err := s.closures.GetClosure(ctx, date, scopeSellerID); err != nil {
		return nil, fmt.Errorf("check existing closure: %w", err)
	} else if existing != nil {
		return nil, ErrClosureExists
	}

	// The lookup above can race with a concurrent close; the SetNX key is
	// the arbiter.
	key := fmt.Sprintf("cash-closure:%s:%s", scopeSellerID, date)
	ok, err := s.idem.SetIdempotency(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("closure idempotency check: %w", err)
	}
	if !ok {
		return nil, ErrClosureExists
	}

	var rateAvg float64
	if summary.TotalSalesUSD > 0 {
		rateAvg = summary.TotalSalesBS / summary.TotalSalesUSD
	}

	now := s.now()
	if notes == "" {
		notes = fmt.Sprintf("Caja cerrada por %s el %s", closer.FullName, now.In(s.loc).Format("02/01/2006 15:04"))
	}
	closure := &domain.CashClosure{
		ID:              uuid.NewString(),
		ClosureDate:     date,
		ScopeSellerID:   scopeSellerID,
		ClosedBy:        closer.ID,
		ClosedByName:    closer.FullName,
		ClosedAt:        now,
		TotalSalesUSD:   summary.TotalSalesUSD,
		TotalSalesBS:    summary.TotalSalesBS,
		TotalOrders:     summary.TotalOrders,
		CompletedOrders: summary.CompletedOrders,
		CancelledOrders: summary.CancelledOrders,
		PendingOrders:   summary.PendingOrders,
		ExchangeRateAvg: rateAvg,
		Notes:           notes,
	}

	if err := s.closures.CreateClosure(ctx, closure); err != nil {
		// Release the key, otherwise a failed write blocks every retry
		// until the key expires.
		_ = s.idem.DeleteIdempotency(ctx, key)
		return nil, fmt.Errorf("persist closure: %w", err)
	}
	return closure, nil
}

// Closure returns the stored closure for one date and scope. A nil
// closure means the register is still open for that date.
func (s *ClosureService) Closure(ctx context.Context, date, scopeSellerID string) (*domain.CashClosure, error) {
	closure, err := s.closures.GetClosure(ctx, date, scopeSellerID)
	if err != nil {
		return nil, fmt.Errorf("load closure: %w", err)
	}
	return closure, nil
}

// History lists closures in [from, to], newest first.
func (s *ClosureService) History(ctx context.Context, from, to, scopeSellerID string) ([]domain.CashClosure, error) {
	closures, err := s.closures.ListClosures(ctx, from, to, scopeSellerID)
	if err != nil {
		return nil, fmt.Errorf("list closures: %w", err)
	}
	return closures, nil
}

func (s *ClosureService) dayOrders(ctx context.Context, date, sellerID string) ([]domain.Order, error) {
	from, to, err := DayRange(date, s.loc)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListOrders(ctx, port.OrderFilter{SellerID: sellerID, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list day orders: %w", err)
	}
	return orders, nil
}
