package port

import "context"

// RateProvider returns the current USD→Bs exchange rate. Implementations
// never fail: when the upstream source is unreachable they fall back to a
// configured constant.
type RateProvider interface {
	CurrentRate(ctx context.Context) float64
}
