package port

import (
	"context"
	"time"
)

type IdempotencyStore interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// DeleteIdempotency releases a claimed key so the guarded operation
	// can be retried. Deleting an absent key is not an error.
	DeleteIdempotency(ctx context.Context, key string) error
}

type RateCache interface {
	// GetRate returns the cached exchange rate, or false when absent/expired.
	GetRate(ctx context.Context) (float64, bool, error)

	SetRate(ctx context.Context, rate float64, ttl time.Duration) error
}

type SessionStore interface {
	SaveSession(ctx context.Context, token, userID string, ttl time.Duration) error

	// GetSession returns the user id bound to the token, or "" when the
	// session is unknown or expired.
	GetSession(ctx context.Context, token string) (string, error)

	DeleteSession(ctx context.Context, token string) error
}

// ChangePublisher pushes a table-change event to subscribed listeners.
// Delivery is best-effort; publishing never blocks a write path.
type ChangePublisher interface {
	PublishChange(ctx context.Context, event ChangeEvent) error
}
