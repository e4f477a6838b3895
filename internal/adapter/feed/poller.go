package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/op/go-logging"

	"github.com/mfigueroa/fastfood-pos/internal/port"
)

var log = logging.MustGetLogger("feed")

const DefaultPollInterval = time.Second

// Poller is the fallback ChangeFeed strategy for when push delivery is
// unavailable. It refetches the order digests on a fixed interval and
// emits one update event whenever the fingerprint changes. Fetch errors
// are logged and skipped; the next tick retries naturally.
type Poller struct {
	orders   port.OrderRepository
	interval time.Duration
}

func NewPoller(orders port.OrderRepository, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{orders: orders, interval: interval}
}

func (p *Poller) Subscribe(ctx context.Context, table string) (<-chan port.ChangeEvent, error) {
	if table != "orders" {
		return nil, fmt.Errorf("poller only watches the orders table, got %q", table)
	}

	events := make(chan port.ChangeEvent, 1)
	go p.run(ctx, events)
	return events, nil
}

func (p *Poller) run(ctx context.Context, events chan<- port.ChangeEvent) {
	defer close(events)

	last, primed := "", false
	if digests, err := p.orders.ListOrderDigests(ctx, ""); err == nil {
		last, primed = Fingerprint(digests), true
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		digests, err := p.orders.ListOrderDigests(ctx, "")
		if err != nil {
			log.Warningf("poll order digests: %v", err)
			continue
		}
		current := Fingerprint(digests)
		if !primed {
			last, primed = current, true
			continue
		}
		if current == last {
			continue
		}
		last = current

		select {
		case events <- port.ChangeEvent{Table: "orders", Type: port.ChangeUpdate}:
		default:
			// Consumer is behind; it will reload on the queued event anyway.
		}
	}
}
