package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/mfigueroa/fastfood-pos/internal/port"
)

// RedisFeed is the push ChangeFeed strategy, backed by the pub/sub
// channels the storage adapters publish to.
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func (f *RedisFeed) Subscribe(ctx context.Context, table string) (<-chan port.ChangeEvent, error) {
	sub := f.client.Subscribe(ctx, "changes:"+table)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	events := make(chan port.ChangeEvent, 16)
	go func() {
		defer close(events)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event port.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Warningf("malformed change event on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
