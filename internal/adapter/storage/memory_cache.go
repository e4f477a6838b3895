package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is the degraded-mode stand-in for the Redis adapter when
// Redis is unreachable at startup. Idempotency keys and sessions live in
// process memory only, so they do not survive a restart and are not
// shared across instances.
type MemoryCache struct {
	mu       sync.Mutex
	keys     map[string]time.Time
	sessions map[string]memorySession
	rate     float64
	rateExp  time.Time
}

type memorySession struct {
	userID  string
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		keys:     make(map[string]time.Time),
		sessions: make(map[string]memorySession),
	}
}

func (c *MemoryCache) SetIdempotency(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if exp, ok := c.keys[key]; ok && time.Now().Before(exp) {
		return false, nil
	}
	c.keys[key] = time.Now().Add(idempotencyKeyTTL)
	return true, nil
}

func (c *MemoryCache) DeleteIdempotency(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key)
	return nil
}

func (c *MemoryCache) GetRate(_ context.Context) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rate == 0 || time.Now().After(c.rateExp) {
		return 0, false, nil
	}
	return c.rate, true, nil
}

func (c *MemoryCache) SetRate(_ context.Context, rate float64, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = rate
	c.rateExp = time.Now().Add(ttl)
	return nil
}

func (c *MemoryCache) SaveSession(_ context.Context, token, userID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[token] = memorySession{userID: userID, expires: time.Now().Add(ttl)}
	return nil
}

func (c *MemoryCache) GetSession(_ context.Context, token string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[token]
	if !ok || time.Now().After(s.expires) {
		return "", nil
	}
	return s.userID, nil
}

func (c *MemoryCache) DeleteSession(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
	return nil
}
