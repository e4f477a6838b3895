package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeRateCache struct {
	mu   sync.Mutex
	rate float64
	set  bool
}

func (c *fakeRateCache) GetRate(context.Context) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate, c.set, nil
}

func (c *fakeRateCache) SetRate(_ context.Context, rate float64, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate, c.set = rate, true
	return nil
}

func TestCurrentRate_ParsesPromedio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"fecha":"2026-08-30","promedio":40.25,"compra":40.10,"venta":40.40}`))
	}))
	defer server.Close()

	cache := &fakeRateCache{}
	client := NewClient(server.URL, FallbackRate, cache)

	rate := client.CurrentRate(context.Background())
	assert.InDelta(t, 40.25, rate, 1e-9)

	// Successful fetches are cached.
	assert.True(t, cache.set)
	assert.InDelta(t, 40.25, cache.rate, 1e-9)
}

func TestCurrentRate_CacheHitSkipsFetch(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{"promedio":40.25}`))
	}))
	defer server.Close()

	cache := &fakeRateCache{rate: 38.9, set: true}
	client := NewClient(server.URL, FallbackRate, cache)

	assert.InDelta(t, 38.9, client.CurrentRate(context.Background()), 1e-9)
	assert.Zero(t, calls)
}

func TestCurrentRate_FallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 36.5, &fakeRateCache{})
	assert.InDelta(t, 36.5, client.CurrentRate(context.Background()), 1e-9)
}

func TestCurrentRate_FallsBackWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, 36.5, nil)
	assert.InDelta(t, 36.5, client.CurrentRate(context.Background()), 1e-9)
}

func TestCurrentRate_RejectsNonPositiveRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"promedio":0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 36.5, nil)
	assert.InDelta(t, 36.5, client.CurrentRate(context.Background()), 1e-9)
}
