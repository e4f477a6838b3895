// Package rates fetches the official USD→Bs exchange rate from the
// dolarapi service, caching it in Redis and falling back to a fixed
// constant whenever the upstream is unreachable.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/op/go-logging"

	"github.com/mfigueroa/fastfood-pos/internal/port"
)

var log = logging.MustGetLogger("rates")

const (
	DefaultURL      = "https://ve.dolarapi.com/v1/dolares/oficial"
	FallbackRate    = 36.5
	defaultCacheTTL = 5 * time.Minute
	requestTimeout  = 5 * time.Second
)

type apiResponse struct {
	Fecha    string  `json:"fecha"`
	Promedio float64 `json:"promedio"`
	Compra   float64 `json:"compra"`
	Venta    float64 `json:"venta"`
}

// Client implements port.RateProvider. CurrentRate never fails: any
// upstream or cache problem degrades to the fallback constant.
type Client struct {
	httpClient *http.Client
	url        string
	fallback   float64
	cache      port.RateCache
	cacheTTL   time.Duration
}

func NewClient(url string, fallback float64, cache port.RateCache) *Client {
	if url == "" {
		url = DefaultURL
	}
	if fallback <= 0 {
		fallback = FallbackRate
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		url:        url,
		fallback:   fallback,
		cache:      cache,
		cacheTTL:   defaultCacheTTL,
	}
}

func (c *Client) CurrentRate(ctx context.Context) float64 {
	if c.cache != nil {
		if rate, ok, err := c.cache.GetRate(ctx); err != nil {
			log.Warningf("rate cache read failed: %v", err)
		} else if ok {
			return rate
		}
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		log.Errorf("exchange rate fetch failed, using fallback %.2f: %v", c.fallback, err)
		return c.fallback
	}

	if c.cache != nil {
		if err := c.cache.SetRate(ctx, rate, c.cacheTTL); err != nil {
			log.Warningf("rate cache write failed: %v", err)
		}
	}
	return rate
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate service returned %s", resp.Status)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode rate response: %w", err)
	}
	if body.Promedio <= 0 {
		return 0, fmt.Errorf("rate service returned non-positive rate %.4f", body.Promedio)
	}
	return body.Promedio, nil
}
