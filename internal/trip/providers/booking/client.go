package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	errx "github.com/Chative-trip-planner/server/internal/core/error"
	"github.com/Chative-trip-planner/server/internal/trip/model"
)

type Config struct {
	Host          string        `envconfig:"BOOKING_API_HOST" default:"booking-com15.p.rapidapi.com"`
	APIKey        string        `envconfig:"BOOKING_API_KEY"`
	BaseURL       string        `envconfig:"BOOKING_BASE_URL"`
	RatePerSecond float64       `envconfig:"BOOKING_RATE_PER_SECOND" default:"2"`
	Currency      string        `envconfig:"BOOKING_CURRENCY" default:"USD"`
	Timeout       time.Duration `envconfig:"BOOKING_TIMEOUT" default:"15s"`
	CacheTTL      time.Duration `envconfig:"BOOKING_CACHE_TTL" default:"24h"`
}

// Client talks to the Booking.com RapidAPI. Destination lookups are cached
// and every request waits on a shared rate limiter.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
}

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" && cfg.Host != "" {
		baseURL = "https://" + cfg.Host
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		cache:      cache.New(cfg.CacheTTL, time.Hour),
	}
}

func (c *Client) available() error {
	if c.cfg.APIKey == "" || c.cfg.Host == "" || c.baseURL == "" {
		return fmt.Errorf("booking api credentials not set: %w", model.ErrProviderUnavailable)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.cfg.APIKey)
	req.Header.Set("x-rapidapi-host", c.cfg.Host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errx.WrapProvider(fmt.Errorf("booking request %s: %w", path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errx.WrapProvider(fmt.Errorf("rate limited by booking api (429)"))
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("booking api rejected credentials (%d): %w", resp.StatusCode, model.ErrProviderUnavailable)
	case resp.StatusCode >= 300:
		return errx.WrapProvider(fmt.Errorf("booking api %s returned %d", path, resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

// cached returns the cached value for key or computes and stores it.
func cached[T any](c *Client, key string, load func() (T, error)) (T, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.(T), nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.cache.SetDefault(key, v)
	return v, nil
}
