package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"

	errx "github.com/Chative-trip-planner/server/internal/core/error"
	"github.com/Chative-trip-planner/server/internal/trip/model"
)

type Config struct {
	APIKey   string        `envconfig:"GEOAPIFY_API_KEY"`
	BaseURL  string        `envconfig:"GEOAPIFY_BASE_URL" default:"https://api.geoapify.com"`
	Limit    int           `envconfig:"PLACES_LIMIT" default:"5"`
	RadiusM  int           `envconfig:"PLACES_RADIUS_METERS" default:"5000"`
	Timeout  time.Duration `envconfig:"PLACES_TIMEOUT" default:"10s"`
	CacheTTL time.Duration `envconfig:"PLACES_CACHE_TTL" default:"24h"`
}

var (
	DefaultShopCategories    = []string{"commercial.marketplace", "commercial.shopping_mall", "commercial.gift_and_souvenir"}
	DefaultLeisureCategories = []string{"tourism.attraction", "leisure.park", "entertainment.museum"}
)

// Client finds points of interest through Geoapify. City geocodes are
// cached.
type Client struct {
	cfg        Config
	httpClient *http.Client
	geocodes   *cache.Cache
}

func New(cfg Config) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.RadiusM <= 0 {
		cfg.RadiusM = 5000
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		geocodes:   cache.New(cfg.CacheTTL, time.Hour),
	}
}

type geocode struct {
	Lat  float64
	Lon  float64
	City string
}

type feature struct {
	Properties struct {
		Name         string   `json:"name"`
		Categories   []string `json:"categories"`
		Formatted    string   `json:"formatted"`
		AddressLine2 string   `json:"address_line2"`
		City         string   `json:"city"`
		Website      string   `json:"website"`
		Lat          float64  `json:"lat"`
		Lon          float64  `json:"lon"`
	} `json:"properties"`
}

func (c *Client) SearchShops(ctx context.Context, q model.PlaceQuery) (*model.PlaceRecord, error) {
	return c.search(ctx, q, DefaultShopCategories)
}

func (c *Client) SearchLeisure(ctx context.Context, q model.PlaceQuery) (*model.PlaceRecord, error) {
	return c.search(ctx, q, DefaultLeisureCategories)
}

// search returns the first named place in the requested categories around
// the city centre.
func (c *Client) search(ctx context.Context, q model.PlaceQuery, defaults []string) (*model.PlaceRecord, error) {
	if c.cfg.APIKey == "" || c.cfg.BaseURL == "" {
		return nil, fmt.Errorf("geoapify api key not set: %w", model.ErrProviderUnavailable)
	}
	categories := lo.Uniq(lo.Map(q.Categories, func(s string, _ int) string { return strings.ToLower(s) }))
	if len(categories) == 0 {
		categories = defaults
	}

	center, err := c.geocode(ctx, q.City)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"categories": {strings.Join(categories, ",")},
		"filter":     {fmt.Sprintf("circle:%s,%s,%d", ftoa(center.Lon), ftoa(center.Lat), c.cfg.RadiusM)},
		"bias":       {fmt.Sprintf("proximity:%s,%s", ftoa(center.Lon), ftoa(center.Lat))},
		"limit":      {strconv.Itoa(c.cfg.Limit)},
	}
	var resp struct {
		Features []feature `json:"features"`
	}
	if err := c.get(ctx, "/v2/places", params, &resp); err != nil {
		return nil, err
	}

	f, ok := lo.Find(resp.Features, func(f feature) bool { return strings.TrimSpace(f.Properties.Name) != "" })
	if !ok {
		return nil, fmt.Errorf("places in %s: %w", q.City, model.ErrNoResults)
	}
	p := f.Properties
	return &model.PlaceRecord{
		Name:      strings.TrimSpace(p.Name),
		Category:  matchCategory(p.Categories, categories),
		Address:   lo.CoalesceOrEmpty(p.Formatted, p.AddressLine2),
		City:      lo.CoalesceOrEmpty(p.City, center.City, q.City),
		Website:   p.Website,
		Latitude:  p.Lat,
		Longitude: p.Lon,
	}, nil
}

func (c *Client) geocode(ctx context.Context, city string) (geocode, error) {
	key := strings.ToLower(strings.TrimSpace(city))
	if v, ok := c.geocodes.Get(key); ok {
		return v.(geocode), nil
	}

	var resp struct {
		Results []struct {
			Lat  float64 `json:"lat"`
			Lon  float64 `json:"lon"`
			City string  `json:"city"`
		} `json:"results"`
	}
	params := url.Values{"text": {city}, "type": {"city"}, "format": {"json"}, "limit": {"1"}}
	if err := c.get(ctx, "/v1/geocode/search", params, &resp); err != nil {
		return geocode{}, err
	}
	if len(resp.Results) == 0 {
		return geocode{}, fmt.Errorf("geocode %q: %w", city, model.ErrNoResults)
	}

	g := geocode{Lat: resp.Results[0].Lat, Lon: resp.Results[0].Lon, City: resp.Results[0].City}
	c.geocodes.SetDefault(key, g)
	return g, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("apiKey", c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errx.WrapProvider(fmt.Errorf("geoapify request %s: %w", path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("geoapify rejected api key (%d): %w", resp.StatusCode, model.ErrProviderUnavailable)
	case resp.StatusCode >= 300:
		return errx.WrapProvider(fmt.Errorf("geoapify %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

// matchCategory returns the most specific feature category that falls under
// one of the requested categories.
func matchCategory(featureCats, requested []string) string {
	best := ""
	for _, fc := range featureCats {
		for _, rc := range requested {
			if (fc == rc || strings.HasPrefix(fc, rc+".")) && len(fc) > len(best) {
				best = fc
			}
		}
	}
	if best == "" && len(requested) > 0 {
		return requested[0]
	}
	return best
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
