package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "geo-key", BaseURL: srv.URL, Limit: 3, RadiusM: 2000, Timeout: time.Second, CacheTTL: time.Minute})
}

func TestSearchShops(t *testing.T) {
	var geocodes atomic.Int32
	var lastCategories string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "geo-key", r.URL.Query().Get("apiKey"))
		switch r.URL.Path {
		case "/v1/geocode/search":
			geocodes.Add(1)
			_, _ = w.Write([]byte(`{"results":[{"lat":41.8933,"lon":12.4829,"city":"Rome"}]}`))
		case "/v2/places":
			lastCategories = r.URL.Query().Get("categories")
			assert.Equal(t, "circle:12.482900,41.893300,2000", r.URL.Query().Get("filter"))
			_, _ = w.Write([]byte(`{"features":[
				{"properties":{"name":"","categories":["commercial"]}},
				{"properties":{"name":"Mercato Centrale","categories":["commercial","commercial.marketplace"],"formatted":"Via Giovanni Giolitti 36, Rome","website":"https://mercatocentrale.it","lat":41.9,"lon":12.5}}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	place, err := c.SearchShops(context.Background(), model.PlaceQuery{City: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, "Mercato Centrale", place.Name)
	assert.Equal(t, "commercial.marketplace", place.Category)
	assert.Equal(t, "Via Giovanni Giolitti 36, Rome", place.Address)
	assert.Equal(t, "Rome", place.City)
	assert.Equal(t, "commercial.marketplace,commercial.shopping_mall,commercial.gift_and_souvenir", lastCategories)

	_, err = c.SearchLeisure(context.Background(), model.PlaceQuery{City: " ROME ", Categories: []string{"Leisure.Park", "leisure.park"}})
	require.NoError(t, err)
	assert.Equal(t, "leisure.park", lastCategories)
	assert.Equal(t, int32(1), geocodes.Load())
}

func TestSearch_NoNamedPlaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/geocode/search":
			_, _ = w.Write([]byte(`{"results":[{"lat":1,"lon":2}]}`))
		default:
			_, _ = w.Write([]byte(`{"features":[]}`))
		}
	})

	_, err := c.SearchLeisure(context.Background(), model.PlaceQuery{City: "Nowhere"})
	assert.ErrorIs(t, err, model.ErrNoResults)
}

func TestSearch_UnknownCity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	_, err := c.SearchShops(context.Background(), model.PlaceQuery{City: "Atlantis"})
	assert.ErrorIs(t, err, model.ErrNoResults)
}

func TestSearch_Unavailable(t *testing.T) {
	_, err := New(Config{BaseURL: "https://api.geoapify.com"}).SearchShops(context.Background(), model.PlaceQuery{City: "Rome"})
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err = c.SearchShops(context.Background(), model.PlaceQuery{City: "Rome"})
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
}

func TestMatchCategory(t *testing.T) {
	assert.Equal(t, "leisure.park.garden", matchCategory([]string{"leisure", "leisure.park", "leisure.park.garden"}, []string{"leisure.park"}))
	assert.Equal(t, "tourism.attraction", matchCategory([]string{"building"}, []string{"tourism.attraction"}))
	assert.Empty(t, matchCategory(nil, nil))
}
