package booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

type fakeAPI struct {
	destinationCalls atomic.Int32
	detailsStatus    int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("x-rapidapi-key") != "test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/api/v1/hotels/searchDestination":
		f.destinationCalls.Add(1)
		_, _ = w.Write([]byte(`{"data":[{"dest_id":"-126693","search_type":"CITY","label":"Rome, Lazio, Italy","city_name":"Rome"}]}`))
	case "/api/v1/hotels/searchHotels":
		if r.URL.Query().Get("dest_id") != "-126693" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"hotels":[
			{"hotel_id":101,"accessibilityLabel":"Hotel Artemide, 4 stars","property":{"name":"Hotel Artemide","photoUrls":["https://img/a1.jpg"],"reviewScore":9.1,"priceBreakdown":{"grossPrice":{"value":412.5,"currency":"EUR"}}}},
			{"hotel_id":102,"property":{"name":"Hotel Raphael","reviewScore":8.8,"priceBreakdown":{"grossPrice":{"value":633,"currency":"EUR"}}}},
			{"hotel_id":103,"property":{"name":"Hotel Locarno"}},
			{"hotel_id":104,"property":{"name":"Fourth"}}
		]}}`))
	case "/api/v1/hotels/getHotelDetails":
		if f.detailsStatus != 0 {
			w.WriteHeader(f.detailsStatus)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"url":"https://www.booking.com/hotel/it/` + r.URL.Query().Get("hotel_id") + `.html","rooms":{"b":{"photos":[{"url_max1280":"https://img/room-b.jpg"}]},"a":{"photos":[{"url_640":"x"},{"url_max1280":"https://img/room-a.jpg"}]}}}}`))
	case "/api/v1/flights/searchDestination":
		f.destinationCalls.Add(1)
		switch r.URL.Query().Get("query") {
		case "New York":
			_, _ = w.Write([]byte(`{"data":[{"id":"JFK.AIRPORT","type":"AIRPORT","code":"JFK"},{"id":"NYC.CITY","type":"CITY","code":"NYC"}]}`))
		case "Paris":
			_, _ = w.Write([]byte(`{"data":[{"id":"PAR.CITY","type":"CITY"}]}`))
		default:
			_, _ = w.Write([]byte(`{"data":[]}`))
		}
	case "/api/v1/flights/searchFlights":
		_, _ = w.Write([]byte(`{"data":{"flightOffers":[{"token":"t1",
			"priceBreakdown":{"total":{"currencyCode":"USD","units":642,"nanos":500000000}},
			"segments":[{"departureAirport":{"code":"JFK"},"arrivalAirport":{"code":"CDG"},"departureTime":"2026-06-01T18:00:00","arrivalTime":"2026-06-02T07:30:00",
				"legs":[{"carriersData":[{"name":"Air France","logo":"https://img/af.png"}]}]}]}]}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, api http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New(Config{
		Host:          "booking-com15.p.rapidapi.com",
		APIKey:        "test-key",
		BaseURL:       srv.URL,
		RatePerSecond: 1000,
		Currency:      "EUR",
		Timeout:       time.Second,
		CacheTTL:      time.Minute,
	})
}

func TestSearchHotels(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	hotels, err := c.SearchHotels(context.Background(), model.HotelQuery{
		City: "Rome", ArrivalDate: "2026-05-01", DepartureDate: "2026-05-04", PriceMax: 1500, Adults: 2,
	})
	require.NoError(t, err)
	require.Len(t, hotels, 3)

	first := hotels[0]
	assert.Equal(t, "Hotel Artemide", first.HotelName)
	assert.Equal(t, "Rome, Lazio, Italy", first.Destination)
	assert.Equal(t, "101", first.BookingHotelID)
	assert.Equal(t, 9.1, first.Rating)
	require.True(t, first.Price.Valid)
	assert.True(t, first.Price.Decimal.Equal(decimal.RequireFromString("412.5")))
	assert.Equal(t, "EUR", first.Currency)
	assert.Equal(t, "https://www.booking.com/hotel/it/101.html", first.BookingURL)
	assert.Equal(t, "https://img/room-a.jpg", first.RoomPhotoURL, "the first room by id wins")
	assert.False(t, hotels[2].Price.Valid, "a hotel without a price keeps a null price")

	_, err = c.SearchHotels(context.Background(), model.HotelQuery{City: "rome"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.destinationCalls.Load(), "destination lookups are cached per city")
}

func TestSearchHotels_DetailsFailureKeepsSearchData(t *testing.T) {
	c := newTestClient(t, &fakeAPI{detailsStatus: http.StatusInternalServerError})

	hotels, err := c.SearchHotels(context.Background(), model.HotelQuery{City: "Rome", Adults: 1})
	require.NoError(t, err)
	assert.Equal(t, "N/A", hotels[0].RoomPhotoURL)
	assert.Equal(t, "https://www.booking.com/searchresults.html?ss=Rome", hotels[0].BookingURL)
}

func TestSearchFlights(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	flight, err := c.SearchFlights(context.Background(), model.FlightQuery{
		OriginCity: "New York", DestinationCity: "Paris", DepartureDate: "2026-06-01", Adults: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "NYC", flight.OriginCode)
	assert.Equal(t, "PAR", flight.DestinationCode)
	assert.Equal(t, "Air France NYC → PAR", flight.Title)
	require.True(t, flight.Price.Valid)
	assert.True(t, flight.Price.Decimal.Equal(decimal.RequireFromString("642.5")))
	assert.Equal(t, "https://img/af.png", flight.ImageURL)
	assert.Contains(t, flight.BookingURL, "NYC.CITY-PAR.CITY")
	assert.Contains(t, flight.Description, "0 stop(s)")
}

func TestSearchFlights_UnknownCity(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	_, err := c.SearchFlights(context.Background(), model.FlightQuery{OriginCity: "Atlantis", DestinationCity: "Paris"})
	assert.ErrorIs(t, err, model.ErrNoResults)
}

func TestMissingCredentials(t *testing.T) {
	c := New(Config{Host: "booking-com15.p.rapidapi.com"})

	_, err := c.SearchHotels(context.Background(), model.HotelQuery{City: "Rome"})
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
	_, err = c.SearchFlights(context.Background(), model.FlightQuery{OriginCity: "Rome"})
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
}

func TestRejectedCredentials(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})
	c.cfg.APIKey = "wrong"

	_, err := c.SearchHotels(context.Background(), model.HotelQuery{City: "Rome"})
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "JFK", codeOf("JFK.AIRPORT"))
	assert.Equal(t, "PAR", codeOf("PAR"))
}
