package booking

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

type flightDestination struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	CityName string `json:"cityName"`
}

type money struct {
	CurrencyCode string `json:"currencyCode"`
	Units        int64  `json:"units"`
	Nanos        int64  `json:"nanos"`
}

// decimal returns a null price when the offer carried no total.
func (m *money) decimal() decimal.NullDecimal {
	if m == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromInt(m.Units).Add(decimal.New(m.Nanos, -9)))
}

type airport struct {
	Code     string `json:"code"`
	CityName string `json:"cityName"`
}

type flightSearchResponse struct {
	Data struct {
		FlightOffers []struct {
			Token          string `json:"token"`
			PriceBreakdown struct {
				Total *money `json:"total"`
			} `json:"priceBreakdown"`
			Segments []struct {
				DepartureAirport airport `json:"departureAirport"`
				ArrivalAirport   airport `json:"arrivalAirport"`
				DepartureTime    string  `json:"departureTime"`
				ArrivalTime      string  `json:"arrivalTime"`
				Legs             []struct {
					CarriersData []struct {
						Name string `json:"name"`
						Logo string `json:"logo"`
					} `json:"carriersData"`
				} `json:"legs"`
			} `json:"segments"`
		} `json:"flightOffers"`
	} `json:"data"`
}

// flightDestination prefers a city-wide id so every airport of a metro is
// searched.
func (c *Client) flightDestination(ctx context.Context, city string) (flightDestination, error) {
	return cached(c, "flight-dest:"+strings.ToLower(city), func() (flightDestination, error) {
		var resp struct {
			Data []flightDestination `json:"data"`
		}
		if err := c.get(ctx, "/api/v1/flights/searchDestination", url.Values{"query": {city}}, &resp); err != nil {
			return flightDestination{}, err
		}
		if len(resp.Data) == 0 {
			return flightDestination{}, fmt.Errorf("flight destination %q: %w", city, model.ErrNoResults)
		}
		if d, ok := lo.Find(resp.Data, func(d flightDestination) bool { return strings.EqualFold(d.Type, "CITY") }); ok {
			return d, nil
		}
		return resp.Data[0], nil
	})
}

// SearchFlights returns the first one-way offer between two cities.
func (c *Client) SearchFlights(ctx context.Context, q model.FlightQuery) (*model.FlightRecord, error) {
	if err := c.available(); err != nil {
		return nil, err
	}
	from, err := c.flightDestination(ctx, q.OriginCity)
	if err != nil {
		return nil, err
	}
	to, err := c.flightDestination(ctx, q.DestinationCity)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"fromId":        {from.ID},
		"toId":          {to.ID},
		"departDate":    {q.DepartureDate},
		"adults":        {strconv.Itoa(q.Adults)},
		"currency_code": {c.cfg.Currency},
		"sort":          {"BEST"},
	}
	var resp flightSearchResponse
	if err := c.get(ctx, "/api/v1/flights/searchFlights", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data.FlightOffers) == 0 {
		return nil, fmt.Errorf("flights %s to %s: %w", q.OriginCity, q.DestinationCity, model.ErrNoResults)
	}

	offer := resp.Data.FlightOffers[0]
	originCode := lo.CoalesceOrEmpty(from.Code, codeOf(from.ID))
	destinationCode := lo.CoalesceOrEmpty(to.Code, codeOf(to.ID))

	rec := &model.FlightRecord{
		Title:           fmt.Sprintf("%s → %s", originCode, destinationCode),
		Price:           offer.PriceBreakdown.Total.decimal(),
		Currency:        lo.FromPtr(offer.PriceBreakdown.Total).CurrencyCode,
		OriginCode:      originCode,
		DestinationCode: destinationCode,
		BookingURL: fmt.Sprintf("https://flights.booking.com/flights/%s-%s/?type=ONEWAY&adults=%d&depart=%s",
			from.ID, to.ID, q.Adults, url.QueryEscape(q.DepartureDate)),
	}

	if len(offer.Segments) > 0 {
		seg := offer.Segments[0]
		stops := 0
		if len(seg.Legs) > 1 {
			stops = len(seg.Legs) - 1
		}
		rec.Description = fmt.Sprintf("Departs %s %s, arrives %s %s, %d stop(s)",
			seg.DepartureAirport.Code, seg.DepartureTime, seg.ArrivalAirport.Code, seg.ArrivalTime, stops)
		if len(seg.Legs) > 0 && len(seg.Legs[0].CarriersData) > 0 {
			carrier := seg.Legs[0].CarriersData[0]
			rec.Title = fmt.Sprintf("%s %s", carrier.Name, rec.Title)
			rec.ImageURL = carrier.Logo
		}
	}
	return rec, nil
}

// codeOf strips the type suffix from ids such as "JFK.AIRPORT".
func codeOf(id string) string {
	code, _, _ := strings.Cut(id, ".")
	return code
}
