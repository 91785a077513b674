package booking

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Chative-trip-planner/server/internal/trip/model"
	logx "github.com/Chative-trip-planner/server/pkg/logger"
)

const maxHotels = 3

type hotelDestination struct {
	DestID     string `json:"dest_id"`
	SearchType string `json:"search_type"`
	Label      string `json:"label"`
	CityName   string `json:"city_name"`
}

type hotelSearchResponse struct {
	Data struct {
		Hotels []struct {
			HotelID            int64  `json:"hotel_id"`
			AccessibilityLabel string `json:"accessibilityLabel"`
			Property           struct {
				Name           string   `json:"name"`
				PhotoURLs      []string `json:"photoUrls"`
				ReviewScore    float64  `json:"reviewScore"`
				URL            string   `json:"url"`
				PriceBreakdown struct {
					GrossPrice struct {
						Value    decimal.NullDecimal `json:"value"`
						Currency string          `json:"currency"`
					} `json:"grossPrice"`
				} `json:"priceBreakdown"`
			} `json:"property"`
		} `json:"hotels"`
	} `json:"data"`
}

type hotelDetailsResponse struct {
	Data struct {
		URL   string `json:"url"`
		Rooms map[string]struct {
			Photos []struct {
				URLMax1280 string `json:"url_max1280"`
			} `json:"photos"`
		} `json:"rooms"`
	} `json:"data"`
}

func (c *Client) hotelDestination(ctx context.Context, city string) (hotelDestination, error) {
	return cached(c, "hotel-dest:"+strings.ToLower(city), func() (hotelDestination, error) {
		var resp struct {
			Data []hotelDestination `json:"data"`
		}
		if err := c.get(ctx, "/api/v1/hotels/searchDestination", url.Values{"query": {city}}, &resp); err != nil {
			return hotelDestination{}, err
		}
		if len(resp.Data) == 0 {
			return hotelDestination{}, fmt.Errorf("hotel destination %q: %w", city, model.ErrNoResults)
		}
		return resp.Data[0], nil
	})
}

// SearchHotels returns the top hotels for a stay, each enriched with the
// property page and a room photo when the details call succeeds.
func (c *Client) SearchHotels(ctx context.Context, q model.HotelQuery) ([]model.HotelRecord, error) {
	if err := c.available(); err != nil {
		return nil, err
	}
	dest, err := c.hotelDestination(ctx, q.City)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"dest_id":        {dest.DestID},
		"search_type":    {dest.SearchType},
		"arrival_date":   {q.ArrivalDate},
		"departure_date": {q.DepartureDate},
		"adults":         {strconv.Itoa(q.Adults)},
		"price_max":      {strconv.Itoa(q.PriceMax)},
		"currency_code":  {c.cfg.Currency},
	}
	var resp hotelSearchResponse
	if err := c.get(ctx, "/api/v1/hotels/searchHotels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data.Hotels) == 0 {
		return nil, fmt.Errorf("hotels in %s: %w", q.City, model.ErrNoResults)
	}

	hotels := resp.Data.Hotels
	if len(hotels) > maxHotels {
		hotels = hotels[:maxHotels]
	}
	out := make([]model.HotelRecord, 0, len(hotels))
	for _, h := range hotels {
		rec := model.HotelRecord{
			Destination:      dest.Label,
			HotelName:        h.Property.Name,
			HotelDescription: h.AccessibilityLabel,
			BookingHotelID:   strconv.FormatInt(h.HotelID, 10),
			HotelPhotoURLs:   h.Property.PhotoURLs,
			Rating:           h.Property.ReviewScore,
			RoomPhotoURL:     "N/A",
			BookingURL:       h.Property.URL,
			Price:            h.Property.PriceBreakdown.GrossPrice.Value,
			Currency:         h.Property.PriceBreakdown.GrossPrice.Currency,
		}
		if rec.BookingURL == "" {
			rec.BookingURL = "https://www.booking.com/searchresults.html?ss=" + url.QueryEscape(q.City)
		}
		if rec.HotelName == "" {
			rec.HotelName = "N/A"
		}
		c.enrichHotel(ctx, &rec, q)
		out = append(out, rec)
	}
	return out, nil
}

// enrichHotel is best effort: a failed details call keeps the search data.
func (c *Client) enrichHotel(ctx context.Context, rec *model.HotelRecord, q model.HotelQuery) {
	params := url.Values{
		"hotel_id":       {rec.BookingHotelID},
		"arrival_date":   {q.ArrivalDate},
		"departure_date": {q.DepartureDate},
		"adults":         {strconv.Itoa(q.Adults)},
		"currency_code":  {c.cfg.Currency},
	}
	var details hotelDetailsResponse
	if err := c.get(ctx, "/api/v1/hotels/getHotelDetails", params, &details); err != nil {
		logx.Debug().Err(err).Str("hotel_id", rec.BookingHotelID).Msg("hotel details unavailable")
		return
	}
	if details.Data.URL != "" {
		rec.BookingURL = details.Data.URL
	}
	roomIDs := lo.Keys(details.Data.Rooms)
	slices.Sort(roomIDs)
	for _, id := range roomIDs {
		for _, photo := range details.Data.Rooms[id].Photos {
			if photo.URLMax1280 != "" {
				rec.RoomPhotoURL = photo.URLMax1280
				return
			}
		}
	}
}
