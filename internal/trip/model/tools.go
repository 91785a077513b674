package model

import "github.com/shopspring/decimal"

const (
	ToolSearchHotels        = "search_hotels"
	ToolSearchFlights       = "search_flights"
	ToolSearchShops         = "search_shops"
	ToolSearchLeisure       = "search_leisure"
	ToolRecommendActivities = "get_activity_recommendations"
)

type HotelQuery struct {
	City          string
	ArrivalDate   string
	DepartureDate string
	PriceMax      int
	Adults        int
}

type FlightQuery struct {
	OriginCity      string
	DestinationCity string
	DepartureDate   string
	Adults          int
}

type PlaceQuery struct {
	City       string
	Categories []string
}

type HotelRecord struct {
	Destination      string          `json:"destination"`
	HotelName        string          `json:"hotel_name"`
	HotelDescription string          `json:"hotel_description"`
	BookingHotelID   string          `json:"booking_hotel_id"`
	HotelPhotoURLs   []string        `json:"hotel_photo_url"`
	Rating           float64         `json:"rating"`
	RoomPhotoURL     string          `json:"room_photo_url"`
	BookingURL       string          `json:"booking_url"`
	Price            decimal.NullDecimal `json:"price"`
	Currency         string          `json:"currency"`
}

type FlightRecord struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.NullDecimal `json:"price"`
	Currency        string          `json:"currency"`
	ImageURL        string          `json:"image_url"`
	BookingURL      string          `json:"booking_url"`
	OriginCode      string          `json:"origin_code"`
	DestinationCode string          `json:"destination_code"`
}

type PlaceRecord struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Website   string  `json:"website,omitempty"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type ResultKind string

const (
	ResultHotels  ResultKind = "hotels"
	ResultFlight  ResultKind = "flight"
	ResultShop    ResultKind = "shop"
	ResultLeisure ResultKind = "leisure"
	ResultText    ResultKind = "text"
)

// ToolResult is the output of one tool. Kind selects which field carries the
// payload.
type ToolResult struct {
	Kind   ResultKind    `json:"kind"`
	Hotels []HotelRecord `json:"hotels,omitempty"`
	Flight *FlightRecord `json:"flight,omitempty"`
	Place  *PlaceRecord  `json:"place,omitempty"`
	Text   string        `json:"text,omitempty"`
	// Subject names what Text is about, e.g. the destination.
	Subject string `json:"subject,omitempty"`
}

// Payload returns the populated field for serialization back to the model.
func (r ToolResult) Payload() any {
	switch r.Kind {
	case ResultHotels:
		if len(r.Hotels) == 1 {
			return r.Hotels[0]
		}
		return r.Hotels
	case ResultFlight:
		return r.Flight
	case ResultShop, ResultLeisure:
		return r.Place
	default:
		return r.Text
	}
}
