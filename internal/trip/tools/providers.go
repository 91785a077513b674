package tools

import (
	"context"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

// HotelSearcher returns up to three hotels for a stay.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, q model.HotelQuery) ([]model.HotelRecord, error)
}

type FlightSearcher interface {
	SearchFlights(ctx context.Context, q model.FlightQuery) (*model.FlightRecord, error)
}

type PlaceSearcher interface {
	SearchShops(ctx context.Context, q model.PlaceQuery) (*model.PlaceRecord, error)
	SearchLeisure(ctx context.Context, q model.PlaceQuery) (*model.PlaceRecord, error)
}

// Recommender writes a free-form activity itinerary.
type Recommender interface {
	Recommend(ctx context.Context, destination, activities string) (string, error)
}

// Providers groups the search backends. A nil provider leaves its tool in the
// catalogue but every call fails with ErrProviderUnavailable.
type Providers struct {
	Hotels      HotelSearcher
	Flights     FlightSearcher
	Places      PlaceSearcher
	Recommender Recommender
}
