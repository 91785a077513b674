package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

// ===================================
// Tool inputs
// ===================================

type HotelSearchInput struct {
	City          string `json:"city"`
	ArrivalDate   string `json:"arrival_date"`
	DepartureDate string `json:"departure_date"`
	PriceMax      int    `json:"price_max"`
	Adults        int    `json:"adults"`
}

type FlightSearchInput struct {
	OriginCity      string `json:"origin_city"`
	DestinationCity string `json:"destination_city"`
	DepartureDate   string `json:"departure_date"`
	Adults          int    `json:"adults"`
}

type PlaceSearchInput struct {
	City       string   `json:"city"`
	Categories []string `json:"categories,omitempty"`
}

type ActivityInput struct {
	Destination string `json:"destination"`
	Activities  string `json:"activities"`
}

// Registry maps tool names to tools. It is built once at startup.
type Registry map[string]tool.InvokableTool

// catalogueOrder is the order tools are bound to the model.
var catalogueOrder = []string{
	model.ToolSearchHotels,
	model.ToolSearchFlights,
	model.ToolSearchShops,
	model.ToolSearchLeisure,
	model.ToolRecommendActivities,
}

// NewRegistry builds the catalogue of trip search tools over the given
// providers.
func NewRegistry(p Providers) Registry {
	return Registry{
		model.ToolSearchHotels:        createSearchHotelsTool(p.Hotels),
		model.ToolSearchFlights:       createSearchFlightsTool(p.Flights),
		model.ToolSearchShops:         createSearchPlacesTool(model.ToolSearchShops, model.ResultShop, p.Places),
		model.ToolSearchLeisure:       createSearchPlacesTool(model.ToolSearchLeisure, model.ResultLeisure, p.Places),
		model.ToolRecommendActivities: createRecommendActivitiesTool(p.Recommender),
	}
}

// ToolInfos returns the catalogue in a stable order for model binding.
func (r Registry) ToolInfos(ctx context.Context) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(r))
	for _, name := range catalogueOrder {
		t, ok := r[name]
		if !ok {
			continue
		}
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool %s info: %w", name, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func unavailable(name string) error {
	return fmt.Errorf("%s: %w", name, model.ErrProviderUnavailable)
}

// marshalResult keeps the tool output in the shape the dispatcher decodes.
func marshalResult(_ context.Context, output any) (string, error) {
	b, err := json.Marshal(output)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ===================================
// Hotels
// ===================================

func decodeHotelArgs(_ context.Context, arguments string) (any, error) {
	a, err := parseArgs(model.ToolSearchHotels, arguments)
	if err != nil {
		return nil, err
	}
	return &HotelSearchInput{
		City:          a.str("city"),
		ArrivalDate:   a.str("arrival_date"),
		DepartureDate: a.str("departure_date"),
		PriceMax:      a.intOr("price_max", defaultPriceMax, 1, 1_000_000),
		Adults:        a.intOr("adults", defaultAdults, 1, maxAdults),
	}, nil
}

func createSearchHotelsTool(p HotelSearcher) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: model.ToolSearchHotels,
			Desc: "Searches Booking.com for hotels in a city for a date range and maximum price. Returns up to three hotels.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"city":           {Type: schema.String, Desc: "Destination city, e.g. 'Paris'", Required: true},
				"arrival_date":   {Type: schema.String, Desc: "Check-in date (YYYY-MM-DD)", Required: true},
				"departure_date": {Type: schema.String, Desc: "Check-out date (YYYY-MM-DD)", Required: true},
				"price_max":      {Type: schema.Number, Desc: "Maximum price for the whole stay", Required: true},
				"adults":         {Type: schema.Integer, Desc: "Number of adults", Required: true},
			}),
		},
		func(ctx context.Context, in *HotelSearchInput) (*model.ToolResult, error) {
			if p == nil {
				return nil, unavailable(model.ToolSearchHotels)
			}
			if in.City == "" {
				return nil, fmt.Errorf("city is required")
			}
			hotels, err := p.SearchHotels(ctx, model.HotelQuery{
				City:          in.City,
				ArrivalDate:   in.ArrivalDate,
				DepartureDate: in.DepartureDate,
				PriceMax:      in.PriceMax,
				Adults:        in.Adults,
			})
			if err != nil {
				return nil, err
			}
			if len(hotels) == 0 {
				return nil, model.ErrNoResults
			}
			return &model.ToolResult{Kind: model.ResultHotels, Hotels: hotels}, nil
		},
		utils.WithUnmarshalArguments(decodeHotelArgs),
		utils.WithMarshalOutput(marshalResult),
	)
}

// ===================================
// Flights
// ===================================

func decodeFlightArgs(_ context.Context, arguments string) (any, error) {
	a, err := parseArgs(model.ToolSearchFlights, arguments)
	if err != nil {
		return nil, err
	}
	return &FlightSearchInput{
		OriginCity:      a.str("origin_city"),
		DestinationCity: a.str("destination_city"),
		DepartureDate:   a.str("departure_date"),
		Adults:          a.intOr("adults", defaultAdults, 1, maxAdults),
	}, nil
}

func createSearchFlightsTool(p FlightSearcher) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: model.ToolSearchFlights,
			Desc: "Searches for the best flight from an origin city to a destination city on a date.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"origin_city":      {Type: schema.String, Desc: "Departure city, e.g. 'New York'", Required: true},
				"destination_city": {Type: schema.String, Desc: "Arrival city, e.g. 'London'", Required: true},
				"departure_date":   {Type: schema.String, Desc: "Departure date (YYYY-MM-DD)", Required: true},
				"adults":           {Type: schema.Integer, Desc: "Number of adults", Required: true},
			}),
		},
		func(ctx context.Context, in *FlightSearchInput) (*model.ToolResult, error) {
			if p == nil {
				return nil, unavailable(model.ToolSearchFlights)
			}
			if in.OriginCity == "" {
				return nil, fmt.Errorf("origin_city is required")
			}
			if in.DestinationCity == "" {
				return nil, fmt.Errorf("destination_city is required")
			}
			flight, err := p.SearchFlights(ctx, model.FlightQuery{
				OriginCity:      in.OriginCity,
				DestinationCity: in.DestinationCity,
				DepartureDate:   in.DepartureDate,
				Adults:          in.Adults,
			})
			if err != nil {
				return nil, err
			}
			if flight == nil {
				return nil, model.ErrNoResults
			}
			return &model.ToolResult{Kind: model.ResultFlight, Flight: flight}, nil
		},
		utils.WithUnmarshalArguments(decodeFlightArgs),
		utils.WithMarshalOutput(marshalResult),
	)
}

// ===================================
// Shops and leisure
// ===================================

func decodePlaceArgs(name string) utils.UnmarshalArguments {
	return func(_ context.Context, arguments string) (any, error) {
		a, err := parseArgs(name, arguments)
		if err != nil {
			return nil, err
		}
		return &PlaceSearchInput{City: a.str("city"), Categories: a.list("categories")}, nil
	}
}

func createSearchPlacesTool(name string, kind model.ResultKind, p PlaceSearcher) tool.InvokableTool {
	noun := "shops and markets"
	if kind == model.ResultLeisure {
		noun = "leisure spots such as parks, spas and attractions"
	}
	return utils.NewTool(
		&schema.ToolInfo{
			Name: name,
			Desc: fmt.Sprintf("Finds %s in a city. Returns the best match.", noun),
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"city": {Type: schema.String, Desc: "City to search in", Required: true},
				"categories": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc:     "Place categories, e.g. 'commercial.marketplace' or 'leisure.park'",
				},
			}),
		},
		func(ctx context.Context, in *PlaceSearchInput) (*model.ToolResult, error) {
			if p == nil {
				return nil, unavailable(name)
			}
			if in.City == "" {
				return nil, fmt.Errorf("city is required")
			}
			q := model.PlaceQuery{City: in.City, Categories: in.Categories}

			var (
				place *model.PlaceRecord
				err   error
			)
			if kind == model.ResultLeisure {
				place, err = p.SearchLeisure(ctx, q)
			} else {
				place, err = p.SearchShops(ctx, q)
			}
			if err != nil {
				return nil, err
			}
			if place == nil {
				return nil, model.ErrNoResults
			}
			return &model.ToolResult{Kind: kind, Place: place}, nil
		},
		utils.WithUnmarshalArguments(decodePlaceArgs(name)),
		utils.WithMarshalOutput(marshalResult),
	)
}

// ===================================
// Activity recommendations
// ===================================

func decodeActivityArgs(_ context.Context, arguments string) (any, error) {
	a, err := parseArgs(model.ToolRecommendActivities, arguments)
	if err != nil {
		return nil, err
	}
	return &ActivityInput{Destination: a.str("destination"), Activities: a.str("activities")}, nil
}

func createRecommendActivitiesTool(p Recommender) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: model.ToolRecommendActivities,
			Desc: "Writes a day-by-day activity and restaurant itinerary for a destination and sends it to the user directly.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"destination": {Type: schema.String, Desc: "City for the recommendations, e.g. 'Rome'", Required: true},
				"activities":  {Type: schema.String, Desc: "Activity preference, e.g. 'relaxing', 'adventurous', 'mixed'", Required: true},
			}),
		},
		func(ctx context.Context, in *ActivityInput) (*model.ToolResult, error) {
			if p == nil {
				return nil, unavailable(model.ToolRecommendActivities)
			}
			if in.Destination == "" {
				return nil, fmt.Errorf("destination is required")
			}
			text, err := p.Recommend(ctx, in.Destination, in.Activities)
			if err != nil {
				return nil, err
			}
			return &model.ToolResult{Kind: model.ResultText, Text: text, Subject: in.Destination}, nil
		},
		utils.WithUnmarshalArguments(decodeActivityArgs),
		utils.WithMarshalOutput(marshalResult),
	)
}
