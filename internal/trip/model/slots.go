package model

// Slots is the typed view over a conversation's preferences. A nil field
// means the slot has not been collected yet.
type Slots struct {
	Origin            *string           `json:"origin,omitempty"`
	Destination       *string           `json:"destination,omitempty"`
	NumberOfTravelers *int              `json:"number_of_travelers,omitempty"`
	WeatherPreference *string           `json:"weather_preference,omitempty"`
	Activities        *string           `json:"activities,omitempty"`
	Budget            *string           `json:"budget,omitempty"`
	BudgetAllocation  *BudgetAllocation `json:"budget_allocation,omitempty"`
	ArrivalDate       *string           `json:"arrival_date,omitempty"`
	DepartureDate     *string           `json:"departure_date,omitempty"`
	DateFlexibility   *string           `json:"date_flexibility,omitempty"`
	Confirmed         *bool             `json:"confirmed,omitempty"`
}

// BudgetAllocation holds percentage shares of the total budget.
type BudgetAllocation struct {
	Accommodation float64 `json:"accommodation"`
	Flights       float64 `json:"flights"`
	Activities    float64 `json:"activities"`
}

var (
	WeatherPreferences = []string{"tropical", "temperate", "cold", "dry"}
	ActivityStyles     = []string{"passive", "active", "mixed"}
	DateFlexibilities  = []string{"flexible", "strict", "somewhat"}
)

// Get returns the value of a slot by its wire name, or nil when absent.
func (s Slots) Get(field string) any {
	switch field {
	case "origin":
		return deref(s.Origin)
	case "destination":
		return deref(s.Destination)
	case "number_of_travelers":
		return deref(s.NumberOfTravelers)
	case "weather_preference":
		return deref(s.WeatherPreference)
	case "activities":
		return deref(s.Activities)
	case "budget":
		return deref(s.Budget)
	case "budget_allocation":
		return deref(s.BudgetAllocation)
	case "arrival_date":
		return deref(s.ArrivalDate)
	case "departure_date":
		return deref(s.DepartureDate)
	case "date_flexibility":
		return deref(s.DateFlexibility)
	case "confirmed":
		return deref(s.Confirmed)
	}
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// StringValue returns the string behind p, or "" when p is nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
