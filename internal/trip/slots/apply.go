package slots

import (
	"time"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

// Apply merges every present field of ex into the conversation preferences.
// Absent fields never clear a known value. Destination, budget and arrival
// date are mirrored onto the denormalized conversation columns. It returns the
// names of the fields written.
func Apply(conv *model.Conversation, ex model.Slots, now time.Time) []string {
	var applied []string
	p := &conv.Preferences

	set := func(name string, present bool, write func()) {
		if present {
			write()
			applied = append(applied, name)
		}
	}

	set("origin", ex.Origin != nil, func() { p.Origin = ex.Origin })
	set("destination", ex.Destination != nil, func() {
		p.Destination = ex.Destination
		conv.Destination = ex.Destination
	})
	set("number_of_travelers", ex.NumberOfTravelers != nil, func() { p.NumberOfTravelers = ex.NumberOfTravelers })
	set("weather_preference", ex.WeatherPreference != nil, func() { p.WeatherPreference = ex.WeatherPreference })
	set("activities", ex.Activities != nil, func() { p.Activities = ex.Activities })
	set("budget", ex.Budget != nil, func() {
		p.Budget = ex.Budget
		conv.Budget = ex.Budget
	})
	set("budget_allocation", ex.BudgetAllocation != nil, func() { p.BudgetAllocation = ex.BudgetAllocation })
	set("arrival_date", ex.ArrivalDate != nil, func() {
		p.ArrivalDate = ex.ArrivalDate
		start := NormalizeDate(*ex.ArrivalDate, now)
		conv.StartDate = &start
	})
	set("departure_date", ex.DepartureDate != nil, func() { p.DepartureDate = ex.DepartureDate })
	set("date_flexibility", ex.DateFlexibility != nil, func() { p.DateFlexibility = ex.DateFlexibility })
	set("confirmed", ex.Confirmed != nil, func() { p.Confirmed = ex.Confirmed })

	return applied
}
