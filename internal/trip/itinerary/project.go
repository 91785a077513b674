package itinerary

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

const defaultActivityCategory = "leisure"

// Project folds the full suggestion set of a conversation into its
// itinerary. It holds no state of its own: equal inputs give equal outputs.
func Project(suggestions []model.Suggestion, prefs model.Slots) model.Itinerary {
	rows := slices.Clone(suggestions)
	slices.SortStableFunc(rows, func(a, b model.Suggestion) int { return cmp.Compare(a.Seq, b.Seq) })

	it := model.Itinerary{
		Stays:      []model.ItineraryItem{},
		Shops:      []model.ItineraryItem{},
		Activities: map[string][]model.ItineraryItem{},
	}
	origin := model.StringValue(prefs.Origin)
	destination := model.StringValue(prefs.Destination)

	for _, s := range rows {
		switch s.Type {
		case model.SuggestionHotel:
			it.Stays = append(it.Stays, itemOf(s))
		case model.SuggestionShop:
			it.Shops = append(it.Shops, itemOf(s))
		case model.SuggestionLeisure:
			category := lo.CoalesceOrEmpty(s.Location["category"], defaultActivityCategory)
			it.Activities[category] = append(it.Activities[category], itemOf(s))
		case model.SuggestionFlight:
			item := itemOf(s)
			switch Classify(s.Location["origin"], s.Location["destination"], origin, destination, it.JourneyTo != nil) {
			case DirectionOutbound:
				it.JourneyTo = &item
			case DirectionInbound:
				it.JourneyFrom = &item
			}
		}
	}
	return it
}

func itemOf(s model.Suggestion) model.ItineraryItem {
	item := model.ItineraryItem{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Currency:    s.Currency,
		BookingURL:  s.BookingURL,
		Location:    s.Location,
	}
	if s.Price.Valid {
		item.Price = lo.ToPtr(s.Price.Decimal.InexactFloat64())
	}
	return item
}
