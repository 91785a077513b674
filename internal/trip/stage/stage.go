package stage

import (
	"github.com/Chative-trip-planner/server/internal/trip/model"
)

type requirement struct {
	stage  model.Stage
	filled func(model.Slots) bool
}

// order is the policy: earlier slots gate later questions.
var order = []requirement{
	{model.StageNeedDestination, func(s model.Slots) bool { return s.Destination != nil }},
	{model.StageNeedOrigin, func(s model.Slots) bool { return s.Origin != nil }},
	{model.StageNeedTravelers, func(s model.Slots) bool { return s.NumberOfTravelers != nil }},
	{model.StageNeedActivities, func(s model.Slots) bool { return s.Activities != nil }},
	{model.StageNeedBudget, func(s model.Slots) bool { return s.Budget != nil }},
	{model.StageNeedBudgetAllocation, func(s model.Slots) bool { return s.BudgetAllocation != nil }},
	{model.StageNeedDates, func(s model.Slots) bool { return s.ArrivalDate != nil && s.DepartureDate != nil }},
	{model.StageNeedFlexibility, func(s model.Slots) bool { return s.DateFlexibility != nil }},
	// confirmed:false is a declined summary and keeps the question open.
	{model.StageNeedConfirmation, func(s model.Slots) bool { return s.Confirmed != nil && *s.Confirmed }},
}

// Select returns the stage of the first unfilled slot, or READY.
func Select(s model.Slots) model.Stage {
	for _, r := range order {
		if !r.filled(s) {
			return r.stage
		}
	}
	return model.StageReady
}

// Missing lists every unfilled stage in order.
func Missing(s model.Slots) []model.Stage {
	var out []model.Stage
	for _, r := range order {
		if !r.filled(s) {
			out = append(out, r.stage)
		}
	}
	return out
}

var guidance = map[model.Stage]string{
	model.StageNeedDestination:      "Ask where the user wants to travel.",
	model.StageNeedOrigin:           "Ask which city the user will depart from.",
	model.StageNeedTravelers:        "Ask how many people are travelling.",
	model.StageNeedActivities:       "Ask whether they prefer passive, active or mixed activities.",
	model.StageNeedBudget:           "Ask for the total trip budget.",
	model.StageNeedBudgetAllocation: "Ask how to split the budget across accommodation, flights and activities, in percent.",
	model.StageNeedDates:            "Ask for the arrival and departure dates.",
	model.StageNeedFlexibility:      "Ask whether the dates are flexible, strict or somewhat flexible.",
	model.StageNeedConfirmation:     "Summarise the collected trip details and ask the user to confirm them.",
	model.StageReady:                "All details are confirmed. Use the tools to search hotels and flights, then shops, leisure and activities.",
}

// Guidance is the one-line instruction rendered into the system prompt.
func Guidance(st model.Stage) string {
	return guidance[st]
}
