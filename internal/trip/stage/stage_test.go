package stage

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

func complete() model.Slots {
	return model.Slots{
		Destination:       lo.ToPtr("Paris"),
		Origin:            lo.ToPtr("New York"),
		NumberOfTravelers: lo.ToPtr(2),
		Activities:        lo.ToPtr("mixed"),
		Budget:            lo.ToPtr("3000"),
		BudgetAllocation:  &model.BudgetAllocation{Accommodation: 40, Flights: 40, Activities: 20},
		ArrivalDate:       lo.ToPtr("2026-06-01"),
		DepartureDate:     lo.ToPtr("2026-06-08"),
		DateFlexibility:   lo.ToPtr("strict"),
		Confirmed:         lo.ToPtr(true),
	}
}

func TestSelect_Empty(t *testing.T) {
	assert.Equal(t, model.StageNeedDestination, Select(model.Slots{}))
}

func TestSelect_Complete(t *testing.T) {
	assert.Equal(t, model.StageReady, Select(complete()))
	assert.Empty(t, Missing(complete()))
}

func TestSelect_DestinationAndOrigin(t *testing.T) {
	s := model.Slots{Destination: lo.ToPtr("Paris"), Origin: lo.ToPtr("New York")}
	assert.Equal(t, model.StageNeedTravelers, Select(s))
}

func TestSelect_SingleSlotToggled(t *testing.T) {
	tests := []struct {
		name  string
		clear func(*model.Slots)
		want  model.Stage
	}{
		{"destination", func(s *model.Slots) { s.Destination = nil }, model.StageNeedDestination},
		{"origin", func(s *model.Slots) { s.Origin = nil }, model.StageNeedOrigin},
		{"travelers", func(s *model.Slots) { s.NumberOfTravelers = nil }, model.StageNeedTravelers},
		{"activities", func(s *model.Slots) { s.Activities = nil }, model.StageNeedActivities},
		{"budget", func(s *model.Slots) { s.Budget = nil }, model.StageNeedBudget},
		{"budget allocation", func(s *model.Slots) { s.BudgetAllocation = nil }, model.StageNeedBudgetAllocation},
		{"arrival date", func(s *model.Slots) { s.ArrivalDate = nil }, model.StageNeedDates},
		{"departure date", func(s *model.Slots) { s.DepartureDate = nil }, model.StageNeedDates},
		{"flexibility", func(s *model.Slots) { s.DateFlexibility = nil }, model.StageNeedFlexibility},
		{"confirmation", func(s *model.Slots) { s.Confirmed = nil }, model.StageNeedConfirmation},
		{"confirmation declined", func(s *model.Slots) { s.Confirmed = lo.ToPtr(false) }, model.StageNeedConfirmation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := complete()
			tt.clear(&s)
			assert.Equal(t, tt.want, Select(s))
		})
	}
}

// A present but false confirmation is a declined summary, not a filled slot.
func TestSelect_DeclinedConfirmationIsNotReady(t *testing.T) {
	s := complete()
	s.Confirmed = lo.ToPtr(false)
	assert.Equal(t, model.StageNeedConfirmation, Select(s))

	s.Confirmed = lo.ToPtr(true)
	assert.Equal(t, model.StageReady, Select(s))
}

func TestSelect_EarlierSlotWins(t *testing.T) {
	s := complete()
	s.Origin = nil
	s.Budget = nil
	s.DateFlexibility = nil
	assert.Equal(t, model.StageNeedOrigin, Select(s))
	assert.Equal(t, []model.Stage{model.StageNeedOrigin, model.StageNeedBudget, model.StageNeedFlexibility}, Missing(s))
}

func TestGuidance_EveryStage(t *testing.T) {
	for _, st := range []model.Stage{
		model.StageNeedDestination, model.StageNeedOrigin, model.StageNeedTravelers,
		model.StageNeedActivities, model.StageNeedBudget, model.StageNeedBudgetAllocation,
		model.StageNeedDates, model.StageNeedFlexibility, model.StageNeedConfirmation, model.StageReady,
	} {
		assert.NotEmpty(t, Guidance(st), st)
	}
}
