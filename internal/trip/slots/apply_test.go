package slots

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

var now = time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)

func TestApply_NullNeverOverwrites(t *testing.T) {
	conv := &model.Conversation{Preferences: model.Slots{Destination: lo.ToPtr("Rome")}}

	_, ex, err := ParseExtraction(`|||EXTRACT|||{"destination": null, "budget": "2000"}|||END|||`)
	require.NoError(t, err)

	applied := Apply(conv, ex, now)
	assert.Equal(t, []string{"budget"}, applied)
	assert.Equal(t, "Rome", *conv.Preferences.Destination)
	assert.Equal(t, "2000", *conv.Preferences.Budget)
	require.NotNil(t, conv.Budget)
	assert.Equal(t, "2000", *conv.Budget)
	assert.Nil(t, conv.Destination, "destination column only follows writes")
}

func TestApply_MirrorsDenormalizedColumns(t *testing.T) {
	conv := &model.Conversation{}
	Apply(conv, model.Slots{
		Destination: lo.ToPtr("Lisbon"),
		ArrivalDate: lo.ToPtr("2026-05-10"),
	}, now)

	require.NotNil(t, conv.Destination)
	assert.Equal(t, "Lisbon", *conv.Destination)
	require.NotNil(t, conv.StartDate)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), *conv.StartDate)
	assert.Equal(t, "2026-05-10", *conv.Preferences.ArrivalDate)
}

func TestApply_UnparseableArrivalFallsBack(t *testing.T) {
	conv := &model.Conversation{}
	Apply(conv, model.Slots{ArrivalDate: lo.ToPtr("next spring")}, now)

	require.NotNil(t, conv.StartDate)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *conv.StartDate)
	assert.Equal(t, "next spring", *conv.Preferences.ArrivalDate)
}

func TestApply_Empty(t *testing.T) {
	conv := &model.Conversation{Preferences: model.Slots{Origin: lo.ToPtr("Oslo")}}
	assert.Empty(t, Apply(conv, model.Slots{}, now))
	assert.Equal(t, "Oslo", *conv.Preferences.Origin)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), NormalizeDate("2025-12-24", now))
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), NormalizeDate("24/12/2025", now))
}
