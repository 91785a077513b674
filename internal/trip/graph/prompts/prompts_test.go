package prompts

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

func TestRenderAssistantSystem(t *testing.T) {
	out, err := RenderAssistantSystem(context.Background(), AssistantData{
		Stage:       model.StageNeedOrigin,
		Preferences: model.Slots{Destination: lo.ToPtr("Rome")},
		Now:         time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Today is 2026-05-01.")
	assert.Contains(t, out, "Current stage: NEED_ORIGIN")
	assert.Contains(t, out, `"destination": "Rome"`)
	assert.Contains(t, out, "|||EXTRACT|||{\"origin\": null")
	assert.Contains(t, out, "search_hotels and search_flights")
	assert.NotContains(t, out, "{{")
}

func TestRenderSummary(t *testing.T) {
	out, err := RenderSummary(context.Background(), []string{`{"status":"success"}`, `{"status":"error"}`})
	require.NoError(t, err)
	assert.Contains(t, out, "{\"status\":\"success\"}\n{\"status\":\"error\"}")
}
