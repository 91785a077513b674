package nodes

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-trip-planner/server/internal/trip/itinerary"
	"github.com/Chative-trip-planner/server/internal/trip/model"
)

func TestAssistantModelPostHandler_FillsMissingIDs(t *testing.T) {
	state := &model.TurnState{}
	out := schema.AssistantMessage("", []schema.ToolCall{
		{Function: schema.FunctionCall{Name: model.ToolSearchHotels}},
		{ID: "provider-id", Function: schema.FunctionCall{Name: model.ToolSearchFlights}},
		{Function: schema.FunctionCall{Name: model.ToolSearchShops}},
	})
	out.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 1_000_000}}

	got, err := NewAssistantModelPostHandler("gemini-2.5-flash-lite")(context.Background(), out, state)
	require.NoError(t, err)

	assert.Equal(t, "call_1", got.ToolCalls[0].ID)
	assert.Equal(t, "provider-id", got.ToolCalls[1].ID)
	assert.Equal(t, "call_2", got.ToolCalls[2].ID)
	assert.Len(t, state.ToolCalls, 3)
	assert.InDelta(t, 0.10, state.TotalCostUSD, 1e-9)
}

func TestToolRouteCondition(t *testing.T) {
	cond := NewToolRouteCondition()

	next, err := cond(context.Background(), schema.AssistantMessage("hello", nil))
	require.NoError(t, err)
	assert.Equal(t, NodeFinalizer, next)

	next, err = cond(context.Background(), schema.AssistantMessage("", []schema.ToolCall{{ID: "call_1"}}))
	require.NoError(t, err)
	assert.Equal(t, NodeToolDispatcher, next)
}

func TestFallbackSummary(t *testing.T) {
	assert.Equal(t,
		"I couldn't complete those searches right now. Please try again in a moment.",
		FallbackSummary([]model.ToolReport{{Name: model.ToolSearchHotels, Success: false}}))

	assert.Equal(t,
		"Here is what I found:\n- Saved Hotel A to the itinerary.",
		FallbackSummary([]model.ToolReport{
			{Name: model.ToolSearchHotels, Success: false},
			{Name: model.ToolSearchFlights, Success: true, Summary: "Saved Hotel A to the itinerary."},
		}))
}

func TestDescribeReceipt(t *testing.T) {
	tests := []struct {
		name    string
		receipt itinerary.Receipt
		want    string
	}{
		{"single", itinerary.Receipt{Saved: 1, Titles: []string{"Central Market"}}, "Saved Central Market to the itinerary."},
		{"several", itinerary.Receipt{Saved: 2, Titles: []string{"A", "B"}}, "Saved 2 options to the itinerary: A, B."},
		{"duplicate", itinerary.Receipt{Skipped: "duplicate", Titles: []string{"Central Market"}}, "Central Market is already in the itinerary."},
		{"skipped", itinerary.Receipt{Skipped: "missing_title"}, "Nothing was saved to the itinerary."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeReceipt(tt.receipt))
		})
	}
}
