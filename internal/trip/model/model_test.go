package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestCostOf(t *testing.T) {
	u := CostOf("gemini-2.5-flash", &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 200_000})
	assert.InDelta(t, 0.30, u.InputCostUSD, 1e-9)
	assert.InDelta(t, 0.50, u.OutputCostUSD, 1e-9)
	assert.InDelta(t, 0.80, u.TotalUSD(), 1e-9)

	assert.Zero(t, CostOf("unknown-model", &schema.TokenUsage{PromptTokens: 10}).TotalUSD())
	assert.Equal(t, Usage{Model: "gemini-2.5-pro"}, CostOf("gemini-2.5-pro", nil))
}

func TestSlotsGet(t *testing.T) {
	s := Slots{Destination: lo.ToPtr("Rome"), Confirmed: lo.ToPtr(false)}

	assert.Equal(t, "Rome", s.Get("destination"))
	assert.Equal(t, false, s.Get("confirmed"))
	assert.Nil(t, s.Get("origin"))
	assert.Nil(t, s.Get("shoe_size"))
}

func TestToolResultPayload(t *testing.T) {
	one := ToolResult{Kind: ResultHotels, Hotels: []HotelRecord{{HotelName: "A"}}}
	assert.Equal(t, HotelRecord{HotelName: "A"}, one.Payload())

	text := ToolResult{Kind: ResultText, Text: "plan"}
	assert.Equal(t, "plan", text.Payload())
}
