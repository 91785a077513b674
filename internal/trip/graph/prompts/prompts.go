package prompts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/Chative-trip-planner/server/internal/trip/model"
	"github.com/Chative-trip-planner/server/internal/trip/slots"
	"github.com/Chative-trip-planner/server/internal/trip/stage"
)

//go:embed template/assistant_prompt.txt
var assistantSystemPrompt string

//go:embed template/summary_prompt.txt
var summaryPrompt string

// AssistantData is what the assistant system prompt is rendered from.
type AssistantData struct {
	Stage       model.Stage
	Preferences model.Slots
	Itinerary   model.Itinerary
	Now         time.Time
}

// RenderAssistantSystem renders the per-turn system prompt through the eino
// prompt component so prompt callbacks observe it.
func RenderAssistantSystem(ctx context.Context, data AssistantData) (string, error) {
	prefs, err := json.MarshalIndent(data.Preferences, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal preferences: %w", err)
	}
	itinerary, err := json.MarshalIndent(data.Itinerary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal itinerary: %w", err)
	}
	missing := lo.Map(stage.Missing(data.Preferences), func(s model.Stage, _ int) string { return s.String() })

	return render(ctx, assistantSystemPrompt, map[string]any{
		"Today":         data.Now.Format(slots.DateLayout),
		"Stage":         data.Stage.String(),
		"Guidance":      stage.Guidance(data.Stage),
		"Missing":       strings.Join(missing, ", "),
		"Preferences":   string(prefs),
		"Itinerary":     string(itinerary),
		"HotelTool":     model.ToolSearchHotels,
		"FlightTool":    model.ToolSearchFlights,
		"ShopTool":      model.ToolSearchShops,
		"LeisureTool":   model.ToolSearchLeisure,
		"RecommendTool": model.ToolRecommendActivities,
		"SentinelStart": slots.SentinelStart,
		"SentinelEnd":   slots.SentinelEnd,
	})
}

// RenderSummary renders the instruction for the post-tool reply. results
// holds one JSON document per tool call.
func RenderSummary(ctx context.Context, results []string) (string, error) {
	return render(ctx, summaryPrompt, map[string]any{
		"Results": strings.Join(results, "\n"),
	})
}

func render(ctx context.Context, tmpl string, vars map[string]any) (string, error) {
	tpl := prompt.FromMessages(schema.GoTemplate, schema.SystemMessage(tmpl))
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt render: empty result")
	}
	return msgs[0].Content, nil
}
