package recommend

import (
	"context"
	"fmt"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	errx "github.com/Chative-trip-planner/server/internal/core/error"
	"github.com/Chative-trip-planner/server/internal/trip/model"
	logx "github.com/Chative-trip-planner/server/pkg/logger"
)

const instruction = "You are a travel expert. Create a day-by-day itinerary for a trip to %s with a focus on %s activities. " +
	"Be creative and engaging. Start each suggestion with a verb such as Visit, Explore or Dine at followed by the place name."

// Writer produces activity itineraries with a tool-free chat model and adds
// map links to the places it mentions.
type Writer struct {
	chat      einomodel.BaseChatModel
	modelName string
}

func NewWriter(chat einomodel.BaseChatModel, modelName string) *Writer {
	return &Writer{chat: chat, modelName: modelName}
}

func (w *Writer) Recommend(ctx context.Context, destination, activities string) (string, error) {
	if strings.TrimSpace(activities) == "" {
		activities = "mixed"
	}

	ctx = einocb.ReuseHandlers(ctx, &einocb.RunInfo{
		Name:      "ActivityRecommender",
		Type:      "Gemini",
		Component: components.ComponentOfChatModel,
	})
	resp, err := w.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(instruction, destination, activities)),
		schema.UserMessage(fmt.Sprintf("Give me an itinerary for %s.", destination)),
	})
	if err != nil {
		return "", errx.WrapModel(fmt.Errorf("generate itinerary: %w", err))
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("itinerary for %s: %w", destination, model.ErrNoResults)
	}

	if resp.ResponseMeta != nil {
		u := model.CostOf(w.modelName, resp.ResponseMeta.Usage)
		logx.Debug().
			Str("model", u.Model).
			Int("prompt_tokens", u.PromptTokens).
			Int("completion_tokens", u.CompletionTokens).
			Float64("cost_usd", u.TotalUSD()).
			Msg("recommendation usage")
	}
	return AddMapLinks(resp.Content, destination), nil
}
