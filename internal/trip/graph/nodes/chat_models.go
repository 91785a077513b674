package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/Chative-trip-planner/server/internal/trip/model"
	logx "github.com/Chative-trip-planner/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey          string
	BaseURL         string
	AssistantConfig *model.AssistantModelConfig
	SummaryConfig   *model.SummaryModelConfig
	RecommendConfig *model.RecommendModelConfig
}

// ChatModels holds the three models a turn may call. Only Assistant has
// tools bound.
type ChatModels struct {
	Assistant          einomodel.BaseChatModel
	Summary            einomodel.BaseChatModel
	Recommend          einomodel.BaseChatModel
	AssistantModelName string
	SummaryModelName   string
	RecommendModelName string
}

// NewChatModels creates the Gemini chat models and binds tools to the
// assistant model.
func NewChatModels(ctx context.Context, config ChatModelConfig, tools []*schema.ToolInfo) (*ChatModels, error) {
	if config.AssistantConfig == nil || config.SummaryConfig == nil || config.RecommendConfig == nil {
		return nil, fmt.Errorf("chat model config is incomplete")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	assistant, err := newGeminiModel(ctx, client, config.AssistantConfig.Model, config.AssistantConfig.Temperature, config.AssistantConfig.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating assistant model: %w", err)
	}
	if err := assistant.BindTools(tools); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}
	logx.Debug().Int("tool_count", len(tools)).Msg("Successfully bound tools to assistant model")

	summary, err := newGeminiModel(ctx, client, config.SummaryConfig.Model, config.SummaryConfig.Temperature, config.SummaryConfig.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating summary model: %w", err)
	}

	recommend, err := newGeminiModel(ctx, client, config.RecommendConfig.Model, config.RecommendConfig.Temperature, config.RecommendConfig.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating recommend model: %w", err)
	}

	return &ChatModels{
		Assistant:          assistant,
		Summary:            summary,
		Recommend:          recommend,
		AssistantModelName: config.AssistantConfig.Model,
		SummaryModelName:   config.SummaryConfig.Model,
		RecommendModelName: config.RecommendConfig.Model,
	}, nil
}

func newGeminiModel(ctx context.Context, client *genai.Client, name string, temperature float32, maxTokens int) (*gemini.ChatModel, error) {
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       name,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Str("model", name).Msg("Error creating Gemini chat model")
		return nil, err
	}
	return cm, nil
}
