package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	HistoryMaxTurns int           `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"20"`
	TurnTimeout     time.Duration `envconfig:"CONVERSATION_TURN_TIMEOUT" default:"90s"`
	LockTTL         time.Duration `envconfig:"CONVERSATION_LOCK_TTL" default:"2m"`
	LockWait        time.Duration `envconfig:"CONVERSATION_LOCK_WAIT" default:"30s"`
}

type ToolConfig struct {
	CallTimeout time.Duration `envconfig:"TOOL_CALL_TIMEOUT" default:"20s"`
	Parallelism int           `envconfig:"TOOL_PARALLELISM" default:"4"`
	MaxCalls    int           `envconfig:"TOOL_MAX_CALLS" default:"6"`
}

type AssistantModelConfig struct {
	Model       string  `envconfig:"ASSISTANT_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"ASSISTANT_MAX_TOKENS" default:"1200"`
	Temperature float32 `envconfig:"ASSISTANT_TEMPERATURE" default:"0.7"`
}

type SummaryModelConfig struct {
	Model       string  `envconfig:"SUMMARY_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"SUMMARY_MAX_TOKENS" default:"1200"`
	Temperature float32 `envconfig:"SUMMARY_TEMPERATURE" default:"0.4"`
}

type RecommendModelConfig struct {
	Model       string  `envconfig:"RECOMMEND_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"RECOMMEND_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RECOMMEND_TEMPERATURE" default:"0.9"`
}
