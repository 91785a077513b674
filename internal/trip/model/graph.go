package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// TurnInput is one user message addressed to a conversation.
type TurnInput struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Query          string `json:"query"`
}

// TurnOutput is what the caller shows the user after a turn.
type TurnOutput struct {
	Reply     string     `json:"reply"`
	Stage     Stage      `json:"stage"`
	Itinerary *Itinerary `json:"itinerary"`
	CostUSD   float64    `json:"cost_usd"`
	// Attachments are assistant messages a tool sent directly during the
	// turn, such as an activity itinerary.
	Attachments []string `json:"attachments,omitempty"`
}

// TurnContext is the graph input: the request plus the write scope the
// runner opened for it.
type TurnContext struct {
	Input        TurnInput
	Tx           Tx
	Conversation *Conversation
	Now          time.Time
}

// TurnState is registered as graph local state. It is read and written only
// inside state handlers and compose.ProcessState.
type TurnState struct {
	Turn          *TurnContext
	History       []*schema.Message
	Stage         Stage
	ToolCallIDSeq int
	ToolCalls     []schema.ToolCall
	// Extracted holds slots from an assistant reply that also requested
	// tools. The finalizer applies them before the summary's own extraction.
	Extracted     Slots
	Reports       []ToolReport
	Attachments   []string
	TotalCostUSD  float64
}

// ToolReport is the outcome of one tool invocation as kept for the summary
// fallback.
type ToolReport struct {
	CallID  string
	Name    string
	Success bool
	Summary string
}
