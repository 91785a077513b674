package nodes

import (
	"context"
	"fmt"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/Chative-trip-planner/server/internal/trip/conversations"
	"github.com/Chative-trip-planner/server/internal/trip/graph/prompts"
	"github.com/Chative-trip-planner/server/internal/trip/itinerary"
	"github.com/Chative-trip-planner/server/internal/trip/model"
	"github.com/Chative-trip-planner/server/internal/trip/slots"
	"github.com/Chative-trip-planner/server/internal/trip/stage"
	"github.com/Chative-trip-planner/server/internal/trip/tools"
	logx "github.com/Chative-trip-planner/server/pkg/logger"
)

const emptyReplyFallback = "Sorry, I didn't catch that. Could you tell me a bit more about your trip?"

// NewContextLoaderPreHandler seeds the turn state from the graph input.
func NewContextLoaderPreHandler() func(context.Context, *model.TurnContext, *model.TurnState) (*model.TurnContext, error) {
	return func(ctx context.Context, in *model.TurnContext, s *model.TurnState) (*model.TurnContext, error) {
		if in == nil || in.Tx == nil || in.Conversation == nil {
			return nil, fmt.Errorf("turn context is incomplete")
		}
		s.Turn = in
		s.ToolCallIDSeq = 0
		s.ToolCalls = nil
		s.Extracted = model.Slots{}
		s.Reports = nil
		s.Attachments = nil
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewContextLoaderNode saves the user message and builds the assistant input:
// system prompt with stage, preferences and itinerary, then the history.
func NewContextLoaderNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.TurnContext) ([]*schema.Message, error) {
		conv := turn.Conversation
		if err := mm.SaveUserMessage(ctx, turn.Tx, conv.ID, turn.Input.Query); err != nil {
			return nil, err
		}

		history, err := mm.History(ctx, turn.Tx, conv.ID)
		if err != nil {
			return nil, err
		}

		itin, err := itinerary.NewReconciler(turn.Tx, conv).Itinerary(ctx)
		if err != nil {
			return nil, fmt.Errorf("load itinerary: %w", err)
		}

		st := stage.Select(conv.Preferences)
		systemPrompt, err := prompts.RenderAssistantSystem(ctx, prompts.AssistantData{
			Stage:       st,
			Preferences: conv.Preferences,
			Itinerary:   itin,
			Now:         turn.Now,
		})
		if err != nil {
			return nil, fmt.Errorf("render assistant system prompt: %w", err)
		}

		messages := mm.BuildResponseContext(systemPrompt, history)
		err = compose.ProcessState(ctx, func(_ context.Context, s *model.TurnState) error {
			s.Stage = st
			s.History = messages
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().
			Str("conversation_id", conv.ID).
			Str("stage", st.String()).
			Int("history", len(history)).
			Msg("Context loaded")
		return messages, nil
	})
}

// NewAssistantModelPostHandler fills missing tool call ids and accounts for
// the call's cost.
func NewAssistantModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.TurnState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, s *model.TurnState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("assistant model returned no message")
		}
		for i := range out.ToolCalls {
			if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
				s.ToolCallIDSeq++
				out.ToolCalls[i].ID = fmt.Sprintf("call_%d", s.ToolCallIDSeq)
			}
		}
		accountUsage(s, NodeAssistantModel, modelName, out)
		s.ToolCalls = out.ToolCalls

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Msg("AI response ready")
		}
		return out, nil
	}
}

// NewToolRouteCondition sends tool requests to the dispatcher and plain
// replies straight to the finalizer.
func NewToolRouteCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, in *schema.Message) (string, error) {
		if in != nil && len(in.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(in.ToolCalls)).Msg("Routing to ToolDispatcher")
			return NodeToolDispatcher, nil
		}
		return NodeFinalizer, nil
	}
}

// NewToolDispatcherNode runs the requested batch once and returns the input
// for the summary model. Tool failures become error results; only a
// persistence failure fails the node.
func NewToolDispatcherNode(mm *conversations.MessagesManager, dispatcher *tools.Dispatcher) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *schema.Message) ([]*schema.Message, error) {
		var (
			turn    *model.TurnContext
			history []*schema.Message
		)
		_ = compose.ProcessState(ctx, func(_ context.Context, s *model.TurnState) error {
			turn = s.Turn
			history = s.History
			return nil
		})
		if turn == nil {
			return nil, fmt.Errorf("missing turn in state")
		}

		content, extracted, err := slots.ParseExtraction(in.Content)
		if err != nil {
			logx.Warn().Err(err).Str("conversation_id", turn.Conversation.ID).Msg("Discarding malformed extraction payload")
		}

		sink := newTurnSink(mm, turn)
		outcomes, err := dispatcher.Dispatch(ctx, in.ToolCalls, sink)
		if err != nil {
			return nil, err
		}

		reports := lo.Map(outcomes, func(o tools.Outcome, _ int) model.ToolReport {
			return model.ToolReport{
				CallID:  o.Call.ID,
				Name:    o.Call.Function.Name,
				Success: o.Status == tools.StatusSuccess,
				Summary: o.Note,
			}
		})
		results := lo.Map(outcomes, func(o tools.Outcome, _ int) string {
			return fmt.Sprintf("%s (%s): %s", o.Call.Function.Name, o.Call.ID, o.Message.Content)
		})

		err = compose.ProcessState(ctx, func(_ context.Context, s *model.TurnState) error {
			s.Extracted = extracted
			s.Reports = reports
			s.Attachments = append(s.Attachments, sink.attachments...)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		instruction, err := prompts.RenderSummary(ctx, results)
		if err != nil {
			return nil, fmt.Errorf("render summary prompt: %w", err)
		}

		messages := make([]*schema.Message, 0, len(history)+2)
		messages = append(messages, history...)
		if content != "" {
			messages = append(messages, schema.AssistantMessage(content, nil))
		}
		messages = append(messages, schema.SystemMessage(instruction))

		logx.Debug().
			Str("conversation_id", turn.Conversation.ID).
			Int("succeeded", lo.CountBy(reports, func(r model.ToolReport) bool { return r.Success })).
			Int("requested", len(reports)).
			Msg("Tool batch finished")
		return messages, nil
	})
}

// NewSummaryNode asks the tool-free model for the final reply. When that call
// fails the turn still completes with a reply composed from the tool reports.
func NewSummaryNode(chat einomodel.BaseChatModel, modelName string) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in []*schema.Message) (*schema.Message, error) {
		modelCtx := einocb.ReuseHandlers(ctx, &einocb.RunInfo{
			Name:      NodeSummaryModel,
			Type:      "Gemini",
			Component: components.ComponentOfChatModel,
		})
		out, err := chat.Generate(modelCtx, in)

		var reply *schema.Message
		_ = compose.ProcessState(ctx, func(_ context.Context, s *model.TurnState) error {
			if err == nil && out != nil && strings.TrimSpace(out.Content) != "" {
				accountUsage(s, NodeSummaryModel, modelName, out)
				reply = out
				return nil
			}
			logx.Warn().Err(err).Int("tool_count", len(s.Reports)).Msg("Summary model failed, composing reply locally")
			reply = schema.AssistantMessage(FallbackSummary(s.Reports), nil)
			return nil
		})
		if reply == nil {
			return nil, fmt.Errorf("failed to access state")
		}
		return reply, nil
	})
}

// FallbackSummary lists what the successful tool calls produced.
func FallbackSummary(reports []model.ToolReport) string {
	ok := lo.Filter(reports, func(r model.ToolReport, _ int) bool { return r.Success && r.Summary != "" })
	if len(ok) == 0 {
		return "I couldn't complete those searches right now. Please try again in a moment."
	}
	var b strings.Builder
	b.WriteString("Here is what I found:")
	for _, r := range ok {
		b.WriteString("\n- ")
		b.WriteString(r.Summary)
	}
	return b.String()
}

// NewFinalizerNode applies the slot extraction, stores the reply and the
// updated conversation, and assembles the turn output.
func NewFinalizerNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *schema.Message) (*model.TurnOutput, error) {
		var (
			turn        *model.TurnContext
			pending     model.Slots
			cost        float64
			attachments []string
		)
		_ = compose.ProcessState(ctx, func(_ context.Context, s *model.TurnState) error {
			turn = s.Turn
			pending = s.Extracted
			cost = s.TotalCostUSD
			attachments = s.Attachments
			return nil
		})
		if turn == nil {
			return nil, fmt.Errorf("missing turn in state")
		}
		conv := turn.Conversation

		reply, extracted, err := slots.ParseExtraction(in.Content)
		if err != nil {
			logx.Warn().Err(err).Str("conversation_id", conv.ID).Msg("Discarding malformed extraction payload")
		}
		applied := slots.Apply(conv, pending, turn.Now)
		applied = lo.Uniq(append(applied, slots.Apply(conv, extracted, turn.Now)...))
		if reply == "" {
			reply = emptyReplyFallback
		}

		if err := mm.SaveResponse(ctx, turn.Tx, conv.ID, reply); err != nil {
			return nil, err
		}
		conv.UpdatedAt = turn.Now
		if err := turn.Tx.UpdateConversation(ctx, conv); err != nil {
			return nil, fmt.Errorf("update conversation: %w", err)
		}

		itin, err := itinerary.NewReconciler(turn.Tx, conv).Itinerary(ctx)
		if err != nil {
			return nil, fmt.Errorf("load itinerary: %w", err)
		}

		st := stage.Select(conv.Preferences)
		logx.Debug().
			Str("conversation_id", conv.ID).
			Strs("slots_applied", applied).
			Str("stage", st.String()).
			Float64("total_cost_usd", cost).
			Msg("Turn finalized")

		return &model.TurnOutput{
			Reply:       reply,
			Stage:       st,
			Itinerary:   &itin,
			CostUSD:     cost,
			Attachments: attachments,
		}, nil
	})
}

func accountUsage(s *model.TurnState, node, modelName string, out *schema.Message) {
	if out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	u := model.CostOf(modelName, out.ResponseMeta.Usage)
	s.TotalCostUSD += u.TotalUSD()

	var conversationID string
	if s.Turn != nil && s.Turn.Conversation != nil {
		conversationID = s.Turn.Conversation.ID
	}
	logx.Debug().
		Str("conversation_id", conversationID).
		Str("node", node).
		Str("model", modelName).
		Int("prompt_tokens", u.PromptTokens).
		Int("completion_tokens", u.CompletionTokens).
		Float64("input_cost_usd", u.InputCostUSD).
		Float64("output_cost_usd", u.OutputCostUSD).
		Float64("total_cost_usd", s.TotalCostUSD).
		Msg("LLM usage")
}
