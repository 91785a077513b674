package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-trip-planner/server/internal/trip/conversations"
	"github.com/Chative-trip-planner/server/internal/trip/itinerary"
	"github.com/Chative-trip-planner/server/internal/trip/model"
)

// turnSink persists tool results for one turn. Search results go through the
// reconciler; free-form text is sent to the user as its own assistant message.
type turnSink struct {
	mm          *conversations.MessagesManager
	turn        *model.TurnContext
	reconciler  *itinerary.Reconciler
	attachments []string
}

func newTurnSink(mm *conversations.MessagesManager, turn *model.TurnContext) *turnSink {
	return &turnSink{
		mm:         mm,
		turn:       turn,
		reconciler: itinerary.NewReconciler(turn.Tx, turn.Conversation),
	}
}

func (s *turnSink) Ingest(ctx context.Context, call schema.ToolCall, res model.ToolResult) (string, error) {
	if res.Kind == model.ResultText {
		if err := s.mm.SaveResponse(ctx, s.turn.Tx, s.turn.Conversation.ID, res.Text); err != nil {
			return "", err
		}
		s.attachments = append(s.attachments, res.Text)
		return fmt.Sprintf("Activity itinerary for %s was generated and sent to the user.", res.Subject), nil
	}

	receipt, err := s.reconciler.Ingest(ctx, res)
	if err != nil {
		return "", err
	}
	return describeReceipt(receipt), nil
}

func describeReceipt(r itinerary.Receipt) string {
	switch {
	case r.Skipped == "duplicate":
		return fmt.Sprintf("%s is already in the itinerary.", strings.Join(r.Titles, ", "))
	case r.Skipped != "":
		return "Nothing was saved to the itinerary."
	case r.Saved == 1:
		return fmt.Sprintf("Saved %s to the itinerary.", r.Titles[0])
	default:
		return fmt.Sprintf("Saved %d options to the itinerary: %s.", r.Saved, strings.Join(r.Titles, ", "))
	}
}
