package conversations

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

// MessagesManager reads and writes the message log of a conversation inside
// the turn's transaction and converts it to model messages.
type MessagesManager struct {
	maxTurns int
}

func NewMessagesManager(config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{maxTurns: config.HistoryMaxTurns}
}

func (mm *MessagesManager) SaveUserMessage(ctx context.Context, tx model.Tx, conversationID, query string) error {
	return mm.save(ctx, tx, conversationID, model.RoleUser, query)
}

func (mm *MessagesManager) SaveResponse(ctx context.Context, tx model.Tx, conversationID, content string) error {
	return mm.save(ctx, tx, conversationID, model.RoleAssistant, content)
}

func (mm *MessagesManager) save(ctx context.Context, tx model.Tx, conversationID, role, content string) error {
	msg := &model.Message{ConversationID: conversationID, Role: role, Content: content}
	if err := tx.AddMessage(ctx, msg); err != nil {
		return fmt.Errorf("save %s message: %w", role, err)
	}
	return nil
}

// History loads the newest messages in replay order, already including any
// message staged earlier in the turn.
func (mm *MessagesManager) History(ctx context.Context, tx model.Tx, conversationID string) ([]*schema.Message, error) {
	rows, err := tx.ListMessages(ctx, conversationID, mm.maxTurns)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	history := make([]*schema.Message, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Content) == "" {
			continue
		}
		switch row.Role {
		case model.RoleUser:
			history = append(history, schema.UserMessage(row.Content))
		case model.RoleAssistant:
			history = append(history, schema.AssistantMessage(row.Content, nil))
		}
	}
	return history, nil
}

// BuildResponseContext prefixes the history with the system prompt.
func (mm *MessagesManager) BuildResponseContext(systemPrompt string, history []*schema.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	return append(messages, history...)
}
