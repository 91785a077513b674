package model

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	StatusActive = "active"
)

// Conversation is owned by exactly one user. Destination, Budget and
// StartDate mirror the matching preference slots for query convenience.
type Conversation struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Preferences Slots      `json:"preferences"`
	Destination *string    `json:"destination,omitempty"`
	Budget      *string    `json:"budget,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Message is append-only. Seq defines replay order within a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Seq            int64     `json:"seq"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is the record store shared by every turn.
type Store interface {
	// Begin opens a unit of work; nothing written through the Tx is visible
	// to other readers until Commit.
	Begin(ctx context.Context) (Tx, error)

	CreateConversation(ctx context.Context, userID string) (*Conversation, error)

	// GetConversation returns ErrConversationNotFound for unknown ids.
	GetConversation(ctx context.Context, conversationID string) (*Conversation, error)

	// ListSuggestions returns committed suggestions in insertion order.
	ListSuggestions(ctx context.Context, conversationID string) ([]Suggestion, error)
}

// Tx is the write scope of one turn.
type Tx interface {
	GetConversationForUpdate(ctx context.Context, conversationID string) (*Conversation, error)
	UpdateConversation(ctx context.Context, conv *Conversation) error

	// AddMessage assigns ID, Seq and CreatedAt.
	AddMessage(ctx context.Context, msg *Message) error
	// ListMessages returns the newest limit messages in replay order. A limit
	// of zero or less returns the full history.
	ListMessages(ctx context.Context, conversationID string, limit int) ([]Message, error)

	// InsertSuggestion assigns ID, Seq and CreatedAt.
	InsertSuggestion(ctx context.Context, s *Suggestion) error
	ListSuggestions(ctx context.Context, conversationID string) ([]Suggestion, error)
	SuggestionExists(ctx context.Context, conversationID string, kind SuggestionType, title string) (bool, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
