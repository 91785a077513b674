package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	errx "github.com/Chative-trip-planner/server/internal/core/error"
	"github.com/Chative-trip-planner/server/internal/trip/model"
)

const conversationColumns = `id, user_id, preferences, destination, budget, start_date, status, created_at, updated_at`

const suggestionColumns = `id, conversation_id, seq, type, title, description, price, currency, rating, image_url, booking_url, location, created_at`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Begin(ctx context.Context) (model.Tx, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("begin tx: %w", err))
	}
	return &postgresTx{tx: tx}, nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, userID string) (*model.Conversation, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO conversations (id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING `+conversationColumns,
		uuid.New(), userID, model.StatusActive)

	conv, err := scanConversation(row)
	if err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("create conversation: %w", err))
	}
	return conv, nil
}

func (s *PostgresStore) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	return getConversation(ctx, s.db, conversationID, false)
}

func (s *PostgresStore) ListSuggestions(ctx context.Context, conversationID string) ([]model.Suggestion, error) {
	return listSuggestions(ctx, s.db, conversationID)
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) GetConversationForUpdate(ctx context.Context, conversationID string) (*model.Conversation, error) {
	return getConversation(ctx, t.tx, conversationID, true)
}

func (t *postgresTx) UpdateConversation(ctx context.Context, conv *model.Conversation) error {
	prefs, err := json.Marshal(conv.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tag, err := t.tx.Exec(ctx, `
		UPDATE conversations
		SET preferences = $2, destination = $3, budget = $4, start_date = $5, status = $6, updated_at = $7
		WHERE id = $1`,
		conv.ID, prefs, conv.Destination, conv.Budget, conv.StartDate, conv.Status, conv.UpdatedAt)
	if err != nil {
		return errx.WrapPostgres(fmt.Errorf("update conversation: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrConversationNotFound
	}
	return nil
}

func (t *postgresTx) AddMessage(ctx context.Context, msg *model.Message) error {
	msg.ID = uuid.NewString()
	err := t.tx.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, role, content)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content,
	).Scan(&msg.Seq, &msg.CreatedAt)
	if err != nil {
		return errx.WrapPostgres(fmt.Errorf("insert message: %w", err))
	}
	return nil
}

func (t *postgresTx) ListMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	query := `
		SELECT id, conversation_id, seq, role, content, created_at FROM (
			SELECT id, conversation_id, seq, role, content, created_at
			FROM messages
			WHERE conversation_id = $1
			ORDER BY seq DESC
			LIMIT $2
		) recent
		ORDER BY seq ASC`
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := t.tx.Query(ctx, query, conversationID, lim)
	if err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("list messages: %w", err))
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Message, error) {
		var m model.Message
		err := row.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Role, &m.Content, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("scan messages: %w", err))
	}
	return msgs, nil
}

func (t *postgresTx) InsertSuggestion(ctx context.Context, s *model.Suggestion) error {
	location, err := json.Marshal(s.Location)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}

	s.ID = uuid.NewString()
	err = t.tx.QueryRow(ctx, `
		INSERT INTO suggestions (id, conversation_id, type, title, description, price, currency, rating, image_url, booking_url, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq, created_at`,
		s.ID, s.ConversationID, string(s.Type), s.Title, s.Description, s.Price, s.Currency,
		s.Rating, s.ImageURL, s.BookingURL, location,
	).Scan(&s.Seq, &s.CreatedAt)
	if err != nil {
		return errx.WrapPostgres(fmt.Errorf("insert suggestion: %w", err))
	}
	return nil
}

func (t *postgresTx) ListSuggestions(ctx context.Context, conversationID string) ([]model.Suggestion, error) {
	return listSuggestions(ctx, t.tx, conversationID)
}

func (t *postgresTx) SuggestionExists(ctx context.Context, conversationID string, kind model.SuggestionType, title string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM suggestions
			WHERE conversation_id = $1 AND type = $2 AND title = $3
		)`, conversationID, string(kind), title).Scan(&exists)
	if err != nil {
		return false, errx.WrapPostgres(fmt.Errorf("check suggestion: %w", err))
	}
	return exists, nil
}

func (t *postgresTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return errx.WrapPostgres(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return errx.WrapPostgres(fmt.Errorf("rollback: %w", err))
	}
	return nil
}

func getConversation(ctx context.Context, q querier, conversationID string, forUpdate bool) (*model.Conversation, error) {
	if _, err := uuid.Parse(conversationID); err != nil {
		return nil, model.ErrConversationNotFound
	}
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	conv, err := scanConversation(q.QueryRow(ctx, query, conversationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrConversationNotFound
	}
	if err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("get conversation: %w", err))
	}
	return conv, nil
}

func scanConversation(row pgx.Row) (*model.Conversation, error) {
	var (
		c     model.Conversation
		prefs []byte
	)
	if err := row.Scan(&c.ID, &c.UserID, &prefs, &c.Destination, &c.Budget, &c.StartDate, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &c.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return &c, nil
}

func listSuggestions(ctx context.Context, q querier, conversationID string) ([]model.Suggestion, error) {
	rows, err := q.Query(ctx, `
		SELECT `+suggestionColumns+`
		FROM suggestions
		WHERE conversation_id = $1
		ORDER BY seq ASC`, conversationID)
	if err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("list suggestions: %w", err))
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Suggestion, error) {
		var (
			s        model.Suggestion
			kind     string
			location []byte
		)
		err := row.Scan(&s.ID, &s.ConversationID, &s.Seq, &kind, &s.Title, &s.Description, &s.Price,
			&s.Currency, &s.Rating, &s.ImageURL, &s.BookingURL, &location, &s.CreatedAt)
		if err != nil {
			return s, err
		}
		s.Type = model.SuggestionType(kind)
		if err := json.Unmarshal(location, &s.Location); err != nil {
			return s, fmt.Errorf("decode location: %w", err)
		}
		return s, nil
	})
	if err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("scan suggestions: %w", err))
	}
	return out, nil
}
