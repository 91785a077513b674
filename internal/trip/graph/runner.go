package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	errx "github.com/Chative-trip-planner/server/internal/core/error"
	"github.com/Chative-trip-planner/server/internal/trip/conversations"
	"github.com/Chative-trip-planner/server/internal/trip/graph/nodes"
	"github.com/Chative-trip-planner/server/internal/trip/graph/observers"
	"github.com/Chative-trip-planner/server/internal/trip/itinerary"
	"github.com/Chative-trip-planner/server/internal/trip/lock"
	"github.com/Chative-trip-planner/server/internal/trip/model"
	"github.com/Chative-trip-planner/server/internal/trip/recommend"
	"github.com/Chative-trip-planner/server/internal/trip/tools"
	logx "github.com/Chative-trip-planner/server/pkg/logger"
)

// Config holds everything needed to compose the turn graph end-to-end with
// Gemini models.
type Config struct {
	APIKey         string
	BaseURL        string
	AssistantModel model.AssistantModelConfig
	SummaryModel   model.SummaryModelConfig
	RecommendModel model.RecommendModelConfig
	Conversation   model.ConversationConfig
	Tools          model.ToolConfig
	Providers      tools.Providers
	Store          model.Store
	Locker         lock.Locker
}

// Runner drives conversation turns. Turns of one conversation are serialized
// through the locker and each turn commits as one unit.
type Runner struct {
	runnable compose.Runnable[*model.TurnContext, *model.TurnOutput]
	store    model.Store
	locker   lock.Locker
	cfg      model.ConversationConfig
	now      func() time.Time
}

// BuildTripGraph creates the chat models, the tool catalogue and the graph,
// and returns a Runner over them.
func BuildTripGraph(ctx context.Context, cfg Config) (*Runner, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("record store is nil")
	}

	// Tool infos do not depend on which providers are set, so the catalogue
	// is rebuilt once the recommender model exists.
	providers := cfg.Providers
	registry := tools.NewRegistry(providers)
	toolInfos, err := registry.ToolInfos(ctx)
	if err != nil {
		return nil, err
	}
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		AssistantConfig: &cfg.AssistantModel,
		SummaryConfig:   &cfg.SummaryModel,
		RecommendConfig: &cfg.RecommendModel,
	}, toolInfos)
	if err != nil {
		return nil, err
	}
	if providers.Recommender == nil {
		providers.Recommender = recommend.NewWriter(cms.Recommend, cms.RecommendModelName)
		registry = tools.NewRegistry(providers)
	}

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: conversations.NewMessagesManager(cfg.Conversation),
		Dispatcher:      tools.NewDispatcher(registry, cfg.Tools),
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Trip graph built successfully")
	return NewRunner(runnable, cfg.Store, cfg.Locker, cfg.Conversation), nil
}

// NewRunner wraps a compiled graph. A nil locker falls back to an in-process
// one.
func NewRunner(runnable compose.Runnable[*model.TurnContext, *model.TurnOutput], store model.Store, locker lock.Locker, cfg model.ConversationConfig) *Runner {
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	return &Runner{runnable: runnable, store: store, locker: locker, cfg: cfg, now: time.Now}
}

// Invoke runs one turn. Any error rolls back every write of the turn.
func (r *Runner) Invoke(ctx context.Context, in model.TurnInput) (*model.TurnOutput, error) {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return nil, model.ErrEmptyQuery
	}
	log := logx.Conversation(in.ConversationID)

	lockCtx := ctx
	if r.cfg.LockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, r.cfg.LockWait)
		defer cancel()
	}
	unlock, err := r.locker.Lock(lockCtx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("lock conversation: %w", err)
	}
	defer unlock()

	if r.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.TurnTimeout)
		defer cancel()
	}

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin turn: %w", err)
	}
	defer func() {
		if err := tx.Rollback(context.Background()); err != nil {
			log.Error().Err(err).Msg("rollback turn")
		}
	}()

	conv, err := tx.GetConversationForUpdate(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != in.UserID {
		return nil, model.ErrConversationNotFound
	}

	out, err := r.runnable.Invoke(ctx, &model.TurnContext{
		Input:        in,
		Tx:           tx,
		Conversation: conv,
		Now:          r.now().UTC(),
	}, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		log.Error().Err(err).Int("status", errx.Status(err)).Msg("turn failed")
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit turn: %w", err)
	}

	log.Info().
		Str("stage", out.Stage.String()).
		Float64("cost_usd", out.CostUSD).
		Msg("turn committed")
	return out, nil
}

// StartConversation creates an active conversation owned by userID.
func (r *Runner) StartConversation(ctx context.Context, userID string) (*model.Conversation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is empty")
	}
	return r.store.CreateConversation(ctx, userID)
}

// Suggestions lists the committed suggestions of a conversation owned by
// userID.
func (r *Runner) Suggestions(ctx context.Context, conversationID, userID string) ([]model.Suggestion, error) {
	if _, err := r.owned(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return r.store.ListSuggestions(ctx, conversationID)
}

// Itinerary recomputes the projection from committed rows.
func (r *Runner) Itinerary(ctx context.Context, conversationID, userID string) (*model.Itinerary, error) {
	conv, err := r.owned(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.store.ListSuggestions(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	itin := itinerary.Project(rows, conv.Preferences)
	return &itin, nil
}

func (r *Runner) owned(ctx context.Context, conversationID, userID string) (*model.Conversation, error) {
	conv, err := r.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, model.ErrConversationNotFound
	}
	return conv, nil
}
