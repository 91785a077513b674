package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Chative-trip-planner/server/internal/core"
	errx "github.com/Chative-trip-planner/server/internal/core/error"
	"github.com/Chative-trip-planner/server/internal/trip/graph"
	"github.com/Chative-trip-planner/server/internal/trip/lock"
	"github.com/Chative-trip-planner/server/internal/trip/model"
	"github.com/Chative-trip-planner/server/internal/trip/providers/booking"
	"github.com/Chative-trip-planner/server/internal/trip/providers/places"
	"github.com/Chative-trip-planner/server/internal/trip/repo"
	"github.com/Chative-trip-planner/server/internal/trip/tools"
	logx "github.com/Chative-trip-planner/server/pkg/logger"
	pkgpostgres "github.com/Chative-trip-planner/server/pkg/postgres"
	pkgredis "github.com/Chative-trip-planner/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the trip planner demo,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory"`
	LockDriver  string `envconfig:"LOCK_DRIVER" default:"memory"`

	// Infrastructure
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Search providers
	Booking booking.Config
	Places  places.Config

	// Turn configs
	Assistant    model.AssistantModelConfig
	Summary      model.SummaryModelConfig
	Recommend    model.RecommendModelConfig
	Conversation model.ConversationConfig
	Tools        model.ToolConfig
}

func main() {
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment), Service: "trip-planner"})

	store, closeStore, err := newStore(ctx, envCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise record store")
	}
	defer closeStore()

	locker, closeLocker, err := newLocker(ctx, envCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise conversation lock")
	}
	defer closeLocker()

	bookingClient := booking.New(envCfg.Booking)
	runner, err := graph.BuildTripGraph(ctx, graph.Config{
		APIKey:         envCfg.APIKey,
		BaseURL:        envCfg.BaseURL,
		AssistantModel: envCfg.Assistant,
		SummaryModel:   envCfg.Summary,
		RecommendModel: envCfg.Recommend,
		Conversation:   envCfg.Conversation,
		Tools:          envCfg.Tools,
		Providers: tools.Providers{
			Hotels:  bookingClient,
			Flights: bookingClient,
			Places:  places.New(envCfg.Places),
		},
		Store:  store,
		Locker: locker,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build graph")
	}

	userID := "demo-user"
	conv, err := runner.StartConversation(ctx, userID)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to start conversation")
	}

	turns := []string{
		"Hi! I'd like to plan a trip to Lisbon.",
		"We'll fly from Berlin, two adults.",
		"A mix of relaxing and active things. Budget is 3000 EUR.",
		"40% accommodation, 35% flights, 25% activities.",
		"Arriving 2026-06-12 and leaving 2026-06-19, the dates are strict.",
		"Yes, that's all correct. Please find hotels and flights both ways.",
		"Also suggest a market to visit and a day-by-day activity plan.",
	}

	for i, query := range turns {
		fmt.Printf("\n🚀 Turn %d\nUser: %s\n", i+1, query)

		out, err := runner.Invoke(ctx, model.TurnInput{
			ConversationID: conv.ID,
			UserID:         userID,
			Query:          query,
		})
		if err != nil {
			logx.Error().Err(err).Int("turn", i+1).Int("status", errx.Status(err)).Msg("Turn failed")
			os.Exit(1)
		}

		for _, attachment := range out.Attachments {
			fmt.Printf("📎 %s\n", attachment)
		}
		fmt.Printf("Assistant [%s, $%.5f]: %s\n", out.Stage, out.CostUSD, out.Reply)
		fmt.Println(strings.Repeat("─", 48))
	}

	itinerary, err := runner.Itinerary(ctx, conv.ID, userID)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to load itinerary")
	}
	if itinerary.JourneyTo != nil {
		fmt.Printf("Outbound: %s\n", itinerary.JourneyTo.Title)
	}
	if itinerary.JourneyFrom != nil {
		fmt.Printf("Return:   %s\n", itinerary.JourneyFrom.Title)
	}
	for _, stay := range itinerary.Stays {
		fmt.Printf("Stay:     %s\n", stay.Title)
	}
	for _, shop := range itinerary.Shops {
		fmt.Printf("Shop:     %s\n", shop.Title)
	}
}

func newStore(ctx context.Context, cfg AppConfig) (model.Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		return repo.NewMemoryStore(), func() {}, nil
	case "postgres":
		if cfg.Postgres.Migrate {
			if err := pkgpostgres.RunMigrations(cfg.Postgres.URL, repo.Migrations()); err != nil {
				return nil, nil, err
			}
		}
		pool, err := cfg.Postgres.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		return repo.NewPostgresStore(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func newLocker(ctx context.Context, cfg AppConfig) (lock.Locker, func(), error) {
	switch cfg.LockDriver {
	case "memory":
		return lock.NewMemoryLocker(), func() {}, nil
	case "redis":
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		return lock.NewRedisLocker(rdb, cfg.Redis.KeyPrefix, cfg.Conversation.LockTTL), func() { _ = rdb.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown LOCK_DRIVER %q", cfg.LockDriver)
}
