package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"duel-bot/chat"
	"duel-bot/config"
	"duel-bot/events"
	"duel-bot/handlers"
	"duel-bot/logger"
	"duel-bot/services"
	"duel-bot/utils"
	"duel-bot/workers"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("development", "info")
		logger.Fatal("failed to load config", "error", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	if !cfg.DotEnvLoaded {
		logger.Warn("⚠️  No .env file found, reading environment variables directly")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}

	store := services.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		logger.Fatal("failed to migrate database", "error", err)
	}

	bank := services.NewQuestionBank(store)
	if err := services.SeedQuestionBank(ctx, bank, cfg.BroadcasterID); err != nil {
		logger.Fatal("failed to seed question bank", "error", err)
	}
	importQuestionPacks(ctx, cfg, bank)

	pending := newPendingIndex(cfg)
	n, err := services.RebuildPendingIndex(ctx, store, pending)
	if err != nil {
		logger.Fatal("failed to rebuild pending duel index", "error", err)
	}
	logger.Info("pending duel index rebuilt", "challenges", n)

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", "error", err)
		}
	}()

	clock := clockwork.NewRealClock()
	duels := services.NewDuelService(store, pending, publisher, clock, cfg.Game)
	presence := services.NewPresenceService(store, clock, cfg.Game.PresencePoints, cfg.Game.LurkPoints)
	stats := services.NewStatsService(store)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-ID",
	}))

	api := handlers.NewAPI(store)
	handlers.SetupPublicRoutes(app, api)
	handlers.SetupAdminRoutes(app, api, cfg.ServiceToken)

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logger.Error("server error", "error", err)
		}
	}()
	logger.Info("✅ HTTP API listening", "addr", cfg.HTTPAddr)

	var sched gocron.Scheduler
	if cfg.TwitchEnabled() {
		transport := chat.NewTwitch(cfg.TwitchUser, cfg.TwitchOAuthToken, cfg.TwitchChannels)
		bot := &services.Bot{
			Transport:     transport,
			Duels:         duels,
			Economy:       services.NewEconomyService(store),
			Presence:      presence,
			Stats:         stats,
			Bank:          bank,
			BroadcasterID: cfg.BroadcasterID,
		}

		consumer := workers.NewChatConsumer(bot, 256, 30*time.Second)
		consumer.Start(ctx)
		transport.OnMessage(func(msg chat.Message) {
			consumer.Enqueue(ctx, msg)
		})

		sched, err = services.StartScheduler(ctx, &services.Jobs{
			Presence:  presence,
			Stats:     stats,
			Transport: transport,
			Channels:  cfg.TwitchChannels,
			LurkTick:  cfg.Game.LurkTick,
		}, cfg.Game, clock)
		if err != nil {
			logger.Fatal("failed to start scheduler", "error", err)
		}

		go func() {
			if err := transport.Run(ctx); err != nil {
				logger.Error("twitch connection closed", "error", err)
				stop()
			}
		}()
		logger.Info("✅ chat bot running", "channels", cfg.TwitchChannels)
	} else {
		logger.Warn("⚠️  Twitch credentials not set, running the HTTP API only")
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown failed", "error", err)
		}
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("server shutdown failed", "error", err)
	}
}

func newPendingIndex(cfg *config.Config) services.PendingIndex {
	if cfg.RedisURL == "" {
		return services.NewMemoryPendingIndex()
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("invalid REDIS_URL", "error", err)
	}
	logger.Info("using redis pending duel index", "addr", opts.Addr)
	return services.NewRedisPendingIndex(redis.NewClient(opts), "")
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Fatal("failed to connect to AMQP", "error", err)
	}
	logger.Info("publishing duel events", "exchange", cfg.AMQPExchange)
	return publisher
}

// importQuestionPacks loads the optional R2 and on-disk packs. Failures are logged; the seeded bank still works.
func importQuestionPacks(ctx context.Context, cfg *config.Config, bank *services.QuestionBank) {
	if cfg.R2Enabled() {
		r2, err := utils.NewR2(ctx, cfg.CloudflareAccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret, cfg.R2BucketName)
		if err == nil {
			var pack []services.PackEntry
			if pack, err = r2.FetchQuestionPack(ctx, cfg.QuestionPackKey); err == nil {
				importPack(ctx, bank, pack, "r2:"+cfg.QuestionPackKey, cfg.BroadcasterID)
			}
		}
		if err != nil {
			logger.Warn("⚠️  failed to load question pack from R2", "key", cfg.QuestionPackKey, "error", err)
		}
	}

	if cfg.QuestionPackFile != "" {
		pack, err := utils.LoadQuestionPackFile(cfg.QuestionPackFile)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("⚠️  question pack file not found", "path", cfg.QuestionPackFile)
			return
		}
		if err != nil {
			logger.Warn("⚠️  failed to read question pack file", "path", cfg.QuestionPackFile, "error", err)
			return
		}
		importPack(ctx, bank, pack, cfg.QuestionPackFile, cfg.BroadcasterID)
	}
}

func importPack(ctx context.Context, bank *services.QuestionBank, pack []services.PackEntry, source, submitterID string) {
	n, err := bank.Import(ctx, pack, submitterID)
	if err != nil {
		logger.Warn("⚠️  question pack import failed", "source", source, "error", err)
		return
	}
	logger.Info("question pack imported", "source", source, "questions", n)
}
