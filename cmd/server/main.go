package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"

	"preop-callbot/internal/config"
	"preop-callbot/internal/db"
	"preop-callbot/internal/dialog"
	"preop-callbot/internal/httpapi"
	"preop-callbot/internal/llm"
	"preop-callbot/internal/logger"
	"preop-callbot/internal/notify"
	"preop-callbot/internal/nlu"
	"preop-callbot/internal/store"
)

func main() {
	logger.SetupLogging()
	log := logger.NewLogger("Main")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read environment")
	}

	// Open and verify the database connection, then apply the schema.
	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := db.Migrate(context.Background(), dbConn); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	repo := db.NewRepository(dbConn)

	// Per-session locking: distributed when Redis is configured, otherwise
	// in-process.
	var locker dialog.SessionLocker
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			MaxRetries: 6,
		})
		locker = store.NewRedisLock(client, time.Duration(cfg.RedisLockExpiration)*time.Second)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis session locking")
	} else {
		locker = store.NewKeyedLock()
	}

	// Escalation alerts go to the broker when one is configured.
	var publisher dialog.AlertPublisher
	if cfg.RMQURL != "" {
		amqpPub, err := notify.NewAMQPPublisher(cfg.RMQURL, cfg.RMQExchange, cfg.RMQRoutingKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to message broker")
		}
		defer amqpPub.Close()
		publisher = amqpPub
	} else {
		publisher = &notify.LogPublisher{Log: logger.NewLogger("Alerts")}
	}

	// Language model: extraction and speech generation share the API key;
	// without one, the deterministic fallbacks carry the whole call.
	var extractorClient llm.Client
	var generator dialog.Generator
	if cfg.OpenAIAPIKey != "" {
		extractorClient = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModelNLU)
		generator = llm.NewSpeechGenerator(llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModelChat))
	} else {
		log.Warn().Msg("no OpenAI API key configured, running on deterministic fallbacks only")
	}
	extractor := nlu.NewExtractor(extractorClient, time.Duration(cfg.NLUTimeoutMS)*time.Millisecond, logger.NewLogger("NLU"))

	orch := dialog.NewOrchestrator(repo, locker, extractor, generator, publisher, logger.NewLogger("Orchestrator"))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	handler := httpapi.NewHandler(orch, repo, logger.NewLogger("HTTP"))
	handler.RegisterRoutes(e)

	log.Info().Str("port", cfg.Port).Msg("listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
