package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/api/handlers"
	"github.com/act-placemat/normalizer/internal/cache/redis"
	"github.com/act-placemat/normalizer/internal/cleaner"
	"github.com/act-placemat/normalizer/internal/kg/neo4j"
	"github.com/act-placemat/normalizer/internal/llm"
	"github.com/act-placemat/normalizer/internal/metrics"
	"github.com/act-placemat/normalizer/internal/middleware/ratelimit"
	"github.com/act-placemat/normalizer/internal/middleware/security"
	"github.com/act-placemat/normalizer/internal/middleware/validation"
	"github.com/act-placemat/normalizer/internal/pipeline"
	"github.com/act-placemat/normalizer/internal/sink"
	"github.com/act-placemat/normalizer/internal/storage/sqlite"
	"github.com/act-placemat/normalizer/internal/textstats"
	"github.com/act-placemat/normalizer/internal/transform"
	"github.com/act-placemat/normalizer/internal/vector/zilliz"
	"github.com/act-placemat/normalizer/pkg/config"
	appLogger "github.com/act-placemat/normalizer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting record normalizer API server")

	metrics.Init()

	if cfg.Analytics.LexiconPath != "" {
		lex, err := textstats.LoadLexicon(cfg.Analytics.LexiconPath)
		if err != nil {
			appLogger.Fatal("Failed to load sentiment lexicon", zap.Error(err))
		}
		textstats.SetDefault(textstats.NewAnalyzer(lex))
		appLogger.Info("Sentiment lexicon loaded", zap.String("path", cfg.Analytics.LexiconPath), zap.Int("entries", lex.Len()))
	}

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	sinks := sink.Multi{sqliteClient}
	pingers := []handlers.Pinger{sqliteClient}

	if cfg.Neo4j.Enabled {
		neo4jClient, err := neo4j.NewClient(
			cfg.Neo4j.URI,
			cfg.Neo4j.Username,
			cfg.Neo4j.Password,
			cfg.Neo4j.Database,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Neo4j client", zap.Error(err))
		}
		defer neo4jClient.Close(context.Background())
		sinks = append(sinks, neo4jClient)
		pingers = append(pingers, neo4jClient)
	}

	if cfg.Zilliz.Enabled {
		zillizClient, err := zilliz.NewClient(
			cfg.Zilliz.Endpoint,
			cfg.Zilliz.APIKey,
			cfg.Zilliz.CollectionName,
			cfg.Zilliz.VectorDim,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Zilliz client", zap.Error(err))
		}
		defer zillizClient.Close()

		err = zillizClient.CreateCollection(context.Background())
		if err != nil {
			appLogger.Fatal("Failed to create collection", zap.Error(err))
		}
		sinks = append(sinks, zillizClient)
	}

	var recordSink sink.Sink = sinks
	if cfg.LLM.Enabled {
		llmClient := llm.NewClient(
			cfg.LLM.APIKey,
			cfg.LLM.EmbeddingModel,
			time.Duration(cfg.LLM.TimeoutSec)*time.Second,
		)
		recordSink = sink.Enriched{Enricher: llmClient, Sink: sinks}
	}

	var reportCache handlers.ReportCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		reportCache = redisClient
		pingers = append(pingers, redisClient)
	}

	registry := transform.NewRegistry(transform.WithMaxChunkSize(cfg.Pipeline.MaxChunkSize))
	executor := pipeline.NewExecutor(registry)
	cleanHandler := handlers.NewCleanHandler(cleaner.New(), handlers.CleanDefaults{
		Aggressiveness: cfg.Cleaner.DefaultAggressiveness,
		Operations:     cfg.Cleaner.DefaultOperations,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	allowOrigins := "*"
	if len(cfg.Server.AllowedOrigins) > 0 {
		allowOrigins = strings.Join(cfg.Server.AllowedOrigins, ", ")
	}

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Client-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		ConnectOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Config{
			MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
			Burst:                cfg.RateLimit.Burst,
			Logger:               appLogger.Named("ratelimit"),
		})
		defer limiter.Stop()
		app.Use(limiter.Middleware())
	}

	app.Get("/metrics/prometheus", metrics.MetricsHandler())

	api := app.Group("/api/v1")
	api.Use(validation.Middleware(validation.Config{
		MaxBodySize: cfg.Server.BodyLimit,
		DataRoutes:  handlers.DataRoutes,
		Logger:      appLogger.Named("validation"),
	}))

	handlers.Register(api, handlers.Routes{
		Transform: handlers.NewTransformHandler(executor, recordSink, handlers.TransformDefaults{
			SourceType:   cfg.Pipeline.DefaultSourceType,
			TargetSchema: cfg.Pipeline.DefaultTargetSchema,
		}),
		Quality:   handlers.NewQualityHandler(reportCache),
		Clean:     cleanHandler,
		Schema:    handlers.NewSchemaHandler(registry),
		Metrics:   handlers.NewMetricsHandler(executor.Metrics(), sqliteClient),
		Health:    handlers.NewHealthHandler(pingers...),
		WebSocket: handlers.NewWebSocketHandler(cleanHandler),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
