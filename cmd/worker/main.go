package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"catchup-feed/internal/adapter"
	"catchup-feed/internal/dedup"
	"catchup-feed/internal/dispatch"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/enrichment"
	"catchup-feed/internal/enrichment/llm"
	"catchup-feed/internal/fingerprint"
	hws "catchup-feed/internal/handler/http/ws"
	pgRepo "catchup-feed/internal/infra/adapter/persistence/postgres"
	"catchup-feed/internal/infra/db"
	workerPkg "catchup-feed/internal/infra/worker"
	"catchup-feed/internal/scheduler"
	"catchup-feed/internal/webhook"
	"catchup-feed/pkg/config"
)

// waitForMigrations blocks until the sources table is reachable, retrying
// a fixed number of times. The worker and API both depend on migrations
// having already run; this just guards against a race at container start.
func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM sources LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.Int("enrichment_workers", workerConfig.EnrichmentWorkers),
		slog.Int("webhook_workers", workerConfig.WebhookWorkers),
		slog.Int("health_port", workerConfig.HealthPort))

	sourceRepo := pgRepo.NewSourceRepository(database)
	articleRepo := pgRepo.NewArticleRepository(database)
	fetchLogRepo := pgRepo.NewFetchLogRepository(database)
	subscriptionRepo := pgRepo.NewSubscriptionRepository(database)
	webhookLogRepo := pgRepo.NewWebhookDeliveryLogRepository(database)

	adapterMap := buildAdapters()

	checker := dedup.NewChecker(articleRepo, fingerprint.NewLSHIndex())

	provider := buildLLMProvider(logger)

	registry := dispatch.NewRegistry()
	webhookSender := webhook.New(webhookLogRepo, workerConfig.WebhookWorkers)
	webhookSender.Start(ctx)
	dispatcher := dispatch.New(registry, subscriptionRepo, webhookSender)

	engine := enrichment.New(articleRepo, provider, dispatcher, workerConfig.EnrichmentWorkers)
	engine.Start(ctx)

	sched := scheduler.New(sourceRepo, fetchLogRepo, articleRepo, adapterMap, checker, engine, engine)
	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	_ = startMetricsServer(ctx, logger)

	wsMux := http.NewServeMux()
	hws.Register(wsMux, registry)
	wsServer := &http.Server{
		Addr:    ":" + config.GetEnvString("WORKER_WS_PORT", "9092"),
		Handler: wsMux,
	}
	go func() {
		logger.Info("worker websocket push server starting", slog.String("addr", wsServer.Addr))
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker websocket server failed", slog.Any("error", err))
		}
	}()

	healthServer := workerPkg.NewHealthServer(
		":"+strconv.Itoa(workerConfig.HealthPort),
		logger,
	)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	healthServer.SetReady(true)

	logger.Info("worker started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("worker shutting down")
	healthServer.SetReady(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = wsServer.Shutdown(shutdownCtx)
	shutdownCancel()
	<-sched.Stop().Done()
	engine.Stop()
	webhookSender.Stop()
	cancel()
}

// buildAdapters wires the shared HTTP client stack into one adapter per
// entity.SourceKind.
func buildAdapters() map[entity.SourceKind]adapter.Adapter {
	clientCfg := adapter.DefaultClientConfig()
	client := adapter.NewHTTPClient(clientCfg)
	readability := adapter.NewReadabilityExtractor(client, clientCfg)
	feedAdapter := adapter.NewFeedAdapter(client, readability)
	apiAdapter := adapter.NewAPIAdapter(client, clientCfg)
	scraperAdapter := adapter.NewScraperAdapter(client, clientCfg, readability)
	universalAdapter := adapter.NewUniversalAdapter(client, clientCfg, feedAdapter, readability)

	return map[entity.SourceKind]adapter.Adapter{
		entity.SourceKindFeed:      feedAdapter,
		entity.SourceKindAPI:       apiAdapter,
		entity.SourceKindScraper:   scraperAdapter,
		entity.SourceKindUniversal: universalAdapter,
	}
}

// buildLLMProvider selects between Claude and OpenAI per LLM_PROVIDER,
// mirroring the teacher's SUMMARIZER_TYPE switch in spirit. The OpenAI
// client is always constructed, since Claude's extraction runs delegate
// embedding calls to it (per spec.md §4.7, embeddings are a distinct
// model concern from extraction).
func buildLLMProvider(logger *slog.Logger) enrichment.LLMProvider {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		logger.Error("OPENAI_API_KEY is required for embeddings")
		os.Exit(1)
	}
	embedder := llm.NewOpenAI(openaiKey, llm.DefaultOpenAIConfig())

	providerType := config.GetEnvString("LLM_PROVIDER", "claude")
	switch providerType {
	case "claude":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required when LLM_PROVIDER=claude")
			os.Exit(1)
		}
		logger.Info("using Claude for enrichment extraction", slog.String("provider", "claude"))
		return llm.NewClaude(apiKey, llm.DefaultClaudeConfig(), embedder)
	case "openai":
		logger.Info("using OpenAI for enrichment extraction", slog.String("provider", "openai"))
		return embedder
	default:
		logger.Error("invalid LLM_PROVIDER", slog.String("value", providerType), slog.String("expected", "claude or openai"))
		os.Exit(1)
		return nil
	}
}

func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

