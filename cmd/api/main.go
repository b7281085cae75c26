package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"catchup-feed/internal/adapter"
	"catchup-feed/internal/common/pagination"
	discoveryDomain "catchup-feed/internal/discovery"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/enrichment"
	"catchup-feed/internal/enrichment/llm"
	pgRepo "catchup-feed/internal/infra/adapter/persistence/postgres"
	"catchup-feed/internal/infra/db"
	"catchup-feed/pkg/config"
	"catchup-feed/pkg/ratelimit"
	"catchup-feed/pkg/security/csp"

	apiKeyUC "catchup-feed/internal/usecase/apikey"
	artUC "catchup-feed/internal/usecase/article"
	discUC "catchup-feed/internal/usecase/discovery"
	srcUC "catchup-feed/internal/usecase/source"
	subUC "catchup-feed/internal/usecase/subscription"

	hhttp "catchup-feed/internal/handler/http"
	hapikey "catchup-feed/internal/handler/http/apikey"
	harticle "catchup-feed/internal/handler/http/article"
	hauth "catchup-feed/internal/handler/http/auth"
	hdiscovery "catchup-feed/internal/handler/http/discovery"
	"catchup-feed/internal/handler/http/middleware"
	"catchup-feed/internal/handler/http/process"
	"catchup-feed/internal/handler/http/requestid"
	hsrc "catchup-feed/internal/handler/http/source"
	hsub "catchup-feed/internal/handler/http/subscription"

	_ "catchup-feed/docs" // swagger docs
)

// @title           Catch-Up Feed API
// @version         1.0
// @description     Multi-source news aggregation and enrichment API.
// @description     Serves collected articles, source and subscription
// @description     management, and discovery/candidate review.

// @contact.name   API Support
// @contact.url    https://github.com/yujitsuchiya/catchup-feed
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key
// @description API key issued via POST /apikeys. Pass it as the X-API-Key header.

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

	version := getVersion()
	serverComponents := setupServer(ctx, logger, database, version)
	defer serverComponents.Engine.Stop()

	runServer(ctx, cancel, logger, serverComponents, version)
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

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler    http.Handler
	Engine     *enrichment.Engine
	IPStore    *ratelimit.InMemoryRateLimitStore
	UserStore  *ratelimit.InMemoryRateLimitStore
	IPWindow   time.Duration
	UserWindow time.Duration
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
func setupServer(ctx context.Context, logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	srcSvc := srcUC.NewService(pgRepo.NewSourceRepository(database), pgRepo.NewFetchLogRepository(database))
	artSvc := artUC.NewService(pgRepo.NewArticleRepository(database))
	subSvc := subUC.NewService(pgRepo.NewSubscriptionRepository(database))
	apiKeySvc := apiKeyUC.NewService(pgRepo.NewAPIKeyRepository(database))
	apiKeyRepo := pgRepo.NewAPIKeyRepository(database)

	// engine backs only POST /process: a single worker, a no-op Publisher
	// (the worker process owns the real dispatch.Dispatcher reachable by
	// websocket clients and webhooks), started so TriggerAll's enqueued
	// jobs are actually drained instead of piling up in the queue.
	embedder := buildEmbedder(logger)
	engine := enrichment.New(pgRepo.NewArticleRepository(database), embedder, noopPublisher{}, 1)
	engine.Start(ctx)

	discSvc := buildDiscoveryService(database, logger)

	// Load rate limiting configuration
	rateLimitConfig, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Error("failed to load rate limit configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Load trusted proxy configuration for IP extraction
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var ipExtractor middleware.IPExtractor
	if proxyConfig.Enabled {
		ipExtractor = middleware.NewTrustedProxyExtractor(*proxyConfig)
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	} else {
		ipExtractor = &middleware.RemoteAddrExtractor{}
		logger.Info("rate limiting: using RemoteAddr (secure mode, proxy headers ignored)")
	}

	var ipRateLimiter *middleware.IPRateLimiter
	var userRateLimiter *middleware.UserRateLimiter
	var ipStore *ratelimit.InMemoryRateLimitStore
	var userStore *ratelimit.InMemoryRateLimitStore

	if rateLimitConfig.Enabled {
		ipStore = ratelimit.NewInMemoryRateLimitStore(ratelimit.InMemoryStoreConfig{
			MaxKeys: rateLimitConfig.MaxActiveKeys,
		})
		userStore = ratelimit.NewInMemoryRateLimitStore(ratelimit.InMemoryStoreConfig{
			MaxKeys: rateLimitConfig.MaxActiveKeys,
		})

		algorithm := ratelimit.NewSlidingWindowAlgorithm(&ratelimit.SystemClock{})
		metrics := ratelimit.NewPrometheusMetrics()

		ipCircuitBreaker := ratelimit.NewCircuitBreaker(ratelimit.CircuitBreakerConfig{
			FailureThreshold: rateLimitConfig.CircuitBreakerFailureThreshold,
			RecoveryTimeout:  rateLimitConfig.CircuitBreakerResetTimeout,
		})

		userCircuitBreaker := ratelimit.NewCircuitBreaker(ratelimit.CircuitBreakerConfig{
			FailureThreshold: rateLimitConfig.CircuitBreakerFailureThreshold,
			RecoveryTimeout:  rateLimitConfig.CircuitBreakerResetTimeout,
		})

		// Degradation managers auto-relax limits once their circuit breaker
		// trips; state is polled via IsOpen() rather than a push callback.
		_ = middleware.NewDegradationManager(middleware.DegradationConfig{
			AutoAdjust:        true,
			CooldownPeriod:    1 * time.Minute,
			RelaxedMultiplier: 2,
			MinimalMultiplier: 10,
			Clock:             &ratelimit.SystemClock{},
			Metrics:           metrics,
			LimiterType:       "ip",
		})
		_ = middleware.NewDegradationManager(middleware.DegradationConfig{
			AutoAdjust:        true,
			CooldownPeriod:    1 * time.Minute,
			RelaxedMultiplier: 2,
			MinimalMultiplier: 10,
			Clock:             &ratelimit.SystemClock{},
			Metrics:           metrics,
			LimiterType:       "user",
		})

		ipRateLimiter = middleware.NewIPRateLimiter(
			middleware.IPRateLimiterConfig{
				Limit:   rateLimitConfig.DefaultIPLimit,
				Window:  rateLimitConfig.DefaultIPWindow,
				Enabled: true,
			},
			ipExtractor,
			ipStore,
			algorithm,
			metrics,
			ipCircuitBreaker,
		)

		tierLimits := make(map[ratelimit.UserTier]middleware.TierLimit)
		for _, tierCfg := range rateLimitConfig.TierLimits {
			tierLimits[tierCfg.Tier] = middleware.TierLimit{
				Limit:  tierCfg.Limit,
				Window: tierCfg.Window,
			}
		}

		// Rate limiting is keyed on the authenticated API key, not a JWT
		// subject: spec.md §6 limits 120 req/min per key.
		userExtractor := hauth.KeyUserExtractor{}

		userRateLimiter = middleware.NewUserRateLimiter(middleware.UserRateLimiterConfig{
			Store:               userStore,
			Algorithm:           algorithm,
			Metrics:             metrics,
			CircuitBreaker:      userCircuitBreaker,
			UserExtractor:       userExtractor,
			TierLimits:          tierLimits,
			DefaultLimit:        rateLimitConfig.DefaultUserLimit,
			DefaultWindow:       rateLimitConfig.DefaultUserWindow,
			SkipUnauthenticated: true,
			Clock:               &ratelimit.SystemClock{},
		})

		logger.Info("rate limiting initialized",
			slog.Bool("enabled", true),
			slog.Int("ip_limit", rateLimitConfig.DefaultIPLimit),
			slog.Duration("ip_window", rateLimitConfig.DefaultIPWindow),
			slog.Int("user_limit", rateLimitConfig.DefaultUserLimit),
			slog.Duration("user_window", rateLimitConfig.DefaultUserWindow),
			slog.Int("max_keys", rateLimitConfig.MaxActiveKeys),
		)
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	rootMux := setupRoutes(database, version, srcSvc, artSvc, subSvc, apiKeySvc, discSvc, engine, embedder, apiKeyRepo, ipExtractor, userRateLimiter, logger)
	handler := applyMiddleware(logger, rootMux, ipRateLimiter)

	return &ServerComponents{
		Handler:    handler,
		Engine:     engine,
		IPStore:    ipStore,
		UserStore:  userStore,
		IPWindow:   rateLimitConfig.DefaultIPWindow,
		UserWindow: rateLimitConfig.DefaultUserWindow,
	}
}

// noopPublisher discards enrichment completions. The API process's engine
// exists only to serve POST /process (an on-demand catch-up trigger); the
// worker process owns the real dispatch.Dispatcher wired to the websocket
// registry and webhook sender that client connections actually reach, per
// DESIGN.md's process-split notes.
type noopPublisher struct{}

func (noopPublisher) PublishCompleted(*entity.Article) {}

// buildEmbedder constructs the same LLM provider selection the worker uses,
// so a manually triggered /process run extracts and embeds with identical
// behavior to the background pipeline.
func buildEmbedder(logger *slog.Logger) enrichment.LLMProvider {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		logger.Warn("OPENAI_API_KEY not set, POST /process will fail if invoked")
		return nil
	}
	embedder := llm.NewOpenAI(openaiKey, llm.DefaultOpenAIConfig())

	providerType := config.GetEnvString("LLM_PROVIDER", "claude")
	if providerType == "claude" {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			logger.Warn("ANTHROPIC_API_KEY not set, falling back to OpenAI for extraction")
			return embedder
		}
		return llm.NewClaude(apiKey, llm.DefaultClaudeConfig(), embedder)
	}
	return embedder
}

// buildDiscoveryService wires the API process's own Scanner/Validator/Loop
// instances. They share the same candidate/source tables the worker reads,
// so the HTTP-driven start/stop/scan/validate lifecycle (spec.md §4.10)
// lives here, beside the endpoints that drive it, rather than inside the
// always-on worker process.
func buildDiscoveryService(database *sql.DB, logger *slog.Logger) *discUC.Service {
	candidateRepo := pgRepo.NewCandidateRepository(database)
	sourceRepo := pgRepo.NewSourceRepository(database)

	clientCfg := adapter.DefaultClientConfig()
	client := adapter.NewHTTPClient(clientCfg)
	readability := adapter.NewReadabilityExtractor(client, clientCfg)
	feedAdapter := adapter.NewFeedAdapter(client, readability)
	universalAdapter := adapter.NewUniversalAdapter(client, clientCfg, feedAdapter, readability)

	scanCfg := discoveryDomain.ScanConfig{
		CustomSearchAPIKey: config.GetEnvString("GOOGLE_CUSTOM_SEARCH_API_KEY", ""),
		CustomSearchCSEID:  config.GetEnvString("GOOGLE_CUSTOM_SEARCH_CSE_ID", ""),
		SeedURLs:           config.GetEnvStringList("DISCOVERY_SEED_URLS", nil),
	}
	scanner := discoveryDomain.NewScanner(client, candidateRepo, scanCfg)
	validator := discoveryDomain.NewValidator(candidateRepo, sourceRepo, universalAdapter, feedAdapter, universalAdapter)
	loop := discoveryDomain.NewLoop(scanner, validator)

	logger.Info("discovery components initialized (dormant until /discovery/start)")
	return discUC.NewService(loop, scanner, validator, candidateRepo)
}

// setupRoutes registers all HTTP routes (public and protected).
func setupRoutes(
	database *sql.DB,
	version string,
	srcSvc *srcUC.Service,
	artSvc *artUC.Service,
	subSvc *subUC.Service,
	apiKeySvc *apiKeyUC.Service,
	discSvc *discUC.Service,
	engine *enrichment.Engine,
	embedder enrichment.LLMProvider,
	apiKeyRepo *pgRepo.APIKeyRepository,
	ipExtractor middleware.IPExtractor,
	userRateLimiter *middleware.UserRateLimiter,
	logger *slog.Logger,
) *http.ServeMux {
	// レート制限: 検索エンドポイントは1分間に100リクエストまで
	searchRateLimiter := middleware.NewRateLimiter(100, 1*time.Minute, ipExtractor)

	publicMux := http.NewServeMux()
	publicMux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	publicMux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	publicMux.Handle("/live", &hhttp.LiveHandler{})
	publicMux.Handle("/metrics", hhttp.MetricsHandler())
	publicMux.Handle("/swagger/", httpSwagger.WrapHandler)

	paginationCfg := pagination.LoadFromEnv()

	privateMux := http.NewServeMux()
	hsrc.Register(privateMux, srcSvc)
	harticle.Register(privateMux, artSvc, embedder, paginationCfg, logger, searchRateLimiter)
	hsub.Register(privateMux, subSvc)
	hapikey.Register(privateMux, apiKeySvc)
	hdiscovery.Register(privateMux, discSvc)
	process.Register(privateMux, engine)

	// userRateLimiter reads the key ID/tier that Authenticator.Middleware
	// attaches to the request context, so it must run inside (after) auth.
	inner := http.Handler(privateMux)
	if userRateLimiter != nil {
		inner = userRateLimiter.Middleware()(inner)
	}

	authenticator := hauth.Authenticator{Keys: apiKeyRepo}
	protected := authenticator.Middleware(inner)

	rootMux := http.NewServeMux()
	rootMux.Handle("/health", publicMux)
	rootMux.Handle("/ready", publicMux)
	rootMux.Handle("/live", publicMux)
	rootMux.Handle("/metrics", publicMux)
	rootMux.Handle("/swagger/", publicMux)
	rootMux.Handle("/", protected)

	return rootMux
}

// applyMiddleware wraps the handler with middleware chain.
// Middleware order: CORS → Request ID → IP Rate Limit → Recovery → Logging → Body Limit → CSP → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler, ipRateLimiter *middleware.IPRateLimiter) http.Handler {
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = &middleware.SlogAdapter{Logger: logger}

	logger.Info("CORS enabled",
		slog.Int("allowed_origins_count", len(corsConfig.Validator.GetAllowedOrigins())),
		slog.Any("allowed_origins", corsConfig.Validator.GetAllowedOrigins()),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Any("allowed_headers", corsConfig.AllowedHeaders),
		slog.Int("max_age", corsConfig.MaxAge))

	cspConfig, err := config.LoadCSPConfig()
	if err != nil {
		logger.Error("failed to load CSP configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var cspMiddleware func(http.Handler) http.Handler
	if cspConfig.Enabled {
		cspMW := middleware.NewCSPMiddleware(middleware.CSPMiddlewareConfig{
			Enabled:       true,
			DefaultPolicy: csp.StrictPolicy(),
			PathPolicies: map[string]*csp.CSPBuilder{
				"/swagger/": csp.SwaggerUIPolicy(),
			},
			ReportOnly: cspConfig.ReportOnly,
		})
		cspMiddleware = cspMW.Middleware()
		logger.Info("CSP enabled", slog.Bool("report_only", cspConfig.ReportOnly))
	} else {
		cspMiddleware = func(next http.Handler) http.Handler { return next }
		logger.Warn("CSP is disabled")
	}

	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = cspMiddleware(middlewareChain)
	middlewareChain = hhttp.LimitRequestBody(1 << 20)(middlewareChain) // 1MB limit
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)

	if ipRateLimiter != nil {
		middlewareChain = ipRateLimiter.Middleware()(middlewareChain)
	}

	middlewareChain = requestid.Middleware(middlewareChain)
	middlewareChain = middleware.CORS(*corsConfig)(middlewareChain)

	return middlewareChain
}

// runServer starts the HTTP server and handles graceful shutdown. ctx is
// shared with the API-local enrichment engine started in setupServer; its
// cancellation signals both the cleanup goroutines and that engine's workers.
func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, components *ServerComponents, version string) {
	cleanupCfg := hhttp.LoadCleanupConfigFromEnv()

	if components.IPStore != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.IPStore, cleanupCfg.Interval, components.IPWindow, "ip")
		logger.Info("IP rate limit cleanup started",
			slog.Duration("interval", cleanupCfg.Interval),
			slog.Duration("window", components.IPWindow))
	}

	if components.UserStore != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.UserStore, cleanupCfg.Interval, components.UserWindow, "user")
		logger.Info("user rate limit cleanup started",
			slog.Duration("interval", cleanupCfg.Interval),
			slog.Duration("window", components.UserWindow))
	}

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", ":8080"),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()
	logger.Debug("background cleanup goroutines cancelled")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
