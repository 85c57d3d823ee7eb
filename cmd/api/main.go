package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	"runnerhub/config"
	"runnerhub/internal/adapter/gateway"
	httpHandler "runnerhub/internal/adapter/http/handler"
	"runnerhub/internal/adapter/http/middleware"
	"runnerhub/internal/adapter/mail"
	pgStorage "runnerhub/internal/adapter/storage/postgres"
	redisStorage "runnerhub/internal/adapter/storage/redis"
	"runnerhub/internal/core/ports"
	"runnerhub/internal/jobs"
	"runnerhub/internal/service"
	"runnerhub/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting RunnerHub")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	if err := pgStorage.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}
	if err := jobs.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply job queue migrations")
	}

	// Redis. The notifier owns a separate client and closes it on shutdown.
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	pubsub, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis for notifications")
	}
	notifier := redisStorage.NewNotifier(pubsub)
	defer notifier.Close()

	// Repositories
	userRepo := pgStorage.NewUserRepo(pool)
	taskRepo := pgStorage.NewTaskRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	reviewRepo := pgStorage.NewReviewRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	userSvc := service.NewUserService(userRepo)
	ledger := service.NewLedgerService(
		walletRepo,
		txRepo,
		redisStorage.NewIdempotencyCache(rdb),
		transactor,
		cfg.Wallet.IdempotencyTTL,
		log,
	)
	taskSvc := service.NewTaskService(taskRepo, ledger, transactor, notifier, log)
	matchingSvc := service.NewMatchingService(taskRepo, userRepo, reviewRepo, cfg.Matching.MaxConcurrency, log)
	reviewSvc := service.NewReviewService(reviewRepo, taskRepo, log)
	paymentSvc := service.NewPaymentService(
		paymentRepo,
		taskRepo,
		userRepo,
		gateway.NewPayGate(cfg.Gateway),
		cfg.Gateway.ReturnURL,
		log,
	)
	reportingSvc := service.NewReportingService(taskRepo, userRepo, txRepo, paymentRepo)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Analytics monitor, driven by the job queue
	var gate ports.AlertGate
	if cfg.Analytics.AlertCooldown > 0 {
		gate = redisStorage.NewAlertGate(rdb)
	}
	th := cfg.Analytics.Thresholds
	monitor := service.NewAnalyticsMonitor(
		taskRepo,
		paymentRepo,
		notifier,
		mail.NewSMTPMailer(cfg.SMTP, log),
		gate,
		service.MonitorOptions{
			Metrics: service.DefaultMetrics(service.MonitorThresholds{
				WeeklyTasks:    th.WeeklyTasks,
				DailyTasks:     th.DailyTasks,
				MonthlyRevenue: decimal.NewFromFloat(th.MonthlyRevenue),
				WeeklyRevenue:  decimal.NewFromFloat(th.WeeklyRevenue),
			}),
			AdminEmail: cfg.Analytics.AdminEmail,
			Cooldown:   cfg.Analytics.AlertCooldown,
		},
		log,
	)

	riverClient, err := jobs.NewClient(pool, monitor, jobs.Options{
		MaxWorkers:       2,
		AnalyticsEnabled: cfg.Analytics.Enabled,
		AnalyticsEvery:   cfg.Analytics.Interval,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create job client")
	}
	// Jobs get their own lifetime so Stop can drain them after the signal.
	if err := riverClient.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job client")
	}

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		UserSvc:        userSvc,
		TaskSvc:        taskSvc,
		Ledger:         ledger,
		MatchingSvc:    matchingSvc,
		ReviewSvc:      reviewSvc,
		PaymentSvc:     paymentSvc,
		ReportingSvc:   reportingSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		RateLimits:     middleware.RateLimitRules(cfg.RateLimit),
		HealthCheckers: []ports.HealthChecker{pgStorage.NewHealthCheck(pool), redisStorage.NewHealthCheck(rdb)},
		AuditSvc:       auditSvc,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Mode:           cfg.Server.Mode,
		Logger:         log,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.HeaderRequestID, httpHandler.HeaderIdempotencyKey},
		ExposedHeaders: []string{middleware.HeaderRequestID},
	}).Handler(router)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Job client did not stop cleanly")
	}

	log.Info().Msg("Server exited")
}
