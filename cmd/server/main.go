package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"carmarket-backend/internal/api/middleware"
	"carmarket-backend/internal/api/routes"
	"carmarket-backend/internal/config"
	"carmarket-backend/internal/nlu"
	"carmarket-backend/internal/notify"
	"carmarket-backend/internal/repository"
	"carmarket-backend/internal/services"
	"carmarket-backend/internal/tasks"
	"carmarket-backend/pkg/cache"
	"carmarket-backend/pkg/database"
	"carmarket-backend/pkg/jwt"
	"carmarket-backend/pkg/logger"
	"carmarket-backend/pkg/ratelimit"
	"carmarket-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("carmarket", "info")
		bootLog.Fatal().Stack().Err(err).Msg("failed to load configuration")
	}

	log := logger.New("carmarket", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Disconnect(db.Client())

	listingRepo := repository.NewListingRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	database.EnsureIndexes(ctx, log, listingRepo, alertRepo, userRepo, chatRepo, mediaRepo)

	redisClient := redis.NewClient(cfg.Redis, log)
	defer redisClient.Close()

	if status := redisClient.HealthCheck(ctx); status.IsConnected {
		log.Info().Str("addr", status.ConnectionInfo).Msg("redis ready")
	} else {
		log.Warn().Str("error", status.Error).Msg("redis unavailable, will retry automatically")
	}

	redisOpt, err := redis.Options(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid redis configuration")
	}
	queueOpt := tasks.RedisConnOpt(redisOpt)

	var notifier notify.Notifier
	if cfg.Twilio.Enabled() {
		notifier = notify.NewTwilioWhatsApp(cfg.Twilio)
		log.Info().Msg("whatsapp alerts via twilio")
	} else {
		notifier = notify.NewLogNotifier(log)
		log.Warn().Msg("twilio not configured, alerts will only be logged")
	}

	matcher := services.NewAlertMatcher(alertRepo, userRepo, notifier, cfg.Alerts.NotifyTimeout, log)

	var dispatcher services.AlertDispatcher = services.NopDispatcher{}
	if cfg.RunMode != config.RunModeWorker {
		switch cfg.Alerts.DispatchMode {
		case config.DispatchInline:
			inline := services.NewInlineDispatcher(matcher, log)
			defer inline.Wait()
			dispatcher = inline
		default:
			queue := asynq.NewClient(queueOpt)
			defer queue.Close()
			dispatcher = tasks.NewDispatcher(queue, log)
		}
	}

	listingService := services.NewListingService(listingRepo, mediaRepo, dispatcher, log)
	listingService.SetCacheManager(cache.NewCacheManager(redisClient, cache.DefaultCacheConfig()), cache.DefaultCacheConfig())

	var (
		worker    *asynq.Server
		scheduler *asynq.Scheduler
	)
	if cfg.RunMode == config.RunModeWorker || cfg.RunMode == config.RunModeAll {
		processor := tasks.NewProcessor(listingRepo, matcher, log)

		if cfg.Listings.MaxAge > 0 {
			processor.EnableExpiry(listingService, cfg.Listings.MaxAge)
			scheduler, err = tasks.NewScheduler(queueOpt, cfg.Listings.ExpirySchedule, log)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create scheduler")
			}
			if err := scheduler.Start(); err != nil {
				log.Fatal().Err(err).Msg("failed to start scheduler")
			}
		}

		worker = tasks.NewServer(queueOpt, cfg.Alerts.WorkerConcurrency, log)
		if err := worker.Start(processor.Mux()); err != nil {
			log.Fatal().Err(err).Msg("failed to start alert worker")
		}
		log.Info().Int("concurrency", cfg.Alerts.WorkerConcurrency).Msg("alert worker started")
	}

	stopWorkers := func() {
		if scheduler != nil {
			scheduler.Shutdown()
		}
		if worker != nil {
			worker.Shutdown()
		}
	}

	if cfg.RunMode == config.RunModeWorker {
		<-ctx.Done()
		log.Info().Msg("shutting down worker")
		stopWorkers()
		return
	}

	generator, closeGenerator, err := nlu.NewGenerator(ctx, cfg.NLU)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create nlu client")
	}
	defer closeGenerator()

	jwtUtil := jwt.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiry)
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
	}

	rlConfig := ratelimit.DefaultConfig()
	memoryLimiter := ratelimit.NewMemoryRateLimiter(rlConfig)
	defer memoryLimiter.Close()
	limiter := ratelimit.NewFallbackRateLimiter(ratelimit.NewRedisRateLimiter(redisClient, rlConfig), memoryLimiter)

	deps := routes.Dependencies{
		Auth:            services.NewAuthService(userRepo, jwtUtil),
		Listings:        listingService,
		Alerts:          services.NewAlertService(alertRepo),
		Chat:            services.NewChatService(chatRepo, listingService, nlu.NewExtractor(generator), cfg.NLU.Timeout, log),
		PingDB:          pinger(db),
		Redis:           redisClient,
		Limiter:         limiter,
		RateLimitConfig: rlConfig,
		Log:             log,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.MetricsMiddleware(),
	)
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	routes.SetupRoutes(router, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("run_mode", cfg.RunMode).Str("dispatch", cfg.Alerts.DispatchMode).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	stopWorkers()
}

func pinger(db *mongo.Database) func(context.Context) error {
	return func(ctx context.Context) error {
		return database.Health(ctx, db)
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Window", "Retry-After"},
	}

	// Credentials cannot be combined with a wildcard origin.
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
		return c
	}

	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

