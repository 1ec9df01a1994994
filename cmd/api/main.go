package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/vtu_api/internal/cache"
	"github.com/GTDGit/vtu_api/internal/catalog"
	"github.com/GTDGit/vtu_api/internal/config"
	"github.com/GTDGit/vtu_api/internal/database"
	"github.com/GTDGit/vtu_api/internal/engine"
	"github.com/GTDGit/vtu_api/internal/handler"
	"github.com/GTDGit/vtu_api/internal/middleware"
	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/repository"
	"github.com/GTDGit/vtu_api/internal/service"
	"github.com/GTDGit/vtu_api/internal/sse"
	"github.com/GTDGit/vtu_api/internal/worker"
	"github.com/GTDGit/vtu_api/pkg/vtpass"
)

const janitorInterval = time.Minute

// main is the application entrypoint for the VTU order API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("submit_mode", cfg.Submission.Mode).Msg("starting vtu api")

	// 3. Load catalog; a bad catalog is a deployment error
	catalogStore, err := catalog.NewStore(cfg.Catalog.Path)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Catalog.Path).Msg("catalog load failed")
		fmt.Fprintf(os.Stderr, "catalog load failed: %v\n", err)
		os.Exit(1)
	}

	backends := map[string]handler.Pinger{}
	sweepers := map[string]worker.Sweeper{}

	// 4. Order history (optional)
	var orders service.OrderRecorder
	if cfg.DB.Enabled() {
		db, err := database.Connect(&cfg.DB)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := runMigrations(db.DB); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")

		orders = repository.NewOrderRepository(db)
		backends["database"] = handler.PingFunc(db.PingContext)
	} else {
		log.Warn().Msg("DB_HOST not set, order history disabled")
	}

	// 5. Session store: Redis when configured, in-process otherwise
	var sessions cache.SessionStore
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")

		sessions = cache.NewRedisSessionStore(redisClient, cfg.Session.TTL, cfg.Session.LockTTL)
		backends["redis"] = redisClient
	} else {
		mem := cache.NewMemorySessionStore(cfg.Session.TTL, cfg.Session.LockTTL)
		sessions = mem
		sweepers["sessions"] = mem
		log.Warn().Msg("REDIS_HOST not set, sessions kept in memory")
	}

	// 6. Submission boundary; wallet funding is always simulated
	rules := engine.DefaultRules(cfg.Limits)
	submitter := service.NewRoutingSubmitter(service.NewSimulatedSubmitter(cfg.Submission.Delay))
	if cfg.Submission.Mode == config.SubmitModeVTpass {
		// vtpass has no phone-less top-up
		engine.RequirePhoneFor(rules, models.ServiceAirtime, models.ServiceData)

		vtpassClient := vtpass.NewClient(
			cfg.VTpass.BaseURL,
			cfg.VTpass.APIKey,
			cfg.VTpass.SecretKey,
			cfg.VTpass.PublicKey,
			cfg.Submission.Timeout,
		)
		vt := service.NewVTpassSubmitter(vtpassClient, cfg.Submission.MaxRetries)
		submitter.
			Route(models.ServiceAirtime, vt).
			Route(models.ServiceData, vt).
			Route(models.ServiceCable, vt)

		if cfg.VTpass.PublicKey != "" {
			backends["vtpass"] = handler.PingFunc(func(ctx context.Context) error {
				_, err := vtpassClient.Balance(ctx)
				return err
			})
		}
	}

	// 7. Engine and services
	eng := engine.New(catalogStore, rules)
	hub := sse.NewHub()
	orderSvc := service.NewOrderService(
		eng,
		catalogStore,
		sessions,
		submitter,
		orders,
		sse.NewHubNotifier(hub),
		cfg.Submission.Timeout,
	)
	fundingSvc := service.NewFundingService(catalogStore, cfg.Deposit)

	// 8. Initialize handlers
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(catalogStore, hub, backends),
		Catalog: handler.NewCatalogHandler(catalogStore),
		Order:   handler.NewOrderHandler(orderSvc),
		Session: handler.NewSessionHandler(orderSvc, hub),
		Funding: handler.NewFundingHandler(fundingSvc),
	}

	// 9. Initialize middleware
	submitLimiter := middleware.NewSubmitRateLimiter(cfg.RateLimit.SubmitPerMinute, cfg.RateLimit.SubmitBurst)
	sweepers["submit_limiter"] = worker.SweepFunc(submitLimiter.Cleanup)

	// 10. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.NewCORSPolicy(cfg.CORS.AllowedOrigins).Middleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, submitLimiter)

	// 11. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 12. Start workers
	go worker.NewCatalogReloadWorker(catalogStore, cfg.Worker.CatalogReloadInterval).Start(ctx)
	go worker.NewJanitorWorker(sweepers, janitorInterval).Start(ctx)

	// 13. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 15. Cancel context to stop workers
	cancel()

	// 16. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Catalog *handler.CatalogHandler
	Order   *handler.OrderHandler
	Session *handler.SessionHandler
	Funding *handler.FundingHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, submitLimiter *middleware.SubmitRateLimiter) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.GET("/health", handlers.Health.GetHealth)

		v1.GET("/catalog/durations", handlers.Catalog.GetDurations)
		v1.GET("/catalog/banks", handlers.Catalog.GetBanks)
		v1.GET("/catalog/:service", handlers.Catalog.GetService)
		v1.GET("/catalog/:service/:provider/:category/plans", handlers.Catalog.GetPlans)

		v1.POST("/orders/validate", handlers.Order.Validate)
		v1.POST("/orders/quote", handlers.Order.Quote)
		v1.GET("/orders", handlers.Order.History)

		v1.POST("/sessions", handlers.Session.Create)
		v1.GET("/sessions/:id", handlers.Session.Get)
		v1.PATCH("/sessions/:id", handlers.Session.Update)
		v1.POST("/sessions/:id/submit", submitLimiter.Middleware(), handlers.Session.Submit)
		v1.GET("/sessions/:id/orders", handlers.Session.Orders)
		v1.GET("/sessions/:id/events", handlers.Session.Events)

		v1.GET("/funding/instructions", handlers.Funding.GetInstructions)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
