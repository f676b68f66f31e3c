package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/api/handlers"
	"github.com/sanctuary-network/backend/internal/llm"
	"github.com/sanctuary-network/backend/internal/matching"
	"github.com/sanctuary-network/backend/internal/metrics"
	"github.com/sanctuary-network/backend/internal/middleware/ratelimit"
	"github.com/sanctuary-network/backend/internal/middleware/security"
	"github.com/sanctuary-network/backend/internal/storage/sqlite"
	"github.com/sanctuary-network/backend/internal/structuring"
	"github.com/sanctuary-network/backend/pkg/config"
	appLogger "github.com/sanctuary-network/backend/pkg/logger"
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

	appLogger.Info("Starting Sanctuary Network API Server")

	metrics.Init()

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var limiterStore ratelimit.Store
	switch cfg.RateLimit.Backend {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		limiterStore = ratelimit.NewRedisStore(redisClient)
		appLogger.Info("Rate limiting backed by Redis",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	default:
		memStore := ratelimit.NewMemoryStore()
		defer memStore.Close()
		limiterStore = memStore
		appLogger.Info("Rate limiting backed by process memory")
	}

	llmClient := llm.NewClient(cfg.LLM)
	structurer := structuring.NewStructurer(llmClient)
	scorer := matching.NewScorer(llmClient, cfg.LLM)
	orchestrator := matching.NewOrchestrator(store, scorer, cfg.Matching)

	dispatcher := matching.NewDispatcher(orchestrator, 64)
	dispatcher.Start(2)
	defer dispatcher.Stop()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))

	apiLimiter := ratelimit.Middleware(ratelimit.Config{
		Name:   "api",
		Max:    int64(cfg.RateLimit.APIMax),
		Window: time.Duration(cfg.RateLimit.APIWindowSec) * time.Second,
		Store:  limiterStore,
	})
	submitLimiter := ratelimit.Middleware(ratelimit.Config{
		Name:   "submit",
		Max:    int64(cfg.RateLimit.SubmitMax),
		Window: time.Duration(cfg.RateLimit.SubmitWindowSec) * time.Second,
		Store:  limiterStore,
	})

	startupHandler := handlers.NewStartupHandler(store)
	mentorHandler := handlers.NewMentorHandler(store)
	bottleneckHandler := handlers.NewBottleneckHandler(store, structurer, orchestrator, dispatcher)
	experienceHandler := handlers.NewExperienceHandler(store, structurer)
	matchHandler := handlers.NewMatchHandler(store)
	operatorHandler := handlers.NewOperatorHandler(store)

	api := app.Group("/api", apiLimiter)

	api.Post("/startups", startupHandler.Create)
	api.Get("/startups/:id", startupHandler.Get)

	api.Post("/mentors", mentorHandler.Create)
	api.Get("/mentors", mentorHandler.List)
	api.Get("/mentors/:id", mentorHandler.Get)

	api.Post("/bottlenecks", submitLimiter, bottleneckHandler.Submit)
	api.Get("/bottlenecks/:id", bottleneckHandler.Get)
	api.Get("/bottlenecks/:id/matches", bottleneckHandler.ListMatches)
	api.Post("/bottlenecks/:id/rematch", bottleneckHandler.Rematch)

	api.Post("/experiences", submitLimiter, experienceHandler.Submit)
	api.Get("/experiences/:id", experienceHandler.Get)

	api.Get("/matches/:id", matchHandler.Get)
	api.Post("/matches/:id/approve", matchHandler.Approve)
	api.Post("/matches/:id/reject", matchHandler.Reject)
	api.Post("/matches/:id/intro-sent", matchHandler.IntroSent)
	api.Post("/matches/:id/feedback", matchHandler.SubmitFeedback)

	api.Get("/operator/dashboard", operatorHandler.Dashboard)
	api.Get("/operator/analytics", operatorHandler.Analytics)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

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
	app.Shutdown()
	appLogger.Info("Server stopped")
}
