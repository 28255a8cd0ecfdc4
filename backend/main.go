package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptmarket/backend/config"
	"promptmarket/backend/middleware"
	"promptmarket/backend/routes"
	"promptmarket/backend/services"
	"promptmarket/backend/store"
	"promptmarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}
	if err := utils.Migrate(db); err != nil {
		logger.Fatal("Error migrating database", zap.Error(err))
	}

	templates := store.NewTemplateStore(db)
	users := store.NewUserStore(db)
	ratings := store.NewRatingStore(db)
	upvotes := store.NewUpvoteStore(db)
	comments := store.NewCommentStore(db)

	var notifier services.Notifier
	if cfg.SendGridAPIKey != "" {
		notifier, err = services.NewSendGridNotifier(services.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.MailFromEmail,
			FromName:  cfg.MailFromName,
		}, logger)
		if err != nil {
			logger.Fatal("Error initializing mail notifier", zap.Error(err))
		}
	} else {
		logger.Warn("SENDGRID_API_KEY not set, promotion notices will only be logged")
		notifier = services.NewLogNotifier(logger)
	}

	evaluator := services.NewExpertEvaluator(templates, ratings, users, notifier, services.DefaultPromotionCriteria(), logger)
	dispatcher := services.NewEvaluationDispatcher(evaluator, services.DispatcherConfig{
		Workers:   cfg.EvaluatorWorkers,
		QueueSize: cfg.EvaluatorQueueSize,
		Timeout:   cfg.EvaluatorTimeout,
	}, logger)
	dispatcher.Start()

	svc := services.NewEngagementService(services.EngagementDeps{
		Templates:       templates,
		Users:           users,
		Ratings:         ratings,
		Upvotes:         upvotes,
		Comments:        comments,
		Scheduler:       dispatcher,
		BulkConcurrency: cfg.BulkSummaryConcurrency,
	}, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          utils.ErrorHandler,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(recover.New())

	// Setup routes
	routes.SetupRoutes(app, cfg, svc, users, logger)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.EvaluatorTimeout+5*time.Second)
	defer cancel()
	if err := dispatcher.Stop(ctx); err != nil {
		logger.Error("evaluation dispatcher shutdown", zap.Error(err))
	}
}
