package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pocket-coach/internal/api"
	"pocket-coach/internal/api/handlers"
	"pocket-coach/internal/events"
	"pocket-coach/internal/repository"
	"pocket-coach/internal/service"
	"pocket-coach/internal/storage"
	"pocket-coach/pkg/auth"
	"pocket-coach/pkg/config"
	"pocket-coach/pkg/logger"
	"pocket-coach/pkg/metrics"
	"pocket-coach/pkg/middleware"
	"pocket-coach/pkg/postgres"

	"go.uber.org/zap"
)

//go:generate swag init --dir ../.. --generalInfo cmd/pocket-coach/main.go --output ../../docs --outputTypes go --parseInternal

// @title Pocket Coach API
// @version 1.0
// @description Finanças pessoais e hábitos: despesas, recibos, metas, planeadores e um coach.

// @contact.name API Support
// @contact.email support@pocket-coach.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Pocket Coach service")

	if err := storage.RunMigrations(cfg.Database.URL(), storage.Up, appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	m := metrics.New()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.Enabled() {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger.Named("events"))
		if err != nil {
			appLogger.Warn("Event broker unavailable, events are disabled", zap.Error(err))
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)
	receiptRepo := repository.NewReceiptRepository(db, appLogger)
	plannerRepo := repository.NewPlannerRepository(db, appLogger)
	habitRepo := repository.NewHabitRepository(db, appLogger)
	habitLogRepo := repository.NewHabitLogRepository(db, appLogger)
	goalRepo := repository.NewGoalRepository(db, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	chat, vision, closeAI := initAI(ctx, cfg, m, appLogger)
	defer closeAI()

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	categoryService := service.NewCategoryService(categoryRepo, appLogger)
	expenseService := service.NewExpenseService(expenseRepo, userRepo, categoryService, publisher, m, appLogger)
	calendarService := service.NewCalendarService(expenseService, appLogger)
	plannerService := service.NewPlannerService(plannerRepo, habitRepo, habitLogRepo, publisher, m, appLogger)
	goalService := service.NewGoalService(goalRepo, habitRepo, categoryService, expenseService, plannerService, publisher, appLogger)
	ragService := service.NewRAGService(knowledgeRepo, appLogger)
	coachService := service.NewCoachService(expenseService, plannerService, ragService, chat, m, appLogger)
	reportService := service.NewReportService(userRepo, expenseService, m, appLogger)
	receiptService := service.NewReceiptService(
		receiptRepo,
		expenseService,
		categoryService,
		service.NewOCRService(appLogger),
		vision,
		chat,
		service.ReceiptOptions{
			UploadDir:   cfg.Storage.UploadDir,
			PublicURL:   cfg.Storage.PublicURL,
			MaxFileSize: cfg.Vision.MaxFileSize,
		},
		publisher,
		m,
		appLogger,
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	stopCleanup := make(chan struct{})
	go limiter.Cleanup(stopCleanup)
	defer close(stopCleanup)

	// Setup router
	app := api.SetupRouter(api.Handlers{
		Auth:     handlers.NewAuthHandler(authService, appLogger),
		Category: handlers.NewCategoryHandler(categoryService, appLogger),
		Expense:  handlers.NewExpenseHandler(expenseService, appLogger),
		Calendar: handlers.NewCalendarHandler(calendarService, appLogger),
		Planner:  handlers.NewPlannerHandler(plannerService, appLogger),
		Goal:     handlers.NewGoalHandler(goalService, appLogger),
		Receipt:  handlers.NewReceiptHandler(receiptService, appLogger),
		Coach:    handlers.NewCoachHandler(coachService, appLogger),
		Report:   handlers.NewReportHandler(reportService, appLogger),
	}, jwtManager, api.Options{
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		UploadDir:    cfg.Storage.UploadDir,
		Limiter:      limiter,
		Metrics:      m,
	}, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

// initAI picks the chat model and the receipt reader from config. Either may
// be nil, in which case the coach answers from canned text and receipt
// scanning is unavailable.
func initAI(ctx context.Context, cfg *config.Config, m *metrics.Metrics, appLogger *zap.Logger) (service.ChatModel, service.ReceiptVision, func()) {
	var (
		chat   service.ChatModel
		vision service.ReceiptVision
	)

	var giga *service.LLMService
	if cfg.GigaChat.Enabled() {
		svc, err := service.NewLLMService(&cfg.GigaChat, m, logger.Named("gigachat"))
		if err != nil {
			appLogger.Warn("GigaChat unavailable", zap.Error(err))
		} else {
			giga = svc
			chat = svc
		}
	}

	var gemini *service.GeminiVision
	if cfg.Gemini.Enabled() {
		svc, err := service.NewGeminiVision(ctx, &cfg.Gemini, m, logger.Named("gemini"))
		if err != nil {
			appLogger.Warn("Gemini unavailable", zap.Error(err))
		} else {
			gemini = svc
			if chat == nil {
				chat = svc
			}
		}
	}

	switch cfg.Vision.Provider {
	case "gigachat":
		if giga != nil {
			vision = giga
		}
	case "gemini":
		if gemini != nil {
			vision = gemini
		}
	}

	appLogger.Info("AI providers",
		zap.Bool("chat", chat != nil),
		zap.Bool("vision", vision != nil),
		zap.String("vision_provider", cfg.Vision.Provider),
	)
	closeAI := func() {
		if giga == nil {
			return
		}
		if err := giga.Close(); err != nil {
			appLogger.Warn("Failed to close GigaChat client", zap.Error(err))
		}
	}
	return chat, vision, closeAI
}
