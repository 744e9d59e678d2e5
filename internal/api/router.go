package api

import (
	"os"
	"time"

	"pocket-coach/docs"
	"pocket-coach/internal/api/handlers"
	"pocket-coach/pkg/auth"
	"pocket-coach/pkg/metrics"
	"pocket-coach/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Category *handlers.CategoryHandler
	Expense  *handlers.ExpenseHandler
	Calendar *handlers.CalendarHandler
	Planner  *handlers.PlannerHandler
	Goal     *handlers.GoalHandler
	Receipt  *handlers.ReceiptHandler
	Coach    *handlers.CoachHandler
	Report   *handlers.ReportHandler
}

type Options struct {
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	UploadDir    string
	// Limiter guards the AI-backed routes. Nil disables it.
	Limiter *middleware.RateLimiter
	Metrics *metrics.Metrics
}

func SetupRouter(
	h Handlers,
	jwtManager *auth.JWTManager,
	opts Options,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    opts.BodyLimit,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())
	if opts.Metrics != nil {
		app.Use(middleware.Metrics(opts.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	if opts.UploadDir != "" && dirExists(opts.UploadDir) {
		appLogger.Info("Serving uploads", zap.String("path", opts.UploadDir))
		app.Static("/uploads", opts.UploadDir)
	} else {
		appLogger.Warn("Upload directory not found, receipts will not be served", zap.String("path", opts.UploadDir))
	}

	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/user/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(jwtManager, appLogger))

	limited := func(handler fiber.Handler) []fiber.Handler {
		if opts.Limiter == nil {
			return []fiber.Handler{handler}
		}
		return []fiber.Handler{opts.Limiter.Handler(), handler}
	}

	protected.Get("/profile", h.Auth.Profile)
	protected.Put("/profile", h.Auth.UpdateProfile)

	categories := protected.Group("/categories")
	categories.Get("", h.Category.List)
	categories.Post("", h.Category.Create)
	categories.Delete("/:id", h.Category.Delete)

	expenses := protected.Group("/expenses")
	expenses.Get("", h.Expense.List)
	expenses.Post("", h.Expense.Create)
	expenses.Get("/stats", h.Expense.Stats)
	expenses.Put("/:id", h.Expense.Update)
	expenses.Delete("/:id", h.Expense.Delete)

	calendar := protected.Group("/calendar")
	calendar.Get("/day/:date", h.Calendar.Day)
	calendar.Get("/:month", h.Calendar.Month)

	planners := protected.Group("/planners")
	planners.Get("", h.Planner.ListPlanners)
	planners.Post("", h.Planner.CreatePlanner)
	planners.Put("/:id", h.Planner.RenamePlanner)
	planners.Delete("/:id", h.Planner.DeletePlanner)
	planners.Get("/:id/grid", h.Planner.Grid)

	habits := protected.Group("/habits")
	habits.Get("", h.Planner.ListHabits)
	habits.Post("", h.Planner.CreateHabit)
	habits.Get("/logs", h.Planner.Logs)
	habits.Delete("/:id", h.Planner.DeleteHabit)
	habits.Post("/:id/toggle", h.Planner.Toggle)

	goals := protected.Group("/goals")
	goals.Get("", h.Goal.List)
	goals.Post("", h.Goal.Create)
	goals.Get("/progress", h.Goal.Progress)
	goals.Delete("/:id", h.Goal.Delete)

	receipts := protected.Group("/receipts")
	receipts.Post("/scan", limited(h.Receipt.Scan)...)
	receipts.Post("/:id/commit", h.Receipt.Commit)

	coach := protected.Group("/coach")
	coach.Get("/financials", h.Coach.Financials)
	coach.Get("/habits", h.Coach.Habits)
	coach.Post("/advice", limited(h.Coach.Advice)...)
	coach.Post("/chat", limited(h.Coach.Chat)...)

	protected.Get("/reports/monthly", h.Report.Monthly)

	return app
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
