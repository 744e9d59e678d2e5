package api

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"pocket-coach/internal/api/handlers"
	"pocket-coach/pkg/auth"
	"pocket-coach/pkg/metrics"
	"pocket-coach/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	return SetupRouter(Handlers{
		Auth:     handlers.NewAuthHandler(nil, logger),
		Category: handlers.NewCategoryHandler(nil, logger),
		Expense:  handlers.NewExpenseHandler(nil, logger),
		Calendar: handlers.NewCalendarHandler(nil, logger),
		Planner:  handlers.NewPlannerHandler(nil, logger),
		Goal:     handlers.NewGoalHandler(nil, logger),
		Receipt:  handlers.NewReceiptHandler(nil, logger),
		Coach:    handlers.NewCoachHandler(nil, logger),
		Report:   handlers.NewReportHandler(nil, logger),
	}, auth.NewJWTManager("secret", time.Hour, time.Hour), Options{
		UploadDir: t.TempDir(),
		Limiter:   middleware.NewRateLimiter(1, 1),
		Metrics:   metrics.New(),
	}, logger)
}

func TestRouter(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"health", "GET", "/health", fiber.StatusOK},
		{"expenses need a token", "GET", "/api/v1/expenses", fiber.StatusUnauthorized},
		{"coach needs a token", "POST", "/api/v1/coach/chat", fiber.StatusUnauthorized},
		{"register is public", "POST", "/api/v1/user/auth/register", fiber.StatusBadRequest},
		{"unknown route", "GET", "/nope", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}
