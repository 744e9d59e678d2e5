package handlers

import (
	"errors"
	"fmt"
	"time"

	"pocket-coach/internal/models"
	"pocket-coach/internal/service"
	"pocket-coach/internal/validation"
	"pocket-coach/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errUnauthorized = errors.New("unauthorized")

// now is swapped in tests.
var now = time.Now

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, errUnauthorized
	}
	return id, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// parseBody decodes and validates the JSON body into req. On failure it has
// already written the 400 response and returns false.
func parseBody(c *fiber.Ctx, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, badRequest(c, "Invalid request body")
	}
	if err := validation.GetValidator().Struct(req); err != nil {
		return false, badRequest(c, err.Error())
	}
	return true, nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// dateRange reads ?start=&end= (YYYY-MM-DD), defaulting to the current month.
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	month := models.MonthOf(now())
	start, end := month.Start(), month.End()

	if s := c.Query("start"); s != "" {
		t, err := models.ParseDate(s)
		if err != nil {
			return start, end, err
		}
		start = t
	}
	if s := c.Query("end"); s != "" {
		t, err := models.ParseDate(s)
		if err != nil {
			return start, end, err
		}
		end = t
	}
	if end.Before(start) {
		return start, end, errors.New("end is before start")
	}
	return start, end, nil
}

// respondError maps service errors to HTTP statuses. Unexpected errors are
// logged and answered with fallback.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	msg := fallback

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, msg = fiber.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrForbidden):
		status, msg = fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, service.ErrInvalidInput):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUserExists):
		status, msg = fiber.StatusConflict, "User already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = fiber.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrLastPlanner):
		status, msg = fiber.StatusConflict, "Cannot delete the last planner"
	case errors.Is(err, service.ErrVisionUnavailable):
		status, msg = fiber.StatusServiceUnavailable, "Receipt scanning is not available"
	default:
		logger.Error(fallback, zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// monthQuery reads ?month=YYYY-MM, defaulting to the current month.
func monthQuery(c *fiber.Ctx) string {
	if m := c.Query("month"); m != "" {
		return m
	}
	return models.MonthOf(now()).String()
}
