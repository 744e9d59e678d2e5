package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CalendarHandler struct {
	calendar CalendarService
	logger   *zap.Logger
}

func NewCalendarHandler(calendar CalendarService, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, logger: logger}
}

// Month godoc
// @Summary Calendar month
// @Description Days with transactions and their totals
// @Tags calendar
// @Produce json
// @Security Bearer
// @Param month path string true "YYYY-MM"
// @Success 200 {object} dto.CalendarMonthResponse
// @Failure 400 {object} map[string]string
// @Router /calendar/{month} [get]
func (h *CalendarHandler) Month(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.calendar.Month(c.Context(), userID, c.Params("month"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load calendar")
	}
	return c.JSON(resp)
}

// Day godoc
// @Summary Calendar day
// @Description Transactions of a single day
// @Tags calendar
// @Produce json
// @Security Bearer
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} dto.CalendarDayResponse
// @Failure 400 {object} map[string]string
// @Router /calendar/day/{date} [get]
func (h *CalendarHandler) Day(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.calendar.Day(c.Context(), userID, c.Params("date"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load day")
	}
	return c.JSON(resp)
}
