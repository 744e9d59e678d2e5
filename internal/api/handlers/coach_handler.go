package handlers

import (
	"pocket-coach/internal/dto"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CoachHandler struct {
	coach  CoachService
	logger *zap.Logger
}

func NewCoachHandler(coach CoachService, logger *zap.Logger) *CoachHandler {
	return &CoachHandler{coach: coach, logger: logger}
}

// Financials godoc
// @Summary Financial insights
// @Description Current month spending against the previous month, by category
// @Tags coach
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.FinancialInsightsResponse
// @Router /coach/financials [get]
func (h *CoachHandler) Financials(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.coach.FinancialsResponse(c.Context(), userID, now())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to analyze spending")
	}
	return c.JSON(resp)
}

// Habits godoc
// @Summary Habit insights
// @Description Best and worst habit of the current month
// @Tags coach
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.HabitInsightsResponse
// @Router /coach/habits [get]
func (h *CoachHandler) Habits(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.coach.HabitsResponse(c.Context(), userID, now())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to analyze habits")
	}
	return c.JSON(resp)
}

// Advice godoc
// @Summary Savings advice
// @Description Advice towards a goal based on this month's spending
// @Tags coach
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.AdviceRequest true "Goal"
// @Success 200 {object} dto.AdviceResponse
// @Router /coach/advice [post]
func (h *CoachHandler) Advice(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.AdviceRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.coach.Advice(c.Context(), userID, now(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to build advice")
	}
	return c.JSON(resp)
}

// Chat godoc
// @Summary Chat with the coach
// @Tags coach
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.ChatRequest true "Message"
// @Success 200 {object} dto.ChatResponse
// @Router /coach/chat [post]
func (h *CoachHandler) Chat(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ChatRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.coach.Reply(c.Context(), userID, req.Message, now())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to reply")
	}
	return c.JSON(resp)
}
