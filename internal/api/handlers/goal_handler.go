package handlers

import (
	"pocket-coach/internal/dto"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type GoalHandler struct {
	goals  GoalService
	logger *zap.Logger
}

func NewGoalHandler(goals GoalService, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, logger: logger}
}

// List godoc
// @Summary List goals
// @Tags goals
// @Produce json
// @Security Bearer
// @Param month query string false "YYYY-MM, defaults to the current month"
// @Success 200 {array} dto.GoalResponse
// @Router /goals [get]
func (h *GoalHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.goals.List(c.Context(), userID, monthQuery(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list goals")
	}
	return c.JSON(resp)
}

// Create godoc
// @Summary Create goal
// @Description Savings target or spending budget for a month
// @Tags goals
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.CreateGoalRequest true "Goal"
// @Success 201 {object} dto.GoalResponse
// @Failure 400 {object} map[string]string
// @Router /goals [post]
func (h *GoalHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateGoalRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.goals.Create(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create goal")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Delete godoc
// @Summary Delete goal
// @Tags goals
// @Security Bearer
// @Param id path string true "Goal ID"
// @Success 204
// @Router /goals/{id} [delete]
func (h *GoalHandler) Delete(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.goals.Delete(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete goal")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Progress godoc
// @Summary Goal progress
// @Tags goals
// @Produce json
// @Security Bearer
// @Param month query string false "YYYY-MM, defaults to the current month"
// @Success 200 {array} dto.GoalProgressResponse
// @Router /goals/progress [get]
func (h *GoalHandler) Progress(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.goals.Progress(c.Context(), userID, monthQuery(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to compute goal progress")
	}
	return c.JSON(resp)
}
