package handlers

import (
	"pocket-coach/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlannerHandler serves planners and the habits inside them.
type PlannerHandler struct {
	planner PlannerService
	logger  *zap.Logger
}

func NewPlannerHandler(planner PlannerService, logger *zap.Logger) *PlannerHandler {
	return &PlannerHandler{planner: planner, logger: logger}
}

// ListPlanners godoc
// @Summary List planners
// @Description A default planner is created on first use
// @Tags planners
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.PlannerResponse
// @Router /planners [get]
func (h *PlannerHandler) ListPlanners(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.planner.ListPlanners(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list planners")
	}
	return c.JSON(resp)
}

// CreatePlanner godoc
// @Summary Create planner
// @Tags planners
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.PlannerRequest true "Planner"
// @Success 201 {object} dto.PlannerResponse
// @Router /planners [post]
func (h *PlannerHandler) CreatePlanner(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.PlannerRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.planner.CreatePlanner(c.Context(), userID, req.Name)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create planner")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// RenamePlanner godoc
// @Summary Rename planner
// @Tags planners
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Planner ID"
// @Param request body dto.PlannerRequest true "Planner"
// @Success 200 {object} dto.PlannerResponse
// @Failure 404 {object} map[string]string
// @Router /planners/{id} [put]
func (h *PlannerHandler) RenamePlanner(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req dto.PlannerRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.planner.RenamePlanner(c.Context(), userID, id, req.Name)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to rename planner")
	}
	return c.JSON(resp)
}

// DeletePlanner godoc
// @Summary Delete planner
// @Description Archives the planner's habits. The last planner cannot be deleted.
// @Tags planners
// @Security Bearer
// @Param id path string true "Planner ID"
// @Success 204
// @Failure 409 {object} map[string]string
// @Router /planners/{id} [delete]
func (h *PlannerHandler) DeletePlanner(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.planner.DeletePlanner(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete planner")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Grid godoc
// @Summary Planner grid
// @Description Habit by day completion matrix for a month
// @Tags planners
// @Produce json
// @Security Bearer
// @Param id path string true "Planner ID"
// @Param month query string false "YYYY-MM, defaults to the current month"
// @Success 200 {object} dto.PlannerGridResponse
// @Router /planners/{id}/grid [get]
func (h *PlannerHandler) Grid(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.planner.Grid(c.Context(), userID, id, monthQuery(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to build grid")
	}
	return c.JSON(resp)
}

// ListHabits godoc
// @Summary List habits
// @Tags habits
// @Produce json
// @Security Bearer
// @Param planner_id query string false "Planner ID"
// @Success 200 {array} dto.HabitResponse
// @Router /habits [get]
func (h *PlannerHandler) ListHabits(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var plannerID *uuid.UUID
	if s := c.Query("planner_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return badRequest(c, "invalid planner_id")
		}
		plannerID = &id
	}

	resp, err := h.planner.ListHabits(c.Context(), userID, plannerID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list habits")
	}
	return c.JSON(resp)
}

// CreateHabit godoc
// @Summary Create habit
// @Tags habits
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.CreateHabitRequest true "Habit"
// @Success 201 {object} dto.HabitResponse
// @Failure 400 {object} map[string]string
// @Router /habits [post]
func (h *PlannerHandler) CreateHabit(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateHabitRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.planner.CreateHabit(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create habit")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DeleteHabit godoc
// @Summary Delete habit
// @Tags habits
// @Security Bearer
// @Param id path string true "Habit ID"
// @Success 204
// @Router /habits/{id} [delete]
func (h *PlannerHandler) DeleteHabit(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.planner.DeleteHabit(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete habit")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Logs godoc
// @Summary Habit logs
// @Description Completion logs in a date range (defaults to the current month)
// @Tags habits
// @Produce json
// @Security Bearer
// @Param start query string false "YYYY-MM-DD"
// @Param end query string false "YYYY-MM-DD"
// @Success 200 {array} dto.HabitLogResponse
// @Router /habits/logs [get]
func (h *PlannerHandler) Logs(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	start, end, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.planner.LogsResponse(c.Context(), userID, start, end)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load habit logs")
	}
	return c.JSON(resp)
}

// Toggle godoc
// @Summary Toggle habit
// @Description Flip the completion of a habit on a day
// @Tags habits
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Habit ID"
// @Param request body dto.ToggleHabitRequest true "Day"
// @Success 200 {object} dto.ToggleHabitResponse
// @Failure 404 {object} map[string]string
// @Router /habits/{id}/toggle [post]
func (h *PlannerHandler) Toggle(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req dto.ToggleHabitRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.planner.Toggle(c.Context(), userID, id, req.Date)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to toggle habit")
	}
	return c.JSON(resp)
}
