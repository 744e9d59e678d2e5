package handlers

import (
	"pocket-coach/internal/dto"
	"pocket-coach/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxExpensePage = 500

type ExpenseHandler struct {
	expenses ExpenseService
	logger   *zap.Logger
}

func NewExpenseHandler(expenses ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, logger: logger}
}

// List godoc
// @Summary List expenses
// @Description Records of the user, newest first
// @Tags expenses
// @Produce json
// @Security Bearer
// @Param start query string false "YYYY-MM-DD"
// @Param end query string false "YYYY-MM-DD"
// @Param category_id query string false "Category ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Router /expenses [get]
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var filter models.ExpenseFilter
	if s := c.Query("start"); s != "" {
		t, err := models.ParseDate(s)
		if err != nil {
			return badRequest(c, err.Error())
		}
		filter.Start = &t
	}
	if s := c.Query("end"); s != "" {
		t, err := models.ParseDate(s)
		if err != nil {
			return badRequest(c, err.Error())
		}
		filter.End = &t
	}
	if s := c.Query("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return badRequest(c, "invalid category_id")
		}
		filter.CategoryID = &id
	}
	filter.Limit = c.QueryInt("limit", 0)
	filter.Offset = c.QueryInt("offset", 0)
	if filter.Limit < 0 || filter.Limit > maxExpensePage || filter.Offset < 0 {
		return badRequest(c, "invalid pagination")
	}

	resp, err := h.expenses.List(c.Context(), userID, filter)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list expenses")
	}
	return c.JSON(resp)
}

// Create godoc
// @Summary Create expense
// @Description Record a manual expense or income
// @Tags expenses
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.CreateExpenseRequest true "Expense"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateExpenseRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.expenses.Create(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create expense")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Update godoc
// @Summary Update expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Expense ID"
// @Param request body dto.UpdateExpenseRequest true "Fields to change"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} map[string]string
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req dto.UpdateExpenseRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.expenses.Update(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update expense")
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete expense
// @Tags expenses
// @Security Bearer
// @Param id path string true "Expense ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.expenses.Delete(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete expense")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats godoc
// @Summary Expense statistics
// @Description Income, expense and per-category totals for a date range (defaults to the current month)
// @Tags expenses
// @Produce json
// @Security Bearer
// @Param start query string false "YYYY-MM-DD"
// @Param end query string false "YYYY-MM-DD"
// @Success 200 {object} dto.ExpenseStatsResponse
// @Router /expenses/stats [get]
func (h *ExpenseHandler) Stats(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	start, end, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.expenses.StatsResponse(c.Context(), userID, start, end)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to compute stats")
	}
	return c.JSON(resp)
}
