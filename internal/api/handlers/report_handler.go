package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// Monthly godoc
// @Summary Monthly report
// @Description Downloadable spending report as HTML or PDF
// @Tags reports
// @Produce html
// @Produce application/pdf
// @Security Bearer
// @Param month query string false "YYYY-MM, defaults to the current month"
// @Param chart query string false "pie, bar or table"
// @Param format query string false "html or pdf"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /reports/monthly [get]
func (h *ReportHandler) Monthly(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	report, err := h.reports.Monthly(c.Context(), userID, monthQuery(c), c.Query("chart"), c.Query("format"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to generate report")
	}

	c.Set(fiber.HeaderContentType, report.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.FileName))
	return c.Send(report.Body)
}
