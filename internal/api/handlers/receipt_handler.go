package handlers

import (
	"io"

	"pocket-coach/internal/dto"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReceiptHandler struct {
	receipts ReceiptService
	logger   *zap.Logger
}

func NewReceiptHandler(receipts ReceiptService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts, logger: logger}
}

// Scan godoc
// @Summary Scan a receipt
// @Description Upload a receipt photo or PDF and extract merchant, date, total and items.
// @Description A receipt that cannot be read is returned with status "failed".
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param file formData file true "Receipt image (jpg, png, webp, heic) or PDF"
// @Success 200 {object} dto.ReceiptScanResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /receipts/scan [post]
func (h *ReceiptHandler) Scan(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "File is required")
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "Failed to open file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return badRequest(c, "Failed to read file")
	}

	resp, err := h.receipts.Scan(c.Context(), userID, data, file.Filename)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to scan receipt")
	}
	return c.JSON(resp)
}

// Commit godoc
// @Summary Commit a scanned receipt
// @Description Save the extracted receipt as an expense, applying any corrections
// @Tags receipts
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Receipt ID"
// @Param request body dto.CommitReceiptRequest false "Overrides"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /receipts/{id}/commit [post]
func (h *ReceiptHandler) Commit(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req dto.CommitReceiptRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
	}

	resp, err := h.receipts.Commit(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to commit receipt")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
