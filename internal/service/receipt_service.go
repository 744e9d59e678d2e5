package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/events"
	"pocket-coach/internal/models"
	"pocket-coach/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var receiptExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true, ".pdf": true,
}

// ReceiptOptions carries the storage settings of the scan flow.
type ReceiptOptions struct {
	UploadDir   string
	PublicURL   string
	MaxFileSize int64
}

type ReceiptService struct {
	receiptRepo ReceiptRepository
	expenses    *ExpenseService
	categories  *CategoryService
	ocr         *OCRService
	vision      ReceiptVision
	chat        ChatModel
	opts        ReceiptOptions
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewReceiptService wires the scan flow. vision and chat may be nil; a
// service with neither refuses to scan.
func NewReceiptService(
	receiptRepo ReceiptRepository,
	expenses *ExpenseService,
	categories *CategoryService,
	ocr *OCRService,
	vision ReceiptVision,
	chat ChatModel,
	opts ReceiptOptions,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ReceiptService {
	if err := os.MkdirAll(opts.UploadDir, 0755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}
	opts.PublicURL = strings.TrimSuffix(opts.PublicURL, "/")

	return &ReceiptService{
		receiptRepo: receiptRepo,
		expenses:    expenses,
		categories:  categories,
		ocr:         ocr,
		vision:      vision,
		chat:        chat,
		opts:        opts,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// Scan stores the receipt file and reads it with the configured extractor.
// A failed extraction still leaves the receipt stored; the response then
// carries status "failed" and the reason.
func (s *ReceiptService) Scan(ctx context.Context, userID uuid.UUID, data []byte, fileName string) (*dto.ReceiptScanResponse, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !receiptExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported file format %q (supported: jpg, jpeg, png, webp, heic, pdf)", ErrInvalidInput, ext)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, s.opts.MaxFileSize)
	}
	if s.vision == nil && (s.chat == nil || ext != ".pdf") {
		return nil, ErrVisionUnavailable
	}

	rc, err := s.store(ctx, userID, data, ext)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReceiptScanResponse{
		ReceiptID: rc.ID.String(),
		ImageURL:  rc.ImageURL,
	}

	extraction, provider, err := s.extract(ctx, data, fileName)
	if err != nil {
		s.logger.Error("Receipt extraction failed",
			zap.String("receipt_id", rc.ID.String()),
			zap.String("provider", provider),
			zap.Error(err),
		)
		s.metrics.ReceiptScan(provider, "failed")

		msg := truncate(err.Error(), 500)
		if uerr := s.receiptRepo.UpdateExtraction(ctx, rc.ID, models.ReceiptStatusFailed, nil, &msg); uerr != nil {
			return nil, fmt.Errorf("failed to record extraction failure: %w", uerr)
		}
		resp.Status = string(models.ReceiptStatusFailed)
		resp.Error = "Não foi possível ler o recibo. Preenche os dados manualmente."
		return resp, nil
	}

	raw, err := json.Marshal(extraction)
	if err != nil {
		return nil, fmt.Errorf("failed to encode extraction: %w", err)
	}
	if err := s.receiptRepo.UpdateExtraction(ctx, rc.ID, models.ReceiptStatusExtracted, raw, nil); err != nil {
		return nil, fmt.Errorf("failed to save extraction: %w", err)
	}
	s.metrics.ReceiptScan(provider, "extracted")

	resp.Status = string(models.ReceiptStatusExtracted)
	resp.Extraction = toExtractionResponse(extraction)

	if c, err := s.categories.MatchByName(ctx, userID, extraction.Category); err != nil {
		s.logger.Warn("Category match failed", zap.Error(err))
	} else if c != nil {
		id := c.ID.String()
		resp.SuggestedCategoryID = &id
	}

	s.publisher.Publish(ctx, events.New(events.ReceiptScanned, userID, map[string]any{
		"receipt_id": rc.ID.String(),
		"provider":   provider,
		"total":      extraction.Total.String(),
	}))

	s.logger.Info("Receipt extracted",
		zap.String("receipt_id", rc.ID.String()),
		zap.String("provider", provider),
		zap.Float64("confidence", extraction.Confidence),
	)
	return resp, nil
}

// Commit turns an extracted receipt into an expense, applying req's
// overrides on top of the extraction.
func (s *ReceiptService) Commit(ctx context.Context, userID, receiptID uuid.UUID, req *dto.CommitReceiptRequest) (*dto.ExpenseResponse, error) {
	rc, err := s.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if rc.UserID != userID {
		return nil, ErrNotFound
	}
	if rc.Status == models.ReceiptStatusCommitted {
		return nil, fmt.Errorf("%w: receipt already committed", ErrInvalidInput)
	}

	var x models.ReceiptExtraction
	if len(rc.ExtractionJSON) > 0 {
		if err := json.Unmarshal(rc.ExtractionJSON, &x); err != nil {
			return nil, fmt.Errorf("failed to decode stored extraction: %w", err)
		}
	}

	e, err := s.expenseFromReceipt(ctx, userID, rc, &x, req)
	if err != nil {
		return nil, err
	}

	if err := s.receiptRepo.Claim(ctx, rc.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: receipt already committed", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to claim receipt: %w", err)
	}
	if err := s.expenses.Save(ctx, e, "receipt"); err != nil {
		if rerr := s.receiptRepo.UpdateStatus(ctx, rc.ID, rc.Status); rerr != nil {
			s.logger.Error("Failed to release receipt claim",
				zap.String("receipt_id", rc.ID.String()),
				zap.Error(rerr),
			)
		}
		return nil, err
	}

	resp := toExpenseResponse(e)
	return &resp, nil
}

func (s *ReceiptService) expenseFromReceipt(ctx context.Context, userID uuid.UUID, rc *models.Receipt, x *models.ReceiptExtraction, req *dto.CommitReceiptRequest) (*models.Expense, error) {
	dateStr := x.Date
	if req.Date != nil {
		dateStr = *req.Date
	}
	if dateStr == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	date, err := models.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	amount := x.Total
	if req.Amount != nil {
		amount = *req.Amount
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}

	currency := req.Currency
	if currency == nil && x.Currency != "" {
		currency = &x.Currency
	}
	cur, err := s.expenses.currencyFor(ctx, userID, currency)
	if err != nil {
		return nil, err
	}

	merchant := req.Merchant
	if merchant == nil {
		merchant = &x.Merchant
	}
	payment := req.PaymentMethod
	if payment == nil && x.PaymentMethod != "" {
		payment = &x.PaymentMethod
	}

	now := time.Now()
	receiptID := rc.ID
	confidence := x.Confidence
	e := &models.Expense{
		ID:                uuid.New(),
		UserID:            userID,
		ReceiptID:         &receiptID,
		Merchant:          nonEmpty(merchant),
		Date:              date,
		Amount:            amount.Round(2),
		Currency:          cur,
		PaymentMethod:     nonEmpty(payment),
		Notes:             nonEmpty(req.Notes),
		IsAIExtracted:     true,
		ConfidenceScore:   &confidence,
		RawExtractionJSON: rc.ExtractionJSON,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if len(x.Items) > 0 {
		items, err := json.Marshal(x.Items)
		if err != nil {
			return nil, fmt.Errorf("failed to encode receipt items: %w", err)
		}
		e.Items = items
	}

	if req.CategoryID != nil {
		if err := s.expenses.attachCategory(ctx, userID, e, req.CategoryID); err != nil {
			return nil, err
		}
	} else if c, err := s.categories.MatchByName(ctx, userID, x.Category); err != nil {
		return nil, err
	} else if c != nil {
		e.CategoryID = &c.ID
		e.Category = c
	}

	return e, nil
}

func (s *ReceiptService) store(ctx context.Context, userID uuid.UUID, data []byte, ext string) (*models.Receipt, error) {
	id := uuid.New()
	name := id.String() + ext
	path := filepath.Join(s.opts.UploadDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	rc := &models.Receipt{
		ID:          id,
		UserID:      userID,
		ImageURL:    s.opts.PublicURL + "/" + name,
		StoragePath: path,
		Status:      models.ReceiptStatusUploaded,
		UploadedAt:  time.Now(),
	}
	if err := s.receiptRepo.Create(ctx, rc); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to create receipt record: %w", err)
	}
	return rc, nil
}

// extract prefers the PDF text layer when a chat model can structure it, and
// otherwise sends the file to the vision model.
func (s *ReceiptService) extract(ctx context.Context, data []byte, fileName string) (*models.ReceiptExtraction, string, error) {
	if strings.EqualFold(filepath.Ext(fileName), ".pdf") && s.chat != nil && s.ocr != nil {
		x, err := s.extractFromPDFText(ctx, data)
		if err == nil {
			return x, "pdf-text", nil
		}
		s.logger.Info("PDF text path unavailable, falling back to vision", zap.Error(err))
		if s.vision == nil {
			return nil, "pdf-text", err
		}
	}
	if s.vision == nil {
		return nil, "none", ErrVisionUnavailable
	}

	x, err := s.vision.ExtractReceipt(ctx, data, fileName)
	return x, s.vision.Provider(), err
}

func (s *ReceiptService) extractFromPDFText(ctx context.Context, data []byte) (*models.ReceiptExtraction, error) {
	text, err := s.ocr.ExtractPDFText(data)
	if err != nil {
		return nil, err
	}
	content, err := s.chat.Complete(ctx, receiptPrompt, "Texto do recibo:\n\n"+truncate(text, 6000))
	if err != nil {
		return nil, err
	}
	x, err := parseReceiptExtraction(content)
	if err != nil {
		return nil, errors.Join(errors.New("unparseable structured receipt"), err)
	}
	return x, nil
}
