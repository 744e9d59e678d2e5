package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/events"
	"pocket-coach/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ReceiptServiceTestSuite struct {
	suite.Suite
	receipts    *mockReceiptRepo
	expenseRepo *mockExpenseRepo
	catRepo     *mockCategoryRepo
	vision      *mockVision
	publisher   *recordingPublisher
	dir         string
	userID      uuid.UUID
}

func (s *ReceiptServiceTestSuite) SetupTest() {
	s.receipts = new(mockReceiptRepo)
	s.expenseRepo = new(mockExpenseRepo)
	s.catRepo = new(mockCategoryRepo)
	s.vision = new(mockVision)
	s.publisher = &recordingPublisher{}
	s.dir = s.T().TempDir()
	s.userID = uuid.New()
}

func (s *ReceiptServiceTestSuite) TearDownTest() {
	s.receipts.AssertExpectations(s.T())
	s.expenseRepo.AssertExpectations(s.T())
	s.vision.AssertExpectations(s.T())
}

func TestReceiptServiceSuite(t *testing.T) {
	suite.Run(t, new(ReceiptServiceTestSuite))
}

func (s *ReceiptServiceTestSuite) service(vision ReceiptVision) *ReceiptService {
	logger := zap.NewNop()
	categories := NewCategoryService(s.catRepo, logger)
	expenses := NewExpenseService(s.expenseRepo, new(mockUserRepo), categories, s.publisher, nil, logger)
	return NewReceiptService(s.receipts, expenses, categories, NewOCRService(logger), vision, nil,
		ReceiptOptions{UploadDir: s.dir, PublicURL: "/uploads/", MaxFileSize: 1024},
		s.publisher, nil, logger)
}

func (s *ReceiptServiceTestSuite) TestScan_Extracted() {
	food := category("Alimentação", "#D4A574", models.CategoryTypeExpense)
	x := &models.ReceiptExtraction{Merchant: "Continente", Date: "2026-10-17", Total: dec("18.40"), Currency: "EUR", Category: "alimentação", Confidence: 0.8}
	data := []byte("jpeg bytes")

	s.receipts.On("Create", mock.Anything, mock.MatchedBy(func(rc *models.Receipt) bool {
		return rc.UserID == s.userID && rc.Status == models.ReceiptStatusUploaded &&
			strings.HasPrefix(rc.ImageURL, "/uploads/") && strings.HasSuffix(rc.ImageURL, ".jpg")
	})).Return(nil)
	s.vision.On("ExtractReceipt", mock.Anything, data, "talao.jpg").Return(x, nil)
	s.receipts.On("UpdateExtraction", mock.Anything, mock.Anything, models.ReceiptStatusExtracted, mock.Anything, (*string)(nil)).Return(nil)
	s.catRepo.On("ListForUser", mock.Anything, s.userID, mock.Anything).Return([]*models.Category{food}, nil)

	resp, err := s.service(s.vision).Scan(context.Background(), s.userID, data, "talao.jpg")

	s.Require().NoError(err)
	s.Equal("extracted", resp.Status)
	s.Require().NotNil(resp.Extraction)
	s.Equal(18.4, resp.Extraction.Total)
	s.Require().NotNil(resp.SuggestedCategoryID)
	s.Equal(food.ID.String(), *resp.SuggestedCategoryID)
	s.Equal([]events.Type{events.ReceiptScanned}, s.publisher.types())

	stored, err := os.ReadFile(filepath.Join(s.dir, resp.ReceiptID+".jpg"))
	s.Require().NoError(err)
	s.Equal(data, stored)
}

func (s *ReceiptServiceTestSuite) TestScan_ExtractionFailureKeepsReceipt() {
	data := []byte("blurry")
	s.receipts.On("Create", mock.Anything, mock.Anything).Return(nil)
	s.vision.On("ExtractReceipt", mock.Anything, data, "talao.png").Return(nil, errors.New("model overloaded"))
	s.receipts.On("UpdateExtraction", mock.Anything, mock.Anything, models.ReceiptStatusFailed, mock.Anything,
		mock.MatchedBy(func(msg *string) bool { return msg != nil && strings.Contains(*msg, "model overloaded") })).Return(nil)

	resp, err := s.service(s.vision).Scan(context.Background(), s.userID, data, "talao.png")

	s.Require().NoError(err)
	s.Equal("failed", resp.Status)
	s.NotEmpty(resp.Error)
	s.Nil(resp.Extraction)
	s.Empty(s.publisher.types())
}

func (s *ReceiptServiceTestSuite) TestScan_Rejects() {
	svc := s.service(s.vision)

	_, err := svc.Scan(context.Background(), s.userID, []byte("x"), "talao.gif")
	s.ErrorIs(err, ErrInvalidInput)

	_, err = svc.Scan(context.Background(), s.userID, make([]byte, 2048), "talao.jpg")
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.service(nil).Scan(context.Background(), s.userID, []byte("x"), "talao.jpg")
	s.ErrorIs(err, ErrVisionUnavailable)
}

func (s *ReceiptServiceTestSuite) TestCommit_LosesRaceWithoutExpense() {
	rc := s.storedReceipt(&models.ReceiptExtraction{Total: dec("5"), Date: "2026-10-17", Currency: "EUR"})
	s.receipts.On("GetByID", mock.Anything, rc.ID).Return(rc, nil)
	s.receipts.On("Claim", mock.Anything, rc.ID).Return(ErrNotFound)

	_, err := s.service(s.vision).Commit(context.Background(), s.userID, rc.ID, &dto.CommitReceiptRequest{})

	s.ErrorIs(err, ErrInvalidInput)
	s.expenseRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	s.Empty(s.publisher.types())
}

func (s *ReceiptServiceTestSuite) TestCommit_SaveFailureReleasesClaim() {
	rc := s.storedReceipt(&models.ReceiptExtraction{Total: dec("5"), Date: "2026-10-17", Currency: "EUR"})
	s.receipts.On("GetByID", mock.Anything, rc.ID).Return(rc, nil)
	s.receipts.On("Claim", mock.Anything, rc.ID).Return(nil)
	s.expenseRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	s.receipts.On("UpdateStatus", mock.Anything, rc.ID, models.ReceiptStatusExtracted).Return(nil)

	_, err := s.service(s.vision).Commit(context.Background(), s.userID, rc.ID, &dto.CommitReceiptRequest{})

	s.Require().Error(err)
	s.Contains(err.Error(), "connection reset")
	s.Empty(s.publisher.types())
}

func (s *ReceiptServiceTestSuite) storedReceipt(x *models.ReceiptExtraction) *models.Receipt {
	raw, err := json.Marshal(x)
	s.Require().NoError(err)
	return &models.Receipt{
		ID:             uuid.New(),
		UserID:         s.userID,
		Status:         models.ReceiptStatusExtracted,
		ExtractionJSON: raw,
	}
}

func (s *ReceiptServiceTestSuite) TestCommit_UsesExtractionAndOverrides() {
	food := category("Alimentação", "#D4A574", models.CategoryTypeExpense)
	rc := s.storedReceipt(&models.ReceiptExtraction{
		Merchant: "Continente", Date: "2026-10-17", Total: dec("18.40"), Currency: "EUR",
		Category: "Alimentação", Confidence: 0.8,
		Items: []models.ReceiptItem{{Name: "Leite", Quantity: dec("2"), Price: dec("0.89")}},
	})

	s.receipts.On("GetByID", mock.Anything, rc.ID).Return(rc, nil)
	s.catRepo.On("ListForUser", mock.Anything, s.userID, mock.Anything).Return([]*models.Category{food}, nil)
	s.expenseRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.Expense) bool {
		return e.IsAIExtracted && e.ReceiptID != nil && *e.ReceiptID == rc.ID &&
			e.Amount.Equal(dec("20")) && e.Merchant != nil && *e.Merchant == "Continente" &&
			e.CategoryID != nil && *e.CategoryID == food.ID &&
			e.ConfidenceScore != nil && *e.ConfidenceScore == 0.8 &&
			len(e.RawExtractionJSON) > 0 && len(e.Items) > 0
	})).Return(nil)
	s.receipts.On("Claim", mock.Anything, rc.ID).Return(nil)

	amount := dec("20")
	resp, err := s.service(s.vision).Commit(context.Background(), s.userID, rc.ID, &dto.CommitReceiptRequest{Amount: &amount})

	s.Require().NoError(err)
	s.Equal(20.0, resp.Amount)
	s.Equal("2026-10-17", resp.Date)
	s.Equal([]events.Type{events.ExpenseCreated}, s.publisher.types())
}

func (s *ReceiptServiceTestSuite) TestCommit_Guards() {
	foreign := s.storedReceipt(&models.ReceiptExtraction{Total: dec("5"), Date: "2026-10-17"})
	foreign.UserID = uuid.New()
	done := s.storedReceipt(&models.ReceiptExtraction{Total: dec("5"), Date: "2026-10-17"})
	done.Status = models.ReceiptStatusCommitted
	failed := s.storedReceipt(&models.ReceiptExtraction{})
	failed.ExtractionJSON = nil
	failed.Status = models.ReceiptStatusFailed

	s.receipts.On("GetByID", mock.Anything, foreign.ID).Return(foreign, nil)
	s.receipts.On("GetByID", mock.Anything, done.ID).Return(done, nil)
	s.receipts.On("GetByID", mock.Anything, failed.ID).Return(failed, nil)

	svc := s.service(s.vision)
	_, err := svc.Commit(context.Background(), s.userID, foreign.ID, &dto.CommitReceiptRequest{})
	s.ErrorIs(err, ErrNotFound)

	_, err = svc.Commit(context.Background(), s.userID, done.ID, &dto.CommitReceiptRequest{})
	s.ErrorIs(err, ErrInvalidInput)

	_, err = svc.Commit(context.Background(), s.userID, failed.ID, &dto.CommitReceiptRequest{})
	s.ErrorIs(err, ErrInvalidInput)
}
