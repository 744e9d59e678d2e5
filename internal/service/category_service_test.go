package service

import (
	"context"
	"testing"

	"pocket-coach/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	repo    *mockCategoryRepo
	service *CategoryService
	userID  uuid.UUID
}

func (s *CategoryServiceTestSuite) SetupTest() {
	s.repo = new(mockCategoryRepo)
	s.service = NewCategoryService(s.repo, zap.NewNop())
	s.userID = uuid.New()
}

func (s *CategoryServiceTestSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
}

func TestCategoryServiceSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func (s *CategoryServiceTestSuite) TestDelete_DefaultIsForbidden() {
	c := category("Alimentação", "#D4A574", models.CategoryTypeExpense)
	c.IsDefault = true
	s.repo.On("GetByID", mock.Anything, c.ID).Return(c, nil)

	err := s.service.Delete(context.Background(), s.userID, c.ID)

	s.ErrorIs(err, ErrForbidden)
	s.repo.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CategoryServiceTestSuite) TestDelete_ForeignIsNotFound() {
	c := category("Ginásio", "#5A8A6A", models.CategoryTypeExpense)
	owner := uuid.New()
	c.UserID = &owner
	s.repo.On("GetByID", mock.Anything, c.ID).Return(c, nil)

	err := s.service.Delete(context.Background(), s.userID, c.ID)

	s.ErrorIs(err, ErrNotFound)
	s.repo.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CategoryServiceTestSuite) TestDelete_Own() {
	c := category("Ginásio", "#5A8A6A", models.CategoryTypeExpense)
	c.UserID = &s.userID
	s.repo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	s.repo.On("Delete", mock.Anything, s.userID, c.ID).Return(nil)

	s.NoError(s.service.Delete(context.Background(), s.userID, c.ID))
}

func (s *CategoryServiceTestSuite) TestResolve_RejectsForeign() {
	c := category("Ginásio", "#5A8A6A", models.CategoryTypeExpense)
	owner := uuid.New()
	c.UserID = &owner
	s.repo.On("GetByID", mock.Anything, c.ID).Return(c, nil)

	_, err := s.service.Resolve(context.Background(), s.userID, c.ID)

	s.ErrorIs(err, ErrInvalidInput)
}
