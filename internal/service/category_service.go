package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryService struct {
	categoryRepo CategoryRepository
	logger       *zap.Logger
}

func NewCategoryService(categoryRepo CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// List returns the user's categories and the shared defaults, optionally of one type.
func (s *CategoryService) List(ctx context.Context, userID uuid.UUID, categoryType string) ([]dto.CategoryResponse, error) {
	var filter *models.CategoryType
	if categoryType != "" {
		t := models.CategoryType(categoryType)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown category type %q", ErrInvalidInput, categoryType)
		}
		filter = &t
	}

	categories, err := s.categoryRepo.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	c := &models.Category{
		ID:        uuid.New(),
		UserID:    &userID,
		Name:      strings.TrimSpace(req.Name),
		Icon:      nonEmpty(req.Icon),
		Color:     nonEmpty(req.Color),
		Type:      models.CategoryType(req.Type),
		CreatedAt: time.Now(),
	}
	if c.Name == "" || !c.Type.Valid() {
		return nil, fmt.Errorf("%w: name and a valid type are required", ErrInvalidInput)
	}

	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	resp := toCategoryResponse(c)
	return &resp, nil
}

// Delete removes one of the user's own categories. Defaults are read-only.
func (s *CategoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return ErrForbidden
	}
	if c.UserID == nil || *c.UserID != userID {
		return ErrNotFound
	}

	if err := s.categoryRepo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// Resolve returns the category when the user may use it, ErrInvalidInput otherwise.
func (s *CategoryService) Resolve(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Category, error) {
	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown category", ErrInvalidInput)
		}
		return nil, err
	}
	if !c.IsDefault && (c.UserID == nil || *c.UserID != userID) {
		return nil, fmt.Errorf("%w: unknown category", ErrInvalidInput)
	}
	return c, nil
}

// MatchByName finds the user's category whose name equals hint, ignoring case.
func (s *CategoryService) MatchByName(ctx context.Context, userID uuid.UUID, hint string) (*models.Category, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return nil, nil
	}

	expense := models.CategoryTypeExpense
	categories, err := s.categoryRepo.ListForUser(ctx, userID, &expense)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, hint) {
			return c, nil
		}
	}
	return nil, nil
}

// DefaultCategoryRows builds the rows that seed the shared categories.
func DefaultCategoryRows(now time.Time) []*models.Category {
	rows := make([]*models.Category, 0, len(models.DefaultCategories))
	for _, d := range models.DefaultCategories {
		icon, color := d.Icon, d.Color
		rows = append(rows, &models.Category{
			ID:        uuid.New(),
			Name:      d.Name,
			Icon:      &icon,
			Color:     &color,
			Type:      d.Type,
			IsDefault: true,
			CreatedAt: now,
		})
	}
	return rows
}
