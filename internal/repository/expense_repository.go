package repository

import (
	"context"

	"pocket-coach/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var expenseColumns = []string{
	"id", "user_id", "receipt_id", "merchant", "date", "amount", "currency", "category_id",
	"payment_method", "notes", "is_ai_extracted", "confidence_score", "raw_extraction_json",
	"items", "created_at", "updated_at",
}

// expenseSelectColumns prefixes the expense columns and appends the joined category.
func expenseSelectColumns() []string {
	cols := make([]string, 0, len(expenseColumns)+5)
	for _, c := range expenseColumns {
		cols = append(cols, "e."+c)
	}
	return append(cols, "c.name", "c.icon", "c.color", "c.type", "c.is_default")
}

type ExpenseRepository struct {
	db     DB
	logger *zap.Logger
}

func NewExpenseRepository(db DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	query := squirrel.Insert("expenses").
		Columns(expenseColumns...).
		Values(e.ID, e.UserID, e.ReceiptID, e.Merchant, e.Date, e.Amount, e.Currency, e.CategoryID,
			e.PaymentMethod, e.Notes, e.IsAIExtracted, e.ConfidenceScore, jsonOrNil(e.RawExtractionJSON),
			jsonOrEmptyArray(e.Items), e.CreatedAt, e.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Update writes every mutable column of e. Ownership is part of the filter.
func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	query := squirrel.Update("expenses").
		Set("merchant", e.Merchant).
		Set("date", e.Date).
		Set("amount", e.Amount).
		Set("currency", e.Currency).
		Set("category_id", e.CategoryID).
		Set("payment_method", e.PaymentMethod).
		Set("notes", e.Notes).
		Set("updated_at", e.UpdatedAt).
		Where(squirrel.Eq{"id": e.ID, "user_id": e.UserID}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffecting(ctx, r.db, query)
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := squirrel.Delete("expenses").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffecting(ctx, r.db, query)
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	query := squirrel.Select(expenseSelectColumns()...).
		From("expenses e").
		LeftJoin("categories c ON c.id = e.category_id").
		Where(squirrel.Eq{"e.id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	e, err := scanExpense(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// List returns the user's records newest first, each joined with its category.
func (r *ExpenseRepository) List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]*models.Expense, error) {
	query := squirrel.Select(expenseSelectColumns()...).
		From("expenses e").
		LeftJoin("categories c ON c.id = e.category_id").
		Where(squirrel.Eq{"e.user_id": userID}).
		OrderBy("e.date DESC", "e.created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Start != nil {
		query = query.Where(squirrel.GtOrEq{"e.date": *filter.Start})
	}
	if filter.End != nil {
		query = query.Where(squirrel.LtOrEq{"e.date": *filter.End})
	}
	if filter.CategoryID != nil {
		query = query.Where(squirrel.Eq{"e.category_id": *filter.CategoryID})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var (
		e         models.Expense
		catName   *string
		catIcon   *string
		catColor  *string
		catType   *models.CategoryType
		catShared *bool
	)
	err := row.Scan(
		&e.ID, &e.UserID, &e.ReceiptID, &e.Merchant, &e.Date, &e.Amount, &e.Currency, &e.CategoryID,
		&e.PaymentMethod, &e.Notes, &e.IsAIExtracted, &e.ConfidenceScore, &e.RawExtractionJSON,
		&e.Items, &e.CreatedAt, &e.UpdatedAt,
		&catName, &catIcon, &catColor, &catType, &catShared,
	)
	if err != nil {
		return nil, err
	}

	if e.CategoryID != nil && catName != nil {
		e.Category = &models.Category{
			ID:    *e.CategoryID,
			Name:  *catName,
			Icon:  catIcon,
			Color: catColor,
		}
		if catType != nil {
			e.Category.Type = *catType
		}
		if catShared != nil {
			e.Category.IsDefault = *catShared
		}
	}
	return &e, nil
}

func jsonOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func jsonOrEmptyArray(b []byte) []byte {
	if len(b) == 0 {
		return []byte("[]")
	}
	return b
}
