package repository

import (
	"context"

	"pocket-coach/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReceiptRepository struct {
	db     DB
	logger *zap.Logger
}

func NewReceiptRepository(db DB, logger *zap.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReceiptRepository) Create(ctx context.Context, rc *models.Receipt) error {
	query := squirrel.Insert("receipts").
		Columns("id", "user_id", "image_url", "storage_path", "status", "uploaded_at").
		Values(rc.ID, rc.UserID, rc.ImageURL, rc.StoragePath, rc.Status, rc.UploadedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	query := squirrel.Select("id", "user_id", "image_url", "storage_path", "status", "extraction_json", "error_message", "uploaded_at").
		From("receipts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var rc models.Receipt
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&rc.ID, &rc.UserID, &rc.ImageURL, &rc.StoragePath, &rc.Status, &rc.ExtractionJSON, &rc.ErrorMessage, &rc.UploadedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return &rc, nil
}

// UpdateExtraction records the outcome of a vision call.
func (r *ReceiptRepository) UpdateExtraction(ctx context.Context, id uuid.UUID, status models.ReceiptStatus, extraction []byte, errMsg *string) error {
	query := squirrel.Update("receipts").
		Set("status", status).
		Set("extraction_json", jsonOrNil(extraction)).
		Set("error_message", errMsg).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffecting(ctx, r.db, query)
}

func (r *ReceiptRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReceiptStatus) error {
	query := squirrel.Update("receipts").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffecting(ctx, r.db, query)
}

// Claim marks the receipt committed unless it already is. ErrNotFound
// means another commit got there first.
func (r *ReceiptRepository) Claim(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Update("receipts").
		Set("status", models.ReceiptStatusCommitted).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": models.ReceiptStatusCommitted}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffecting(ctx, r.db, query)
}
