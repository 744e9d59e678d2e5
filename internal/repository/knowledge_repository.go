package repository

import (
	"context"

	"pocket-coach/internal/models"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

var coachTipColumns = []string{"id", "type", "title", "content", "created_at"}

// KnowledgeRepository stores the coach's tips.
type KnowledgeRepository struct {
	db     DB
	logger *zap.Logger
}

func NewKnowledgeRepository(db DB, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a tip. Reports whether a row was written; a tip with an
// existing title is skipped.
func (r *KnowledgeRepository) Create(ctx context.Context, tip *models.CoachTip) (bool, error) {
	query := squirrel.Insert("coach_tips").
		Columns(coachTipColumns...).
		Values(tip.ID, tip.Type, tip.Title, tip.Content, tip.CreatedAt).
		Suffix("ON CONFLICT (title) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SimpleTextSearch matches any of the terms against title and content.
func (r *KnowledgeRepository) SimpleTextSearch(ctx context.Context, terms []string, topK int, tipType *models.TipType) ([]*models.CoachTip, error) {
	query := squirrel.Select(coachTipColumns...).
		From("coach_tips").
		OrderBy("created_at ASC").
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	if len(terms) > 0 {
		or := squirrel.Or{}
		for _, t := range terms {
			or = append(or,
				squirrel.ILike{"title": "%" + t + "%"},
				squirrel.ILike{"content": "%" + t + "%"},
			)
		}
		query = query.Where(or)
	}
	if tipType != nil {
		query = query.Where(squirrel.Eq{"type": *tipType})
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

	var results []*models.CoachTip
	for rows.Next() {
		var tip models.CoachTip
		if err := rows.Scan(&tip.ID, &tip.Type, &tip.Title, &tip.Content, &tip.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &tip)
	}

	return results, rows.Err()
}
