package models

import (
	"time"

	"github.com/google/uuid"
)

type TipType string

const (
	TipTypeBudgeting TipType = "budgeting"
	TipTypeSavings   TipType = "savings"
	TipTypeHabits    TipType = "habits"
)

// CoachTip is a knowledge-base entry the coach cites when asking the LLM.
type CoachTip struct {
	ID        uuid.UUID `db:"id"`
	Type      TipType   `db:"type"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
