package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultPlannerName = "Principal"

type Planner struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type HabitFrequency string

const (
	FrequencyDaily  HabitFrequency = "daily"
	FrequencyWeekly HabitFrequency = "weekly"
	FrequencyCustom HabitFrequency = "custom"
)

type Habit struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	UserID            uuid.UUID      `db:"user_id" json:"user_id"`
	PlannerID         uuid.UUID      `db:"planner_id" json:"planner_id"`
	Title             string         `db:"title" json:"title"`
	Icon              *string        `db:"icon" json:"icon"`
	Color             *string        `db:"color" json:"color"`
	Frequency         HabitFrequency `db:"frequency" json:"frequency"`
	TargetDaysPerWeek *int32         `db:"target_days_per_week" json:"target_days_per_week"`
	IsActive          bool           `db:"is_active" json:"is_active"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

type HabitLog struct {
	ID          uuid.UUID `db:"id" json:"id"`
	HabitID     uuid.UUID `db:"habit_id" json:"habit_id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	LoggedDate  time.Time `db:"logged_date" json:"logged_date"`
	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	Notes       *string   `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
