package dto

type PlannerRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type PlannerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type CreateHabitRequest struct {
	PlannerID         *string `json:"planner_id" validate:"omitempty,uuid"`
	Title             string  `json:"title" validate:"required,max=80"`
	Icon              *string `json:"icon" validate:"omitempty,max=16"`
	Color             *string `json:"color" validate:"omitempty,hexcolor6"`
	Frequency         string  `json:"frequency" validate:"omitempty,oneof=daily weekly custom"`
	TargetDaysPerWeek *int32  `json:"target_days_per_week" validate:"omitempty,min=1,max=7"`
}

type HabitResponse struct {
	ID                string  `json:"id"`
	PlannerID         string  `json:"planner_id"`
	Title             string  `json:"title"`
	Icon              *string `json:"icon"`
	Color             *string `json:"color"`
	Frequency         string  `json:"frequency"`
	TargetDaysPerWeek *int32  `json:"target_days_per_week"`
	CreatedAt         string  `json:"created_at"`
}

type HabitLogResponse struct {
	ID          string `json:"id"`
	HabitID     string `json:"habit_id"`
	Date        string `json:"date"`
	IsCompleted bool   `json:"is_completed"`
}

type ToggleHabitRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type ToggleHabitResponse struct {
	Completed bool              `json:"completed"`
	Log       *HabitLogResponse `json:"log,omitempty"`
}

type HabitGridRow struct {
	Habit     HabitResponse `json:"habit"`
	Completed []bool        `json:"completed"`
	Count     int           `json:"count"`
}

type PlannerGridResponse struct {
	PlannerID string         `json:"planner_id"`
	Month     string         `json:"month"`
	Days      []string       `json:"days"`
	Rows      []HabitGridRow `json:"rows"`
}
