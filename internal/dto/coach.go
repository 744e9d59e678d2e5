package dto

type FinancialInsightsResponse struct {
	Month          string                  `json:"month"`
	TotalSpent     float64                 `json:"total_spent"`
	LastMonthTotal float64                 `json:"last_month_total"`
	IsSpendingMore bool                    `json:"is_spending_more"`
	TopCategory    *CategoryTotalResponse  `json:"top_category"`
	Categories     []CategoryTotalResponse `json:"categories"`
}

type HabitCountResponse struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

type HabitInsightsResponse struct {
	HasHabits  bool                 `json:"has_habits"`
	BestHabit  *HabitCountResponse  `json:"best_habit,omitempty"`
	WorstHabit *HabitCountResponse  `json:"worst_habit,omitempty"`
	AllStats   []HabitCountResponse `json:"all_stats"`
	Summary    string               `json:"summary"`
}

type AdviceRequest struct {
	Goal                string `json:"goal" validate:"max=200"`
	SuperfluousSpending string `json:"superfluous_spending" validate:"omitempty,oneof=Sim Não"`
}

type SpendAdvice struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Message  string  `json:"message"`
}

type AdviceResponse struct {
	Goal                string       `json:"goal"`
	SuperfluousSpending bool         `json:"superfluous_spending"`
	SpendLess           *SpendAdvice `json:"spend_less,omitempty"`
	SpendLittle         *SpendAdvice `json:"spend_little,omitempty"`
	Message             string       `json:"message"`
	Personalized        string       `json:"personalized,omitempty"`
	Tips                []string     `json:"tips,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type ChatMessage struct {
	ID        string                  `json:"id"`
	Sender    string                  `json:"sender"`
	Type      string                  `json:"type"`
	Text      string                  `json:"text"`
	ChartType string                  `json:"chart_type,omitempty"`
	ChartData []CategoryTotalResponse `json:"chart_data,omitempty"`
	Timestamp string                  `json:"timestamp"`
}

type ChatResponse struct {
	Messages []ChatMessage `json:"messages"`
}
