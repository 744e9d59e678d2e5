package dto

type DayTotalsResponse struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

type CalendarMonthResponse struct {
	Month       string              `json:"month"`
	MarkedDates []string            `json:"marked_dates"`
	Days        []DayTotalsResponse `json:"days"`
}

type CalendarDayResponse struct {
	DayTotalsResponse
	Transactions []ExpenseResponse `json:"transactions"`
}
