package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/models"
	"pocket-coach/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	coachGreeting  = "Olá! Sou o teu Coach Financeiro. Estou aqui para te ajudar a poupar e a manter os teus hábitos. O que queres analisar hoje?"
	coachFallback  = `Não percebi bem. Podes perguntar "Quanto gastei este mês?" ou "Como estão os meus hábitos?".`
	coachNoHabits  = "Ainda não tens hábitos configurados. Vai ao Planner criar alguns!"
	coachChartText = "Aqui tens a distribuição dos teus gastos:"

	coachSystemPrompt = `És um coach financeiro e de hábitos pessoal. Respondes sempre em português de Portugal,
de forma curta, prática e amigável. Usa apenas os dados fornecidos sobre o utilizador e as dicas da base de
conhecimento; não inventes valores. Quando deres sugestões, apresenta-as como lista numerada.`
)

const (
	intentGreeting = "greeting"
	intentSpending = "spending"
	intentHabits   = "habits"
	intentLLM      = "llm"
	intentFallback = "fallback"
)

var (
	greetingWords = []string{"ola", "olá", "oii"}
	spendingWords = []string{"gastei", "despesa", "dinheiro"}
	habitWords    = []string{"habito", "hábito", "treino"}

	listItemPattern = regexp.MustCompile(`^(\d+[\.\)]|[-*])\s+`)
)

// CoachService turns spending and habit aggregates into advice.
type CoachService struct {
	expenses *ExpenseService
	planner  *PlannerService
	rag      *RAGService
	chat     ChatModel
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewCoachService builds the coach. chat may be nil, in which case only the
// canned answers are given.
func NewCoachService(expenses *ExpenseService, planner *PlannerService, rag *RAGService, chat ChatModel, m *metrics.Metrics, logger *zap.Logger) *CoachService {
	return &CoachService{
		expenses: expenses,
		planner:  planner,
		rag:      rag,
		chat:     chat,
		metrics:  m,
		logger:   logger,
	}
}

// AnalyzeFinancials compares this month's spending with last month's.
func (s *CoachService) AnalyzeFinancials(ctx context.Context, userID uuid.UUID, now time.Time) (*models.FinancialInsights, error) {
	month := models.MonthOf(now)
	prev := month.Previous()

	current, err := s.expenses.Stats(ctx, userID, month.Start(), month.End())
	if err != nil {
		return nil, err
	}
	last, err := s.expenses.Stats(ctx, userID, prev.Start(), prev.End())
	if err != nil {
		return nil, err
	}

	insights := &models.FinancialInsights{
		Month:          month.String(),
		TotalSpent:     current.Total,
		LastMonthTotal: last.Total,
		IsSpendingMore: current.Total.GreaterThan(last.Total),
		Categories:     current.ByCategory,
	}
	if len(current.ByCategory) > 0 {
		insights.TopCategory = current.ByCategory[0]
	}
	return insights, nil
}

// AnalyzeHabits counts this month's completions per active habit. It returns
// nil when the user has no habits.
func (s *CoachService) AnalyzeHabits(ctx context.Context, userID uuid.UUID, now time.Time) (*models.HabitInsights, error) {
	habits, err := s.planner.ActiveHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return nil, nil
	}

	month := models.MonthOf(now)
	logs, err := s.planner.Logs(ctx, userID, month.Start(), month.End())
	if err != nil {
		return nil, err
	}
	return habitInsights(habits, logs), nil
}

func habitInsights(habits []*models.Habit, logs []*models.HabitLog) *models.HabitInsights {
	days := make(map[uuid.UUID]map[string]struct{}, len(habits))
	for _, l := range logs {
		if !l.IsCompleted {
			continue
		}
		if days[l.HabitID] == nil {
			days[l.HabitID] = make(map[string]struct{})
		}
		days[l.HabitID][l.LoggedDate.Format(models.DateLayout)] = struct{}{}
	}

	stats := make([]models.HabitCount, 0, len(habits))
	for _, h := range habits {
		stats = append(stats, models.HabitCount{Title: h.Title, Count: len(days[h.ID])})
	}

	// Ascending: the worst habit comes first, the best last.
	sorted := make([]models.HabitCount, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count < sorted[j].Count })

	return &models.HabitInsights{
		WorstHabit: sorted[0],
		BestHabit:  sorted[len(sorted)-1],
		AllStats:   stats,
	}
}

func (s *CoachService) FinancialsResponse(ctx context.Context, userID uuid.UUID, now time.Time) (*dto.FinancialInsightsResponse, error) {
	insights, err := s.AnalyzeFinancials(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	resp := &dto.FinancialInsightsResponse{
		Month:          insights.Month,
		TotalSpent:     money(insights.TotalSpent),
		LastMonthTotal: money(insights.LastMonthTotal),
		IsSpendingMore: insights.IsSpendingMore,
		Categories:     toCategoryTotals(insights.Categories),
	}
	if insights.TopCategory != nil {
		top := toCategoryTotals([]*models.CategoryTotal{insights.TopCategory})[0]
		resp.TopCategory = &top
	}
	return resp, nil
}

func (s *CoachService) HabitsResponse(ctx context.Context, userID uuid.UUID, now time.Time) (*dto.HabitInsightsResponse, error) {
	insights, err := s.AnalyzeHabits(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if insights == nil {
		return &dto.HabitInsightsResponse{
			AllStats: []dto.HabitCountResponse{},
			Summary:  "Sem dados de hábitos para analisar.",
		}, nil
	}

	all := make([]dto.HabitCountResponse, 0, len(insights.AllStats))
	for _, h := range insights.AllStats {
		all = append(all, dto.HabitCountResponse{Title: h.Title, Count: h.Count})
	}
	best := dto.HabitCountResponse{Title: insights.BestHabit.Title, Count: insights.BestHabit.Count}
	worst := dto.HabitCountResponse{Title: insights.WorstHabit.Title, Count: insights.WorstHabit.Count}

	return &dto.HabitInsightsResponse{
		HasHabits:  true,
		BestHabit:  &best,
		WorstHabit: &worst,
		AllStats:   all,
		Summary: fmt.Sprintf("📊 **Relatório de Hábitos**\n\n🏆 Melhor: %s (%dx)\n⚠️ Atenção: %s (%dx)",
			best.Title, best.Count, worst.Title, worst.Count),
	}, nil
}

// Advice answers the coach quiz: where to cut, where the user is doing well,
// and optionally a personalised paragraph from the LLM.
func (s *CoachService) Advice(ctx context.Context, userID uuid.UUID, now time.Time, req *dto.AdviceRequest) (*dto.AdviceResponse, error) {
	insights, err := s.AnalyzeFinancials(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		goal = "Poupar"
	}
	resp := &dto.AdviceResponse{
		Goal:                goal,
		SuperfluousSpending: req.SuperfluousSpending == "Sim",
	}

	if top := insights.TopCategory; top != nil && top.Amount.IsPositive() {
		resp.SpendLess = &dto.SpendAdvice{
			Category: top.Category,
			Amount:   money(top.Amount),
			Message:  fmt.Sprintf("Estás a gastar muito em %s (%s). Para atingires a tua meta, reduz aqui!", top.Category, formatEuro(top.Amount)),
		}
	}
	if low := smallestCategory(insights.Categories); low != nil {
		resp.SpendLittle = &dto.SpendAdvice{
			Category: low.Category,
			Amount:   money(low.Amount),
			Message:  fmt.Sprintf("Estás a controlar bem os gastos em %s (apenas %s). Continua assim!", low.Category, formatEuro(low.Amount)),
		}
	}
	resp.Message = adviceMessage(resp)

	if s.chat != nil {
		personalized, err := s.chat.Complete(ctx, coachSystemPrompt, advicePrompt(resp, insights))
		if err != nil {
			s.logger.Warn("Personalised advice failed, returning canned advice", zap.Error(err))
		} else {
			resp.Personalized = sanitizeUTF8(personalized)
			resp.Tips = parseTips(personalized)
		}
	}

	s.metrics.CoachReply("advice")
	return resp, nil
}

func adviceMessage(a *dto.AdviceResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Com base no teu objetivo de **%s** e nos teus dados:\n\n", a.Goal)
	if a.SpendLess != nil {
		fmt.Fprintf(&b, "🔴 **Corte Necessário:**\n%s\n\n", a.SpendLess.Message)
	}
	if a.SuperfluousSpending && (a.SpendLess == nil || a.SpendLess.Category != "Restaurantes") {
		b.WriteString("⚠️ Disseste que gastas muito em supérfluos. Atenção às pequenas despesas diárias!\n\n")
	}
	if a.SpendLittle != nil {
		fmt.Fprintf(&b, "🟢 **Ponto Forte:**\n%s", a.SpendLittle.Message)
	}
	return strings.TrimSpace(b.String())
}

func advicePrompt(a *dto.AdviceResponse, insights *models.FinancialInsights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Objetivo do utilizador: %s\n", a.Goal)
	fmt.Fprintf(&b, "Admite gastar muito em supérfluos: %t\n\n", a.SuperfluousSpending)
	b.WriteString(spendingContext(insights))
	b.WriteString("\nDá 3 sugestões concretas para atingir o objetivo este mês.")
	return b.String()
}

// Reply routes a chat message by keyword and falls back to the LLM, when one
// is configured, for anything else.
func (s *CoachService) Reply(ctx context.Context, userID uuid.UUID, message string, now time.Time) (*dto.ChatResponse, error) {
	lower := strings.ToLower(message)
	stamp := now.UTC().Format(time.RFC3339)

	var (
		msgs   []dto.ChatMessage
		intent string
	)

	switch {
	case containsAny(lower, greetingWords):
		intent = intentGreeting
		msgs = append(msgs, botText(coachGreeting, stamp))

	case containsAny(lower, spendingWords):
		intent = intentSpending
		insights, err := s.AnalyzeFinancials(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, botText(spendingSummary(insights), stamp))

		chart := botText(coachChartText, stamp)
		chart.ID += "_chart"
		chart.Type = "chart"
		chart.ChartType = "pie"
		chart.ChartData = toCategoryTotals(insights.Categories)
		msgs = append(msgs, chart)

	case containsAny(lower, habitWords):
		intent = intentHabits
		insights, err := s.AnalyzeHabits(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, botText(habitSummary(insights), stamp))

	case s.chat != nil:
		intent = intentLLM
		text, err := s.freeform(ctx, userID, message, now)
		if err != nil {
			s.logger.Warn("Coach LLM reply failed, using fallback", zap.Error(err))
			intent = intentFallback
			text = coachFallback
		}
		msgs = append(msgs, botText(text, stamp))

	default:
		intent = intentFallback
		msgs = append(msgs, botText(coachFallback, stamp))
	}

	s.metrics.CoachReply(intent)
	return &dto.ChatResponse{Messages: msgs}, nil
}

func (s *CoachService) freeform(ctx context.Context, userID uuid.UUID, message string, now time.Time) (string, error) {
	financials, err := s.AnalyzeFinancials(ctx, userID, now)
	if err != nil {
		return "", err
	}
	habits, err := s.AnalyzeHabits(ctx, userID, now)
	if err != nil {
		return "", err
	}

	tips, err := s.rag.SearchTips(ctx, message, nil)
	if err != nil {
		s.logger.Warn("Failed to search coach tips", zap.Error(err))
	}

	var b strings.Builder
	b.WriteString(spendingContext(financials))
	b.WriteString("\n")
	b.WriteString(habitSummary(habits))
	b.WriteString("\n\n")
	b.WriteString(s.rag.BuildContext(tips))
	b.WriteString("\nPergunta do utilizador: ")
	b.WriteString(message)

	answer, err := s.chat.Complete(ctx, coachSystemPrompt, b.String())
	if err != nil {
		return "", err
	}
	return sanitizeUTF8(answer), nil
}

func spendingSummary(insights *models.FinancialInsights) string {
	text := fmt.Sprintf("Este mês já gastaste %s.", formatEuro(insights.TotalSpent))
	if insights.IsSpendingMore {
		text += fmt.Sprintf(" Cuidado! Estás a gastar mais do que no mês passado (%s).", formatEuro(insights.LastMonthTotal))
	} else {
		text += " Bom trabalho! Estás a gastar menos que no mês passado."
	}
	if insights.TopCategory != nil {
		text += fmt.Sprintf("\n\nA tua maior despesa é em **%s** (%s).", insights.TopCategory.Category, formatEuro(insights.TopCategory.Amount))
	}
	return text
}

func habitSummary(insights *models.HabitInsights) string {
	if insights == nil {
		return coachNoHabits
	}
	return fmt.Sprintf("O teu hábito mais consistente é **%s** com %d conclusões.\n\nMas precisas de te esforçar mais em **%s**!",
		insights.BestHabit.Title, insights.BestHabit.Count, insights.WorstHabit.Title)
}

func spendingContext(insights *models.FinancialInsights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gasto deste mês (%s): %s\n", insights.Month, formatEuro(insights.TotalSpent))
	fmt.Fprintf(&b, "Gasto do mês passado: %s\n", formatEuro(insights.LastMonthTotal))
	for _, c := range insights.Categories {
		fmt.Fprintf(&b, "- %s: %s\n", c.Category, formatEuro(c.Amount))
	}
	return b.String()
}

// smallestCategory returns the cheapest category with a non-zero amount.
func smallestCategory(categories []*models.CategoryTotal) *models.CategoryTotal {
	var low *models.CategoryTotal
	for _, c := range categories {
		if !c.Amount.IsPositive() {
			continue
		}
		if low == nil || c.Amount.LessThan(low.Amount) {
			low = c
		}
	}
	return low
}

// parseTips splits an LLM answer into its numbered or bulleted items.
func parseTips(response string) []string {
	var (
		tips    []string
		current strings.Builder
	)

	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			tips = append(tips, sanitizeUTF8(t))
		}
		current.Reset()
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if listItemPattern.MatchString(line) {
			flush()
			line = listItemPattern.ReplaceAllString(line, "")
		} else if len(tips) == 0 && current.Len() == 0 {
			// Preamble before the first list item.
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")
	}
	flush()

	return tips
}

func botText(text, stamp string) dto.ChatMessage {
	return dto.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    "bot",
		Type:      "text",
		Text:      text,
		Timestamp: stamp,
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func formatEuro(d decimal.Decimal) string {
	return "€" + d.StringFixed(2)
}
