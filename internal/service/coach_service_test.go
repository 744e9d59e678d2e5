package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type CoachServiceTestSuite struct {
	suite.Suite
	expenseRepo *mockExpenseRepo
	habitRepo   *mockHabitRepo
	logRepo     *mockHabitLogRepo
	tips        *mockKnowledgeRepo
	chat        *mockChat
	userID      uuid.UUID
	now         time.Time
}

func (s *CoachServiceTestSuite) SetupTest() {
	s.expenseRepo = new(mockExpenseRepo)
	s.habitRepo = new(mockHabitRepo)
	s.logRepo = new(mockHabitLogRepo)
	s.tips = new(mockKnowledgeRepo)
	s.chat = new(mockChat)
	s.userID = uuid.New()
	s.now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
}

func TestCoachServiceSuite(t *testing.T) {
	suite.Run(t, new(CoachServiceTestSuite))
}

// coach builds the service; a nil chat leaves the LLM unconfigured.
func (s *CoachServiceTestSuite) coach(chat ChatModel) *CoachService {
	logger := zap.NewNop()
	pub := &recordingPublisher{}
	expenses := NewExpenseService(s.expenseRepo, new(mockUserRepo), NewCategoryService(new(mockCategoryRepo), logger), pub, nil, logger)
	planner := NewPlannerService(new(mockPlannerRepo), s.habitRepo, s.logRepo, pub, nil, logger)
	return NewCoachService(expenses, planner, NewRAGService(s.tips, logger), chat, nil, logger)
}

func (s *CoachServiceTestSuite) expectMonth(m models.Month, rows []*models.Expense) {
	start := m.Start()
	s.expenseRepo.On("List", mock.Anything, s.userID, mock.MatchedBy(func(f models.ExpenseFilter) bool {
		return f.Start != nil && f.Start.Equal(start)
	})).Return(rows, nil)
}

func (s *CoachServiceTestSuite) expectSpending() {
	food := category("Alimentação", "#D4A574", models.CategoryTypeExpense)
	fun := category("Lazer", "#3A4A5A", models.CategoryTypeExpense)
	current := models.MonthOf(s.now)
	s.expectMonth(current, []*models.Expense{expense("40", food), expense("20", fun)})
	s.expectMonth(current.Previous(), []*models.Expense{expense("10", food)})
}

func (s *CoachServiceTestSuite) TestReply_Greeting() {
	resp, err := s.coach(nil).Reply(context.Background(), s.userID, "Olá coach!", s.now)

	s.Require().NoError(err)
	s.Require().Len(resp.Messages, 1)
	s.Equal(coachGreeting, resp.Messages[0].Text)
	s.Equal("bot", resp.Messages[0].Sender)
}

func (s *CoachServiceTestSuite) TestReply_Spending() {
	s.expectSpending()

	resp, err := s.coach(nil).Reply(context.Background(), s.userID, "Quanto GASTEI este mês?", s.now)

	s.Require().NoError(err)
	s.Require().Len(resp.Messages, 2)
	s.Equal("Este mês já gastaste €60.00. Cuidado! Estás a gastar mais do que no mês passado (€10.00)."+
		"\n\nA tua maior despesa é em **Alimentação** (€40.00).", resp.Messages[0].Text)

	chart := resp.Messages[1]
	s.Equal("chart", chart.Type)
	s.Equal("pie", chart.ChartType)
	s.Equal(coachChartText, chart.Text)
	s.True(strings.HasSuffix(chart.ID, "_chart"))
	s.Require().Len(chart.ChartData, 2)
	s.Equal("Alimentação", chart.ChartData[0].Category)
	s.Equal(40.0, chart.ChartData[0].Amount)
}

func (s *CoachServiceTestSuite) TestReply_HabitsWithoutHabits() {
	s.habitRepo.On("ListActive", mock.Anything, s.userID, (*uuid.UUID)(nil)).Return([]*models.Habit{}, nil)

	resp, err := s.coach(nil).Reply(context.Background(), s.userID, "como vai o treino", s.now)

	s.Require().NoError(err)
	s.Equal(coachNoHabits, resp.Messages[0].Text)
}

func (s *CoachServiceTestSuite) TestReply_Habits() {
	read := &models.Habit{ID: uuid.New(), Title: "Ler", IsActive: true}
	run := &models.Habit{ID: uuid.New(), Title: "Correr", IsActive: true}
	s.habitRepo.On("ListActive", mock.Anything, s.userID, (*uuid.UUID)(nil)).Return([]*models.Habit{read, run}, nil)
	s.logRepo.On("ListRange", mock.Anything, s.userID, mock.Anything, mock.Anything).Return([]*models.HabitLog{
		{HabitID: run.ID, LoggedDate: day("2026-10-01"), IsCompleted: true},
		{HabitID: run.ID, LoggedDate: day("2026-10-02"), IsCompleted: true},
		{HabitID: read.ID, LoggedDate: day("2026-10-02"), IsCompleted: true},
	}, nil)

	resp, err := s.coach(nil).Reply(context.Background(), s.userID, "E os meus hábitos?", s.now)

	s.Require().NoError(err)
	s.Equal("O teu hábito mais consistente é **Correr** com 2 conclusões.\n\nMas precisas de te esforçar mais em **Ler**!", resp.Messages[0].Text)
}

func (s *CoachServiceTestSuite) TestReply_FallbackWithoutLLM() {
	resp, err := s.coach(nil).Reply(context.Background(), s.userID, "qual é a capital de França", s.now)

	s.Require().NoError(err)
	s.Equal(coachFallback, resp.Messages[0].Text)
}

func (s *CoachServiceTestSuite) TestReply_LLMWithTips() {
	s.expectSpending()
	s.habitRepo.On("ListActive", mock.Anything, s.userID, (*uuid.UUID)(nil)).Return([]*models.Habit{}, nil)
	s.tips.On("SimpleTextSearch", mock.Anything, []string{"como", "poupar", "para", "férias"}, defaultTipsTopK, (*models.TipType)(nil)).
		Return([]*models.CoachTip{{Type: models.TipTypeSavings, Title: "Regra 50/30/20", Content: "Divide o rendimento."}}, nil)
	s.chat.On("Complete", mock.Anything, coachSystemPrompt, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Regra 50/30/20") && strings.Contains(p, "Alimentação: €40.00")
	})).Return("Guarda 20% do salário.", nil)

	resp, err := s.coach(s.chat).Reply(context.Background(), s.userID, "Como poupar para as férias?", s.now)

	s.Require().NoError(err)
	s.Equal("Guarda 20% do salário.", resp.Messages[0].Text)
	s.chat.AssertExpectations(s.T())
}

func (s *CoachServiceTestSuite) TestReply_LLMFailureFallsBack() {
	s.expectSpending()
	s.habitRepo.On("ListActive", mock.Anything, s.userID, (*uuid.UUID)(nil)).Return([]*models.Habit{}, nil)
	s.tips.On("SimpleTextSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	s.chat.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	resp, err := s.coach(s.chat).Reply(context.Background(), s.userID, "preciso de ajuda", s.now)

	s.Require().NoError(err)
	s.Equal(coachFallback, resp.Messages[0].Text)
}

func (s *CoachServiceTestSuite) TestAdvice_Canned() {
	s.expectSpending()

	resp, err := s.coach(nil).Advice(context.Background(), s.userID, s.now, &dto.AdviceRequest{SuperfluousSpending: "Sim"})

	s.Require().NoError(err)
	s.Equal("Poupar", resp.Goal)
	s.True(resp.SuperfluousSpending)
	s.Require().NotNil(resp.SpendLess)
	s.Equal("Alimentação", resp.SpendLess.Category)
	s.Require().NotNil(resp.SpendLittle)
	s.Equal("Lazer", resp.SpendLittle.Category)
	s.Contains(resp.Message, "Com base no teu objetivo de **Poupar**")
	s.Contains(resp.Message, "🔴 **Corte Necessário:**\nEstás a gastar muito em Alimentação (€40.00).")
	s.Contains(resp.Message, "⚠️ Disseste que gastas muito em supérfluos.")
	s.Contains(resp.Message, "🟢 **Ponto Forte:**\nEstás a controlar bem os gastos em Lazer (apenas €20.00).")
	s.Empty(resp.Personalized)
}

func (s *CoachServiceTestSuite) TestAdvice_SingleCategoryIsBothEnds() {
	food := category("Alimentação", "#D4A574", models.CategoryTypeExpense)
	current := models.MonthOf(s.now)
	s.expectMonth(current, []*models.Expense{expense("40", food)})
	s.expectMonth(current.Previous(), []*models.Expense{})

	resp, err := s.coach(nil).Advice(context.Background(), s.userID, s.now, &dto.AdviceRequest{})

	s.Require().NoError(err)
	s.Require().NotNil(resp.SpendLess)
	s.Require().NotNil(resp.SpendLittle)
	s.Equal("Alimentação", resp.SpendLess.Category)
	s.Equal("Alimentação", resp.SpendLittle.Category)
	s.Contains(resp.Message, "🟢 **Ponto Forte:**\nEstás a controlar bem os gastos em Alimentação (apenas €40.00).")
}

func (s *CoachServiceTestSuite) TestAdvice_NoSpending() {
	current := models.MonthOf(s.now)
	s.expectMonth(current, []*models.Expense{})
	s.expectMonth(current.Previous(), []*models.Expense{})

	resp, err := s.coach(nil).Advice(context.Background(), s.userID, s.now, &dto.AdviceRequest{})

	s.Require().NoError(err)
	s.Nil(resp.SpendLess)
	s.Nil(resp.SpendLittle)
}

func (s *CoachServiceTestSuite) TestAdvice_Personalized() {
	s.expectSpending()
	s.chat.On("Complete", mock.Anything, coachSystemPrompt, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Objetivo do utilizador: Viajar")
	})).Return("Sugestões:\n1. Cozinha em casa.\n2. Corta subscrições\nque não usas.\n- Define um teto semanal.", nil)

	resp, err := s.coach(s.chat).Advice(context.Background(), s.userID, s.now, &dto.AdviceRequest{Goal: "Viajar", SuperfluousSpending: "Não"})

	s.Require().NoError(err)
	s.NotContains(resp.Message, "supérfluos")
	s.Equal([]string{"Cozinha em casa.", "Corta subscrições que não usas.", "Define um teto semanal."}, resp.Tips)
}

func (s *CoachServiceTestSuite) TestHabitsResponse_Empty() {
	s.habitRepo.On("ListActive", mock.Anything, s.userID, (*uuid.UUID)(nil)).Return([]*models.Habit{}, nil)

	resp, err := s.coach(nil).HabitsResponse(context.Background(), s.userID, s.now)

	s.Require().NoError(err)
	s.False(resp.HasHabits)
	s.Equal("Sem dados de hábitos para analisar.", resp.Summary)
}

func TestHabitInsights_TiesKeepOrder(t *testing.T) {
	a := &models.Habit{ID: uuid.New(), Title: "A"}
	b := &models.Habit{ID: uuid.New(), Title: "B"}
	c := &models.Habit{ID: uuid.New(), Title: "C"}

	got := habitInsights([]*models.Habit{a, b, c}, []*models.HabitLog{
		{HabitID: b.ID, LoggedDate: day("2026-10-01"), IsCompleted: true},
		{HabitID: c.ID, LoggedDate: day("2026-10-01"), IsCompleted: true},
	})

	assert.Equal(t, "A", got.WorstHabit.Title)
	assert.Equal(t, "C", got.BestHabit.Title)
	assert.Equal(t, []models.HabitCount{{Title: "A", Count: 0}, {Title: "B", Count: 1}, {Title: "C", Count: 1}}, got.AllStats)
}

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"quanto", "devo", "poupar", "orçamento"}, searchTerms("Quanto devo poupar por mês? Poupar! Orçamento"))
	assert.Empty(t, searchTerms("ok, e tu?"))
}
