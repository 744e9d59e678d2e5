package service

import (
	"context"
	"errors"
	"testing"

	"pocket-coach/internal/dto"
	"pocket-coach/internal/events"
	"pocket-coach/internal/models"
	"pocket-coach/pkg/metrics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type PlannerServiceTestSuite struct {
	suite.Suite
	planners  *mockPlannerRepo
	habits    *mockHabitRepo
	logs      *mockHabitLogRepo
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	service   *PlannerService
	userID    uuid.UUID
}

func (s *PlannerServiceTestSuite) SetupTest() {
	s.planners = new(mockPlannerRepo)
	s.habits = new(mockHabitRepo)
	s.logs = new(mockHabitLogRepo)
	s.publisher = &recordingPublisher{}
	s.metrics = metrics.New()
	s.service = NewPlannerService(s.planners, s.habits, s.logs, s.publisher, s.metrics, zap.NewNop())
	s.userID = uuid.New()
}

func (s *PlannerServiceTestSuite) TearDownTest() {
	s.planners.AssertExpectations(s.T())
	s.habits.AssertExpectations(s.T())
	s.logs.AssertExpectations(s.T())
}

func TestPlannerServiceSuite(t *testing.T) {
	suite.Run(t, new(PlannerServiceTestSuite))
}

func (s *PlannerServiceTestSuite) habit() *models.Habit {
	return &models.Habit{ID: uuid.New(), UserID: s.userID, PlannerID: uuid.New(), Title: "Ler", IsActive: true}
}

func (s *PlannerServiceTestSuite) TestToggle_Completes() {
	h := s.habit()
	d := day("2026-10-18")
	logged := &models.HabitLog{ID: uuid.New(), HabitID: h.ID, UserID: s.userID, LoggedDate: d, IsCompleted: true}

	s.habits.On("GetByID", mock.Anything, h.ID).Return(h, nil)
	s.logs.On("Toggle", mock.Anything, s.userID, h.ID, d).Return(logged, nil)

	resp, err := s.service.Toggle(context.Background(), s.userID, h.ID, "2026-10-18")

	s.Require().NoError(err)
	s.True(resp.Completed)
	s.Require().NotNil(resp.Log)
	s.Equal(logged.ID.String(), resp.Log.ID)
	s.Equal([]events.Type{events.HabitToggled}, s.publisher.types())
	s.Equal(1, mustGatherCount(s.T(), s.metrics, "habit_toggles_total"))
}

func (s *PlannerServiceTestSuite) TestToggle_Unchecks() {
	h := s.habit()
	d := day("2026-10-18")

	s.habits.On("GetByID", mock.Anything, h.ID).Return(h, nil)
	s.logs.On("Toggle", mock.Anything, s.userID, h.ID, d).Return(nil, nil)

	resp, err := s.service.Toggle(context.Background(), s.userID, h.ID, "2026-10-18")

	s.Require().NoError(err)
	s.False(resp.Completed)
	s.Nil(resp.Log)
}

func (s *PlannerServiceTestSuite) TestToggle_RejectsForeignOrRetiredHabit() {
	foreign := s.habit()
	foreign.UserID = uuid.New()
	retired := s.habit()
	retired.IsActive = false

	s.habits.On("GetByID", mock.Anything, foreign.ID).Return(foreign, nil)
	s.habits.On("GetByID", mock.Anything, retired.ID).Return(retired, nil)

	_, err := s.service.Toggle(context.Background(), s.userID, foreign.ID, "2026-10-18")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.service.Toggle(context.Background(), s.userID, retired.ID, "2026-10-18")
	s.ErrorIs(err, ErrNotFound)
	s.Empty(s.publisher.types())
}

func (s *PlannerServiceTestSuite) TestToggle_BadDate() {
	_, err := s.service.Toggle(context.Background(), s.userID, uuid.New(), "18/10/2026")
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *PlannerServiceTestSuite) TestToggle_StorageFailure() {
	h := s.habit()
	s.habits.On("GetByID", mock.Anything, h.ID).Return(h, nil)
	s.logs.On("Toggle", mock.Anything, s.userID, h.ID, mock.Anything).Return(nil, errors.New("conn reset"))

	_, err := s.service.Toggle(context.Background(), s.userID, h.ID, "2026-10-18")

	s.Error(err)
	s.Empty(s.publisher.types())
}

func (s *PlannerServiceTestSuite) TestListPlanners_CreatesDefault() {
	s.planners.On("ListByUser", mock.Anything, s.userID).Return([]*models.Planner{}, nil)
	s.planners.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Planner) bool {
		return p.Name == models.DefaultPlannerName && p.UserID == s.userID
	})).Return(nil)

	out, err := s.service.ListPlanners(context.Background(), s.userID)

	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(models.DefaultPlannerName, out[0].Name)
}

func (s *PlannerServiceTestSuite) TestDeletePlanner_KeepsLastOne() {
	p := &models.Planner{ID: uuid.New(), UserID: s.userID, Name: "Principal"}
	s.planners.On("GetByID", mock.Anything, p.ID).Return(p, nil)
	s.planners.On("ListByUser", mock.Anything, s.userID).Return([]*models.Planner{p}, nil)

	err := s.service.DeletePlanner(context.Background(), s.userID, p.ID)

	s.ErrorIs(err, ErrLastPlanner)
}

func (s *PlannerServiceTestSuite) TestCreateHabit_DefaultsToFirstPlanner() {
	p := &models.Planner{ID: uuid.New(), UserID: s.userID, Name: "Principal"}
	s.planners.On("ListByUser", mock.Anything, s.userID).Return([]*models.Planner{p}, nil)
	s.habits.On("Create", mock.Anything, mock.MatchedBy(func(h *models.Habit) bool {
		return h.PlannerID == p.ID && h.Frequency == models.FrequencyDaily &&
			h.TargetDaysPerWeek != nil && *h.TargetDaysPerWeek == 7 && h.IsActive
	})).Return(nil)

	resp, err := s.service.CreateHabit(context.Background(), s.userID, &dto.CreateHabitRequest{Title: " Correr "})

	s.Require().NoError(err)
	s.Equal("Correr", resp.Title)
}

func (s *PlannerServiceTestSuite) TestGrid() {
	p := &models.Planner{ID: uuid.New(), UserID: s.userID, Name: "Principal"}
	read := &models.Habit{ID: uuid.New(), UserID: s.userID, PlannerID: p.ID, Title: "Ler", IsActive: true}
	run := &models.Habit{ID: uuid.New(), UserID: s.userID, PlannerID: p.ID, Title: "Correr", IsActive: true}
	m, _ := models.ParseMonth("2026-02")

	s.planners.On("GetByID", mock.Anything, p.ID).Return(p, nil)
	s.habits.On("ListActive", mock.Anything, s.userID, &p.ID).Return([]*models.Habit{read, run}, nil)
	s.logs.On("ListRange", mock.Anything, s.userID, m.Start(), m.End()).Return([]*models.HabitLog{
		{HabitID: read.ID, LoggedDate: day("2026-02-01"), IsCompleted: true},
		{HabitID: read.ID, LoggedDate: day("2026-02-28"), IsCompleted: true},
		{HabitID: run.ID, LoggedDate: day("2026-02-10"), IsCompleted: false},
	}, nil)

	grid, err := s.service.Grid(context.Background(), s.userID, p.ID, "2026-02")

	s.Require().NoError(err)
	s.Len(grid.Days, 28)
	s.Require().Len(grid.Rows, 2)
	s.Equal(2, grid.Rows[0].Count)
	s.True(grid.Rows[0].Completed[0])
	s.True(grid.Rows[0].Completed[27])
	s.Equal(0, grid.Rows[1].Count)
}
