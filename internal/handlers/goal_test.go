package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/dto"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/services"
	"github.com/yukikurage/goal-boards-api/internal/testutil"
)

type fakeDrafter struct {
	drafts   []services.GoalDraft
	err      error
	category string
}

func (d *fakeDrafter) DraftGoals(_ context.Context, categoryTitle, _ string) ([]services.GoalDraft, error) {
	d.category = categoryTitle
	return d.drafts, d.err
}

// GoalHandlerTestSuite defines the test suite for GoalHandler
type GoalHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	drafter *fakeDrafter
	handler *GoalHandler
	f       boardFixture
}

// SetupTest runs before each test
func (s *GoalHandlerTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.drafter = &fakeDrafter{}
	svc := newTestServices(s.db, nil, s.drafter)
	s.handler = NewGoalHandler(svc.Goals, s.drafter)
	s.f = newBoardFixture(s.T(), s.db)
}

func (s *GoalHandlerTestSuite) TestCreateGoal_Success() {
	body := map[string]any{
		"category":    s.f.category.ID,
		"title":       "Write docs",
		"description": "all of them",
		"priority":    "high",
		"due_date":    "2031-03-04",
	}
	c, w := authContext(http.MethodPost, "/api/goals", body, s.f.writer.ID)
	s.handler.CreateGoal(c)

	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	goal := decode[dto.GoalDTO](s.T(), w)
	s.Equal("Write docs", goal.Title)
	s.Equal(models.GoalStatusToDo, goal.Status)
	s.Equal(models.GoalPriorityHigh, goal.Priority)
	s.Equal(s.f.writer.ID, goal.UserID)
	s.Require().NotNil(goal.DueDate)
	s.Equal("2031-03-04", goal.DueDate.Format(dateLayout))
}

func (s *GoalHandlerTestSuite) TestCreateGoal_ReaderForbidden() {
	body := map[string]any{"category": s.f.category.ID, "title": "Nope"}
	c, w := authContext(http.MethodPost, "/api/goals", body, s.f.reader.ID)
	s.handler.CreateGoal(c)

	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apierrors.ErrCodeForbiddenCreation, decode[apierrors.APIError](s.T(), w).Code)
}

func (s *GoalHandlerTestSuite) TestCreateGoal_NonParticipantForbidden() {
	body := map[string]any{"category": s.f.category.ID, "title": "Nope"}
	c, w := authContext(http.MethodPost, "/api/goals", body, s.f.outsider.ID)
	s.handler.CreateGoal(c)

	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apierrors.ErrCodeForbiddenCreation, decode[apierrors.APIError](s.T(), w).Code)
}

func (s *GoalHandlerTestSuite) TestCreateGoal_UnknownCategory() {
	body := map[string]any{"category": 9999, "title": "Nope"}
	c, w := authContext(http.MethodPost, "/api/goals", body, s.f.owner.ID)
	s.handler.CreateGoal(c)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal([]any{"category does not exist"}, decode[apierrors.APIError](s.T(), w).Details)
}

func (s *GoalHandlerTestSuite) TestCreateGoal_InvalidRequest() {
	c, w := authContext(http.MethodPost, "/api/goals", map[string]any{"title": "No category"}, s.f.owner.ID)
	s.handler.CreateGoal(c)
	s.Equal(http.StatusBadRequest, w.Code)

	body := map[string]any{"category": s.f.category.ID, "title": "x", "due_date": "tomorrow"}
	c, w = authContext(http.MethodPost, "/api/goals", body, s.f.owner.ID)
	s.handler.CreateGoal(c)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *GoalHandlerTestSuite) TestListGoals_Filters() {
	other := testutil.CreateGoal(s.T(), s.db, s.f.category, s.f.owner, "Plan offsite")
	s.Require().NoError(s.db.Model(other).Update("status", models.GoalStatusDone).Error)

	c, w := authContext(http.MethodGet, "/api/goals?status=done,in_progress", nil, s.f.reader.ID)
	s.handler.ListGoals(c)
	s.Require().Equal(http.StatusOK, w.Code)
	list := decode[dto.GoalListResponse](s.T(), w)
	s.Equal(int64(1), list.Pagination.Total)
	s.Equal("Plan offsite", list.Goals[0].Title)

	c, w = authContext(http.MethodGet, "/api/goals?search=release&category=1", nil, s.f.reader.ID)
	s.handler.ListGoals(c)
	s.Require().Equal(http.StatusOK, w.Code)
	list = decode[dto.GoalListResponse](s.T(), w)
	s.Require().Len(list.Goals, 1)
	s.Equal("Ship release", list.Goals[0].Title)

	c, w = authContext(http.MethodGet, "/api/goals?status=paused", nil, s.f.reader.ID)
	s.handler.ListGoals(c)
	s.Equal(http.StatusBadRequest, w.Code)

	c, w = authContext(http.MethodGet, "/api/goals", nil, s.f.outsider.ID)
	s.handler.ListGoals(c)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Empty(decode[dto.GoalListResponse](s.T(), w).Goals)
}

func (s *GoalHandlerTestSuite) TestUpdateGoal_ClearsDueDate() {
	due := "2030-01-01"
	c, w := authContext(http.MethodPatch, "/api/goals/1", map[string]any{"due_date": due, "status": "in_progress"}, s.f.writer.ID, idParam(s.f.goal.ID))
	s.handler.UpdateGoal(c)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	goal := decode[dto.GoalDTO](s.T(), w)
	s.Require().NotNil(goal.DueDate)
	s.Equal(models.GoalStatusInProgress, goal.Status)

	c, w = authContext(http.MethodPatch, "/api/goals/1", map[string]any{"due_date": nil}, s.f.writer.ID, idParam(s.f.goal.ID))
	s.handler.UpdateGoal(c)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Nil(decode[dto.GoalDTO](s.T(), w).DueDate)
}

func (s *GoalHandlerTestSuite) TestUpdateGoal_ReaderForbidden() {
	c, w := authContext(http.MethodPatch, "/api/goals/1", map[string]any{"title": "Mine"}, s.f.reader.ID, idParam(s.f.goal.ID))
	s.handler.UpdateGoal(c)
	s.Equal(http.StatusForbidden, w.Code)

	c, w = authContext(http.MethodPatch, "/api/goals/1", map[string]any{"title": 12}, s.f.owner.ID, idParam(s.f.goal.ID))
	s.handler.UpdateGoal(c)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *GoalHandlerTestSuite) TestDeleteGoal_Archives() {
	c, w := authContext(http.MethodDelete, "/api/goals/1", nil, s.f.writer.ID, idParam(s.f.goal.ID))
	s.handler.DeleteGoal(c)
	s.Require().Equal(http.StatusOK, w.Code)

	c, w = authContext(http.MethodGet, "/api/goals/1", nil, s.f.writer.ID, idParam(s.f.goal.ID))
	s.handler.GetGoal(c)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(models.GoalStatusArchived, decode[dto.GoalDTO](s.T(), w).Status)
}

func (s *GoalHandlerTestSuite) TestGenerateGoals() {
	s.drafter.drafts = []services.GoalDraft{{Title: "Run a 10k", Priority: models.GoalPriorityHigh}}

	body := map[string]any{"category": s.f.category.ID, "text": "I want to get fit"}
	c, w := authContext(http.MethodPost, "/api/goals/generate", body, s.f.writer.ID)
	s.handler.GenerateGoals(c)

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	resp := decode[dto.GoalDraftListResponse](s.T(), w)
	s.Equal(s.f.category.Title, s.drafter.category)
	s.Require().Len(resp.Goals, 1)
	s.Equal("Run a 10k", resp.Goals[0].Title)

	var count int64
	s.Require().NoError(s.db.Model(&models.Goal{}).Count(&count).Error)
	s.Equal(int64(1), count, "drafts are not stored")
}

func (s *GoalHandlerTestSuite) TestGenerateGoals_Unavailable() {
	s.drafter.err = services.ErrAIUnavailable

	body := map[string]any{"category": s.f.category.ID, "text": "I want to get fit"}
	c, w := authContext(http.MethodPost, "/api/goals/generate", body, s.f.owner.ID)
	s.handler.GenerateGoals(c)
	s.Equal(http.StatusServiceUnavailable, w.Code)

	s.drafter.err = errors.New("openai timeout")
	c, w = authContext(http.MethodPost, "/api/goals/generate", body, s.f.owner.ID)
	s.handler.GenerateGoals(c)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "openai timeout")
}

func TestGoalHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GoalHandlerTestSuite))
}

func TestGoalHandler_NoDrafterConfigured(t *testing.T) {
	db := testutil.NewDB(t)
	f := newBoardFixture(t, db)
	h := NewGoalHandler(newTestServices(db, nil, nil).Goals, nil)

	body := map[string]any{"category": f.category.ID, "text": "anything"}
	c, w := authContext(http.MethodPost, "/api/goals/generate", body, f.owner.ID)
	h.GenerateGoals(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
