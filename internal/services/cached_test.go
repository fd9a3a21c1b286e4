package services_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"taskhub/backend/internal/audit"
	"taskhub/backend/internal/cache"
	"taskhub/backend/internal/models"
	"taskhub/backend/internal/services"
)

type CachedServicesTestSuite struct {
	suite.Suite
	db        *gorm.DB
	cache     *cache.RedisCache
	analytics services.AnalyticsService
	tasks     services.TaskService
	ctx       context.Context
	actor     models.User
	project   models.Project
}

func (suite *CachedServicesTestSuite) SetupTest() {
	suite.db = openTestDB(suite)
	mr := miniredis.RunT(suite.T())
	suite.cache = cache.New(&cache.Config{Addr: mr.Addr()})

	writer := audit.NewWriter()
	suite.analytics = services.NewCachedAnalyticsService(services.NewAnalyticsService(suite.db), suite.cache)
	suite.tasks = services.NewCachedTaskService(
		services.NewTaskService(suite.db, writer, audit.NewReader(suite.db)), suite.cache)

	suite.ctx = context.Background()
	suite.actor = createUser(suite, suite.db, models.RoleAdmin)
	suite.project = createProject(suite, suite.db, "Apollo")
}

func (suite *CachedServicesTestSuite) TestAnalyticsServedFromCache() {
	createTask(suite, suite.db, suite.project.ID, "one", models.StatusTodo)

	first, err := suite.analytics.GetProjectAnalytics(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)
	suite.EqualValues(1, first.TasksByStatus[models.StatusTodo])

	// A write behind the cache's back is not observed until invalidation.
	createTask(suite, suite.db, suite.project.ID, "two", models.StatusTodo)

	second, err := suite.analytics.GetProjectAnalytics(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)
	suite.EqualValues(1, second.TasksByStatus[models.StatusTodo])
}

func (suite *CachedServicesTestSuite) TestTaskWriteInvalidatesAnalytics() {
	_, err := suite.analytics.GetProjectAnalytics(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)

	_, err = suite.tasks.Create(suite.ctx, services.TaskCreate{
		ProjectID: suite.project.ID,
		Title:     "fresh task",
	}, suite.actor.ID)
	suite.Require().NoError(err)

	result, err := suite.analytics.GetProjectAnalytics(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)
	suite.EqualValues(1, result.TasksByStatus[models.StatusTodo])
}

func (suite *CachedServicesTestSuite) TestProjectListCachedPerPage() {
	writer := audit.NewWriter()
	projects := services.NewCachedProjectService(
		services.NewProjectService(suite.db, writer), suite.cache)

	list, meta, err := projects.GetAll(suite.ctx, suite.actor.ID, true, 1, 20)
	suite.Require().NoError(err)
	suite.Len(list, 1)
	suite.EqualValues(1, meta.Total)

	// Creating through the decorator invalidates the cached page.
	_, err = projects.Create(suite.ctx, "Gemini", "", suite.actor.ID)
	suite.Require().NoError(err)

	list, meta, err = projects.GetAll(suite.ctx, suite.actor.ID, true, 1, 20)
	suite.Require().NoError(err)
	suite.Len(list, 2)
	suite.EqualValues(2, meta.Total)
}

func TestCachedServicesTestSuite(t *testing.T) {
	suite.Run(t, new(CachedServicesTestSuite))
}
