package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"taskhub/backend/internal/models"
	"taskhub/backend/internal/services"
)

type AnalyticsServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service services.AnalyticsService
	ctx     context.Context
	project models.Project
}

func (suite *AnalyticsServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite)
	suite.service = services.NewAnalyticsService(suite.db)
	suite.ctx = context.Background()
	suite.project = createProject(suite, suite.db, "Apollo")
}

func (suite *AnalyticsServiceTestSuite) setTaskTimes(taskID interface{}, createdAt time.Time, completedAt *time.Time) {
	updates := map[string]interface{}{"created_at": createdAt}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error)
}

func (suite *AnalyticsServiceTestSuite) TestEmptyProject() {
	result, err := suite.service.GetProjectAnalytics(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)

	suite.EqualValues(0, result.TasksByStatus[models.StatusTodo])
	suite.EqualValues(0, result.TasksByStatus[models.StatusInProgress])
	suite.EqualValues(0, result.TasksByStatus[models.StatusDone])
	suite.Len(result.TasksByStatus, 3)

	suite.EqualValues(0, result.OverdueCount)
	suite.Empty(result.MostOverdue)

	// No completions: the average is absent, not zero.
	suite.Nil(result.AvgCompletionTimeHours)

	suite.Len(result.CompletionTimeDistribution, 4)
	for _, bucket := range []string{
		services.BucketUnderDay,
		services.BucketOneToThree,
		services.BucketUpToWeek,
		services.BucketOverWeek,
	} {
		count, present := result.CompletionTimeDistribution[bucket]
		suite.True(present, bucket)
		suite.EqualValues(0, count)
	}
}

func (suite *AnalyticsServiceTestSuite) TestStatusCountsAndOverdue() {
	now := time.Now().UTC()

	createTask(suite, suite.db, suite.project.ID, "open 1", models.StatusTodo)
	createTask(suite, suite.db, suite.project.ID, "open 2", models.StatusTodo)
	createTask(suite, suite.db, suite.project.ID, "running", models.StatusInProgress)

	// Three overdue tasks with staggered due dates, plus one overdue-but-done
	// task that must not count.
	for i, title := range []string{"late c", "late a", "late b"} {
		task := createTask(suite, suite.db, suite.project.ID, title, models.StatusTodo)
		due := now.Add(-time.Duration(i+1) * 24 * time.Hour)
		suite.Require().NoError(suite.db.Model(&models.Task{}).Where("id = ?", task.ID).
			Update("due_date", due).Error)
	}
	doneLate := createTask(suite, suite.db, suite.project.ID, "done late", models.StatusDone)
	pastDue := now.Add(-48 * time.Hour)
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("id = ?", doneLate.ID).
		Updates(map[string]interface{}{"due_date": pastDue, "completed_at": now}).Error)

	result, err := suite.service.GetProjectAnalytics(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)

	suite.EqualValues(5, result.TasksByStatus[models.StatusTodo])
	suite.EqualValues(1, result.TasksByStatus[models.StatusInProgress])
	suite.EqualValues(1, result.TasksByStatus[models.StatusDone])

	suite.EqualValues(3, result.OverdueCount)
	suite.Require().Len(result.MostOverdue, 3)
	// Most overdue first: oldest due date leads.
	suite.Equal("late b", result.MostOverdue[0].Title)
	suite.Equal("late a", result.MostOverdue[1].Title)
	suite.Equal("late c", result.MostOverdue[2].Title)
}

func (suite *AnalyticsServiceTestSuite) TestMostOverdueCapsAtFive() {
	now := time.Now().UTC()
	for i := 0; i < 8; i++ {
		task := createTask(suite, suite.db, suite.project.ID, "late", models.StatusTodo)
		suite.Require().NoError(suite.db.Model(&models.Task{}).Where("id = ?", task.ID).
			Update("due_date", now.Add(-time.Duration(i+1)*time.Hour)).Error)
	}

	result, err := suite.service.GetProjectAnalytics(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)
	suite.EqualValues(8, result.OverdueCount)
	suite.Len(result.MostOverdue, 5)
}

func (suite *AnalyticsServiceTestSuite) TestCompletionStats() {
	base := time.Now().UTC().Add(-30 * 24 * time.Hour)

	durations := []time.Duration{
		6 * time.Hour,       // < 1 Day
		48 * time.Hour,      // 1-3 Days
		100 * time.Hour,     // 3-7 Days
		10 * 24 * time.Hour, // > 7 Days
	}
	for _, d := range durations {
		task := createTask(suite, suite.db, suite.project.ID, "finished", models.StatusDone)
		completed := base.Add(d)
		suite.setTaskTimes(task.ID, base, &completed)
	}

	result, err := suite.service.GetProjectAnalytics(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)

	suite.EqualValues(1, result.CompletionTimeDistribution[services.BucketUnderDay])
	suite.EqualValues(1, result.CompletionTimeDistribution[services.BucketOneToThree])
	suite.EqualValues(1, result.CompletionTimeDistribution[services.BucketUpToWeek])
	suite.EqualValues(1, result.CompletionTimeDistribution[services.BucketOverWeek])

	// (6 + 48 + 100 + 240) / 4 = 98.5 hours.
	suite.Require().NotNil(result.AvgCompletionTimeHours)
	suite.InDelta(98.5, *result.AvgCompletionTimeHours, 0.01)
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}
