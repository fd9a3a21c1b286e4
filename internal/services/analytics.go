package services

import (
	"context"
	"math"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"taskhub/backend/internal/models"
)

const overdueListLimit = 5

// Completion-duration buckets. All four keys are always present in the
// response, zero-filled when empty.
const (
	BucketUnderDay  = "< 1 Day"
	BucketOneToThree = "1-3 Days"
	BucketUpToWeek  = "3-7 Days"
	BucketOverWeek  = "> 7 Days"
)

type ProjectAnalytics struct {
	TasksByStatus              map[models.TaskStatus]int64 `json:"tasks_by_status"`
	OverdueCount               int64                       `json:"overdue_count"`
	MostOverdue                []models.Task               `json:"most_overdue"`
	AvgCompletionTimeHours     *float64                    `json:"avg_completion_time_hours"`
	CompletionTimeDistribution map[string]int64            `json:"completion_time_distribution"`
}

type AnalyticsService interface {
	GetProjectAnalytics(ctx context.Context, projectID uuid.UUID) (*ProjectAnalytics, error)
}

type AnalyticsServiceImpl struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsServiceImpl {
	return &AnalyticsServiceImpl{db: db}
}

// GetProjectAnalytics runs its aggregate queries concurrently; they are all
// reads, so the store's read isolation is sufficient.
func (s *AnalyticsServiceImpl) GetProjectAnalytics(ctx context.Context, projectID uuid.UUID) (*ProjectAnalytics, error) {
	result := &ProjectAnalytics{}
	now := time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.statusCounts(gctx, projectID)
		if err != nil {
			return err
		}
		result.TasksByStatus = counts
		return nil
	})

	g.Go(func() error {
		var count int64
		err := s.db.WithContext(gctx).Model(&models.Task{}).
			Where("project_id = ? AND status <> ? AND due_date IS NOT NULL AND due_date < ?",
				projectID, models.StatusDone, now).
			Count(&count).Error
		if err != nil {
			return err
		}
		result.OverdueCount = count
		return nil
	})

	g.Go(func() error {
		var tasks []models.Task
		err := s.db.WithContext(gctx).
			Where("project_id = ? AND status <> ? AND due_date IS NOT NULL AND due_date < ?",
				projectID, models.StatusDone, now).
			Order("due_date ASC").
			Limit(overdueListLimit).
			Find(&tasks).Error
		if err != nil {
			return err
		}
		result.MostOverdue = tasks
		return nil
	})

	g.Go(func() error {
		avg, dist, err := s.completionStats(gctx, projectID)
		if err != nil {
			return err
		}
		result.AvgCompletionTimeHours = avg
		result.CompletionTimeDistribution = dist
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *AnalyticsServiceImpl) statusCounts(ctx context.Context, projectID uuid.UUID) (map[models.TaskStatus]int64, error) {
	counts := map[models.TaskStatus]int64{
		models.StatusTodo:       0,
		models.StatusInProgress: 0,
		models.StatusDone:       0,
	}

	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (s *AnalyticsServiceImpl) completionStats(ctx context.Context, projectID uuid.UUID) (*float64, map[string]int64, error) {
	dist := map[string]int64{
		BucketUnderDay:  0,
		BucketOneToThree: 0,
		BucketUpToWeek:  0,
		BucketOverWeek:  0,
	}

	var rows []struct {
		CreatedAt   time.Time
		CompletedAt time.Time
	}
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Select("created_at, completed_at").
		Where("project_id = ? AND status = ? AND completed_at IS NOT NULL", projectID, models.StatusDone).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, dist, nil
	}

	var totalHours float64
	for _, row := range rows {
		hours := row.CompletedAt.Sub(row.CreatedAt).Hours()
		totalHours += hours

		switch {
		case hours < 24:
			dist[BucketUnderDay]++
		case hours < 72:
			dist[BucketOneToThree]++
		case hours < 168:
			dist[BucketUpToWeek]++
		default:
			dist[BucketOverWeek]++
		}
	}

	avg := math.Round(totalHours/float64(len(rows))*100) / 100
	return &avg, dist, nil
}
