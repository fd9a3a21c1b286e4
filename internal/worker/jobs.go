package worker

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"taskhub/backend/internal/models"
)

const reminderWindow = 24 * time.Hour

// TaskReminderHandler logs open tasks whose due date falls within the next
// 24 hours. The payload may narrow it to a single project via "project_id".
func TaskReminderHandler(db *gorm.DB, logger *slog.Logger) JobHandler {
	return func(ctx context.Context, job *Job) error {
		now := time.Now().UTC()
		cutoff := now.Add(reminderWindow)

		query := db.WithContext(ctx).
			Where("status <> ? AND due_date IS NOT NULL AND due_date BETWEEN ? AND ?",
				models.StatusDone, now, cutoff)

		if projectID, ok := job.Payload["project_id"].(string); ok && projectID != "" {
			query = query.Where("project_id = ?", projectID)
		}

		var tasks []models.Task
		if err := query.Find(&tasks).Error; err != nil {
			return err
		}

		for _, task := range tasks {
			logger.Info("task due soon",
				"task_id", task.ID,
				"project_id", task.ProjectID,
				"title", task.Title,
				"due_date", task.DueDate)
		}

		return nil
	}
}

// TokenCleanupHandler purges expired refresh tokens.
func TokenCleanupHandler(db *gorm.DB, logger *slog.Logger) JobHandler {
	return func(ctx context.Context, job *Job) error {
		result := db.WithContext(ctx).
			Where("expires_at < ?", time.Now()).
			Delete(&models.Token{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			logger.Info("expired refresh tokens removed", "count", result.RowsAffected)
		}

		return nil
	}
}
