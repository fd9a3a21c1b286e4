package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskhub/backend/internal/apperr"
	"taskhub/backend/internal/audit"
	"taskhub/backend/internal/models"
	"taskhub/backend/internal/permission"
)

type TaskCreate struct {
	ProjectID   uuid.UUID            `json:"project_id"`
	Title       string               `json:"title" binding:"required,min=3,max=200"`
	Description string               `json:"description" binding:"max=2000"`
	Status      models.TaskStatus    `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    *models.TaskPriority `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	DueDate     *time.Time           `json:"due_date"`
	AssigneeID  *uuid.UUID           `json:"assignee_id"`
}

type TaskPatch struct {
	Title       *string                       `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string                       `json:"description" binding:"omitempty,max=2000"`
	Status      *models.TaskStatus            `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    Optional[models.TaskPriority] `json:"priority"`
	DueDate     Optional[time.Time]           `json:"due_date"`
	AssigneeID  Optional[uuid.UUID]           `json:"assignee_id"`
}

type TaskFilter struct {
	Status     *models.TaskStatus
	AssigneeID *uuid.UUID
	Search     string
}

type TaskService interface {
	Create(ctx context.Context, data TaskCreate, actorID uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch TaskPatch, actorID uuid.UUID) (*models.Task, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByProject(ctx context.Context, projectID uuid.UUID, page, pageSize int, filter TaskFilter) ([]models.Task, PageMeta, error)
	GetHistory(ctx context.Context, taskID uuid.UUID, page, pageSize int) ([]models.AuditLog, PageMeta, error)
}

type TaskServiceImpl struct {
	db     *gorm.DB
	audit  *audit.Writer
	reader *audit.Reader
}

func NewTaskService(db *gorm.DB, auditWriter *audit.Writer, auditReader *audit.Reader) *TaskServiceImpl {
	return &TaskServiceImpl{db: db, audit: auditWriter, reader: auditReader}
}

// validateAssignee enforces the eligibility rule: an assignee must be a
// global admin or a MEMBER of the task's project. The three failure modes
// are distinct client errors.
func (s *TaskServiceImpl) validateAssignee(ctx context.Context, projectID, assigneeID uuid.UUID) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", assigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.AssigneeNotFound(assigneeID.String())
		}
		return err
	}

	if user.IsAdmin() {
		return nil
	}

	var member models.ProjectMember
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, assigneeID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.AssigneeNotMember(assigneeID.String())
		}
		return err
	}

	if !permission.EligibleAssignee(user.Role, &member.ProjectRole) {
		return apperr.AssigneeIsViewer(assigneeID.String())
	}
	return nil
}

func (s *TaskServiceImpl) Create(ctx context.Context, data TaskCreate, actorID uuid.UUID) (*models.Task, error) {
	if err := s.db.WithContext(ctx).First(&models.Project{}, "id = ?", data.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(models.EntityProject, data.ProjectID.String())
		}
		return nil, err
	}

	if data.AssigneeID != nil {
		if err := s.validateAssignee(ctx, data.ProjectID, *data.AssigneeID); err != nil {
			return nil, err
		}
	}

	status := data.Status
	if status == "" {
		status = models.StatusTodo
	}

	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		ProjectID:   data.ProjectID,
		Title:       data.Title,
		Description: data.Description,
		Status:      status,
		Priority:    data.Priority,
		DueDate:     data.DueDate,
		AssigneeID:  data.AssigneeID,
		// The reporter is always the authenticated actor, never client input.
		ReporterID: actorID,
	}
	if status == models.StatusDone {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.EntityTask, task.ID, models.AuditCreate, actorID, map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"priority":    task.Priority,
			"dueDate":     task.DueDate,
			"projectId":   task.ProjectID.String(),
			"assigneeId":  task.AssigneeID,
		})
	})
	if err != nil {
		return nil, apperr.TransactionFailure(err)
	}

	return &task, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, id uuid.UUID, patch TaskPatch, actorID uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(models.EntityTask, id.String())
		}
		return nil, err
	}

	if patch.AssigneeID.Set && patch.AssigneeID.Value != nil {
		if err := s.validateAssignee(ctx, task.ProjectID, *patch.AssigneeID.Value); err != nil {
			return nil, err
		}
	}

	diff := audit.NewDiff()

	if patch.Title != nil {
		diff.Str("title", task.Title, *patch.Title)
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		diff.Str("description", task.Description, *patch.Description)
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		diff.Str("status", string(task.Status), string(*patch.Status))
		oldStatus := task.Status
		task.Status = *patch.Status

		// completedAt follows the DONE boundary: set on entry, cleared on
		// exit. Computed here, not client-supplied, but part of the stored
		// row so it joins the diff below.
		if oldStatus != models.StatusDone && task.Status == models.StatusDone {
			now := time.Now().UTC()
			oldCompleted := task.CompletedAt
			task.CompletedAt = &now
			diff.TimePtr("completedAt", oldCompleted, task.CompletedAt)
		} else if oldStatus == models.StatusDone && task.Status != models.StatusDone {
			diff.TimePtr("completedAt", task.CompletedAt, nil)
			task.CompletedAt = nil
		}
	}
	if patch.Priority.Set {
		oldPriority := (*string)(nil)
		if task.Priority != nil {
			v := string(*task.Priority)
			oldPriority = &v
		}
		newPriority := (*string)(nil)
		if patch.Priority.Value != nil {
			v := string(*patch.Priority.Value)
			newPriority = &v
		}
		diff.StrPtr("priority", oldPriority, newPriority)
		task.Priority = patch.Priority.Value
	}
	if patch.DueDate.Set {
		diff.TimePtr("dueDate", task.DueDate, patch.DueDate.Value)
		task.DueDate = patch.DueDate.Value
	}
	if patch.AssigneeID.Set {
		diff.UUIDPtr("assigneeId", task.AssigneeID, patch.AssigneeID.Value)
		task.AssigneeID = patch.AssigneeID.Value
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&task).Error; err != nil {
			return err
		}
		if diff.Empty() {
			return nil
		}
		return s.audit.Record(tx, models.EntityTask, task.ID, models.AuditUpdate, actorID, diff)
	})
	if err != nil {
		return nil, apperr.TransactionFailure(err)
	}

	return &task, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(models.EntityTask, id.String())
		}
		return err
	}

	snapshot := map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"dueDate":     task.DueDate,
		"projectId":   task.ProjectID.String(),
		"assigneeId":  task.AssigneeID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&task).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.EntityTask, task.ID, models.AuditDelete, actorID, snapshot)
	})
	if err != nil {
		return apperr.TransactionFailure(err)
	}

	return nil
}

func (s *TaskServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(models.EntityTask, id.String())
		}
		return nil, err
	}
	return &task, nil
}

// statusOrder makes the TODO/IN_PROGRESS/DONE grouping sortable; plain
// alphabetical ordering would put DONE first.
const statusOrder = "CASE status WHEN 'TODO' THEN 0 WHEN 'IN_PROGRESS' THEN 1 WHEN 'DONE' THEN 2 END"

func (s *TaskServiceImpl) GetByProject(ctx context.Context, projectID uuid.UUID, page, pageSize int, filter TaskFilter) ([]models.Task, PageMeta, error) {
	page, pageSize = NormalizePage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.Task{}).Where("project_id = ?", projectID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	var tasks []models.Task
	err := query.
		Order(statusOrder).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, PageMeta{}, err
	}

	return tasks, NewPageMeta(total, page, pageSize), nil
}

func (s *TaskServiceImpl) GetHistory(ctx context.Context, taskID uuid.UUID, page, pageSize int) ([]models.AuditLog, PageMeta, error) {
	page, pageSize = NormalizePage(page, pageSize)

	entries, total, err := s.reader.EntityHistory(ctx, models.EntityTask, taskID, page, pageSize)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return entries, NewPageMeta(total, page, pageSize), nil
}
