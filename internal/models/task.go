package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

type Task struct {
	ID          uuid.UUID     `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID   uuid.UUID     `json:"project_id" gorm:"type:uuid;not null;index"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description"`
	Status      TaskStatus    `json:"status" gorm:"not null;default:'TODO'"`
	Priority    *TaskPriority `json:"priority"`
	DueDate     *time.Time    `json:"due_date"`
	CompletedAt *time.Time    `json:"completed_at"`
	AssigneeID  *uuid.UUID    `json:"assignee_id" gorm:"type:uuid;index"`
	ReporterID  uuid.UUID     `json:"reporter_id" gorm:"type:uuid;not null"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
