package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type ProjectRole string

const (
	ProjectRoleMember ProjectRole = "MEMBER"
	ProjectRoleViewer ProjectRole = "VIEWER"
)

type Project struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Members []ProjectMember `json:"members,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Tasks   []Task          `json:"tasks,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// ProjectMember grants a user exactly one role inside a project.
// Global admins never hold a row here; their access is implicit.
type ProjectMember struct {
	ID          uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID   uuid.UUID   `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_user"`
	UserID      uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_user"`
	ProjectRole ProjectRole `json:"project_role" gorm:"not null"`
	JoinedAt    time.Time   `json:"joined_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
