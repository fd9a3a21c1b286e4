package services

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskhub/backend/internal/apperr"
	"taskhub/backend/internal/audit"
	"taskhub/backend/internal/models"
)

type ProjectPatch struct {
	Name        *string `json:"name" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type ProjectService interface {
	Create(ctx context.Context, name, description string, actorID uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, id uuid.UUID, patch ProjectPatch, actorID uuid.UUID) (*models.Project, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetAll(ctx context.Context, userID uuid.UUID, isAdmin bool, page, pageSize int) ([]models.Project, PageMeta, error)

	AddMember(ctx context.Context, projectID, userID uuid.UUID, role models.ProjectRole, actorID uuid.UUID) (*models.ProjectMember, error)
	UpdateMemberRole(ctx context.Context, projectID, memberID uuid.UUID, newRole models.ProjectRole, actorID uuid.UUID) (*models.ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, memberID, actorID uuid.UUID) error

	// MemberRole resolves the project-scoped role of a user, nil when the
	// user holds no membership. Used by the authorization middleware.
	MemberRole(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectRole, error)
}

type ProjectServiceImpl struct {
	db    *gorm.DB
	audit *audit.Writer
}

func NewProjectService(db *gorm.DB, auditWriter *audit.Writer) *ProjectServiceImpl {
	return &ProjectServiceImpl{db: db, audit: auditWriter}
}

func (s *ProjectServiceImpl) Create(ctx context.Context, name, description string, actorID uuid.UUID) (*models.Project, error) {
	project := models.Project{
		ID:          uuid.Must(uuid.NewV4()),
		Name:        name,
		Description: description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.EntityProject, project.ID, models.AuditCreate, actorID, map[string]interface{}{
			"name":        project.Name,
			"description": project.Description,
		})
	})
	if err != nil {
		return nil, apperr.TransactionFailure(err)
	}

	return &project, nil
}

func (s *ProjectServiceImpl) Update(ctx context.Context, id uuid.UUID, patch ProjectPatch, actorID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(models.EntityProject, id.String())
		}
		return nil, err
	}

	diff := audit.NewDiff()
	if patch.Name != nil {
		diff.Str("name", project.Name, *patch.Name)
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		diff.Str("description", project.Description, *patch.Description)
		project.Description = *patch.Description
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&project).Error; err != nil {
			return err
		}
		if diff.Empty() {
			return nil
		}
		return s.audit.Record(tx, models.EntityProject, project.ID, models.AuditUpdate, actorID, diff)
	})
	if err != nil {
		return nil, apperr.TransactionFailure(err)
	}

	return &project, nil
}

func (s *ProjectServiceImpl) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(models.EntityProject, id.String())
		}
		return err
	}

	// Snapshot before the row disappears; the audit entry is the only trace
	// left after a delete.
	snapshot := map[string]interface{}{
		"name":        project.Name,
		"description": project.Description,
		"createdAt":   project.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Cascade is explicit: members and tasks go in the same transaction.
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&project).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.EntityProject, project.ID, models.AuditDelete, actorID, snapshot)
	})
	if err != nil {
		return apperr.TransactionFailure(err)
	}

	return nil
}

func (s *ProjectServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Preload("Members").Preload("Members.User").First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(models.EntityProject, id.String())
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectServiceImpl) GetAll(ctx context.Context, userID uuid.UUID, isAdmin bool, page, pageSize int) ([]models.Project, PageMeta, error) {
	page, pageSize = NormalizePage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.Project{})
	if !isAdmin {
		query = query.
			Joins("JOIN project_members ON project_members.project_id = projects.id").
			Where("project_members.user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	var projects []models.Project
	err := query.
		Order("projects.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&projects).Error
	if err != nil {
		return nil, PageMeta{}, err
	}

	return projects, NewPageMeta(total, page, pageSize), nil
}

func (s *ProjectServiceImpl) AddMember(ctx context.Context, projectID, userID uuid.UUID, role models.ProjectRole, actorID uuid.UUID) (*models.ProjectMember, error) {
	if err := s.db.WithContext(ctx).First(&models.Project{}, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(models.EntityProject, projectID.String())
		}
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User", userID.String())
		}
		return nil, err
	}

	var existing models.ProjectMember
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&existing).Error
	if err == nil {
		return nil, apperr.AlreadyExists("ProjectMember", userID.String())
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member := models.ProjectMember{
		ID:          uuid.Must(uuid.NewV4()),
		ProjectID:   projectID,
		UserID:      userID,
		ProjectRole: role,
		JoinedAt:    time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		// Member changes are project-level audit events, not a separate
		// entity type.
		return s.audit.Record(tx, models.EntityProject, projectID, models.AuditUpdate, actorID, map[string]interface{}{
			"memberAdded": map[string]interface{}{
				"userId":      userID.String(),
				"userName":    user.Name,
				"userEmail":   user.Email,
				"projectRole": role,
			},
		})
	})
	if err != nil {
		return nil, apperr.TransactionFailure(err)
	}

	member.User = user
	return &member, nil
}

func (s *ProjectServiceImpl) UpdateMemberRole(ctx context.Context, projectID, memberID uuid.UUID, newRole models.ProjectRole, actorID uuid.UUID) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := s.db.WithContext(ctx).Preload("User").First(&member, "id = ?", memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ProjectMember", memberID.String())
		}
		return nil, err
	}
	if member.ProjectID != projectID {
		return nil, apperr.NotFound("ProjectMember", memberID.String())
	}

	if member.ProjectRole == newRole {
		return &member, nil
	}

	oldRole := member.ProjectRole
	member.ProjectRole = newRole

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&member).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.EntityProject, projectID, models.AuditUpdate, actorID, map[string]interface{}{
			"memberRoleChanged": map[string]interface{}{
				"userId":    member.UserID.String(),
				"userName":  member.User.Name,
				"userEmail": member.User.Email,
				"old":       oldRole,
				"new":       newRole,
			},
		})
	})
	if err != nil {
		return nil, apperr.TransactionFailure(err)
	}

	return &member, nil
}

func (s *ProjectServiceImpl) RemoveMember(ctx context.Context, projectID, memberID, actorID uuid.UUID) error {
	var member models.ProjectMember
	err := s.db.WithContext(ctx).Preload("User").First(&member, "id = ?", memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("ProjectMember", memberID.String())
		}
		return err
	}
	if member.ProjectID != projectID {
		return apperr.NotFound("ProjectMember", memberID.String())
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&member).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.EntityProject, projectID, models.AuditUpdate, actorID, map[string]interface{}{
			"memberRemoved": map[string]interface{}{
				"userId":      member.UserID.String(),
				"userName":    member.User.Name,
				"userEmail":   member.User.Email,
				"projectRole": member.ProjectRole,
			},
		})
	})
	if err != nil {
		return apperr.TransactionFailure(err)
	}

	return nil
}

func (s *ProjectServiceImpl) MemberRole(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectRole, error) {
	var member models.ProjectMember
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member.ProjectRole, nil
}
