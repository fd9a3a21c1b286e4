package services

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskhub/backend/internal/apperr"
	"taskhub/backend/internal/models"
	"taskhub/backend/internal/permission"
)

type UserService interface {
	GetAll(ctx context.Context, page, pageSize int) ([]models.User, PageMeta, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateRole(ctx context.Context, targetID uuid.UUID, newRole models.GlobalRole, actorID uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, targetID, actorID uuid.UUID) error
}

type UserServiceImpl struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserServiceImpl {
	return &UserServiceImpl{db: db}
}

func (s *UserServiceImpl) GetAll(ctx context.Context, page, pageSize int) ([]models.User, PageMeta, error) {
	page, pageSize = NormalizePage(page, pageSize)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, PageMeta{}, err
	}

	return users, NewPageMeta(total, page, pageSize), nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User", id.String())
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) UpdateRole(ctx context.Context, targetID uuid.UUID, newRole models.GlobalRole, actorID uuid.UUID) (*models.User, error) {
	// The self check comes first: changing one's own role is forbidden even
	// when the new role equals the current one.
	if !permission.CanChangeGlobalRole(actorID, targetID) {
		return nil, apperr.SelfActionForbidden("cannot change your own global role")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User", targetID.String())
		}
		return nil, err
	}

	if user.Role == newRole {
		return &user, nil
	}

	user.Role = newRole
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, targetID, actorID uuid.UUID) error {
	if !permission.CanDeleteUser(actorID, targetID) {
		return apperr.SelfActionForbidden("cannot delete your own account")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User", targetID.String())
		}
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", targetID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
