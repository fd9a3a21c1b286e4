package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"taskhub/backend/internal/cache"
	"taskhub/backend/internal/models"
)

const (
	analyticsTTL   = 5 * time.Minute
	projectPageTTL = 2 * time.Minute
)

func analyticsKey(projectID uuid.UUID) string {
	return fmt.Sprintf("analytics:%s", projectID.String())
}

// CachedAnalyticsService caches per-project analytics in Redis. Cache
// failures are treated as misses; the database is the source of truth.
type CachedAnalyticsService struct {
	inner AnalyticsService
	cache *cache.RedisCache
}

func NewCachedAnalyticsService(inner AnalyticsService, cacheInstance *cache.RedisCache) *CachedAnalyticsService {
	return &CachedAnalyticsService{inner: inner, cache: cacheInstance}
}

func (s *CachedAnalyticsService) GetProjectAnalytics(ctx context.Context, projectID uuid.UUID) (*ProjectAnalytics, error) {
	key := analyticsKey(projectID)

	var cached ProjectAnalytics
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	analytics, err := s.inner.GetProjectAnalytics(ctx, projectID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, key, analytics, analyticsTTL)

	return analytics, nil
}

// CachedTaskService invalidates the analytics cache on every task write; the
// read paths pass straight through.
type CachedTaskService struct {
	TaskService
	cache *cache.RedisCache
}

func NewCachedTaskService(inner TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{TaskService: inner, cache: cacheInstance}
}

func (s *CachedTaskService) Create(ctx context.Context, data TaskCreate, actorID uuid.UUID) (*models.Task, error) {
	task, err := s.TaskService.Create(ctx, data, actorID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, analyticsKey(task.ProjectID))
	return task, nil
}

func (s *CachedTaskService) Update(ctx context.Context, id uuid.UUID, patch TaskPatch, actorID uuid.UUID) (*models.Task, error) {
	task, err := s.TaskService.Update(ctx, id, patch, actorID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, analyticsKey(task.ProjectID))
	return task, nil
}

func (s *CachedTaskService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	task, getErr := s.TaskService.GetByID(ctx, id)

	if err := s.TaskService.Delete(ctx, id, actorID); err != nil {
		return err
	}

	if getErr == nil {
		_ = s.cache.Delete(ctx, analyticsKey(task.ProjectID))
	}
	return nil
}

// CachedProjectService caches list pages and invalidates them, plus the
// project's analytics entry, on any project or membership write.
type CachedProjectService struct {
	ProjectService
	cache *cache.RedisCache
}

func NewCachedProjectService(inner ProjectService, cacheInstance *cache.RedisCache) *CachedProjectService {
	return &CachedProjectService{ProjectService: inner, cache: cacheInstance}
}

func projectPageKey(userID uuid.UUID, isAdmin bool, page, pageSize int) string {
	return fmt.Sprintf("projects:%s:%t:%d:%d", userID.String(), isAdmin, page, pageSize)
}

type cachedProjectPage struct {
	Projects []models.Project `json:"projects"`
	Meta     PageMeta         `json:"meta"`
}

func (s *CachedProjectService) GetAll(ctx context.Context, userID uuid.UUID, isAdmin bool, page, pageSize int) ([]models.Project, PageMeta, error) {
	page, pageSize = NormalizePage(page, pageSize)
	key := projectPageKey(userID, isAdmin, page, pageSize)

	var cached cachedProjectPage
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached.Projects, cached.Meta, nil
	}

	projects, meta, err := s.ProjectService.GetAll(ctx, userID, isAdmin, page, pageSize)
	if err != nil {
		return nil, PageMeta{}, err
	}

	_ = s.cache.Set(ctx, key, cachedProjectPage{Projects: projects, Meta: meta}, projectPageTTL)

	return projects, meta, nil
}

func (s *CachedProjectService) invalidate(ctx context.Context, projectID uuid.UUID) {
	_ = s.cache.DeletePattern(ctx, "projects:*")
	_ = s.cache.Delete(ctx, analyticsKey(projectID))
}

func (s *CachedProjectService) Create(ctx context.Context, name, description string, actorID uuid.UUID) (*models.Project, error) {
	project, err := s.ProjectService.Create(ctx, name, description, actorID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, project.ID)
	return project, nil
}

func (s *CachedProjectService) Update(ctx context.Context, id uuid.UUID, patch ProjectPatch, actorID uuid.UUID) (*models.Project, error) {
	project, err := s.ProjectService.Update(ctx, id, patch, actorID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return project, nil
}

func (s *CachedProjectService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if err := s.ProjectService.Delete(ctx, id, actorID); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedProjectService) AddMember(ctx context.Context, projectID, userID uuid.UUID, role models.ProjectRole, actorID uuid.UUID) (*models.ProjectMember, error) {
	member, err := s.ProjectService.AddMember(ctx, projectID, userID, role, actorID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, projectID)
	return member, nil
}

func (s *CachedProjectService) UpdateMemberRole(ctx context.Context, projectID, memberID uuid.UUID, newRole models.ProjectRole, actorID uuid.UUID) (*models.ProjectMember, error) {
	member, err := s.ProjectService.UpdateMemberRole(ctx, projectID, memberID, newRole, actorID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, projectID)
	return member, nil
}

func (s *CachedProjectService) RemoveMember(ctx context.Context, projectID, memberID, actorID uuid.UUID) error {
	if err := s.ProjectService.RemoveMember(ctx, projectID, memberID, actorID); err != nil {
		return err
	}
	s.invalidate(ctx, projectID)
	return nil
}
