package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"taskhub/backend/internal/apperr"
	"taskhub/backend/internal/models"
	"taskhub/backend/internal/permission"
)

// ContextProjectRole holds the caller's role within the project resolved by
// RequireProjectAccess or RequireTaskAccess; nil for admins without a
// membership row.
const ContextProjectRole = "project_role"

// MemberRoleLookup resolves a user's membership role in a project; nil role
// means no membership.
type MemberRoleLookup interface {
	MemberRole(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectRole, error)
}

// TaskProjectLookup resolves the project a task belongs to.
type TaskProjectLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

// RequireProjectAccess authorizes the action against the project in the
// :id path parameter. Global admins pass unconditionally.
func RequireProjectAccess(lookup MemberRoleLookup, action permission.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := uuid.FromString(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_id",
				"message": "Project id must be a valid UUID",
			})
			return
		}

		authorizeProject(c, lookup, projectID, action)
	}
}

// RequireTaskAccess resolves the task in the :id path parameter to its
// project and authorizes the action there.
func RequireTaskAccess(tasks TaskProjectLookup, lookup MemberRoleLookup, action permission.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := uuid.FromString(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_id",
				"message": "Task id must be a valid UUID",
			})
			return
		}

		task, err := tasks.GetByID(c.Request.Context(), taskID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error":   "not_found",
					"message": "Task not found",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to resolve task",
			})
			return
		}

		authorizeProject(c, lookup, task.ProjectID, action)
	}
}

func authorizeProject(c *gin.Context, lookup MemberRoleLookup, projectID uuid.UUID, action permission.Action) {
	userID := CurrentUserID(c)
	globalRole := CurrentUserRole(c)

	projectRole, err := lookup.MemberRole(c.Request.Context(), projectID, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Project not found",
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to resolve project membership",
		})
		return
	}

	if !permission.Allowed(globalRole, projectRole, action) {
		// Membership is not disclosed: non-members get the same answer
		// as members lacking the permission.
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "permission_denied",
			"message": "You do not have access to this resource",
		})
		return
	}

	c.Set(ContextProjectRole, projectRole)
	c.Next()
}
