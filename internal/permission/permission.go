// Package permission holds the access decision logic as pure functions over
// the actor's global role and optional project-scoped role. It performs no
// I/O; callers resolve roles first and pass them in. A global ADMIN is
// allowed everything before any project-role lookup, so admins never need a
// membership row.
package permission

import (
	"github.com/gofrs/uuid"

	"taskhub/backend/internal/models"
)

type Action string

const (
	// ReadProject covers the project itself, its tasks, its audit history
	// and its analytics.
	ReadProject Action = "project:read"
	// WriteTask covers task create/update/delete and status changes.
	WriteTask Action = "task:write"
	// ManageProject covers project create/update/delete.
	ManageProject Action = "project:manage"
	// ManageMembers covers adding, removing and re-roling project members.
	ManageMembers Action = "members:manage"
	// ManageUsers covers the global user administration surface.
	ManageUsers Action = "users:manage"
)

// Allowed decides whether an actor with the given global role, holding
// projectRole in the target project (nil when not a member), may perform
// action.
func Allowed(global models.GlobalRole, projectRole *models.ProjectRole, action Action) bool {
	if global == models.RoleAdmin {
		return true
	}

	switch action {
	case ReadProject:
		return projectRole != nil
	case WriteTask:
		return projectRole != nil && *projectRole == models.ProjectRoleMember
	case ManageProject, ManageMembers, ManageUsers:
		return false
	default:
		return false
	}
}

// EligibleAssignee reports whether a user with the given roles may be set as
// a task assignee: global admins and project MEMBERs only. Project VIEWERs
// and non-members are never assignable.
func EligibleAssignee(global models.GlobalRole, projectRole *models.ProjectRole) bool {
	if global == models.RoleAdmin {
		return true
	}
	return projectRole != nil && *projectRole == models.ProjectRoleMember
}

// CanChangeGlobalRole denies changing one's own global role regardless of
// admin status.
func CanChangeGlobalRole(actorID, targetID uuid.UUID) bool {
	return actorID != targetID
}

// CanDeleteUser denies deleting one's own account regardless of admin status.
func CanDeleteUser(actorID, targetID uuid.UUID) bool {
	return actorID != targetID
}
