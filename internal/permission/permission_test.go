package permission_test

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"

	"taskhub/backend/internal/models"
	"taskhub/backend/internal/permission"
)

func roleP(r models.ProjectRole) *models.ProjectRole {
	return &r
}

func TestAllowed(t *testing.T) {
	member := roleP(models.ProjectRoleMember)
	viewer := roleP(models.ProjectRoleViewer)

	tests := []struct {
		name        string
		globalRole  models.GlobalRole
		projectRole *models.ProjectRole
		action      permission.Action
		want        bool
	}{
		{"admin reads without membership", models.RoleAdmin, nil, permission.ReadProject, true},
		{"admin writes tasks without membership", models.RoleAdmin, nil, permission.WriteTask, true},
		{"admin manages projects", models.RoleAdmin, nil, permission.ManageProject, true},
		{"admin manages members", models.RoleAdmin, nil, permission.ManageMembers, true},
		{"admin manages users", models.RoleAdmin, nil, permission.ManageUsers, true},

		{"project member reads", models.RoleMember, member, permission.ReadProject, true},
		{"project member writes tasks", models.RoleMember, member, permission.WriteTask, true},
		{"project member cannot manage project", models.RoleMember, member, permission.ManageProject, false},
		{"project member cannot manage members", models.RoleMember, member, permission.ManageMembers, false},

		{"project viewer reads", models.RoleMember, viewer, permission.ReadProject, true},
		{"project viewer cannot write tasks", models.RoleMember, viewer, permission.WriteTask, false},

		{"non-member cannot read", models.RoleMember, nil, permission.ReadProject, false},
		{"non-member cannot write", models.RoleMember, nil, permission.WriteTask, false},

		{"global viewer with project membership reads", models.RoleViewer, viewer, permission.ReadProject, true},
		{"global viewer as project member writes", models.RoleViewer, member, permission.WriteTask, true},
		{"global viewer without membership reads nothing", models.RoleViewer, nil, permission.ReadProject, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := permission.Allowed(tt.globalRole, tt.projectRole, tt.action)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEligibleAssignee(t *testing.T) {
	member := roleP(models.ProjectRoleMember)
	viewer := roleP(models.ProjectRoleViewer)

	assert.True(t, permission.EligibleAssignee(models.RoleAdmin, nil))
	assert.True(t, permission.EligibleAssignee(models.RoleMember, member))
	assert.False(t, permission.EligibleAssignee(models.RoleMember, viewer))
	assert.False(t, permission.EligibleAssignee(models.RoleMember, nil))
	assert.False(t, permission.EligibleAssignee(models.RoleViewer, nil))
}

func TestSelfActionGuards(t *testing.T) {
	actor := uuid.Must(uuid.NewV4())
	other := uuid.Must(uuid.NewV4())

	assert.True(t, permission.CanChangeGlobalRole(actor, other))
	assert.False(t, permission.CanChangeGlobalRole(actor, actor))

	assert.True(t, permission.CanDeleteUser(actor, other))
	assert.False(t, permission.CanDeleteUser(actor, actor))
}
