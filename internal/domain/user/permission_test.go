package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleAdmin, PermissionSummaryRebuild, true},
		{RoleSupervisor, PermissionExceptionReview, true},
		{RoleTeamLead, PermissionSummaryRebuild, false},
		{RoleWorker, PermissionMonitoringView, false},
		{RoleWorker, PermissionCheckInCreate, true},
		{Role("GUEST"), PermissionCheckInCreate, false},
	}
	for _, c := range cases {
		got := HasPermission(c.role, c.permission)
		assert.Equal(t, c.want, got, "HasPermission(%s, %s)", c.role, c.permission)
	}
}

func TestRole_IsElevated(t *testing.T) {
	assert.True(t, RoleAdmin.IsElevated())
	assert.True(t, RoleExecutive.IsElevated())
	assert.True(t, RoleSupervisor.IsElevated())
	assert.False(t, RoleTeamLead.IsElevated())
	assert.False(t, RoleWorker.IsElevated())
	assert.True(t, RoleTeamLead.CanReview())
	assert.False(t, RoleWorker.CanReview())
}
