package user

type Permission string

const (
	// Daily monitoring
	PermissionMonitoringView Permission = "monitoring.view"

	// Check-ins
	PermissionCheckInCreate Permission = "checkin.create"

	// Exceptions
	PermissionExceptionCreate Permission = "exception.create"
	PermissionExceptionReview Permission = "exception.review"

	// Team summaries
	PermissionSummaryView    Permission = "summary.view"
	PermissionSummaryRebuild Permission = "summary.rebuild"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionMonitoringView,
		PermissionCheckInCreate,
		PermissionExceptionCreate,
		PermissionExceptionReview,
		PermissionSummaryView,
		PermissionSummaryRebuild,
	},
	RoleExecutive: {
		PermissionMonitoringView,
		PermissionSummaryView,
	},
	RoleSupervisor: {
		PermissionMonitoringView,
		PermissionExceptionCreate,
		PermissionExceptionReview,
		PermissionSummaryView,
		PermissionSummaryRebuild,
	},
	RoleTeamLead: {
		PermissionMonitoringView,
		PermissionCheckInCreate,
		PermissionExceptionCreate,
		PermissionExceptionReview,
		PermissionSummaryView,
	},
	RoleWorker: {
		PermissionCheckInCreate,
		PermissionExceptionCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
