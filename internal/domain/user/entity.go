package user

type Role string

const (
	RoleAdmin      Role = "ADMIN"      // Company administrator - full access
	RoleExecutive  Role = "EXECUTIVE"  // Company-wide read access
	RoleSupervisor Role = "SUPERVISOR" // Oversees several teams
	RoleTeamLead   Role = "TEAM_LEAD"  // Leads exactly one team
	RoleWorker     Role = "WORKER"     // Submits check-ins and leave requests
)

// IsElevated reports whether the role may look at any team of its company.
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleExecutive || r == RoleSupervisor
}

// CanReview reports whether the role may approve or reject exceptions.
func (r Role) CanReview() bool {
	return r.IsElevated() || r == RoleTeamLead
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleExecutive, RoleSupervisor, RoleTeamLead, RoleWorker:
		return true
	}
	return false
}

type User struct {
	ID        string
	CompanyID string
	TeamID    *string
	FullName  string
	Email     string
	Role      Role
	IsActive  bool
}

// Actor is the authenticated caller, threaded explicitly through service calls.
type Actor struct {
	UserID    string
	CompanyID string
	Role      Role
}
