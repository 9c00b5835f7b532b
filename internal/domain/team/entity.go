package team

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleMember:
		return true
	}
	return false
}

// TeamRole binds a user to a team with a role and per-team permissions.
type TeamRole struct {
	ID        int64
	TeamID    int64
	UserID    int64
	Role      Role
	Projects  []int64
	CanExport bool
}

// HasProject reports whether the role grants access to projectID.
func (r TeamRole) HasProject(projectID int64) bool {
	for _, p := range r.Projects {
		if p == projectID {
			return true
		}
	}
	return false
}

type Team struct {
	ID        int64
	Name      string
	TeamRoles []TeamRole
}

// Member carries every TeamRole the user holds, one per team.
type Member struct {
	ID        int64
	Name      string
	Email     string
	TeamRoles []TeamRole
}
