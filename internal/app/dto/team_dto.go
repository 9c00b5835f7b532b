package dto

type TeamRole struct {
	ID        int64   `json:"id"`
	TeamID    int64   `json:"team_id"`
	UserID    int64   `json:"user_id"`
	Role      string  `json:"role"`
	Projects  []int64 `json:"projects"`
	CanExport bool    `json:"can_export"`
}

type Team struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	TeamRoles []TeamRole `json:"team_roles"`
}

// TeamMember is one row of the member listing, including what the requesting
// actor may do to that member.
type TeamMember struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          *TeamRole `json:"role"`
	CanChangeRole bool      `json:"can_change_role"`
	CanRemove     bool      `json:"can_remove"`
}

type TeamMembers struct {
	TeamID            int64        `json:"team_id"`
	State             string       `json:"state"`
	Pending           []string     `json:"pending,omitempty"`
	CanManageProjects bool         `json:"can_manage_projects"`
	Members           []TeamMember `json:"members"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type ToggleProjectRequest struct {
	ProjectID int64 `json:"project_id"`
}
