package team

import (
	"fmt"
	"net/http"

	"teamaccess/internal/domain"
)

// Roster is a loaded team together with its members and a member-id index of
// the TeamRole each member holds in this team. It is built once per load and
// must be treated as read-only; a fresh load produces a new Roster.
type Roster struct {
	Team     Team
	Members  []Member
	byMember map[int64]TeamRole
}

// NewRoster indexes members by their role in t. Duplicate (team, user) pairs in
// either the team's role list or a member's role sequence are rejected.
func NewRoster(t Team, members []Member) (Roster, error) {
	seen := make(map[int64]struct{}, len(t.TeamRoles))
	for _, r := range t.TeamRoles {
		if _, dup := seen[r.UserID]; dup {
			return Roster{}, duplicateRole(t.ID, r.UserID)
		}
		seen[r.UserID] = struct{}{}
	}

	idx := make(map[int64]TeamRole, len(members))
	for _, m := range members {
		teams := make(map[int64]struct{}, len(m.TeamRoles))
		for _, r := range m.TeamRoles {
			if _, dup := teams[r.TeamID]; dup {
				return Roster{}, duplicateRole(r.TeamID, m.ID)
			}
			teams[r.TeamID] = struct{}{}
			if r.TeamID == t.ID {
				idx[m.ID] = r
			}
		}
	}

	return Roster{Team: t, Members: members, byMember: idx}, nil
}

func duplicateRole(teamID, userID int64) error {
	return &domain.DomainError{
		Code:       domain.ErrorCodeDuplicateTeamRole,
		Message:    fmt.Sprintf("user %d has more than one role in team %d", userID, teamID),
		HTTPStatus: http.StatusConflict,
	}
}

// RoleOf returns the member's effective role in this team.
func (r Roster) RoleOf(memberID int64) (TeamRole, bool) {
	tr, ok := r.byMember[memberID]
	return tr, ok
}

func (r Roster) Member(memberID int64) (Member, bool) {
	for _, m := range r.Members {
		if m.ID == memberID {
			return m, true
		}
	}
	return Member{}, false
}

// Roles is the team's own role list, the input the access policy works on.
func (r Roster) Roles() []TeamRole {
	return r.Team.TeamRoles
}

func (r Roster) Loaded() bool {
	return r.byMember != nil
}
