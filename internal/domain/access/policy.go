// Package access decides what an actor may do inside a team, based only on the
// team's role records. Every function is pure and total: a missing role entry
// is a denial, never an error.
package access

import "teamaccess/internal/domain/team"

// rank orders roles owner > admin > editor > member. Unknown roles rank 0.
func rank(r team.Role) int {
	switch r {
	case team.RoleOwner:
		return 4
	case team.RoleAdmin:
		return 3
	case team.RoleEditor:
		return 2
	case team.RoleMember:
		return 1
	}
	return 0
}

// AtLeast reports whether have is the same as or above want.
func AtLeast(have, want team.Role) bool {
	h := rank(have)
	return h > 0 && h >= rank(want)
}

func roleOf(userID int64, roles []team.TeamRole) (team.Role, bool) {
	for _, r := range roles {
		if r.UserID == userID {
			return r.Role, true
		}
	}
	return "", false
}

// CanAccess reports whether actorID holds required or a higher role in roles.
func CanAccess(required team.Role, actorID int64, roles []team.TeamRole) bool {
	have, ok := roleOf(actorID, roles)
	if !ok {
		return false
	}
	return AtLeast(have, required)
}

// CanManageProjects gates project access and export toggles.
func CanManageProjects(actorID int64, roles []team.TeamRole) bool {
	return CanAccess(team.RoleAdmin, actorID, roles)
}

// CanChangeRole reports whether actorID may change targetID's role. Nobody
// changes their own role, the target must belong to the team, and only an
// owner may touch another owner.
func CanChangeRole(actorID, targetID int64, roles []team.TeamRole) bool {
	if actorID == targetID {
		return false
	}
	target, ok := roleOf(targetID, roles)
	if !ok {
		return false
	}
	if CanAccess(team.RoleOwner, actorID, roles) {
		return true
	}
	return CanAccess(team.RoleAdmin, actorID, roles) && target != team.RoleOwner
}

// CanRemove follows the same rule as CanChangeRole.
func CanRemove(actorID, targetID int64, roles []team.TeamRole) bool {
	return CanChangeRole(actorID, targetID, roles)
}

// Assignable reports whether r can be granted through a role change.
// Ownership is never handed out this way.
func Assignable(r team.Role) bool {
	switch r {
	case team.RoleAdmin, team.RoleEditor, team.RoleMember:
		return true
	}
	return false
}
