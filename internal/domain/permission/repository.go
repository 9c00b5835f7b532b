package permission

import (
	"context"

	"teamaccess/internal/domain/team"
)

type Repository interface {
	GetTeamRoleForUpdate(ctx context.Context, memberID, teamID int64) (team.TeamRole, error)
	UpdateTeamRole(ctx context.Context, tr team.TeamRole) (team.TeamRole, error)
	DeleteTeamMember(ctx context.Context, memberID, teamID int64) error
}
