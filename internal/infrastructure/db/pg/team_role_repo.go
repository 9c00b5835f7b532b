package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"teamaccess/internal/domain"
	"teamaccess/internal/domain/team"
)

type TeamRoleRepository struct {
	store
}

func NewTeamRoleRepository(db *sql.DB) *TeamRoleRepository {
	return &TeamRoleRepository{store{db: db}}
}

func (r *TeamRoleRepository) GetTeamRoleForUpdate(ctx context.Context, memberID, teamID int64) (team.TeamRole, error) {
	tr, err := scanTeamRole(r.queryRow(ctx,
		`SELECT `+teamRoleColumns+`
		   FROM team_roles tr
		  WHERE tr.team_id = $1 AND tr.user_id = $2
		  FOR UPDATE`,
		teamID, memberID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return team.TeamRole{}, domain.NotFound("team role not found")
	}
	return tr, err
}

func (r *TeamRoleRepository) UpdateTeamRole(ctx context.Context, in team.TeamRole) (team.TeamRole, error) {
	projects := in.Projects
	if projects == nil {
		projects = []int64{}
	}
	raw, err := json.Marshal(projects)
	if err != nil {
		return team.TeamRole{}, err
	}

	tr, err := scanTeamRole(r.queryRow(ctx,
		`UPDATE team_roles tr
		    SET role = $3, projects = $4::jsonb, can_export = $5, updated_at = now()
		  WHERE tr.team_id = $1 AND tr.user_id = $2
		  RETURNING `+teamRoleColumns,
		in.TeamID, in.UserID, string(in.Role), string(raw), in.CanExport,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return team.TeamRole{}, domain.NotFound("team role not found")
	}
	return tr, err
}

func (r *TeamRoleRepository) DeleteTeamMember(ctx context.Context, memberID, teamID int64) error {
	res, err := r.exec(ctx,
		`DELETE FROM team_roles WHERE team_id = $1 AND user_id = $2`,
		teamID, memberID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("team member not found")
	}
	return nil
}
