package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"teamaccess/internal/domain"
	"teamaccess/internal/domain/team"
)

type TeamRepository struct {
	store
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{store{db: db}}
}

const teamRoleColumns = `tr.id, tr.team_id, tr.user_id, tr.role, tr.projects, tr.can_export`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeamRole(row rowScanner, extra ...any) (team.TeamRole, error) {
	var (
		tr       team.TeamRole
		role     string
		projects []byte
	)
	dest := append(extra, &tr.ID, &tr.TeamID, &tr.UserID, &role, &projects, &tr.CanExport)
	if err := row.Scan(dest...); err != nil {
		return team.TeamRole{}, err
	}
	tr.Role = team.Role(role)
	if err := decodeProjects(projects, &tr.Projects); err != nil {
		return team.TeamRole{}, err
	}
	return tr, nil
}

func decodeProjects(raw []byte, dst *[]int64) error {
	*dst = []int64{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode projects: %w", err)
	}
	return nil
}

func (r *TeamRepository) GetTeam(ctx context.Context, teamID int64) (team.Team, error) {
	var t team.Team
	err := r.queryRow(ctx,
		`SELECT id, name FROM teams WHERE id = $1`,
		teamID,
	).Scan(&t.ID, &t.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return team.Team{}, domain.NotFound("team not found")
	}
	if err != nil {
		return team.Team{}, err
	}

	rows, err := r.query(ctx,
		`SELECT `+teamRoleColumns+`
		   FROM team_roles tr
		  WHERE tr.team_id = $1
		  ORDER BY tr.id`,
		teamID,
	)
	if err != nil {
		return team.Team{}, err
	}
	defer rows.Close()

	t.TeamRoles = []team.TeamRole{}
	for rows.Next() {
		tr, err := scanTeamRole(rows)
		if err != nil {
			return team.Team{}, err
		}
		t.TeamRoles = append(t.TeamRoles, tr)
	}
	if err := rows.Err(); err != nil {
		return team.Team{}, err
	}
	return t, nil
}

// GetTeamMembers returns every user holding a role in teamID, each carrying
// all of their TeamRoles across teams.
func (r *TeamRepository) GetTeamMembers(ctx context.Context, teamID int64) ([]team.Member, error) {
	rows, err := r.query(ctx,
		`SELECT u.id, u.name, u.email, `+teamRoleColumns+`
		   FROM users u
		   JOIN team_roles tr ON tr.user_id = u.id
		  WHERE u.id IN (SELECT user_id FROM team_roles WHERE team_id = $1)
		  ORDER BY u.id, tr.id`,
		teamID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []team.Member{}
	for rows.Next() {
		var m team.Member
		tr, err := scanTeamRole(rows, &m.ID, &m.Name, &m.Email)
		if err != nil {
			return nil, err
		}
		if n := len(members); n > 0 && members[n-1].ID == m.ID {
			members[n-1].TeamRoles = append(members[n-1].TeamRoles, tr)
			continue
		}
		m.TeamRoles = []team.TeamRole{tr}
		members = append(members, m)
	}
	return members, rows.Err()
}
