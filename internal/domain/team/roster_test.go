package team_test

import (
	"testing"

	"teamaccess/internal/domain"
	"teamaccess/internal/domain/team"
)

func TestNewRoster_TeamRoleListDuplicates(t *testing.T) {
	tm := team.Team{ID: 1, TeamRoles: []team.TeamRole{
		{ID: 1, TeamID: 1, UserID: 3, Role: team.RoleMember},
		{ID: 2, TeamID: 1, UserID: 3, Role: team.RoleAdmin},
	}}

	_, err := team.NewRoster(tm, nil)
	if domain.CodeOf(err) != domain.ErrorCodeDuplicateTeamRole {
		t.Fatalf("expected DUPLICATE_TEAM_ROLE, got %v", err)
	}
}

func TestNewRoster_MemberWithoutRoleInTeam(t *testing.T) {
	tm := team.Team{ID: 1}
	members := []team.Member{
		{ID: 5, TeamRoles: []team.TeamRole{{ID: 9, TeamID: 2, UserID: 5, Role: team.RoleOwner}}},
	}

	r, err := team.NewRoster(tm, members)
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	if !r.Loaded() {
		t.Fatalf("roster should report loaded")
	}
	if _, ok := r.RoleOf(5); ok {
		t.Fatalf("role in another team must not leak into this one")
	}
	if _, ok := r.Member(5); !ok {
		t.Fatalf("member should still be listed")
	}
}

func TestTeamRole_HasProject(t *testing.T) {
	tr := team.TeamRole{Projects: []int64{1, 4}}
	if !tr.HasProject(4) || tr.HasProject(2) {
		t.Fatalf("unexpected HasProject result for %v", tr.Projects)
	}
}
