package handler

import (
	"github.com/dustin/go-humanize"

	"teamaccess/internal/app/dto"
	"teamaccess/internal/domain/access"
	"teamaccess/internal/domain/team"
	"teamaccess/internal/domain/teamview"
	"teamaccess/internal/domain/template"
)

func toTeamRoleDTO(r team.TeamRole) dto.TeamRole {
	projects := r.Projects
	if projects == nil {
		projects = []int64{}
	}
	return dto.TeamRole{
		ID:        r.ID,
		TeamID:    r.TeamID,
		UserID:    r.UserID,
		Role:      string(r.Role),
		Projects:  projects,
		CanExport: r.CanExport,
	}
}

func toTeamDTO(t team.Team) dto.Team {
	resp := dto.Team{
		ID:        t.ID,
		Name:      t.Name,
		TeamRoles: make([]dto.TeamRole, 0, len(t.TeamRoles)),
	}
	for _, r := range t.TeamRoles {
		resp.TeamRoles = append(resp.TeamRoles, toTeamRoleDTO(r))
	}
	return resp
}

func toMembersDTO(actorID int64, r team.Roster, st teamview.State) dto.TeamMembers {
	roles := r.Roles()
	resp := dto.TeamMembers{
		TeamID:            r.Team.ID,
		State:             string(st.Phase),
		CanManageProjects: access.CanManageProjects(actorID, roles),
		Members:           make([]dto.TeamMember, 0, len(r.Members)),
	}
	for _, f := range st.Fields {
		resp.Pending = append(resp.Pending, string(f))
	}

	for _, m := range r.Members {
		item := dto.TeamMember{
			ID:            m.ID,
			Name:          m.Name,
			Email:         m.Email,
			CanChangeRole: access.CanChangeRole(actorID, m.ID, roles),
			CanRemove:     access.CanRemove(actorID, m.ID, roles),
		}
		if tr, ok := r.RoleOf(m.ID); ok {
			d := toTeamRoleDTO(tr)
			item.Role = &d
		}
		resp.Members = append(resp.Members, item)
	}
	return resp
}

func toTemplateSummary(t template.Template) dto.TemplateSummary {
	types := t.ConnectionTypes()
	if types == nil {
		types = []string{}
	}
	return dto.TemplateSummary{
		ID:              t.ID,
		Name:            t.Name,
		ConnectionTypes: types,
		ChartCount:      len(t.Model.Charts),
		UpdatedAt:       t.UpdatedAt,
		Updated:         humanize.Time(t.UpdatedAt),
	}
}

func toTemplateDTO(t template.Template) dto.Template {
	resp := dto.Template{
		TemplateSummary: toTemplateSummary(t),
		Connections:     make([]dto.TemplateConnection, 0, len(t.Model.Connections)),
		Charts:          make([]dto.TemplateChart, 0, len(t.Model.Charts)),
	}
	for _, c := range t.Model.Connections {
		resp.Connections = append(resp.Connections, dto.TemplateConnection{ID: c.ID, Type: c.Type})
	}
	for _, ch := range t.Model.Charts {
		resp.Charts = append(resp.Charts, dto.TemplateChart{ID: ch.ID, Name: ch.Name})
	}
	return resp
}
