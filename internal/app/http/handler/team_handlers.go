package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamaccess/internal/app/dto"
	"teamaccess/internal/domain"
	"teamaccess/internal/domain/access"
	"teamaccess/internal/domain/team"
	"teamaccess/internal/domain/teamview"
)

// loadView refreshes the team's view and checks the actor belongs to the team.
func (h *Handler) loadView(c *gin.Context) (*teamview.View, team.Roster, bool) {
	teamID, ok := h.idParam(c, "teamId")
	if !ok {
		return nil, team.Roster{}, false
	}

	v := h.Views.View(teamID)
	r, err := v.Refresh(c.Request.Context())
	if err != nil {
		if domain.CodeOf(err) == domain.ErrorCodeNotFound && !r.Loaded() {
			h.Views.Forget(teamID)
		}
		h.writeError(c, err)
		return nil, team.Roster{}, false
	}

	if !access.CanAccess(team.RoleMember, h.actor(c), r.Roles()) {
		h.writeError(c, domain.Unauthorized("not a member of this team"))
		return nil, team.Roster{}, false
	}
	return v, r, true
}

func (h *Handler) TeamGet(c *gin.Context) {
	_, r, ok := h.loadView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTeamDTO(r.Team))
}

func (h *Handler) TeamMembers(c *gin.Context) {
	v, r, ok := h.loadView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toMembersDTO(h.actor(c), r, v.State()))
}

func (h *Handler) memberTarget(c *gin.Context) (*teamview.View, int64, bool) {
	teamID, ok := h.idParam(c, "teamId")
	if !ok {
		return nil, 0, false
	}
	memberID, ok := h.idParam(c, "memberId")
	if !ok {
		return nil, 0, false
	}
	return h.Views.View(teamID), memberID, true
}

func (h *Handler) respondRoster(c *gin.Context, v *teamview.View, r team.Roster, err error) {
	if err != nil {
		if domain.CodeOf(err) == domain.ErrorCodeNotFound && !r.Loaded() {
			h.Views.Forget(v.TeamID())
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMembersDTO(h.actor(c), r, v.State()))
}

func (h *Handler) MemberChangeRole(c *gin.Context) {
	v, memberID, ok := h.memberTarget(c)
	if !ok {
		return
	}

	var body dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}
	if body.Role == "" {
		h.badRequest(c, "role is required")
		return
	}

	r, err := v.ChangeRole(c.Request.Context(), h.actor(c), memberID, team.Role(body.Role))
	h.respondRoster(c, v, r, err)
}

func (h *Handler) MemberToggleProject(c *gin.Context) {
	v, memberID, ok := h.memberTarget(c)
	if !ok {
		return
	}

	var body dto.ToggleProjectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}
	if body.ProjectID <= 0 {
		h.badRequest(c, "project_id is required")
		return
	}

	r, err := v.ToggleProject(c.Request.Context(), h.actor(c), memberID, body.ProjectID)
	h.respondRoster(c, v, r, err)
}

func (h *Handler) MemberToggleExport(c *gin.Context) {
	v, memberID, ok := h.memberTarget(c)
	if !ok {
		return
	}

	r, err := v.ToggleExport(c.Request.Context(), h.actor(c), memberID)
	h.respondRoster(c, v, r, err)
}

func (h *Handler) MemberRemove(c *gin.Context) {
	v, memberID, ok := h.memberTarget(c)
	if !ok {
		return
	}

	r, err := v.RemoveMember(c.Request.Context(), h.actor(c), memberID)
	h.respondRoster(c, v, r, err)
}
