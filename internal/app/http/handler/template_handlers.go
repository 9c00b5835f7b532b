package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamaccess/internal/app/dto"
)

func (h *Handler) TemplateList(c *gin.Context) {
	teamID, ok := h.idParam(c, "teamId")
	if !ok {
		return
	}

	list, err := h.Templates.List(c.Request.Context(), h.actor(c), teamID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := struct {
		Templates []dto.TemplateSummary `json:"templates"`
	}{
		Templates: make([]dto.TemplateSummary, 0, len(list)),
	}
	for _, t := range list {
		resp.Templates = append(resp.Templates, toTemplateSummary(t))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) TemplateGet(c *gin.Context) {
	teamID, ok := h.idParam(c, "teamId")
	if !ok {
		return
	}
	templateID, ok := h.idParam(c, "templateId")
	if !ok {
		return
	}

	t, err := h.Templates.Get(c.Request.Context(), h.actor(c), teamID, templateID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTemplateDTO(t))
}

func (h *Handler) TemplateDelete(c *gin.Context) {
	teamID, ok := h.idParam(c, "teamId")
	if !ok {
		return
	}
	templateID, ok := h.idParam(c, "templateId")
	if !ok {
		return
	}

	if err := h.Templates.Delete(c.Request.Context(), h.actor(c), teamID, templateID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
