package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamaccess/internal/app/dto"
	"teamaccess/internal/app/http/middleware"
	"teamaccess/internal/domain"
)

func (h *Handler) writeError(c *gin.Context, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		if de.Code == domain.ErrorCodeTransient {
			h.Log.Warn("transient failure", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(de.HTTPStatus, dto.ErrorResponse{
			Error: dto.Error{
				Code:    string(de.Code),
				Message: de.Message,
			},
		})
		return
	}

	h.Log.Error("internal error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: dto.Error{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	})
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: dto.Error{
			Code:    string(domain.ErrorCodeBadRequest),
			Message: msg,
		},
	})
}

func (h *Handler) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// actor returns the authenticated user id. Routes without the auth middleware
// never call it.
func (h *Handler) actor(c *gin.Context) int64 {
	id, _ := middleware.ActorID(c)
	return id
}
