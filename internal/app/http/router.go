package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"teamaccess/internal/app/http/handler"
	"teamaccess/internal/app/http/middleware"
)

func NewRouter(h *handler.Handler, tokens middleware.TokenParser, obs middleware.RequestObserver, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.ZapLogger(log),
		middleware.ZapRecovery(log),
	)
	if obs != nil {
		r.Use(middleware.Metrics(obs))
	}

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	teams := r.Group("/teams/:teamId", middleware.RequireActor(tokens))
	{
		teams.GET("", h.TeamGet)
		teams.GET("/members", h.TeamMembers)
		teams.PUT("/members/:memberId/role", h.MemberChangeRole)
		teams.POST("/members/:memberId/projects/toggle", h.MemberToggleProject)
		teams.POST("/members/:memberId/export/toggle", h.MemberToggleExport)
		teams.DELETE("/members/:memberId", h.MemberRemove)

		teams.GET("/templates", h.TemplateList)
		teams.GET("/templates/:templateId", h.TemplateGet)
		teams.DELETE("/templates/:templateId", h.TemplateDelete)
	}

	return r
}
