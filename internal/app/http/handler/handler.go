package handler

import (
	"go.uber.org/zap"

	"teamaccess/internal/domain/teamview"
	"teamaccess/internal/domain/template"
)

type Handler struct {
	Views     *teamview.Registry
	Templates template.Service
	Log       *zap.Logger
}

func New(
	views *teamview.Registry,
	templates template.Service,
	log *zap.Logger,
) *Handler {
	return &Handler{
		Views:     views,
		Templates: templates,
		Log:       log,
	}
}
