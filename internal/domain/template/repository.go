package template

import "context"

type Repository interface {
	ListByTeam(ctx context.Context, teamID int64) ([]Template, error)
	Get(ctx context.Context, teamID, templateID int64) (Template, error)
	Delete(ctx context.Context, teamID, templateID int64) error
}
