package template

import (
	"context"

	"teamaccess/internal/domain"
	"teamaccess/internal/domain/access"
	"teamaccess/internal/domain/team"
)

type Service interface {
	List(ctx context.Context, actorID, teamID int64) ([]Template, error)
	Get(ctx context.Context, actorID, teamID, templateID int64) (Template, error)
	Delete(ctx context.Context, actorID, teamID, templateID int64) error
}

type service struct {
	templates Repository
	teams     team.Service
	events    domain.EventBus
}

func NewService(templates Repository, teams team.Service, events domain.EventBus) Service {
	return &service{
		templates: templates,
		teams:     teams,
		events:    events,
	}
}

// authorize reads roles from the store, never from the snapshot cache.
func (s *service) authorize(ctx context.Context, required team.Role, actorID, teamID int64) error {
	r, err := s.teams.LoadFresh(ctx, teamID)
	if err != nil {
		return err
	}
	if !access.CanAccess(required, actorID, r.Roles()) {
		return domain.Unauthorized("insufficient team role")
	}
	return nil
}

func (s *service) List(ctx context.Context, actorID, teamID int64) ([]Template, error) {
	if err := s.authorize(ctx, team.RoleMember, actorID, teamID); err != nil {
		return nil, err
	}
	list, err := s.templates.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, domain.Transient("failed to list templates", err)
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, actorID, teamID, templateID int64) (Template, error) {
	if err := s.authorize(ctx, team.RoleMember, actorID, teamID); err != nil {
		return Template{}, err
	}
	t, err := s.templates.Get(ctx, teamID, templateID)
	if err != nil {
		return Template{}, domain.Transient("failed to load template", err)
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, actorID, teamID, templateID int64) error {
	if err := s.authorize(ctx, team.RoleAdmin, actorID, teamID); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, teamID, templateID); err != nil {
		return domain.Transient("failed to delete template", err)
	}

	if s.events != nil {
		s.events.Publish(ctx, domain.Event{
			Type: "template.deleted",
			Payload: map[string]any{
				"team_id":     teamID,
				"template_id": templateID,
				"actor_id":    actorID,
			},
		})
	}
	return nil
}
