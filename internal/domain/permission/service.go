package permission

import (
	"context"
	"time"

	"teamaccess/internal/domain"
	"teamaccess/internal/domain/team"
)

// Service writes TeamRole changes. It trusts its caller to have checked the
// access policy and never retries.
type Service interface {
	UpdateRole(ctx context.Context, patch Patch, memberID, teamID int64) (team.TeamRole, error)
	DeleteMember(ctx context.Context, memberID, teamID int64) error
}

type service struct {
	uow     domain.UnitOfWork
	roles   Repository
	events  domain.EventBus
	timeout time.Duration
}

func NewService(
	uow domain.UnitOfWork,
	roles Repository,
	events domain.EventBus,
	timeout time.Duration,
) Service {
	return &service{
		uow:     uow,
		roles:   roles,
		events:  events,
		timeout: timeout,
	}
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *service) UpdateRole(ctx context.Context, patch Patch, memberID, teamID int64) (team.TeamRole, error) {
	if err := patch.Validate(); err != nil {
		return team.TeamRole{}, err
	}

	txCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res team.TeamRole

	err := s.uow.WithinTx(txCtx, func(ctx context.Context) error {
		current, err := s.roles.GetTeamRoleForUpdate(ctx, memberID, teamID)
		if err != nil {
			return err
		}

		res, err = s.roles.UpdateTeamRole(ctx, patch.Apply(current))
		return err
	})
	if err != nil {
		return team.TeamRole{}, domain.Transient("failed to update team role", err)
	}

	// Published after commit so the row lock is never held while the bus is busy.
	s.publish(ctx, domain.Event{
		Type: "team_role.updated",
		Payload: map[string]any{
			"team_id":    teamID,
			"user_id":    memberID,
			"field":      string(patch.Field()),
			"role":       string(res.Role),
			"projects":   res.Projects,
			"can_export": res.CanExport,
		},
	})
	return res, nil
}

func (s *service) DeleteMember(ctx context.Context, memberID, teamID int64) error {
	txCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.uow.WithinTx(txCtx, func(ctx context.Context) error {
		return s.roles.DeleteTeamMember(ctx, memberID, teamID)
	})
	if err != nil {
		return domain.Transient("failed to remove team member", err)
	}

	s.publish(ctx, domain.Event{
		Type: "team_member.removed",
		Payload: map[string]any{
			"team_id": teamID,
			"user_id": memberID,
		},
	})
	return nil
}

func (s *service) publish(ctx context.Context, e domain.Event) {
	if s.events != nil {
		s.events.Publish(ctx, e)
	}
}
