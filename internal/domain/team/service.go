package team

import (
	"context"
	"time"

	"teamaccess/internal/domain"
)

type Service interface {
	// Load may answer from the snapshot cache.
	Load(ctx context.Context, teamID int64) (Roster, error)
	// LoadFresh always reads the store. Authorization and reload-after-write use it.
	LoadFresh(ctx context.Context, teamID int64) (Roster, error)
	Invalidate(ctx context.Context, teamID int64)
}

type service struct {
	reads   domain.UnitOfWork
	teams   Repository
	cache   SnapshotCache
	timeout time.Duration
}

// NewService builds the store adapter. reads runs the team and member queries
// in one snapshot. cache may be nil; timeout <= 0 disables the per-call deadline.
func NewService(reads domain.UnitOfWork, teams Repository, cache SnapshotCache, timeout time.Duration) Service {
	return &service{
		reads:   reads,
		teams:   teams,
		cache:   cache,
		timeout: timeout,
	}
}

func (s *service) Load(ctx context.Context, teamID int64) (Roster, error) {
	if s.cache != nil {
		if t, members, ok := s.cache.Get(ctx, teamID); ok {
			if r, err := NewRoster(t, members); err == nil {
				return r, nil
			}
			s.cache.Invalidate(ctx, teamID)
		}
	}
	return s.LoadFresh(ctx, teamID)
}

func (s *service) LoadFresh(ctx context.Context, teamID int64) (Roster, error) {
	var (
		gen      uint64
		cacheGen bool
	)
	if s.cache != nil {
		gen, cacheGen = s.cache.Generation(ctx, teamID)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		t       Team
		members []Member
	)
	err := s.reads.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if t, err = s.teams.GetTeam(ctx, teamID); err != nil {
			return err
		}
		members, err = s.teams.GetTeamMembers(ctx, teamID)
		return err
	})
	if err != nil {
		return Roster{}, domain.Transient("failed to load team", err)
	}

	r, err := NewRoster(t, members)
	if err != nil {
		return Roster{}, err
	}

	if cacheGen {
		s.cache.Set(ctx, teamID, gen, t, members)
	}
	return r, nil
}

func (s *service) Invalidate(ctx context.Context, teamID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, teamID)
	}
}
