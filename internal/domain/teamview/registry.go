package teamview

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"teamaccess/internal/domain"
	"teamaccess/internal/domain/permission"
	"teamaccess/internal/domain/team"
)

const DefaultMaxViews = 1024

// Registry hands out one View per team so concurrent requests against the
// same team share load sequencing and in-flight state. It keeps at most
// maxViews views and evicts the least recently used one beyond that; an
// evicted team simply gets a fresh view on its next request.
type Registry struct {
	teams    team.Service
	perms    permission.Service
	notifier domain.Notifier
	observer Observer
	log      *zap.Logger

	mu    sync.Mutex
	views *lru.Cache[int64, *View]
}

func NewRegistry(
	teams team.Service,
	perms permission.Service,
	notifier domain.Notifier,
	observer Observer,
	log *zap.Logger,
	maxViews int,
) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if maxViews <= 0 {
		maxViews = DefaultMaxViews
	}
	views, err := lru.New[int64, *View](maxViews)
	if err != nil {
		panic(err)
	}
	return &Registry{
		teams:    teams,
		perms:    perms,
		notifier: notifier,
		observer: observer,
		log:      log,
		views:    views,
	}
}

func (r *Registry) View(teamID int64) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.views.Get(teamID); ok {
		return v
	}
	v := newView(teamID, r.teams, r.perms, r.notifier, r.observer, r.log)
	r.views.Add(teamID, v)
	return v
}

// Forget drops the view for a team, e.g. after the team turned out not to exist.
func (r *Registry) Forget(teamID int64) {
	r.views.Remove(teamID)
}

func (r *Registry) Len() int {
	return r.views.Len()
}
