// Package teamview keeps the server-side state of a team's member screen: the
// last roster read from the store and the mutations currently in flight.
//
// Every action reloads the roster before authorizing and again after a
// successful write. Loads are numbered; a load that finishes after a newer one
// has been installed is dropped, so out-of-order completion cannot roll the
// view back.
package teamview

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"teamaccess/internal/domain"
	"teamaccess/internal/domain/access"
	"teamaccess/internal/domain/permission"
	"teamaccess/internal/domain/team"
)

type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhaseLoaded   Phase = "loaded"
	PhaseMutating Phase = "mutating"
)

type State struct {
	Phase  Phase
	Fields []permission.Field
}

// Observer receives the outcome of every mutation attempt.
type Observer interface {
	ObserveMutation(field permission.Field, outcome string)
}

const (
	OutcomeOK     = "ok"
	OutcomeDenied = "denied"
	OutcomeFailed = "failed"
)

const (
	msgRetry        = "Something went wrong. Please try again"
	msgServerIssue  = "There's a server issue. Please try again"
	msgNotAllowed   = "You are not allowed to do that"
	msgRoleUpdated  = "Updated the member role"
	msgAccess       = "Updated the user access"
	msgExport       = "Updated export settings"
	msgMemberRemove = "Removed the member from the team"
)

type View struct {
	teamID   int64
	teams    team.Service
	perms    permission.Service
	notifier domain.Notifier
	observer Observer
	log      *zap.Logger

	mu        sync.Mutex
	roster    team.Roster
	issued    uint64
	installed uint64
	pending   map[permission.Field]int
}

func newView(teamID int64, teams team.Service, perms permission.Service, notifier domain.Notifier, observer Observer, log *zap.Logger) *View {
	return &View{
		teamID:   teamID,
		teams:    teams,
		perms:    perms,
		notifier: notifier,
		observer: observer,
		log:      log,
		pending:  map[permission.Field]int{},
	}
}

func (v *View) TeamID() int64 { return v.teamID }

// Roster returns the last installed roster; it is zero until the first load succeeds.
func (v *View) Roster() team.Roster {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.roster
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.installed == 0 {
		return State{Phase: PhaseLoading}
	}
	if len(v.pending) == 0 {
		return State{Phase: PhaseLoaded}
	}
	fields := make([]permission.Field, 0, len(v.pending))
	for f := range v.pending {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return State{Phase: PhaseMutating, Fields: fields}
}

// Refresh reloads the roster, possibly from the snapshot cache. On failure
// the installed roster is kept and returned with the error.
func (v *View) Refresh(ctx context.Context) (team.Roster, error) {
	_, installed, err := v.refresh(ctx, v.teams.Load)
	return installed, err
}

// refresh returns both the roster this call read and the one installed after
// it, which is newer when a later-issued load already finished.
func (v *View) refresh(ctx context.Context, load func(context.Context, int64) (team.Roster, error)) (read, installed team.Roster, err error) {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	v.mu.Unlock()

	r, err := load(ctx, v.teamID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		return team.Roster{}, v.roster, err
	}
	if seq > v.installed {
		v.roster = r
		v.installed = seq
	}
	return r, v.roster, nil
}

func (v *View) begin(f permission.Field) {
	v.mu.Lock()
	v.pending[f]++
	v.mu.Unlock()
}

func (v *View) end(f permission.Field) {
	v.mu.Lock()
	v.pending[f]--
	if v.pending[f] <= 0 {
		delete(v.pending, f)
	}
	v.mu.Unlock()
}

type mutation struct {
	field     permission.Field
	actorID   int64
	authorize func(r team.Roster) error
	run       func(ctx context.Context) error
	success   string
	failure   string
}

func (v *View) mutate(ctx context.Context, m mutation) (team.Roster, error) {
	v.begin(m.field)
	defer v.end(m.field)

	// Authorization and the reload after the write read the store directly,
	// and authorization uses exactly what this call read.
	read, roster, err := v.refresh(ctx, v.teams.LoadFresh)
	if err != nil {
		v.fail(ctx, m, err, msgRetry)
		return roster, err
	}

	if err := m.authorize(read); err != nil {
		v.observe(m.field, OutcomeDenied)
		v.notify(ctx, m.actorID, domain.SeverityError, msgNotAllowed)
		return roster, err
	}

	if err := m.run(ctx); err != nil {
		v.fail(ctx, m, err, m.failure)
		return roster, err
	}

	v.teams.Invalidate(ctx, v.teamID)
	v.observe(m.field, OutcomeOK)
	v.notify(ctx, m.actorID, domain.SeveritySuccess, m.success)

	_, refreshed, err := v.refresh(ctx, v.teams.LoadFresh)
	if err != nil {
		v.log.Warn("reload after write failed",
			zap.Int64("team_id", v.teamID),
			zap.String("field", string(m.field)),
			zap.Error(err),
		)
	}
	return refreshed, nil
}

func (v *View) fail(ctx context.Context, m mutation, err error, text string) {
	v.observe(m.field, OutcomeFailed)
	v.log.Warn("team mutation failed",
		zap.Int64("team_id", v.teamID),
		zap.Int64("actor_id", m.actorID),
		zap.String("field", string(m.field)),
		zap.Bool("retryable", domain.IsRetryable(err)),
		zap.Error(err),
	)
	v.notify(ctx, m.actorID, domain.SeverityError, text)
}

func (v *View) observe(f permission.Field, outcome string) {
	if v.observer != nil {
		v.observer.ObserveMutation(f, outcome)
	}
}

func (v *View) notify(ctx context.Context, actorID int64, sev domain.Severity, text string) {
	if v.notifier == nil {
		return
	}
	v.notifier.Notify(ctx, domain.Notification{
		Severity: sev,
		Text:     text,
		TeamID:   v.teamID,
		ActorID:  actorID,
	})
}

func memberInTeam(r team.Roster, memberID int64) error {
	if _, ok := r.RoleOf(memberID); !ok {
		return domain.NotFound("member is not part of this team")
	}
	return nil
}

func (v *View) ChangeRole(ctx context.Context, actorID, memberID int64, role team.Role) (team.Roster, error) {
	if !access.Assignable(role) {
		return v.Roster(), domain.InvalidRole("role must be one of admin, editor, member")
	}

	return v.mutate(ctx, mutation{
		field:   permission.FieldRole,
		actorID: actorID,
		authorize: func(r team.Roster) error {
			if !access.CanChangeRole(actorID, memberID, r.Roles()) {
				return domain.Unauthorized("not allowed to change this member's role")
			}
			return nil
		},
		run: func(ctx context.Context) error {
			_, err := v.perms.UpdateRole(ctx, permission.RolePatch(role), memberID, v.teamID)
			return err
		},
		success: msgRoleUpdated,
		failure: msgRetry,
	})
}

func (v *View) ToggleProject(ctx context.Context, actorID, memberID, projectID int64) (team.Roster, error) {
	return v.mutate(ctx, mutation{
		field:   permission.FieldProjects,
		actorID: actorID,
		authorize: func(r team.Roster) error {
			if !access.CanManageProjects(actorID, r.Roles()) {
				return domain.Unauthorized("not allowed to change project access")
			}
			return memberInTeam(r, memberID)
		},
		run: func(ctx context.Context) error {
			_, err := v.perms.UpdateRole(ctx, permission.ProjectsPatch(projectID), memberID, v.teamID)
			return err
		},
		success: msgAccess,
		failure: msgServerIssue,
	})
}

// ToggleExport flips the member's export permission. The flip is applied to
// the locked row, not to the roster the caller saw.
func (v *View) ToggleExport(ctx context.Context, actorID, memberID int64) (team.Roster, error) {
	return v.mutate(ctx, mutation{
		field:   permission.FieldCanExport,
		actorID: actorID,
		authorize: func(r team.Roster) error {
			if !access.CanManageProjects(actorID, r.Roles()) {
				return domain.Unauthorized("not allowed to change export settings")
			}
			return memberInTeam(r, memberID)
		},
		run: func(ctx context.Context) error {
			_, err := v.perms.UpdateRole(ctx, permission.ExportTogglePatch(), memberID, v.teamID)
			return err
		},
		success: msgExport,
		failure: msgServerIssue,
	})
}

func (v *View) RemoveMember(ctx context.Context, actorID, memberID int64) (team.Roster, error) {
	return v.mutate(ctx, mutation{
		field:   permission.FieldMembership,
		actorID: actorID,
		authorize: func(r team.Roster) error {
			if !access.CanRemove(actorID, memberID, r.Roles()) {
				return domain.Unauthorized("not allowed to remove this member")
			}
			return nil
		},
		run: func(ctx context.Context) error {
			return v.perms.DeleteMember(ctx, memberID, v.teamID)
		},
		success: msgMemberRemove,
		failure: msgRetry,
	})
}
