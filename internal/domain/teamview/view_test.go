package teamview_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"teamaccess/internal/domain"
	"teamaccess/internal/domain/permission"
	"teamaccess/internal/domain/team"
	"teamaccess/internal/domain/teamview"
)

const teamID int64 = 9

type teamsFake struct {
	mu          sync.Mutex
	roles       []team.TeamRole
	err         error
	loads       int
	freshLoads  int
	invalidated int
	gates       map[int]chan struct{}
	entered     chan int
}

func newTeamsFake(roles ...team.TeamRole) *teamsFake {
	return &teamsFake{
		roles:   roles,
		gates:   map[int]chan struct{}{},
		entered: make(chan int, 8),
	}
}

func (f *teamsFake) LoadFresh(ctx context.Context, id int64) (team.Roster, error) {
	f.mu.Lock()
	f.freshLoads++
	f.mu.Unlock()
	return f.Load(ctx, id)
}

func (f *teamsFake) Load(ctx context.Context, id int64) (team.Roster, error) {
	f.mu.Lock()
	f.loads++
	n := f.loads
	err := f.err
	snapshot := make([]team.TeamRole, len(f.roles))
	copy(snapshot, f.roles)
	gate := f.gates[n]
	f.mu.Unlock()

	if gate != nil {
		f.entered <- n
		<-gate
	}
	if err != nil {
		return team.Roster{}, err
	}

	members := make([]team.Member, 0, len(snapshot))
	for _, r := range snapshot {
		members = append(members, team.Member{ID: r.UserID, TeamRoles: []team.TeamRole{r}})
	}
	return team.NewRoster(team.Team{ID: id, Name: "core", TeamRoles: snapshot}, members)
}

func (f *teamsFake) Invalidate(ctx context.Context, id int64) {
	f.mu.Lock()
	f.invalidated++
	f.mu.Unlock()
}

func (f *teamsFake) setRole(userID int64, role team.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.roles {
		if f.roles[i].UserID == userID {
			f.roles[i].Role = role
		}
	}
}

type permsFake struct {
	teams   *teamsFake
	err     error
	calls   int
	patches []permission.Patch
	gate    chan struct{}
	entered chan struct{}
}

func (p *permsFake) UpdateRole(ctx context.Context, patch permission.Patch, memberID, tid int64) (team.TeamRole, error) {
	p.calls++
	p.patches = append(p.patches, patch)
	if p.gate != nil {
		p.entered <- struct{}{}
		<-p.gate
	}
	if p.err != nil {
		return team.TeamRole{}, p.err
	}

	p.teams.mu.Lock()
	defer p.teams.mu.Unlock()
	for i, r := range p.teams.roles {
		if r.UserID == memberID {
			p.teams.roles[i] = patch.Apply(r)
			return p.teams.roles[i], nil
		}
	}
	return team.TeamRole{}, domain.NotFound("team role not found")
}

func (p *permsFake) DeleteMember(ctx context.Context, memberID, tid int64) error {
	p.calls++
	if p.err != nil {
		return p.err
	}

	p.teams.mu.Lock()
	defer p.teams.mu.Unlock()
	for i, r := range p.teams.roles {
		if r.UserID == memberID {
			p.teams.roles = append(p.teams.roles[:i], p.teams.roles[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("team member not found")
}

type notifierFake struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *notifierFake) Notify(ctx context.Context, msg domain.Notification) {
	n.mu.Lock()
	n.sent = append(n.sent, msg)
	n.mu.Unlock()
}

type observerFake struct {
	outcomes []string
}

func (o *observerFake) ObserveMutation(f permission.Field, outcome string) {
	o.outcomes = append(o.outcomes, string(f)+":"+outcome)
}

type fixture struct {
	teams    *teamsFake
	perms    *permsFake
	notifier *notifierFake
	observer *observerFake
	view     *teamview.View
}

func newFixture(roles ...team.TeamRole) *fixture {
	teams := newTeamsFake(roles...)
	perms := &permsFake{teams: teams}
	notifier := &notifierFake{}
	observer := &observerFake{}
	reg := teamview.NewRegistry(teams, perms, notifier, observer, nil, 0)
	return &fixture{
		teams:    teams,
		perms:    perms,
		notifier: notifier,
		observer: observer,
		view:     reg.View(teamID),
	}
}

func defaultRoles() []team.TeamRole {
	return []team.TeamRole{
		{ID: 1, TeamID: teamID, UserID: 1, Role: team.RoleOwner},
		{ID: 2, TeamID: teamID, UserID: 2, Role: team.RoleAdmin},
		{ID: 3, TeamID: teamID, UserID: 3, Role: team.RoleEditor, Projects: []int64{5}},
		{ID: 4, TeamID: teamID, UserID: 4, Role: team.RoleMember},
	}
}

func TestChangeRole_SelfIsRejectedBeforeStore(t *testing.T) {
	fx := newFixture(team.TeamRole{ID: 1, TeamID: teamID, UserID: 1, Role: team.RoleOwner})

	_, err := fx.view.ChangeRole(context.Background(), 1, 1, team.RoleAdmin)
	if domain.CodeOf(err) != domain.ErrorCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if fx.perms.calls != 0 {
		t.Fatalf("store must not be called, got %d calls", fx.perms.calls)
	}
	if len(fx.notifier.sent) != 1 || fx.notifier.sent[0].Severity != domain.SeverityError {
		t.Fatalf("expected one error notification, got %+v", fx.notifier.sent)
	}
}

func TestChangeRole_AdminCannotAlterOwner(t *testing.T) {
	fx := newFixture(defaultRoles()...)

	_, err := fx.view.ChangeRole(context.Background(), 2, 1, team.RoleMember)
	if domain.CodeOf(err) != domain.ErrorCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if fx.perms.calls != 0 {
		t.Fatalf("store must not be called, got %d calls", fx.perms.calls)
	}
	if !reflect.DeepEqual(fx.observer.outcomes, []string{"role:denied"}) {
		t.Fatalf("unexpected outcomes %v", fx.observer.outcomes)
	}
}

func TestChangeRole_ReloadsAfterWrite(t *testing.T) {
	fx := newFixture(defaultRoles()...)

	roster, err := fx.view.ChangeRole(context.Background(), 2, 3, team.RoleMember)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	got, ok := roster.RoleOf(3)
	if !ok || got.Role != team.RoleMember {
		t.Fatalf("expected reloaded role member, got %+v", got)
	}
	if fx.teams.loads != 2 || fx.teams.freshLoads != 2 {
		t.Fatalf("expected two store reads bypassing the cache, got %d loads (%d fresh)", fx.teams.loads, fx.teams.freshLoads)
	}
	if fx.teams.invalidated != 1 {
		t.Fatalf("expected cache invalidation, got %d", fx.teams.invalidated)
	}
	if len(fx.notifier.sent) != 1 || fx.notifier.sent[0].Severity != domain.SeveritySuccess {
		t.Fatalf("expected one success notification, got %+v", fx.notifier.sent)
	}
	if st := fx.view.State(); st.Phase != teamview.PhaseLoaded {
		t.Fatalf("expected loaded phase, got %+v", st)
	}
}

func TestChangeRole_OwnerIsNotAssignable(t *testing.T) {
	fx := newFixture(defaultRoles()...)

	_, err := fx.view.ChangeRole(context.Background(), 1, 3, team.RoleOwner)
	if domain.CodeOf(err) != domain.ErrorCodeInvalidRole {
		t.Fatalf("expected INVALID_ROLE, got %v", err)
	}
	if fx.teams.loads != 0 || fx.perms.calls != 0 {
		t.Fatalf("invalid role must be rejected up front")
	}
}

func TestTransientFailureKeepsRosterAndDoesNotRetry(t *testing.T) {
	fx := newFixture(defaultRoles()...)
	fx.perms.err = domain.Transient("failed to update team role", errors.New("connection reset"))

	roster, err := fx.view.ToggleProject(context.Background(), 1, 3, 6)
	if !domain.IsRetryable(err) {
		t.Fatalf("expected TRANSIENT, got %v", err)
	}
	got, _ := roster.RoleOf(3)
	if !reflect.DeepEqual(got.Projects, []int64{5}) {
		t.Fatalf("roster changed on failure: %v", got.Projects)
	}
	if fx.perms.calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", fx.perms.calls)
	}
	if fx.teams.loads != 1 {
		t.Fatalf("no reload expected after a failed write, got %d loads", fx.teams.loads)
	}
	if len(fx.notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %+v", fx.notifier.sent)
	}
	n := fx.notifier.sent[0]
	if n.Severity != domain.SeverityError || n.ActorID != 1 || n.TeamID != teamID {
		t.Fatalf("unexpected notification %+v", n)
	}
	if st := fx.view.State(); st.Phase != teamview.PhaseLoaded {
		t.Fatalf("pending mutation left behind: %+v", st)
	}
}

func TestToggleProject_RemovesExistingProject(t *testing.T) {
	fx := newFixture(defaultRoles()...)

	roster, err := fx.view.ToggleProject(context.Background(), 2, 3, 5)
	if err != nil {
		t.Fatalf("ToggleProject: %v", err)
	}
	got, _ := roster.RoleOf(3)
	if len(got.Projects) != 0 {
		t.Fatalf("expected project removed, got %v", got.Projects)
	}
}

func TestToggleProject_RequiresAdmin(t *testing.T) {
	fx := newFixture(defaultRoles()...)

	_, err := fx.view.ToggleProject(context.Background(), 3, 4, 5)
	if domain.CodeOf(err) != domain.ErrorCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestToggleProject_UnknownMember(t *testing.T) {
	fx := newFixture(defaultRoles()...)

	_, err := fx.view.ToggleProject(context.Background(), 1, 42, 5)
	if domain.CodeOf(err) != domain.ErrorCodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if fx.perms.calls != 0 {
		t.Fatalf("store must not be called")
	}
}

func TestToggleExport_FlipsStoredValue(t *testing.T) {
	fx := newFixture(defaultRoles()...)
	ctx := context.Background()

	roster, err := fx.view.ToggleExport(ctx, 1, 4)
	if err != nil {
		t.Fatalf("ToggleExport: %v", err)
	}
	if got, _ := roster.RoleOf(4); !got.CanExport {
		t.Fatalf("expected export enabled")
	}

	roster, err = fx.view.ToggleExport(ctx, 1, 4)
	if err != nil {
		t.Fatalf("ToggleExport: %v", err)
	}
	if got, _ := roster.RoleOf(4); got.CanExport {
		t.Fatalf("expected export disabled")
	}
}

func TestRemoveMember(t *testing.T) {
	fx := newFixture(defaultRoles()...)

	roster, err := fx.view.RemoveMember(context.Background(), 2, 4)
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if _, ok := roster.RoleOf(4); ok {
		t.Fatalf("member 4 should be gone")
	}

	if _, err := fx.view.RemoveMember(context.Background(), 2, 1); domain.CodeOf(err) != domain.ErrorCodeUnauthorized {
		t.Fatalf("admin removing owner: expected UNAUTHORIZED, got %v", err)
	}
}

func TestRefresh_FailureKeepsInstalledRoster(t *testing.T) {
	fx := newFixture(defaultRoles()...)
	ctx := context.Background()

	if _, err := fx.view.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	fx.teams.err = domain.Transient("failed to load team", errors.New("boom"))

	roster, err := fx.view.Refresh(ctx)
	if !domain.IsRetryable(err) {
		t.Fatalf("expected TRANSIENT, got %v", err)
	}
	if _, ok := roster.RoleOf(1); !ok {
		t.Fatalf("installed roster lost on failed refresh")
	}
}

func TestRefresh_StaleLoadIsDiscarded(t *testing.T) {
	fx := newFixture(defaultRoles()...)
	gate := make(chan struct{})
	fx.teams.gates[1] = gate

	done := make(chan team.Roster, 1)
	go func() {
		r, _ := fx.view.Refresh(context.Background())
		done <- r
	}()
	<-fx.teams.entered

	fx.teams.setRole(3, team.RoleAdmin)
	if _, err := fx.view.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	close(gate)

	var late team.Roster
	select {
	case late = <-done:
	case <-time.After(time.Second):
		t.Fatal("stale load never returned")
	}

	if got, _ := late.RoleOf(3); got.Role != team.RoleAdmin {
		t.Fatalf("stale load returned %q, want newer admin", got.Role)
	}
	if got, _ := fx.view.Roster().RoleOf(3); got.Role != team.RoleAdmin {
		t.Fatalf("stale load overwrote roster with %q", got.Role)
	}
}

func TestState_TracksPendingMutation(t *testing.T) {
	fx := newFixture(defaultRoles()...)
	if st := fx.view.State(); st.Phase != teamview.PhaseLoading {
		t.Fatalf("expected loading before first refresh, got %+v", st)
	}

	fx.perms.gate = make(chan struct{})
	fx.perms.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := fx.view.ToggleProject(context.Background(), 1, 3, 6)
		done <- err
	}()
	<-fx.perms.entered

	st := fx.view.State()
	if st.Phase != teamview.PhaseMutating || !reflect.DeepEqual(st.Fields, []permission.Field{permission.FieldProjects}) {
		t.Fatalf("unexpected state while writing: %+v", st)
	}

	close(fx.perms.gate)
	if err := <-done; err != nil {
		t.Fatalf("ToggleProject: %v", err)
	}
	if st := fx.view.State(); st.Phase != teamview.PhaseLoaded {
		t.Fatalf("expected loaded after write, got %+v", st)
	}
}

func TestRegistry_SharesViewPerTeam(t *testing.T) {
	teams := newTeamsFake(defaultRoles()...)
	reg := teamview.NewRegistry(teams, &permsFake{teams: teams}, nil, nil, nil, 0)

	a := reg.View(teamID)
	if reg.View(teamID) != a {
		t.Fatalf("expected the same view for one team")
	}
	reg.Forget(teamID)
	if reg.View(teamID) == a {
		t.Fatalf("expected a fresh view after Forget")
	}
}

func TestRegistry_EvictsLeastRecentlyUsed(t *testing.T) {
	teams := newTeamsFake(defaultRoles()...)
	reg := teamview.NewRegistry(teams, &permsFake{teams: teams}, nil, nil, nil, 2)

	first := reg.View(1)
	reg.View(2)
	if reg.View(1) != first {
		t.Fatalf("view 1 should still be cached")
	}
	reg.View(3)

	if reg.Len() != 2 {
		t.Fatalf("expected registry capped at 2 views, got %d", reg.Len())
	}
	if reg.View(1) != first {
		t.Fatalf("recently used view 1 should have survived")
	}
}

func TestToggleExport_UsesLockedFlip(t *testing.T) {
	fx := newFixture(defaultRoles()...)

	if _, err := fx.view.ToggleExport(context.Background(), 1, 4); err != nil {
		t.Fatalf("ToggleExport: %v", err)
	}
	if len(fx.perms.patches) != 1 || !fx.perms.patches[0].FlipExport || fx.perms.patches[0].CanExport != nil {
		t.Fatalf("expected a flip patch, got %+v", fx.perms.patches)
	}
}
