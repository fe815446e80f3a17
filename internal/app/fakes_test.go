// internal/app/fakes_test.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cadence_engine/internal/domain/meeting"
	"cadence_engine/internal/domain/okr"
	"cadence_engine/internal/domain/org"
	"cadence_engine/internal/domain/review"
	"cadence_engine/internal/domain/task"
	idb "cadence_engine/internal/infra/database"
)

// In-memory repository fakes. They guard their maps with a mutex and return
// the same sentinel errors as the Postgres implementations so the services'
// race handling can be exercised without a database.

func dateKey(id int64, d time.Time) string {
	return fmt.Sprintf("%d|%s", id, d.Format("2006-01-02"))
}

type fakeMeetingRepo struct {
	mu     sync.Mutex
	nextID int64
	byKey  map[string]*meeting.Occurrence
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{byKey: make(map[string]*meeting.Occurrence)}
}

func (r *fakeMeetingRepo) Create(_ context.Context, occ *meeting.Occurrence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dateKey(occ.TeamID, occ.ScheduledOn)
	if _, ok := r.byKey[key]; ok {
		return idb.ErrDuplicateOccurrence
	}
	r.nextID++
	occ.ID = r.nextID
	occ.CreatedAt = time.Now()
	stored := *occ
	r.byKey[key] = &stored
	return nil
}

func (r *fakeMeetingRepo) ListScheduledDates(_ context.Context, teamID int64, from, to time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dates := make([]time.Time, 0)
	for _, occ := range r.byKey {
		if occ.TeamID == teamID && !occ.ScheduledOn.Before(from) && !occ.ScheduledOn.After(to) {
			dates = append(dates, occ.ScheduledOn)
		}
	}
	return dates, nil
}

func (r *fakeMeetingRepo) ListByTeam(_ context.Context, teamID int64, from, to time.Time) ([]*meeting.Occurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	occurrences := make([]*meeting.Occurrence, 0)
	for _, occ := range r.byKey {
		if occ.TeamID == teamID && !occ.ScheduledOn.Before(from) && !occ.ScheduledOn.After(to) {
			copied := *occ
			occurrences = append(occurrences, &copied)
		}
	}
	return occurrences, nil
}

func (r *fakeMeetingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

type fakeTaskRepo struct {
	mu         sync.Mutex
	nextID     int64
	templates  map[int64]*task.RecurringTaskTemplate
	itemsByKey map[string]*task.WorkItem
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		templates:  make(map[int64]*task.RecurringTaskTemplate),
		itemsByKey: make(map[string]*task.WorkItem),
	}
}

func (r *fakeTaskRepo) putTemplate(tpl *task.RecurringTaskTemplate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[tpl.ID] = tpl
}

func (r *fakeTaskRepo) GetTemplate(_ context.Context, id int64) (*task.RecurringTaskTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.templates[id]
	if !ok {
		return nil, idb.ErrTemplateNotFound
	}
	copied := *tpl
	return &copied, nil
}

func (r *fakeTaskRepo) ListDueTemplates(_ context.Context, organizationID int64, asOf time.Time) ([]*task.RecurringTaskTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	due := make([]*task.RecurringTaskTemplate, 0)
	for _, tpl := range r.templates {
		if tpl.OrganizationID == organizationID && tpl.GenerationStatus == task.GenerationActive && !tpl.NextDueDate.After(asOf) {
			copied := *tpl
			due = append(due, &copied)
		}
	}
	return due, nil
}

func (r *fakeTaskRepo) UpdateTemplateSchedule(_ context.Context, tpl *task.RecurringTaskTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.templates[tpl.ID]
	if !ok {
		return idb.ErrTemplateNotFound
	}
	stored.NextDueDate = tpl.NextDueDate
	stored.GenerationStatus = tpl.GenerationStatus
	return nil
}

func (r *fakeTaskRepo) ApplyCompletionOutcome(_ context.Context, templateID int64, completed bool) (*task.RecurringTaskTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.templates[templateID]
	if !ok {
		return nil, idb.ErrTemplateNotFound
	}
	if completed {
		stored.CompletedCount++
		stored.CurrentStreak++
		if stored.CurrentStreak > stored.LongestStreak {
			stored.LongestStreak = stored.CurrentStreak
		}
	} else {
		stored.MissedCount++
		stored.CurrentStreak = 0
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTaskRepo) CreateWorkItem(_ context.Context, item *task.WorkItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dateKey(item.TemplateID.Int64, item.DueDate)
	if _, ok := r.itemsByKey[key]; ok {
		return idb.ErrDuplicateWorkItem
	}
	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = time.Now()
	stored := *item
	r.itemsByKey[key] = &stored
	return nil
}

func (r *fakeTaskRepo) CountWorkItemsForTemplate(_ context.Context, templateID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, item := range r.itemsByKey {
		if item.TemplateID.Int64 == templateID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTaskRepo) ListTemplatesByKeyResult(_ context.Context, keyResultID int64) ([]*task.RecurringTaskTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	templates := make([]*task.RecurringTaskTemplate, 0)
	for _, tpl := range r.templates {
		if tpl.KeyResultID.Valid && tpl.KeyResultID.Int64 == keyResultID {
			copied := *tpl
			templates = append(templates, &copied)
		}
	}
	return templates, nil
}

func (r *fakeTaskRepo) ListWorkItemsByTemplate(_ context.Context, templateID int64) ([]*task.WorkItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*task.WorkItem, 0)
	for _, item := range r.itemsByKey {
		if item.TemplateID.Int64 == templateID {
			copied := *item
			items = append(items, &copied)
		}
	}
	return items, nil
}

type fakeOKRRepo struct {
	mu         sync.Mutex
	teams      map[int64]*okr.Team
	objectives map[int64]*okr.Objective
	keyResults map[int64]*okr.KeyResult
}

func newFakeOKRRepo() *fakeOKRRepo {
	return &fakeOKRRepo{
		teams:      make(map[int64]*okr.Team),
		objectives: make(map[int64]*okr.Objective),
		keyResults: make(map[int64]*okr.KeyResult),
	}
}

func (r *fakeOKRRepo) GetTeam(_ context.Context, id int64) (*okr.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, idb.ErrTeamNotFound
	}
	return t, nil
}

func (r *fakeOKRRepo) ListTeamsWithMeetingCadence(_ context.Context, organizationID int64) ([]*okr.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	teams := make([]*okr.Team, 0)
	for _, t := range r.teams {
		if t.OrganizationID == organizationID && t.MeetingCadence != nil {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

func (r *fakeOKRRepo) GetObjective(_ context.Context, id int64) (*okr.Objective, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objectives[id]
	if !ok {
		return nil, idb.ErrObjectiveNotFound
	}
	return o, nil
}

func (r *fakeOKRRepo) GetKeyResult(_ context.Context, id int64) (*okr.KeyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kr, ok := r.keyResults[id]
	if !ok {
		return nil, idb.ErrKeyResultNotFound
	}
	copied := *kr
	return &copied, nil
}

func (r *fakeOKRRepo) ListKeyResultsByObjective(_ context.Context, objectiveID int64) ([]*okr.KeyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]*okr.KeyResult, 0)
	for _, kr := range r.keyResults {
		if kr.ObjectiveID == objectiveID {
			copied := *kr
			results = append(results, &copied)
		}
	}
	return results, nil
}

func (r *fakeOKRRepo) UpdateKeyResultCurrentValue(_ context.Context, keyResultID int64, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kr, ok := r.keyResults[keyResultID]
	if !ok {
		return idb.ErrKeyResultNotFound
	}
	kr.CurrentValue = value
	return nil
}

type fakeOrgRepo struct {
	orgs map[int64]*org.Organization
}

func newFakeOrgRepo(orgs ...*org.Organization) *fakeOrgRepo {
	r := &fakeOrgRepo{orgs: make(map[int64]*org.Organization)}
	for _, o := range orgs {
		r.orgs[o.ID] = o
	}
	return r
}

func (r *fakeOrgRepo) GetByID(_ context.Context, id int64) (*org.Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return nil, idb.ErrOrganizationNotFound
	}
	return o, nil
}

func (r *fakeOrgRepo) ListActive(_ context.Context) ([]*org.Organization, error) {
	orgs := make([]*org.Organization, 0, len(r.orgs))
	for _, o := range r.orgs {
		orgs = append(orgs, o)
	}
	return orgs, nil
}

type fakeActivityLog struct {
	mu         sync.Mutex
	entries    []*task.ActivityEntry
	failAppend bool
}

func (l *fakeActivityLog) Append(_ context.Context, entry *task.ActivityEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAppend {
		return fmt.Errorf("activity sink unreachable")
	}
	l.entries = append(l.entries, entry)
	return nil
}

type fakeReviewRepo struct {
	mu        sync.Mutex
	nextID    int64
	cycles    map[int64]*review.Cycle
	snapshots []*review.Snapshot

	// failSnapshotAfter fails the snapshot write once this many snapshots of
	// an attempt have been accepted, simulating a mid-transaction failure.
	// Negative means never fail.
	failSnapshotAfter int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{cycles: make(map[int64]*review.Cycle), failSnapshotAfter: -1}
}

func (r *fakeReviewRepo) CreateCycle(_ context.Context, cycle *review.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	cycle.ID = r.nextID
	cycle.CreatedAt = time.Now()
	stored := *cycle
	r.cycles[cycle.ID] = &stored
	return nil
}

func (r *fakeReviewRepo) GetCycleByID(_ context.Context, id int64) (*review.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cycle, ok := r.cycles[id]
	if !ok {
		return nil, idb.ErrCycleNotFound
	}
	copied := *cycle
	return &copied, nil
}

func (r *fakeReviewRepo) ListCyclesByObjective(_ context.Context, objectiveID int64) ([]*review.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cycles := make([]*review.Cycle, 0)
	for _, cycle := range r.cycles {
		if cycle.ObjectiveID == objectiveID {
			copied := *cycle
			cycles = append(cycles, &copied)
		}
	}
	return cycles, nil
}

func (r *fakeReviewRepo) Activate(_ context.Context, cycle *review.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.cycles {
		if other.ObjectiveID == cycle.ObjectiveID && other.ID != cycle.ID && other.Status == review.StateInProgress {
			return idb.ErrCycleAlreadyInProgress
		}
	}
	stored, ok := r.cycles[cycle.ID]
	if !ok {
		return idb.ErrCycleNotFound
	}
	stored.Status = review.StateInProgress
	cycle.Status = review.StateInProgress
	return nil
}

func (r *fakeReviewRepo) TransitionWithSnapshots(_ context.Context, cycle *review.Cycle, target review.State, snapshots []*review.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSnapshotAfter >= 0 && len(snapshots) > r.failSnapshotAfter {
		// All-or-nothing: nothing is retained from the failed attempt.
		return fmt.Errorf("%w: simulated failure at snapshot %d of %d",
			idb.ErrSnapshotWrite, r.failSnapshotAfter+1, len(snapshots))
	}
	stored, ok := r.cycles[cycle.ID]
	if !ok {
		return idb.ErrCycleNotFound
	}
	stored.Status = target
	cycle.Status = target
	for _, snap := range snapshots {
		snap.ID = int64(len(r.snapshots) + 1)
		r.snapshots = append(r.snapshots, snap)
	}
	return nil
}

func (r *fakeReviewRepo) ListSnapshotsByCycle(_ context.Context, cycleID int64) ([]*review.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshots := make([]*review.Snapshot, 0)
	for _, snap := range r.snapshots {
		if snap.CycleID == cycleID {
			snapshots = append(snapshots, snap)
		}
	}
	return snapshots, nil
}
