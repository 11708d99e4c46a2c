package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// fakeStore keeps schedules in memory and mimics the conditional status
// write of the Mongo store.
type fakeStore struct {
	schedules map[string]*models.Schedule
}

func newFakeStore(schedules ...*models.Schedule) *fakeStore {
	f := &fakeStore{schedules: make(map[string]*models.Schedule)}
	for _, s := range schedules {
		f.schedules[s.ScheduleID] = s
	}
	return f
}

func (f *fakeStore) GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	s, ok := f.schedules[scheduleID]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) TransitionStatus(ctx context.Context, scheduleID, from, to string, set bson.M) (bool, error) {
	s, ok := f.schedules[scheduleID]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	if v, ok := set["startTime"].(time.Time); ok {
		s.StartTime = &v
	}
	if v, ok := set["completedAt"].(time.Time); ok {
		s.CompletedAt = &v
	}
	return true, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCheckStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tomorrow := now.Add(24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	tests := []struct {
		name         string
		status       string
		assignedDate *time.Time
		wantErr      error
	}{
		{"assigned without gate", models.StatusAssigned, nil, nil},
		{"assigned with passed gate", models.StatusAssigned, &yesterday, nil},
		{"assigned with future gate", models.StatusAssigned, &tomorrow, &NotYetEligibleError{}},
		{"pending", models.StatusPending, nil, ErrIneligibleTransition},
		{"approved", models.StatusApproved, nil, ErrIneligibleTransition},
		{"completed", models.StatusCompleted, nil, ErrIneligibleTransition},
		{"cancelled", models.StatusCancelled, nil, ErrIneligibleTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &models.Schedule{ScheduleID: "s1", Status: tt.status, AssignedDate: tt.assignedDate}
			err := CheckStart(s, now)

			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !CanStart(s, now) {
					t.Fatal("CanStart = false, want true")
				}
			case *NotYetEligibleError:
				var gate *NotYetEligibleError
				if !errors.As(err, &gate) {
					t.Fatalf("error = %v, want NotYetEligibleError", err)
				}
				if !gate.EligibleOn.Equal(tomorrow) {
					t.Fatalf("EligibleOn = %v, want %v", gate.EligibleOn, tomorrow)
				}
			default:
				if !errors.Is(err, want) {
					t.Fatalf("error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestStartRecordsStartTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := &models.Schedule{ScheduleID: "s1", Status: models.StatusAssigned, TPSRoute: []string{"a"}}
	store := newFakeStore(s)
	m := NewMachineAt(store, fixedClock(now))

	copied := *s
	started, err := m.Start(context.Background(), &copied)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != models.StatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", started.Status)
	}
	if started.StartTime == nil || !started.StartTime.Equal(now) {
		t.Fatalf("startTime = %v, want %v", started.StartTime, now)
	}
	if store.schedules["s1"].Status != models.StatusInProgress {
		t.Fatal("persisted status not updated")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	s := &models.Schedule{ScheduleID: "s1", Status: models.StatusInProgress}
	m := NewMachine(newFakeStore(s))

	started, err := m.Start(context.Background(), s)
	if err != nil {
		t.Fatalf("second start should be a no-op success, got %v", err)
	}
	if started.Status != models.StatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", started.Status)
	}
}

func TestStartDateGateLeavesStatusUnchanged(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tomorrow := now.Add(24 * time.Hour)
	s := &models.Schedule{ScheduleID: "s1", Status: models.StatusAssigned, AssignedDate: &tomorrow}
	store := newFakeStore(s)
	m := NewMachineAt(store, fixedClock(now))

	copied := *s
	_, err := m.Start(context.Background(), &copied)
	var gate *NotYetEligibleError
	if !errors.As(err, &gate) {
		t.Fatalf("error = %v, want NotYetEligibleError", err)
	}
	if store.schedules["s1"].Status != models.StatusAssigned {
		t.Fatalf("status = %s, want ASSIGNED unchanged", store.schedules["s1"].Status)
	}
}

func TestStartLosesRaceToConcurrentStart(t *testing.T) {
	// The store already shows IN_PROGRESS by the time the conditional write
	// lands: the retry must be treated as success.
	s := &models.Schedule{ScheduleID: "s1", Status: models.StatusInProgress}
	store := newFakeStore(s)
	m := NewMachine(store)

	stale := &models.Schedule{ScheduleID: "s1", Status: models.StatusAssigned}
	started, err := m.Start(context.Background(), stale)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != models.StatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", started.Status)
	}
}

func TestCompleteRequiresAllStops(t *testing.T) {
	s := &models.Schedule{
		ScheduleID: "s1",
		Status:     models.StatusInProgress,
		TPSRoute:   []string{"a", "b"},
		Completions: map[string]models.StopCompletion{
			"0": {CompletedAt: time.Now()},
		},
	}
	m := NewMachine(newFakeStore(s))

	_, err := m.Complete(context.Background(), s)
	if !errors.Is(err, ErrIncompleteStops) {
		t.Fatalf("error = %v, want ErrIncompleteStops", err)
	}
}

func TestCompleteSetsCompletedAtOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	s := &models.Schedule{
		ScheduleID: "s1",
		Status:     models.StatusInProgress,
		TPSRoute:   []string{"a"},
		Completions: map[string]models.StopCompletion{
			"0": {CompletedAt: now},
		},
	}
	store := newFakeStore(s)
	m := NewMachineAt(store, fixedClock(now))

	copied := *s
	done, err := m.Complete(context.Background(), &copied)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", done.Status)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(now) {
		t.Fatalf("completedAt = %v, want %v", done.CompletedAt, now)
	}

	// Completing again is a no-op success and does not restamp completedAt.
	later := NewMachineAt(store, fixedClock(now.Add(time.Hour)))
	again, err := later.Complete(context.Background(), done)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.CompletedAt.Equal(now) {
		t.Fatalf("completedAt restamped to %v", again.CompletedAt)
	}
}

func TestCancelFromAnyNonTerminalState(t *testing.T) {
	for _, status := range []string{
		models.StatusPending, models.StatusPendingApproval,
		models.StatusApproved, models.StatusAssigned, models.StatusInProgress,
	} {
		s := &models.Schedule{ScheduleID: "s1", Status: status}
		m := NewMachine(newFakeStore(s))
		cancelled, err := m.Cancel(context.Background(), s)
		if err != nil {
			t.Fatalf("cancel from %s: unexpected error: %v", status, err)
		}
		if cancelled.Status != models.StatusCancelled {
			t.Fatalf("cancel from %s: status = %s", status, cancelled.Status)
		}
	}

	s := &models.Schedule{ScheduleID: "s1", Status: models.StatusCompleted}
	m := NewMachine(newFakeStore(s))
	if _, err := m.Cancel(context.Background(), s); !errors.Is(err, ErrIneligibleTransition) {
		t.Fatalf("cancel from COMPLETED: error = %v, want ErrIneligibleTransition", err)
	}
}

func TestAdvanceWalksApprovalChain(t *testing.T) {
	s := &models.Schedule{ScheduleID: "s1", Status: models.StatusPending}
	store := newFakeStore(s)
	m := NewMachine(store)

	want := []string{models.StatusPendingApproval, models.StatusApproved, models.StatusAssigned}
	current := s
	for _, next := range want {
		var err error
		current, err = m.Advance(context.Background(), current)
		if err != nil {
			t.Fatalf("advance to %s: unexpected error: %v", next, err)
		}
		if current.Status != next {
			t.Fatalf("status = %s, want %s", current.Status, next)
		}
	}

	if _, err := m.Advance(context.Background(), current); !errors.Is(err, ErrIneligibleTransition) {
		t.Fatalf("advance from ASSIGNED: error = %v, want ErrIneligibleTransition", err)
	}
}
