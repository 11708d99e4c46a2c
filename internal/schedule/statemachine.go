package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Store is the slice of the schedule store the state machine needs. The
// conditional update is what makes transitions safe against read-modify-write
// races: the write only applies while the document still carries the expected
// status.
type Store interface {
	GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error)
	TransitionStatus(ctx context.Context, scheduleID, from, to string, set bson.M) (bool, error)
}

// Machine owns the schedule lifecycle:
//
//	PENDING -> PENDING_APPROVAL -> APPROVED -> ASSIGNED -> IN_PROGRESS -> COMPLETED
//
// CANCELLED is reachable from any non-terminal state.
type Machine struct {
	store Store
	now   func() time.Time
}

func NewMachine(store Store) *Machine {
	return &Machine{store: store, now: time.Now}
}

// NewMachineAt is like NewMachine with an injectable clock, for tests.
func NewMachineAt(store Store, now func() time.Time) *Machine {
	return &Machine{store: store, now: now}
}

// CanStart reports whether the schedule may be started at instant now. It is
// evaluated against the wall clock on every call; the answer is never cached
// because the date gate flips as time passes.
func CanStart(s *models.Schedule, now time.Time) bool {
	return CheckStart(s, now) == nil
}

// CheckStart returns nil if the schedule may be started at instant now,
// ErrIneligibleTransition if its status forbids starting, or a
// NotYetEligibleError if the assigned-date gate is not yet satisfied.
func CheckStart(s *models.Schedule, now time.Time) error {
	if s.Status != models.StatusAssigned {
		return fmt.Errorf("start from status %s: %w", s.Status, ErrIneligibleTransition)
	}
	if s.AssignedDate != nil && now.Before(*s.AssignedDate) {
		return &NotYetEligibleError{EligibleOn: *s.AssignedDate}
	}
	return nil
}

// Start transitions ASSIGNED -> IN_PROGRESS and records the start time.
// Calling Start on a schedule that is already IN_PROGRESS is a no-op success,
// so retried client calls are harmless.
func (m *Machine) Start(ctx context.Context, s *models.Schedule) (*models.Schedule, error) {
	if s.Status == models.StatusInProgress {
		return s, nil
	}
	if err := CheckStart(s, m.now()); err != nil {
		return nil, err
	}

	startTime := m.now()
	ok, err := m.store.TransitionStatus(ctx, s.ScheduleID, models.StatusAssigned, models.StatusInProgress,
		bson.M{"startTime": startTime})
	if err != nil {
		return nil, fmt.Errorf("persist start transition: %w", err)
	}
	if !ok {
		// Lost a race: someone else moved the schedule first. Re-read and
		// treat a concurrent start of the same schedule as success.
		fresh, err := m.store.GetByID(ctx, s.ScheduleID)
		if err != nil {
			return nil, fmt.Errorf("reload schedule after contested start: %w", err)
		}
		if fresh.Status == models.StatusInProgress {
			return fresh, nil
		}
		return nil, fmt.Errorf("start from status %s: %w", fresh.Status, ErrIneligibleTransition)
	}

	s.Status = models.StatusInProgress
	s.StartTime = &startTime
	return s, nil
}

// Complete transitions IN_PROGRESS -> COMPLETED once every stop has a
// completion record, stamping completedAt exactly once. Completing an
// already-COMPLETED schedule is a no-op success.
func (m *Machine) Complete(ctx context.Context, s *models.Schedule) (*models.Schedule, error) {
	if s.Status == models.StatusCompleted {
		return s, nil
	}
	if s.Status != models.StatusInProgress {
		return nil, fmt.Errorf("complete from status %s: %w", s.Status, ErrIneligibleTransition)
	}
	if s.CompletedCount() != len(s.TPSRoute) {
		return nil, fmt.Errorf("%d of %d stops completed: %w", s.CompletedCount(), len(s.TPSRoute), ErrIncompleteStops)
	}

	completedAt := m.now()
	ok, err := m.store.TransitionStatus(ctx, s.ScheduleID, models.StatusInProgress, models.StatusCompleted,
		bson.M{"completedAt": completedAt})
	if err != nil {
		return nil, fmt.Errorf("persist complete transition: %w", err)
	}
	if !ok {
		fresh, err := m.store.GetByID(ctx, s.ScheduleID)
		if err != nil {
			return nil, fmt.Errorf("reload schedule after contested complete: %w", err)
		}
		if fresh.Status == models.StatusCompleted {
			return fresh, nil
		}
		return nil, fmt.Errorf("complete from status %s: %w", fresh.Status, ErrIneligibleTransition)
	}

	s.Status = models.StatusCompleted
	s.CompletedAt = &completedAt
	return s, nil
}

// Cancel moves any non-terminal schedule to CANCELLED. Cancelling an
// already-CANCELLED schedule is a no-op success.
func (m *Machine) Cancel(ctx context.Context, s *models.Schedule) (*models.Schedule, error) {
	if s.Status == models.StatusCancelled {
		return s, nil
	}
	if s.IsTerminal() {
		return nil, fmt.Errorf("cancel from status %s: %w", s.Status, ErrIneligibleTransition)
	}

	ok, err := m.store.TransitionStatus(ctx, s.ScheduleID, s.Status, models.StatusCancelled, nil)
	if err != nil {
		return nil, fmt.Errorf("persist cancel transition: %w", err)
	}
	if !ok {
		fresh, err := m.store.GetByID(ctx, s.ScheduleID)
		if err != nil {
			return nil, fmt.Errorf("reload schedule after contested cancel: %w", err)
		}
		if fresh.Status == models.StatusCancelled {
			return fresh, nil
		}
		return nil, fmt.Errorf("cancel from status %s: %w", fresh.Status, ErrIneligibleTransition)
	}

	s.Status = models.StatusCancelled
	return s, nil
}

// forwardTransitions is the approval chain preceding execution.
var forwardTransitions = map[string]string{
	models.StatusPending:         models.StatusPendingApproval,
	models.StatusPendingApproval: models.StatusApproved,
	models.StatusApproved:        models.StatusAssigned,
}

// Advance moves a schedule one step along the approval chain
// (PENDING -> PENDING_APPROVAL -> APPROVED -> ASSIGNED). Start and Complete
// handle the execution states; Advance rejects them.
func (m *Machine) Advance(ctx context.Context, s *models.Schedule) (*models.Schedule, error) {
	next, ok := forwardTransitions[s.Status]
	if !ok {
		return nil, fmt.Errorf("advance from status %s: %w", s.Status, ErrIneligibleTransition)
	}

	applied, err := m.store.TransitionStatus(ctx, s.ScheduleID, s.Status, next, nil)
	if err != nil {
		return nil, fmt.Errorf("persist advance transition: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("advance from status %s: schedule changed concurrently: %w", s.Status, ErrIneligibleTransition)
	}

	s.Status = next
	return s, nil
}
