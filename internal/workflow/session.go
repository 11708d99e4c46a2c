package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/route"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/schedule"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNoActiveSchedule means the driver has nothing assigned or in progress.
var ErrNoActiveSchedule = errors.New("driver has no active schedule")

// ErrNotScheduleOwner means the schedule belongs to a different driver.
var ErrNotScheduleOwner = errors.New("schedule is assigned to a different driver")

// uploadTimeout bounds a proof-photo upload so a slow network can never hang
// a stop completion.
const uploadTimeout = 15 * time.Second

// ScheduleStore is the schedule persistence the workflow needs.
type ScheduleStore interface {
	GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error)
	ActiveForDriver(ctx context.Context, driverID string) (*models.Schedule, error)
	RecordCompletion(ctx context.Context, scheduleID string, index int, rec models.StopCompletion) (bool, error)
	RecordIssue(ctx context.Context, scheduleID string, index int, issue models.StopIssue) error
}

// PointStore supplies the catalog for route building and receives the
// status flip after a pickup.
type PointStore interface {
	Catalog(ctx context.Context) (map[string]models.CollectionPoint, error)
	SetStatus(ctx context.Context, pointID, status string) error
}

// ProofUploader stores proof photos and returns their URL.
type ProofUploader interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey string) (string, error)
}

// LocationTracker is notified when a schedule stops being tracked.
type LocationTracker interface {
	Clear(ctx context.Context, driverID string)
}

// Snapshot is the read-only state handed to the presentation layer after
// every operation: the durable schedule, the derived route view, and any
// non-blocking warnings the operation produced.
type Snapshot struct {
	Schedule *models.Schedule        `json:"schedule"`
	Route    *models.RouteAssignment `json:"route"`
	Warnings []string                `json:"warnings,omitempty"`
}

// Service executes a driver's active schedule: starting it, completing stops,
// flagging issues. One schedule is active per driver at a time. Mutating
// operations are serialized so a retried completeStop cannot double-count
// progress.
type Service struct {
	schedules ScheduleStore
	points    PointStore
	uploader  ProofUploader
	machine   *schedule.Machine
	tracker   LocationTracker

	mu  sync.Mutex
	now func() time.Time
}

func NewService(schedules ScheduleStore, points PointStore, uploader ProofUploader, machine *schedule.Machine, tracker LocationTracker) *Service {
	return &Service{
		schedules: schedules,
		points:    points,
		uploader:  uploader,
		machine:   machine,
		tracker:   tracker,
		now:       time.Now,
	}
}

func (svc *Service) snapshot(ctx context.Context, s *models.Schedule, warnings []string) (*Snapshot, error) {
	catalog, err := svc.points.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load collection-point catalog: %w", err)
	}
	return &Snapshot{
		Schedule: s,
		Route:    route.Build(s, catalog),
		Warnings: warnings,
	}, nil
}

// Active returns the driver's current schedule and route view, or
// ErrNoActiveSchedule.
func (svc *Service) Active(ctx context.Context, driverID string) (*Snapshot, error) {
	s, err := svc.schedules.ActiveForDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoActiveSchedule
		}
		return nil, fmt.Errorf("load active schedule: %w", err)
	}
	return svc.snapshot(ctx, s, nil)
}

func (svc *Service) load(ctx context.Context, driverID, scheduleID string) (*models.Schedule, error) {
	s, err := svc.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("load schedule %s: %w", scheduleID, err)
	}
	if s.DriverID != driverID {
		return nil, ErrNotScheduleOwner
	}
	return s, nil
}

// Start begins execution of the driver's schedule. The date gate and status
// are re-checked here, at start time, by the state machine.
func (svc *Service) Start(ctx context.Context, driverID, scheduleID string) (*Snapshot, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.load(ctx, driverID, scheduleID)
	if err != nil {
		return nil, err
	}

	s, err = svc.machine.Start(ctx, s)
	if err != nil {
		return nil, err
	}
	return svc.snapshot(ctx, s, nil)
}

// CompleteStop records the completion of one stop: optional proof photo,
// notes, progress recomputation, and — when it was the last stop — schedule
// completion and the end of location tracking.
//
// The operation is idempotent per index: an out-of-range index or an
// already-completed stop returns the current state unchanged. A failed photo
// upload is non-fatal; the stop is still completed, without a proof
// reference, and the failure is surfaced as a warning.
func (svc *Service) CompleteStop(ctx context.Context, driverID, scheduleID string, index int, photo io.Reader, notes string) (*Snapshot, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.load(ctx, driverID, scheduleID)
	if err != nil {
		return nil, err
	}
	if s.Status != models.StatusInProgress {
		return nil, fmt.Errorf("complete stop on status %s: %w", s.Status, schedule.ErrIneligibleTransition)
	}

	if index < 0 || index >= len(s.TPSRoute) || s.IsStopCompleted(index) {
		return svc.snapshot(ctx, s, nil)
	}

	var warnings []string
	rec := models.StopCompletion{CompletedAt: svc.now(), Notes: notes}

	if photo != nil && svc.uploader != nil {
		uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		key := fmt.Sprintf("proofs/%s/%s/%d-%s.jpg", driverID, scheduleID, index, uuid.NewString())
		url, err := svc.uploader.UploadFile(uploadCtx, photo, key)
		cancel()
		if err != nil {
			logrus.Warnf("proof photo upload for %s stop %d failed: %v", scheduleID, index, err)
			warnings = append(warnings, "proof photo upload failed; stop recorded without proof")
		} else {
			rec.ProofURL = url
		}
	}

	applied, err := svc.schedules.RecordCompletion(ctx, scheduleID, index, rec)
	if err != nil {
		return nil, fmt.Errorf("record completion for stop %d: %w", index, err)
	}
	if !applied {
		// A concurrent retry recorded this index first. Reload and report
		// the state as-is.
		fresh, err := svc.schedules.GetByID(ctx, scheduleID)
		if err != nil {
			return nil, fmt.Errorf("reload schedule after contested completion: %w", err)
		}
		return svc.snapshot(ctx, fresh, warnings)
	}

	if s.Completions == nil {
		s.Completions = make(map[string]models.StopCompletion)
	}
	s.Completions[models.StopKey(index)] = rec

	// The physical point is empty again. Fire-and-forget; a failed write is
	// logged, not retried here.
	pointID := s.TPSRoute[index]
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svc.points.SetStatus(ctx, pointID, models.PointStatusAvailable); err != nil {
			logrus.Warnf("set collection point %s status: %v", pointID, err)
		}
	}()

	if s.CompletedCount() == len(s.TPSRoute) {
		s, err = svc.machine.Complete(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("complete schedule after final stop: %w", err)
		}
		if svc.tracker != nil {
			svc.tracker.Clear(ctx, driverID)
		}
	}

	return svc.snapshot(ctx, s, warnings)
}

// Cancel moves a schedule to CANCELLED on behalf of the dispatcher. When the
// cancelled schedule was being executed, the driver's published location is
// deleted along with it: leaving IN_PROGRESS always ends tracking.
func (svc *Service) Cancel(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	wasInProgress := s.Status == models.StatusInProgress

	s, err = svc.machine.Cancel(ctx, s)
	if err != nil {
		return nil, err
	}

	if wasInProgress && svc.tracker != nil {
		svc.tracker.Clear(ctx, s.DriverID)
	}
	return s, nil
}

// ReportIssue flags a stop as problematic and stores the description. It
// does not alter completion state; a stop may be both completed and flagged.
func (svc *Service) ReportIssue(ctx context.Context, driverID, scheduleID string, index int, description string) (*Snapshot, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.load(ctx, driverID, scheduleID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(s.TPSRoute) {
		return nil, fmt.Errorf("stop index %d out of range", index)
	}

	issue := models.StopIssue{Description: description, ReportedAt: svc.now()}
	if err := svc.schedules.RecordIssue(ctx, scheduleID, index, issue); err != nil {
		return nil, fmt.Errorf("record issue for stop %d: %w", index, err)
	}

	if s.Issues == nil {
		s.Issues = make(map[string]models.StopIssue)
	}
	s.Issues[models.StopKey(index)] = issue

	return svc.snapshot(ctx, s, nil)
}
