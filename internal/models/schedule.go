package models

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Schedule status codes. These are the persisted values; how they are
// displayed is up to the clients.
const (
	StatusPending         = "PENDING"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusApproved        = "APPROVED"
	StatusAssigned        = "ASSIGNED"
	StatusInProgress      = "IN_PROGRESS"
	StatusCompleted       = "COMPLETED"
	StatusCancelled       = "CANCELLED"
)

// StopCompletion records the completion of a single stop. At most one record
// exists per tpsRoute index; a record exists if and only if that stop index
// has been completed.
type StopCompletion struct {
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
	ProofURL    string    `bson:"proofURL,omitempty" json:"proofURL,omitempty"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// StopIssue is a driver-reported problem at a stop. Issues are kept apart
// from completions: a stop may be flagged before, after, or instead of being
// completed.
type StopIssue struct {
	Description string    `bson:"description" json:"description"`
	ReportedAt  time.Time `bson:"reportedAt" json:"reportedAt"`
}

// Schedule is a unit of assigned collection work for one driver on one date.
// TPSRoute holds the ordered collection-point identifiers as delivered by the
// external route optimizer; the order is fixed at creation.
type Schedule struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ScheduleID     string             `bson:"scheduleID" json:"scheduleID"`
	DriverID       string             `bson:"driverID" json:"driverID"`
	TPSRoute       []string           `bson:"tpsRoute" json:"tpsRoute"`
	Date           time.Time          `bson:"date" json:"date"`
	AssignedDate   *time.Time         `bson:"assignedDate,omitempty" json:"assignedDate,omitempty"`
	Status         string             `bson:"status" json:"status"`
	IsRecurring    bool               `bson:"isRecurring" json:"isRecurring"`
	NextOccurrence *time.Time         `bson:"nextOccurrence,omitempty" json:"nextOccurrence,omitempty"`

	// EstimatedDuration is in minutes; 0 means "not set" and a default is
	// derived from the stop count when the route view is built.
	EstimatedDuration int `bson:"estimatedDuration,omitempty" json:"estimatedDuration,omitempty"`

	StartTime   *time.Time `bson:"startTime,omitempty" json:"startTime,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`

	// Completions and Issues are keyed by the stop's tpsRoute index,
	// stringified because BSON map keys are strings. Keying by index keeps a
	// second pass over the same collection point distinct.
	Completions map[string]StopCompletion `bson:"completions,omitempty" json:"completions,omitempty"`
	Issues      map[string]StopIssue      `bson:"issues,omitempty" json:"issues,omitempty"`
}

// StopKey returns the map key for a tpsRoute index.
func StopKey(index int) string {
	return strconv.Itoa(index)
}

// IsStopCompleted reports whether the stop at index has a completion record.
func (s *Schedule) IsStopCompleted(index int) bool {
	_, ok := s.Completions[StopKey(index)]
	return ok
}

// CompletedCount returns the number of completed stops.
func (s *Schedule) CompletedCount() int {
	return len(s.Completions)
}

// Progress returns completion as an integer percentage, truncated.
func (s *Schedule) Progress() int {
	if len(s.TPSRoute) == 0 {
		return 0
	}
	return s.CompletedCount() * 100 / len(s.TPSRoute)
}

// IsTerminal reports whether the schedule can no longer change status.
func (s *Schedule) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusCancelled
}
