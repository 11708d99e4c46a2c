package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrIneligibleTransition is returned when a caller attempts an illegal
// status change, e.g. starting a schedule that is not ASSIGNED.
var ErrIneligibleTransition = errors.New("schedule is not eligible for this transition")

// ErrIncompleteStops is returned by Complete when stops remain uncompleted.
var ErrIncompleteStops = errors.New("schedule still has uncompleted stops")

// NotYetEligibleError means the date gate failed: the schedule exists and is
// ASSIGNED, but may not be started before EligibleOn. Retryable by the user.
type NotYetEligibleError struct {
	EligibleOn time.Time
}

func (e *NotYetEligibleError) Error() string {
	return fmt.Sprintf("schedule may not be started before %s", e.EligibleOn.Format("2006-01-02"))
}
