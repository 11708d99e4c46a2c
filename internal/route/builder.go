package route

import (
	"fmt"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"
)

const (
	// PerStopMinutes is the nominal time budget per stop, used both for the
	// display-only time slots and for the estimated-duration default.
	PerStopMinutes = 15

	// nominalStartHour is the hour of day the first display slot is anchored
	// to. The slots carry no scheduling authority.
	nominalStartHour = 8
)

// Build derives the executable route view from one schedule and the
// collection-point catalog, keyed by pointID. It is a pure projection: no
// side effects, and safe to recompute on every schedule or catalog change.
//
// A tpsRoute entry missing from the catalog yields a clearly flagged
// placeholder stop instead of failing the build; one bad reference must not
// block the rest of the route.
func Build(s *models.Schedule, catalog map[string]models.CollectionPoint) *models.RouteAssignment {
	stops := make([]models.RouteStop, 0, len(s.TPSRoute))
	slotStart := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), nominalStartHour, 0, 0, 0, s.Date.Location())

	for i, pointID := range s.TPSRoute {
		stop := models.RouteStop{
			PointID:       pointID,
			Order:         i + 1,
			EstimatedTime: slotStart.Add(time.Duration(i*PerStopMinutes) * time.Minute).Format("15:04"),
		}

		if point, ok := catalog[pointID]; ok {
			stop.Name = point.Name
			stop.Address = point.Address
			stop.Coordinates = point.Coordinates
		} else {
			stop.Name = fmt.Sprintf("Unknown collection point (%s)", pointID)
			stop.Address = "Location not found"
		}

		key := models.StopKey(i)
		if rec, ok := s.Completions[key]; ok {
			stop.IsCompleted = true
			completedAt := rec.CompletedAt
			stop.CompletedAt = &completedAt
			stop.ProofURL = rec.ProofURL
			stop.Notes = rec.Notes
		}
		if issue, ok := s.Issues[key]; ok {
			stop.HasIssue = true
			if stop.Notes == "" {
				stop.Notes = issue.Description
			}
		}

		stops = append(stops, stop)
	}

	estimated := s.EstimatedDuration
	if estimated == 0 {
		estimated = len(s.TPSRoute) * PerStopMinutes
	}

	return &models.RouteAssignment{
		RouteID:           "RT-" + s.ScheduleID,
		ScheduleID:        s.ScheduleID,
		DriverID:          s.DriverID,
		Stops:             stops,
		TotalStops:        len(s.TPSRoute),
		Progress:          s.Progress(),
		Status:            s.Status,
		EstimatedDuration: estimated,
		StartTime:         s.StartTime,
	}
}
