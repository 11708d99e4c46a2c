package models

import "time"

// RouteStop is one collection point in the context of a route. It is a
// derived view, never persisted.
type RouteStop struct {
	PointID       string      `json:"pointID"`
	Name          string      `json:"name"`
	Address       string      `json:"address"`
	Coordinates   Coordinates `json:"coordinates"`
	Order         int         `json:"order"` // 1-based, matches tpsRoute index + 1
	EstimatedTime string      `json:"estimatedTime"`
	IsCompleted   bool        `json:"isCompleted"`
	CompletedAt   *time.Time  `json:"completedAt,omitempty"`
	ProofURL      string      `json:"proofURL,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	HasIssue      bool        `json:"hasIssue"`
}

// RouteAssignment is the executable view of one schedule: the ordered stops
// with display metadata and derived progress. It is rebuilt whenever the
// schedule or the catalog changes, never mutated in place.
type RouteAssignment struct {
	RouteID           string      `json:"routeID"`
	ScheduleID        string      `json:"scheduleID"`
	DriverID          string      `json:"driverID"`
	Stops             []RouteStop `json:"stops"`
	TotalStops        int         `json:"totalStops"`
	Progress          int         `json:"progress"` // 0-100
	Status            string      `json:"status"`
	EstimatedDuration int         `json:"estimatedDuration"` // minutes
	StartTime         *time.Time  `json:"startTime,omitempty"`
}
