package models

import "time"

// DriverLocation is the driver's last published position. It is ephemeral:
// each sample supersedes the previous one and the value is deleted when
// tracking stops. No history is retained.
type DriverLocation struct {
	DriverID   string    `json:"driverID"`
	ScheduleID string    `json:"scheduleID"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      float64   `json:"speed"`   // m/s
	Heading    float64   `json:"heading"` // degrees, 0-360
	Timestamp  time.Time `json:"timestamp"`
}
