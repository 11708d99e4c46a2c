package location

import (
	"context"
	"encoding/json"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// keyTTL bounds how long a stale position survives if tracking dies without
// an explicit Clear.
const keyTTL = 5 * time.Minute

// Broadcaster receives every published sample for live fan-out to watchers.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Reporter publishes the driver's current position while a schedule is in
// progress. At most one live value exists per driver: each sample overwrites
// the previous one and Clear deletes it. Publication is best-effort
// telemetry; every failure is logged and swallowed, never surfaced to the
// route-execution flow.
type Reporter struct {
	rdb *redis.Client
	hub Broadcaster
}

func NewReporter(rdb *redis.Client, hub Broadcaster) *Reporter {
	return &Reporter{rdb: rdb, hub: hub}
}

func locationKey(driverID string) string {
	return "driver:location:" + driverID
}

// Publish stores the sample as the driver's current position and broadcasts
// it to watchers.
func (r *Reporter) Publish(ctx context.Context, loc models.DriverLocation) {
	payload, err := json.Marshal(loc)
	if err != nil {
		logrus.Warnf("marshal driver location: %v", err)
		return
	}

	if err := r.rdb.Set(ctx, locationKey(loc.DriverID), payload, keyTTL).Err(); err != nil {
		logrus.Warnf("publish driver location for %s: %v", loc.DriverID, err)
	}

	if r.hub != nil {
		r.hub.Broadcast(payload)
	}
}

// Clear deletes the driver's published position. Called when tracking stops
// or the schedule leaves IN_PROGRESS.
func (r *Reporter) Clear(ctx context.Context, driverID string) {
	if err := r.rdb.Del(ctx, locationKey(driverID)).Err(); err != nil {
		logrus.Warnf("clear driver location for %s: %v", driverID, err)
	}
}

// Current returns the driver's last published position, or nil if the driver
// is not being tracked.
func (r *Reporter) Current(ctx context.Context, driverID string) (*models.DriverLocation, error) {
	payload, err := r.rdb.Get(ctx, locationKey(driverID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var loc models.DriverLocation
	if err := json.Unmarshal(payload, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}
