package location

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type recordingHub struct {
	mu       sync.Mutex
	messages [][]byte
}

func (h *recordingHub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message)
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func newTestReporter(t *testing.T) (*Reporter, *recordingHub) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	hub := &recordingHub{}
	return NewReporter(rdb, hub), hub
}

func sample(driverID string) models.DriverLocation {
	return models.DriverLocation{
		DriverID:   driverID,
		ScheduleID: "sched-1",
		Latitude:   -6.2,
		Longitude:  106.8,
		Speed:      8.5,
		Heading:    270,
		Timestamp:  time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestPublishAndCurrent(t *testing.T) {
	reporter, hub := newTestReporter(t)
	ctx := context.Background()

	reporter.Publish(ctx, sample("driver-1"))

	loc, err := reporter.Current(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc == nil {
		t.Fatal("expected a published location")
	}
	if loc.ScheduleID != "sched-1" || loc.Latitude != -6.2 || loc.Heading != 270 {
		t.Fatalf("location = %+v", loc)
	}
	if hub.count() != 1 {
		t.Fatalf("broadcasts = %d, want 1", hub.count())
	}
}

func TestPublishOverwritesPreviousSample(t *testing.T) {
	reporter, _ := newTestReporter(t)
	ctx := context.Background()

	first := sample("driver-1")
	reporter.Publish(ctx, first)

	second := first
	second.Latitude = -6.25
	reporter.Publish(ctx, second)

	loc, err := reporter.Current(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != -6.25 {
		t.Fatalf("latitude = %f, want the latest sample", loc.Latitude)
	}
}

func TestClearDeletesLocation(t *testing.T) {
	reporter, _ := newTestReporter(t)
	ctx := context.Background()

	reporter.Publish(ctx, sample("driver-1"))
	reporter.Clear(ctx, "driver-1")

	loc, err := reporter.Current(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != nil {
		t.Fatalf("location = %+v, want nil after clear", loc)
	}
}

func TestCurrentForUntrackedDriver(t *testing.T) {
	reporter, _ := newTestReporter(t)

	loc, err := reporter.Current(context.Background(), "driver-unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != nil {
		t.Fatalf("location = %+v, want nil", loc)
	}
}

func TestPublishSwallowsBackendFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	reporter := NewReporter(rdb, nil)
	mr.Close()

	// Must not panic or error; publication is best-effort telemetry.
	reporter.Publish(context.Background(), sample("driver-1"))
	reporter.Clear(context.Background(), "driver-1")
}
