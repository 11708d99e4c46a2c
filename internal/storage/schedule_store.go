package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ScheduleStore reads and writes schedule documents. The schedule document is
// the durable source of truth; everything the clients see is derived from it.
type ScheduleStore struct {
	collection *mongo.Collection
}

func NewScheduleStore(db *mongo.Database) *ScheduleStore {
	return &ScheduleStore{collection: db.Collection("schedules")}
}

func (s *ScheduleStore) Insert(ctx context.Context, schedule *models.Schedule) error {
	result, err := s.collection.InsertOne(ctx, schedule)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		schedule.ID = oid
	}
	return nil
}

func (s *ScheduleStore) GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.collection.FindOne(ctx, bson.M{"scheduleID": scheduleID}).Decode(&schedule)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListByDriver returns the driver's schedules, newest date first.
func (s *ScheduleStore) ListByDriver(ctx context.Context, driverID string) ([]models.Schedule, error) {
	opts := options.Find().SetSort(bson.M{"date": -1})
	cursor, err := s.collection.Find(ctx, bson.M{"driverID": driverID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []models.Schedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	return schedules, nil
}

// ActiveForDriver returns the driver's schedule currently being executed, or
// the next one ready to be started. IN_PROGRESS wins over ASSIGNED.
func (s *ScheduleStore) ActiveForDriver(ctx context.Context, driverID string) (*models.Schedule, error) {
	for _, status := range []string{models.StatusInProgress, models.StatusAssigned} {
		var schedule models.Schedule
		opts := options.FindOne().SetSort(bson.M{"date": 1})
		err := s.collection.FindOne(ctx, bson.M{"driverID": driverID, "status": status}, opts).Decode(&schedule)
		if err == nil {
			return &schedule, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("query active schedule: %w", err)
		}
	}
	return nil, mongo.ErrNoDocuments
}

// TransitionStatus applies a conditional status update: the write only
// matches while the document still has status from. Returns false when the
// document was not in the expected status, i.e. the transition lost a race or
// was never legal. This is the optimistic-concurrency guard for Start and
// Complete.
func (s *ScheduleStore) TransitionStatus(ctx context.Context, scheduleID, from, to string, set bson.M) (bool, error) {
	update := bson.M{"status": to}
	for k, v := range set {
		update[k] = v
	}

	result, err := s.collection.UpdateOne(ctx,
		bson.M{"scheduleID": scheduleID, "status": from},
		bson.M{"$set": update})
	if err != nil {
		return false, fmt.Errorf("conditional status update: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// RecordCompletion writes the completion record for one stop index. The
// filter requires the record to be absent, so a concurrent duplicate
// completion of the same index matches nothing and reports false. At most one
// record per index can ever exist.
func (s *ScheduleStore) RecordCompletion(ctx context.Context, scheduleID string, index int, rec models.StopCompletion) (bool, error) {
	field := "completions." + models.StopKey(index)
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"scheduleID": scheduleID, field: bson.M{"$exists": false}},
		bson.M{"$set": bson.M{field: rec}})
	if err != nil {
		return false, fmt.Errorf("record stop completion: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// RecordIssue stores a driver-reported issue against one stop index,
// overwriting any earlier report for the same stop.
func (s *ScheduleStore) RecordIssue(ctx context.Context, scheduleID string, index int, issue models.StopIssue) error {
	field := "issues." + models.StopKey(index)
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"scheduleID": scheduleID},
		bson.M{"$set": bson.M{field: issue}})
	if err != nil {
		return fmt.Errorf("record stop issue: %w", err)
	}
	return nil
}

// CountCompletedOn returns how many of the driver's schedules completed on
// the given calendar day, plus the stop totals, for the daily stats view.
func (s *ScheduleStore) CountCompletedOn(ctx context.Context, driverID string, day time.Time) (schedules int, stops int, err error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	cursor, err := s.collection.Find(ctx, bson.M{
		"driverID":    driverID,
		"status":      models.StatusCompleted,
		"completedAt": bson.M{"$gte": start, "$lt": end},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("query completed schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var done []models.Schedule
	if err = cursor.All(ctx, &done); err != nil {
		return 0, 0, fmt.Errorf("decode completed schedules: %w", err)
	}
	for _, sched := range done {
		stops += sched.CompletedCount()
	}
	return len(done), stops, nil
}
