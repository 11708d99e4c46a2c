package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PointStore reads and writes the collection-point catalog.
type PointStore struct {
	collection *mongo.Collection
}

func NewPointStore(db *mongo.Database) *PointStore {
	return &PointStore{collection: db.Collection("collection_points")}
}

func (s *PointStore) Insert(ctx context.Context, point *models.CollectionPoint) error {
	count, err := s.collection.CountDocuments(ctx, bson.M{"pointID": point.PointID})
	if err != nil {
		return fmt.Errorf("check point exists: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("collection point %s already exists", point.PointID)
	}

	result, err := s.collection.InsertOne(ctx, point)
	if err != nil {
		return fmt.Errorf("insert collection point: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		point.ID = oid
	}
	return nil
}

func (s *PointStore) GetByID(ctx context.Context, pointID string) (*models.CollectionPoint, error) {
	var point models.CollectionPoint
	err := s.collection.FindOne(ctx, bson.M{"pointID": pointID}).Decode(&point)
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func (s *PointStore) All(ctx context.Context) ([]models.CollectionPoint, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("query collection points: %w", err)
	}
	defer cursor.Close(ctx)

	var points []models.CollectionPoint
	if err = cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("decode collection points: %w", err)
	}
	if points == nil {
		points = []models.CollectionPoint{}
	}
	return points, nil
}

// Catalog returns the full catalog keyed by pointID, the shape the route
// builder consumes.
func (s *PointStore) Catalog(ctx context.Context) (map[string]models.CollectionPoint, error) {
	points, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]models.CollectionPoint, len(points))
	for _, p := range points {
		catalog[p.PointID] = p
	}
	return catalog, nil
}

// SetStatus flips a point's status, e.g. FULL -> AVAILABLE after a pickup.
// Callers on the completion path treat this as fire-and-forget.
func (s *PointStore) SetStatus(ctx context.Context, pointID, status string) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"pointID": pointID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("update point status: %w", err)
	}
	return nil
}

func (s *PointStore) Update(ctx context.Context, pointID string, point *models.CollectionPoint) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"pointID": pointID}, bson.M{"$set": bson.M{
		"name":        point.Name,
		"address":     point.Address,
		"coordinates": point.Coordinates,
		"status":      point.Status,
		"updatedAt":   time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("update collection point: %w", err)
	}
	return nil
}
