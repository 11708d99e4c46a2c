package database

import (
	"context"
	"log"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/auth"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin creates the default dispatcher account if it does not exist.
func SeedAdmin(db *mongo.Database) error {
	userCollection := db.Collection("users")
	adminEmail := "dispatcher@example.com"

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": adminEmail})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Dispatcher account already exists. Seeding skipped.")
		return nil
	}

	log.Println("Dispatcher account not found. Seeding...")
	hashedPassword, err := auth.HashPassword("dispatcherpassword")
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:    "admin-1",
		Email:     adminEmail,
		Name:      "Dispatcher",
		Password:  hashedPassword,
		Role:      "admin",
		Status:    "active",
		CreatedAt: time.Now(),
	}

	_, err = userCollection.InsertOne(context.Background(), admin)
	if err != nil {
		return err
	}

	log.Println("Dispatcher account seeded successfully.")
	return nil
}

// SeedCollectionPoints inserts a handful of demo TPS points so a fresh
// deployment has a catalog to schedule against.
func SeedCollectionPoints(db *mongo.Database) error {
	pointCollection := db.Collection("collection_points")

	count, err := pointCollection.CountDocuments(context.Background(), bson.M{})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Collection points already exist. Seeding skipped.")
		return nil
	}

	log.Println("No collection points found. Seeding demo points...")
	now := time.Now()
	demoPoints := []interface{}{
		models.CollectionPoint{
			PointID:     "tps-kenanga",
			Name:        "TPS Kenanga",
			Address:     "Jl. Kenanga No. 12",
			Coordinates: models.Coordinates{Latitude: -6.914744, Longitude: 107.609810},
			Status:      models.PointStatusFull,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		models.CollectionPoint{
			PointID:     "tps-melati",
			Name:        "TPS Melati",
			Address:     "Jl. Melati No. 3",
			Coordinates: models.Coordinates{Latitude: -6.921031, Longitude: 107.617169},
			Status:      models.PointStatusFull,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		models.CollectionPoint{
			PointID:     "tps-anggrek",
			Name:        "TPS Anggrek",
			Address:     "Jl. Anggrek Raya No. 21",
			Coordinates: models.Coordinates{Latitude: -6.905977, Longitude: 107.613144},
			Status:      models.PointStatusAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	_, err = pointCollection.InsertMany(context.Background(), demoPoints)
	if err != nil {
		return err
	}

	log.Println("Demo collection points seeded successfully.")
	return nil
}
