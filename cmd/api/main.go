package main

import (
	"context"
	"log"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/config"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/api/routes"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/auth"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/database"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/directions"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/location"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/logger"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/s3"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/schedule"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/socket"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/storage"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/workflow"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// .env is optional; environment variables win either way.
	godotenv.Load()

	logger.Setup()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	auth.SetSecret(cfg.JWT.Secret)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	db := mongoClient.Database(cfg.Mongo.DBName)

	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed dispatcher account: %v", err)
	}
	if err := database.SeedCollectionPoints(db); err != nil {
		log.Fatalf("Failed to seed collection points: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize S3 uploader: %v", err)
	}

	wsHub := socket.NewHub()

	scheduleStore := storage.NewScheduleStore(db)
	pointStore := storage.NewPointStore(db)
	machine := schedule.NewMachine(scheduleStore)
	reporter := location.NewReporter(rdb, wsHub)
	workflowSvc := workflow.NewService(scheduleStore, pointStore, s3Uploader, machine, reporter)
	directionsClient := directions.NewClient(cfg.Maps)

	router := routes.SetupRouter(cfg, db, scheduleStore, pointStore, machine, workflowSvc, directionsClient, reporter, wsHub)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
