package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/tanvir-rahman/class-forum/backend/internal/router"
	"github.com/tanvir-rahman/class-forum/backend/pkg/config"
	"github.com/tanvir-rahman/class-forum/backend/pkg/events"
	"github.com/tanvir-rahman/class-forum/backend/pkg/firebase"
	"github.com/tanvir-rahman/class-forum/backend/validators"
)

func main() {
	// Load configuration
	config.LoadEnv()
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Kafka event publisher; optional, nil without broker configuration
	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	config.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db, firebaseApp, publisher)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
