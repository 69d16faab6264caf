package router

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/tanvir-rahman/class-forum/backend/internal/handlers"
	"github.com/tanvir-rahman/class-forum/backend/internal/middleware"
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/moderation"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
	"github.com/tanvir-rahman/class-forum/backend/pkg/config"
	"github.com/tanvir-rahman/class-forum/backend/pkg/events"
	"github.com/tanvir-rahman/class-forum/backend/pkg/firebase"
)

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseApp *firebase.App, publisher *events.Publisher) {
	// AutoMigrate PostgreSQL models
	err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Thread{},
		&models.Reply{},
		&models.Flag{},
		&models.ModerationVote{},
		&models.Reaction{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	threadRepo := repositories.NewPostgresThreadRepository(db.Postgres)
	replyRepo := repositories.NewPostgresReplyRepository(db.Postgres)
	flagRepo := repositories.NewPostgresFlagRepository(db.Postgres)
	voteRepo := repositories.NewPostgresVoteRepository(db.Postgres)
	reactionRepo := repositories.NewPostgresReactionRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	eventRepo := repositories.NewMongoModerationEventRepository(db.Mongo.Database("classforum"))
	contentStore := repositories.NewGormContentStore(db.Postgres)
	cache := repositories.NewReactionCache(db.Redis)

	// --- Shared services ---
	executor := moderation.NewExecutor(contentStore, flagRepo, eventRepo)
	notifier := handlers.NewNotifier(userRepo, notificationRepo, cache)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseApp.AuthClient, cfg.JwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(firebaseApp.AuthClient, userRepo, cfg.JwtSecret))

	// Moderator and admin groups layer role guards on top of authentication
	mod := api.Group("", middleware.RequireModerator())
	admin := api.Group("", middleware.RequireAdmin())

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	userHandler.RegisterAdminRoutes(admin)
	log.Println("User routes configured.")

	// Thread routes
	threadHandler := handlers.NewThreadHandler(threadRepo, replyRepo, userRepo, flagRepo, notifier, eventRepo, executor, publisher)
	threadHandler.RegisterThreadRoutes(api)
	threadHandler.RegisterModeratorThreadRoutes(mod)
	log.Println("Thread routes configured.")

	// Reply routes
	replyHandler := handlers.NewReplyHandler(replyRepo, threadRepo, userRepo, notifier, publisher)
	replyHandler.RegisterReplyRoutes(api)
	log.Println("Reply routes configured.")

	// Reaction routes
	reactionHandler := handlers.NewReactionHandler(reactionRepo, cache)
	reactionHandler.RegisterReactionRoutes(mod)
	log.Println("Reaction routes configured.")

	// Moderation routes
	moderationHandler := handlers.NewModerationHandler(voteRepo, flagRepo, threadRepo, replyRepo, userRepo, eventRepo, executor, publisher)
	moderationHandler.RegisterModerationRoutes(mod)
	log.Println("Moderation routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, cache)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Upload routes
	uploadHandler := handlers.NewUploadHandler(firebaseApp.Bucket)
	uploadHandler.RegisterUploadRoutes(mod)
	log.Println("Upload routes configured.")

	log.Println("All routes configured.")
}
