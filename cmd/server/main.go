package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recoverly/physio-app/internal/api"
	"recoverly/physio-app/internal/config"
	"recoverly/physio-app/internal/repository/mongo"
	"recoverly/physio-app/internal/service"
	"recoverly/physio-app/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("Starting Physio App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	log.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established.")

	// --- Ensure Indexes ---
	log.Info("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureRoutineIndexes(ctx, appDB.Collection("routines"))
		mongo.EnsureRoutineIndexes(ctx, appDB.Collection("generatedPlans"))
		mongo.EnsureDailyLogIndexes(ctx, appDB.Collection("dailyLog"))
		mongo.EnsurePatientLinkIndexes(ctx, appDB.Collection("patients"))
		log.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Info("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Info("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)
	generatedRepo := mongo.NewMongoGeneratedPlanRepository(appDB)
	dailyLogRepo := mongo.NewMongoDailyLogRepository(appDB)
	linkRepo := mongo.NewMongoPatientLinkRepository(appDB)

	// --- Initialize Services ---
	log.Info("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	routineService := service.NewRoutineService(routineRepo)
	generatedService := service.NewRoutineService(generatedRepo)
	trackingService := service.NewTrackingService(dailyLogRepo, routineRepo, generatedRepo, linkRepo)
	plannerService := service.NewPlannerService(
		generatedRepo,
		&http.Client{Timeout: cfg.AI.Timeout},
		cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Model,
	)
	patientService := service.NewPatientService(linkRepo, userRepo)
	mediaService := service.NewMediaService(fileStorage)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Info("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret,
		authService, routineService, generatedService,
		trackingService, plannerService, patientService, mediaService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Infof("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting.")
}
