package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymflow/gym-app/internal/api"
	"gymflow/gym-app/internal/config"
	"gymflow/gym-app/internal/notify"
	mongorepo "gymflow/gym-app/internal/repository/mongo"
	"gymflow/gym-app/internal/seed"
	"gymflow/gym-app/internal/service"
	"gymflow/gym-app/internal/storage"

	"github.com/coocood/freecache"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("starting gym app server")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}

	// --- Database Connection ---
	dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.WithError(err).Fatal("could not connect to MongoDB")
	}
	defer func() {
		if err := mongorepo.DisconnectDB(dbClient); err != nil {
			log.WithError(err).Error("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongorepo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongorepo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		mongorepo.EnsureSplitIndexes(ctx, appDB.Collection("weekly_splits"))
		mongorepo.EnsureScheduleIndexes(ctx, appDB.Collection("schedule_entries"))
		mongorepo.EnsureExerciseLogIndexes(ctx, appDB.Collection("exercise_logs"))
		mongorepo.EnsureDietIndexes(ctx, appDB.Collection("diet_settings"), appDB.Collection("diet_summaries"))
		mongorepo.EnsureUploadIndexes(ctx, appDB.Collection("video_uploads"))
		log.Info("index creation process completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongorepo.NewMongoUserRepository(appDB)
	workoutRepo := mongorepo.NewMongoWorkoutRepository(appDB)
	splitRepo := mongorepo.NewMongoSplitRepository(appDB)
	scheduleRepo := mongorepo.NewMongoScheduleRepository(appDB)
	logRepo := mongorepo.NewMongoExerciseLogRepository(appDB)
	dietRepo := mongorepo.NewMongoDietRepository(appDB)
	uploadRepo := mongorepo.NewMongoVideoUploadRepository(appDB)

	// --- Seed Catalog ---
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := seed.Run(ctx, workoutRepo, splitRepo); err != nil {
			log.WithError(err).Warn("catalog seeding failed")
		}
		cancel()
	}

	// --- Initialize Services ---
	streakCache := freecache.NewCache(cfg.Cache.SizeBytes)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogService := service.NewCatalogService(workoutRepo, splitRepo, uploadRepo, fileStorage)
	scheduleService := service.NewScheduleService(userRepo, scheduleRepo, catalogService)
	completionService := service.NewCompletionService(userRepo, scheduleRepo, logRepo)
	streakService := service.NewStreakService(scheduleRepo, streakCache)
	dietService := service.NewDietService(dietRepo)
	trainerService := service.NewTrainerService(userRepo, logRepo)
	friendService := service.NewFriendService(userRepo)
	accessService := service.NewAccessService(userRepo)

	// --- Reminder Job ---
	if cfg.Notify.Schedule != "" {
		trigger := notify.NewTrigger(scheduleRepo, nil, cfg.Notify.CutoffHour)
		if err := trigger.Start(cfg.Notify.Schedule); err != nil {
			log.WithError(err).Warn("failed to start reminder job")
		} else {
			defer trigger.Stop()
		}
	}

	// --- Initialize Gin Engine ---
	router := gin.Default()

	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		scheduleService,
		completionService,
		streakService,
		catalogService,
		dietService,
		trainerService,
		friendService,
		accessService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen and serve error")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server exiting")
}
