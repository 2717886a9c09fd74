package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/quietwaters-app/quietwaters-backend/internal/catalog"
	redisclient "github.com/quietwaters-app/quietwaters-backend/internal/clients/redis"
	"github.com/quietwaters-app/quietwaters-backend/internal/db"
	"github.com/quietwaters-app/quietwaters-backend/internal/handlers"
	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/middleware"
	"github.com/quietwaters-app/quietwaters-backend/internal/observability"
	"github.com/quietwaters-app/quietwaters-backend/internal/repos"
	"github.com/quietwaters-app/quietwaters-backend/internal/server"
	"github.com/quietwaters-app/quietwaters-backend/internal/services"
	"github.com/quietwaters-app/quietwaters-backend/internal/timeutil"
	"github.com/quietwaters-app/quietwaters-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	ctx := context.Background()
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "quietwaters-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(shutdownCtx)
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	rescheduleHours := utils.GetEnvAsInt("RESCHEDULE_INTERVAL_HOURS", 24, log)
	port := utils.GetEnv("PORT", "8080", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis
	kv, err := redisclient.NewKVStore(log)
	if err != nil {
		log.Fatal("Redis init failed", "error", err)
	}
	defer kv.Close()

	// Curated verse catalog
	verseCatalog, err := catalog.Load()
	if err != nil {
		log.Fatal("Verse catalog load failed", "error", err)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	profileRepo := repos.NewUserProfileRepo(thePG, log)
	contentRepo := repos.NewContentRepo(thePG, log)
	streakRepo := repos.NewStreakRepo(thePG, log)
	notifRepo := repos.NewScheduledNotificationRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	clock := timeutil.SystemClock()
	rng := services.NewLockedRand()
	authService := services.NewAuthService(
		thePG, log, userRepo, userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	profileService := services.NewProfileService(thePG, log, profileRepo, userRepo)
	scoringService := services.NewScoringService(log, rng)
	feedService := services.NewFeedService(log, contentRepo, scoringService, clock)
	platform := services.NewDBNotificationPlatform(thePG, log, notifRepo)
	notifService := services.NewNotificationService(log, contentRepo, verseCatalog, scoringService, rng, clock, kv, platform)
	streakService := services.NewStreakService(log, streakRepo, clock)

	// Background reschedule
	worker := services.NewRescheduleWorker(log, profileRepo, profileService, notifService,
		time.Duration(rescheduleHours)*time.Hour)
	worker.Start(ctx)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(log, profileService, notifService)
	feedHandler := handlers.NewFeedHandler(feedService, profileService)
	notifHandler := handlers.NewNotificationHandler(notifService, profileService, notifRepo)
	streakHandler := handlers.NewStreakHandler(streakService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		ProfileHandler:      profileHandler,
		FeedHandler:         feedHandler,
		NotificationHandler: notifHandler,
		StreakHandler:       streakHandler,
	})

	log.Info("Starting server...", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
