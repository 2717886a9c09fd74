package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/quietwaters-app/quietwaters-backend/internal/handlers"
	"github.com/quietwaters-app/quietwaters-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	ProfileHandler      *handlers.ProfileHandler
	FeedHandler         *handlers.FeedHandler
	NotificationHandler *handlers.NotificationHandler
	StreakHandler       *handlers.StreakHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("quietwaters-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.Healthcheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	api.POST("/logout", cfg.AuthHandler.Logout)

	api.GET("/profile", cfg.ProfileHandler.Get)
	api.PUT("/profile", cfg.ProfileHandler.Update)

	api.POST("/feed/batch", cfg.FeedHandler.GenerateBatch)

	api.POST("/notifications/reschedule", cfg.NotificationHandler.Reschedule)
	api.GET("/notifications/scheduled", cfg.NotificationHandler.ListScheduled)

	api.POST("/streak/check-in", cfg.StreakHandler.CheckIn)
	api.GET("/streak", cfg.StreakHandler.Get)

	return router
}
