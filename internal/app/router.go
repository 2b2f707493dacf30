package app

import (
	"time"
	"treasure_hunt_backend/docs"
	"treasure_hunt_backend/internal/config"
	"treasure_hunt_backend/internal/middleware"
	"treasure_hunt_backend/internal/util"
	"treasure_hunt_backend/pkg/monitoring"
	"treasure_hunt_backend/pkg/security"
	"treasure_hunt_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logging())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
		api.GET("/quests", c.tracker.ListQuests)

		board := api.Group("/board")
		{
			board.GET("", c.tracker.GetBoard)
			board.POST("/refresh", c.tracker.RefreshBoard)
			board.PUT("/quest", c.tracker.SelectQuest)
		}

		participants := api.Group("/participants")
		{
			participants.GET("", c.tracker.ListParticipants)
			participants.POST("", c.tracker.CreateParticipant)
			participants.GET("/:id/progress", c.tracker.GetProgress)
			participants.POST("/:id/quests/:questId/tasks/:taskId/submission", c.tracker.SubmitTask)
		}
	}
}
