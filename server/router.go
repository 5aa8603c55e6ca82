package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dev-pulse/domain/repository"
	httpHandler "dev-pulse/interfaces/http"
	"dev-pulse/interfaces/middleware"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	syncHandler httpHandler.ISyncHandler,
	statsHandler httpHandler.IStatsHandler,
	leaderboardHandler httpHandler.ILeaderboardHandler,
	healthHandler httpHandler.IHealthHandler,
	userRepository repository.IUser,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)
	router.GET("/healthz", healthHandler.Health)

	// Leaderboards are public reads.
	router.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	connections := api.Group("/connections")
	{
		connections.POST("", syncHandler.Connect)
		connections.DELETE("/:platform", syncHandler.Disconnect)
		connections.GET("/status", syncHandler.GetSyncStatus)
	}

	sync := api.Group("/sync")
	{
		sync.POST("", syncHandler.TriggerSync)
		sync.POST("/all", syncHandler.TriggerSyncAll)
		sync.GET("/history", syncHandler.GetSyncHistory)
	}

	stats := api.Group("/stats")
	{
		stats.GET("", statsHandler.GetUserStats)
		stats.GET("/heatmap", statsHandler.GetActivityHeatmap)
	}

	return router
}
