// Package routes assembles the gin engine: global middleware, operational
// endpoints and the two wallet route groups.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/j50301m/wallet-server/internal/api/handlers"
	"github.com/j50301m/wallet-server/internal/api/middleware"
	"github.com/j50301m/wallet-server/internal/infrastructure/di"
	"github.com/j50301m/wallet-server/pkg/metrics"
	"github.com/j50301m/wallet-server/pkg/tracing"
)

// SetupRoutes configures all application routes.
func SetupRoutes(container *di.Container) *gin.Engine {
	if container.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.RequestID())
	router.Use(metrics.Middleware())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))

	coreHandlers := handlers.NewCoreHandlers(container.DB, container.Logger)
	gameHandlers := handlers.NewGameWalletHandlers(container.GameWalletService, container.Logger)
	playerHandlers := handlers.NewPlayerWalletHandlers(container.PlayerWalletService, container.Logger)

	router.GET("/health", coreHandlers.Health)
	router.GET("/ready", coreHandlers.Ready)
	router.GET("/metrics", metrics.Handler())

	game := router.Group("/game-wallet")
	{
		game.POST("/balance", gameHandlers.GetBalance)
		game.POST("/deposit", gameHandlers.Deposit)
		game.POST("/withdraw", gameHandlers.Withdraw)
		game.POST("/rollback", gameHandlers.Rollback)
		game.POST("/update", gameHandlers.Update)
	}

	player := router.Group("/player-wallet")
	{
		player.POST("/get", playerHandlers.Get)
		player.POST("/list", playerHandlers.GetList)
		player.POST("/deposit", playerHandlers.Deposit)
		player.POST("/withdraw", playerHandlers.Withdraw)
		player.POST("/rollback", playerHandlers.Rollback)
	}

	return router
}
