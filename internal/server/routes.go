package server

import (
	"github.com/OFFIS-RIT/dramaturgy/internal/server/middleware"
	"github.com/OFFIS-RIT/dramaturgy/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	e.GET("/", routes.IndexHandler)

	apiRoutes := e.Group("/api")

	// Play routes
	apiRoutes.GET("/plays", routes.GetPlaysHandler)
	apiRoutes.POST("/plays", routes.CreatePlayHandler, middleware.AuthMiddleware, middleware.RequirePermission("play.create"))
	apiRoutes.GET("/plays/:id", routes.GetPlayHandler)
	apiRoutes.DELETE("/plays/:id", routes.DeletePlayHandler, middleware.AuthMiddleware, middleware.RequirePermission("play.delete"))
	apiRoutes.GET("/plays/:id/network", routes.GetPlayNetworkHandler)
	apiRoutes.GET("/plays/:id/scenes", routes.GetPlayScenesHandler)
	apiRoutes.GET("/plays/:id/characters/:name", routes.GetCharacterHandler)

	// Live view session routes
	apiRoutes.POST("/sessions", routes.CreateSessionHandler)
	apiRoutes.GET("/sessions/:id", routes.GetSessionHandler)
	apiRoutes.DELETE("/sessions/:id", routes.DeleteSessionHandler)
	apiRoutes.POST("/sessions/:id/events", routes.SessionEventHandler)
	apiRoutes.POST("/sessions/:id/play", routes.LoadSessionPlayHandler)
}
