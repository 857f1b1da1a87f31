package server

import (
	"github.com/topograph/topograph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Document routes
	apiRoutes.POST("/documents", routes.UploadDocumentHandler)

	// Topic routes
	apiRoutes.GET("/topics", routes.GetTopicsHandler)
	apiRoutes.GET("/topics/:id/subtopics", routes.GetSubtopicsHandler)

	// Query routes
	apiRoutes.GET("/query", routes.QueryHandler)
}
