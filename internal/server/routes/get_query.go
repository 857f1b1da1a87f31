package routes

import (
	"net/http"

	"github.com/topograph/topograph/internal/server/middleware"
	"github.com/topograph/topograph/internal/util"
	"github.com/topograph/topograph/pkg/query"

	"github.com/labstack/echo/v4"
)

// QueryHandler answers a natural-language question about the knowledge
// graph and streams the answer text incrementally.
func QueryHandler(c echo.Context) error {
	question := c.QueryParam("q")
	if question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Missing query parameter q",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	engine := query.NewEngine(query.NewEngineParams{
		Client:  app.AiClient,
		Storage: app.Storage,
		Options: query.Options{
			Model:    util.GetEnv("AI_CHAT_MODEL"),
			Thinking: util.GetEnvString("AI_CHAT_THINKING", ""),
		},
	})

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)

	for event := range engine.Query(ctx, question) {
		if event.Type != "content" || event.Content == "" {
			continue
		}
		if _, err := c.Response().Write([]byte(event.Content)); err != nil {
			return nil
		}
		c.Response().Flush()
	}

	return nil
}
