package routes

import (
	"net/http"

	"github.com/topograph/topograph/internal/server/middleware"
	"github.com/topograph/topograph/pkg/common"
	"github.com/topograph/topograph/pkg/logger"

	"github.com/labstack/echo/v4"
)

func GetTopicsHandler(c echo.Context) error {
	type getTopicsResponse struct {
		Message string         `json:"message,omitempty"`
		Topics  []common.Topic `json:"topics"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	topics, err := app.Storage.ListTopics(ctx)
	if err != nil {
		logger.Error("Failed to list topics", "err", err)
		return c.JSON(http.StatusInternalServerError, getTopicsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getTopicsResponse{Topics: topics})
}

func GetSubtopicsHandler(c echo.Context) error {
	type getSubtopicsResponse struct {
		Message   string            `json:"message,omitempty"`
		Topic     *common.Topic     `json:"topic,omitempty"`
		Subtopics []common.Subtopic `json:"subtopics,omitempty"`
	}

	id := c.Param("id")
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	topic, err := app.Storage.GetTopic(ctx, id)
	if err != nil {
		logger.Error("Failed to read topic", "topic", id, "err", err)
		return c.JSON(http.StatusInternalServerError, getSubtopicsResponse{
			Message: "Internal server error",
		})
	}
	if topic == nil {
		return c.JSON(http.StatusNotFound, getSubtopicsResponse{
			Message: "Topic not found",
		})
	}

	subtopics, err := app.Storage.GetSubtopics(ctx, id)
	if err != nil {
		logger.Error("Failed to read subtopics", "topic", id, "err", err)
		return c.JSON(http.StatusInternalServerError, getSubtopicsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getSubtopicsResponse{
		Topic:     topic,
		Subtopics: subtopics,
	})
}
