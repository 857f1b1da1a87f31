package routes

import (
	"encoding/json"
	"net/http"

	"github.com/topograph/topograph/internal/queue"
	"github.com/topograph/topograph/internal/server/middleware"
	"github.com/topograph/topograph/internal/storage"
	"github.com/topograph/topograph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadDocumentHandler accepts a document upload from multipart/form-data,
// stores it and publishes an ingest job for the worker.
func UploadDocumentHandler(c echo.Context) error {
	type uploadDocumentBody struct {
		Name string `form:"name"`
	}

	type uploadDocumentResponse struct {
		Message    string `json:"message"`
		DocumentID string `json:"document_id,omitempty"`
	}

	data := new(uploadDocumentBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadDocumentResponse{
			Message: "Invalid request body",
		})
	}

	upload, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadDocumentResponse{
			Message: "Missing file",
		})
	}

	docID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate document id", "err", err)
		return c.JSON(http.StatusInternalServerError, uploadDocumentResponse{
			Message: "Internal server error",
		})
	}

	src, err := upload.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadDocumentResponse{
			Message: "Invalid file",
		})
	}
	defer src.Close()

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	fileKey, err := storage.PutFile(ctx, app.S3, "documents", upload.Filename, docID, src)
	if err != nil {
		logger.Error("Failed to upload document", "document", docID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadDocumentResponse{
			Message: "Internal server error",
		})
	}

	msg := queue.IngestJobMsg{
		Message:    "Ingest uploaded document",
		DocumentID: docID,
		Name:       data.Name,
		FileKey:    fileKey,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to marshal ingest message", "document", docID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadDocumentResponse{
			Message: "Internal server error",
		})
	}

	if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msgBytes); err != nil {
		logger.Error("Failed to publish ingest job", "document", docID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadDocumentResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, uploadDocumentResponse{
		Message:    "Document queued for ingestion",
		DocumentID: docID,
	})
}
