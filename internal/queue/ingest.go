package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/topograph/topograph/internal/storage"
	"github.com/topograph/topograph/pkg/ingest"
	"github.com/topograph/topograph/pkg/loader"
	"github.com/topograph/topograph/pkg/loader/pdf"
	"github.com/topograph/topograph/pkg/loader/text"
	"github.com/topograph/topograph/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// IngestJobMsg is the payload published to the ingest queue for one
// uploaded document.
type IngestJobMsg struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	FileKey    string `json:"file_key"`
}

// ProcessIngest fetches the uploaded file from S3 and runs the ingestion
// pipeline on it. Errors bubble up so the consumer can route the message
// through the retry ladder.
func ProcessIngest(
	ctx context.Context,
	s3Client *s3.Client,
	pipeline *ingest.Pipeline,
	msgBody string,
) error {
	var data IngestJobMsg
	if err := json.Unmarshal([]byte(msgBody), &data); err != nil {
		return fmt.Errorf("unmarshalling ingest message: %w", err)
	}
	if data.DocumentID == "" || data.FileKey == "" {
		return fmt.Errorf("ingest message misses document_id or file_key")
	}

	logger.Info("[Ingest] Processing document", "document", data.DocumentID, "file", data.FileKey)

	fileBytes, err := storage.GetFile(ctx, s3Client, data.FileKey)
	if err != nil {
		return fmt.Errorf("fetching %s from storage: %w", data.FileKey, err)
	}

	source, err := openSource(data.FileKey, *fileBytes)
	if err != nil {
		return fmt.Errorf("opening document %s: %w", data.DocumentID, err)
	}
	defer source.Close()

	topic, err := pipeline.Ingest(ctx, ingest.Document{
		ID:     data.DocumentID,
		Name:   data.Name,
		Source: source,
	})
	if err != nil {
		return err
	}

	logger.Info("[Ingest] Document done", "document", data.DocumentID, "topic", topic.Name)
	return nil
}

func openSource(fileKey string, data []byte) (loader.DocumentSource, error) {
	if strings.HasSuffix(strings.ToLower(fileKey), ".pdf") {
		return pdf.NewSource(data)
	}
	return text.NewSource(string(data)), nil
}
