package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/topograph/topograph/pkg/common"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// S3ImageStore persists extracted document images under a per-document
// prefix and hands back metadata with a presigned download URL.
type S3ImageStore struct {
	client *s3.Client
}

// NewS3ImageStore creates an image store over an S3 client.
func NewS3ImageStore(client *s3.Client) *S3ImageStore {
	return &S3ImageStore{client: client}
}

// Upload stores one image and returns its metadata record. The URL is a
// presigned link; it expires and is regenerated on read paths as needed.
func (s *S3ImageStore) Upload(
	ctx context.Context,
	docID string,
	name string,
	pageNumber int,
	data []byte,
) (common.ImageMeta, error) {
	key, err := gonanoid.New()
	if err != nil {
		return common.ImageMeta{}, err
	}

	path, err := PutFile(
		ctx,
		s.client,
		fmt.Sprintf("images/%s", docID),
		name,
		key,
		bytes.NewReader(data),
	)
	if err != nil {
		return common.ImageMeta{}, fmt.Errorf("uploading image %s: %w", name, err)
	}

	url, err := GenerateDownloadLink(ctx, s.client, path)
	if err != nil {
		url = ""
	}

	return common.ImageMeta{
		ImagePath:  path,
		ImageName:  name,
		PageNumber: pageNumber,
		URL:        url,
	}, nil
}
