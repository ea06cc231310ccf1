package lake

import (
	"context"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
)

type Fetcher interface {
	Download(ctx context.Context, url, dst string) (int64, error)
}

type BucketManager interface {
	EnsureBucket(ctx context.Context, name string) error
}

type Uploader interface {
	Upload(ctx context.Context, localPath, key string) models.UploadAttempt
}
