package trips

import (
	"context"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
)

type Source interface {
	ReadParquet(ctx context.Context, url string) (*models.Table, error)
}

// Sink appends a normalized batch to the destination and returns the rows written.
type Sink interface {
	Write(ctx context.Context, t *models.Table) (int64, error)
	Name() string
}

type TableWriter interface {
	Ensure(ctx context.Context, table string, schema []models.Column) error
	Append(ctx context.Context, table string, chunk *models.Table) (int64, error)
}

type Uploader interface {
	Upload(ctx context.Context, localPath, key string) models.UploadAttempt
}

type Loader interface {
	EnsureDataset(ctx context.Context, dataset string) error
	LoadFromGCS(ctx context.Context, req models.LoadRequest) error
}
