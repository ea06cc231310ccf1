package warehouse

import (
	"context"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/service/report"
)

// Stager puts the monthly files into the bucket and returns the verified keys.
type Stager interface {
	Transfer(ctx context.Context, agg *report.Aggregator) ([]string, error)
}

type Warehouse interface {
	EnsureDataset(ctx context.Context, dataset string) error
	LoadFromGCS(ctx context.Context, req models.LoadRequest) error
	TableStats(ctx context.Context, dataset, table string) (models.TableStats, error)
	CreatePartitioned(ctx context.Context, req models.PartitionRequest) (string, error)
}
