package relational

import (
	"context"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
)

type Source interface {
	OpenCSV(ctx context.Context, url string) (models.RowStream, error)
	ReadParquet(ctx context.Context, url string) (*models.Table, error)
	FetchZones(ctx context.Context, url string) ([]models.Zone, error)
}

type Sink interface {
	Replace(ctx context.Context, table string, schema []models.Column) error
	Append(ctx context.Context, table string, chunk *models.Table) (int64, error)
	ReplaceZones(ctx context.Context, table string, zones []models.Zone) error
	RowCount(ctx context.Context, table string) (int64, error)
}
