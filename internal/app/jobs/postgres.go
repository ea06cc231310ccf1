package jobs

import (
	"context"

	"github.com/Temutjin2k/taxi-ingest/config"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/relational"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
)

// PostgresJob loads one month into Postgres and refreshes the zone lookup.
type PostgresJob struct {
	*runner
	svc *relational.Service
}

func NewPostgres(ctx context.Context, cfg config.Config, log logger.Logger) (*PostgresJob, error) {
	r, err := newRunner(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	writer, txManager, err := r.postgres(ctx)
	if err != nil {
		r.close(ctx)
		return nil, err
	}

	format := types.DataFormat(cfg.Ingest.Format)
	svc := relational.NewService(relational.Config{
		Dataset:    types.TaxiType(cfg.Ingest.TaxiType),
		Period:     cfg.Ingest.Period(),
		Format:     format,
		URL:        r.sourceURL(format),
		Table:      cfg.Ingest.Table,
		ChunkSize:  cfg.Ingest.ChunkSize,
		SingleTx:   cfg.Ingest.SingleTx,
		ZonesURL:   cfg.Source.ZonesURL,
		ZonesTable: cfg.Ingest.ZonesTable,
	}, r.fetcher(), writer, txManager, log)

	return &PostgresJob{runner: r, svc: svc}, nil
}

func (j *PostgresJob) Start(ctx context.Context) error {
	return j.run(ctx, j.svc.Ingest)
}
