package jobs

import (
	"context"

	"github.com/Temutjin2k/taxi-ingest/config"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/lake"
	"github.com/Temutjin2k/taxi-ingest/internal/service/warehouse"
	"github.com/Temutjin2k/taxi-ingest/internal/service/window"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
)

// WarehouseJob stages a year of files and loads them into BigQuery.
type WarehouseJob struct {
	*runner
	svc *warehouse.Service
}

func NewWarehouse(ctx context.Context, cfg config.Config, log logger.Logger) (*WarehouseJob, error) {
	wcfg := cfg.Warehouse
	periods, err := window.YearMonths(wcfg.Year, wcfg.MonthFrom, wcfg.MonthTo)
	if err != nil {
		return nil, err
	}

	r, err := newRunner(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	creds, err := r.credentials(ctx)
	if err != nil {
		r.close(ctx)
		return nil, err
	}
	store, retrier, err := r.objectStore(ctx, creds)
	if err != nil {
		r.close(ctx)
		return nil, err
	}
	wh, err := r.warehouse(ctx, creds)
	if err != nil {
		r.close(ctx)
		return nil, err
	}

	dataset := types.TaxiType(wcfg.TaxiType)
	format := types.DataFormat(wcfg.Format)

	stager := lake.NewService(lake.Config{
		Mode:       types.WarehouseMode,
		Bucket:     cfg.GCP.Bucket,
		Dataset:    dataset,
		Periods:    periods,
		Format:     format,
		URL:        r.sourceURL(format),
		Prefix:     wcfg.Prefix,
		Workers:    wcfg.Workers,
		StagingDir: cfg.Source.StagingDir,
	}, r.fetcher(), store, retrier, log)

	svc := warehouse.NewService(warehouse.Config{
		Bucket:           cfg.GCP.Bucket,
		Prefix:           wcfg.Prefix,
		Dataset:          dataset,
		Year:             wcfg.Year,
		Format:           format,
		WarehouseDataset: wcfg.Dataset,
		Table:            wcfg.Table,
		Partition:        wcfg.Partition,
		PartitionColumn:  wcfg.PartitionColumn,
		ClusterColumns:   wcfg.ClusterColumns,
	}, stager, wh, log)

	return &WarehouseJob{runner: r, svc: svc}, nil
}

func (j *WarehouseJob) Start(ctx context.Context) error {
	return j.run(ctx, j.svc.Load)
}
