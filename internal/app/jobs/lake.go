package jobs

import (
	"context"

	"github.com/Temutjin2k/taxi-ingest/config"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/lake"
	"github.com/Temutjin2k/taxi-ingest/internal/service/report"
	"github.com/Temutjin2k/taxi-ingest/internal/service/window"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
)

// LakeJob copies monthly files into the bucket.
type LakeJob struct {
	*runner
	svc *lake.Service
}

func NewLake(ctx context.Context, cfg config.Config, log logger.Logger) (*LakeJob, error) {
	periods, err := window.YearMonths(cfg.Lake.Year, cfg.Lake.MonthFrom, cfg.Lake.MonthTo)
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

	format := types.DataFormat(cfg.Lake.Format)
	svc := lake.NewService(lake.Config{
		Mode:       types.LakeMode,
		Bucket:     cfg.GCP.Bucket,
		Dataset:    types.TaxiType(cfg.Lake.TaxiType),
		Periods:    periods,
		Format:     format,
		URL:        r.sourceURL(format),
		Prefix:     cfg.Lake.Prefix,
		Workers:    cfg.Lake.Workers,
		StagingDir: cfg.Source.StagingDir,
		KeepLocal:  cfg.Lake.KeepLocal,
	}, r.fetcher(), store, retrier, log)

	return &LakeJob{runner: r, svc: svc}, nil
}

func (j *LakeJob) Start(ctx context.Context) error {
	return j.run(ctx, func(ctx context.Context, agg *report.Aggregator) error {
		_, err := j.svc.Transfer(ctx, agg)
		return err
	})
}
