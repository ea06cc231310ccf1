package jobs

import (
	"context"
	"path/filepath"

	"github.com/Temutjin2k/taxi-ingest/config"
	bq "github.com/Temutjin2k/taxi-ingest/internal/adapter/bigquery"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/trips"
	"github.com/Temutjin2k/taxi-ingest/internal/service/window"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
)

// TripsJob appends the normalized trips of the Bruin window to the sink.
type TripsJob struct {
	*runner
	svc *trips.Service
}

func NewTrips(ctx context.Context, cfg config.Config, log logger.Logger) (*TripsJob, error) {
	periods, err := window.Parse(cfg.Trips.StartDate, cfg.Trips.EndDate)
	if err != nil {
		return nil, err
	}
	taxiTypes, err := cfg.Trips.TaxiTypes()
	if err != nil {
		return nil, err
	}

	r, err := newRunner(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	sink, err := r.tripsSink(ctx)
	if err != nil {
		r.close(ctx)
		return nil, err
	}

	log.Info(ctx, "trips window", "start", cfg.Trips.StartDate, "end", cfg.Trips.EndDate, "months", len(periods), "taxi_types", taxiTypes, "sink", sink.Name())

	svc := trips.NewService(trips.Config{
		TaxiTypes: taxiTypes,
		Periods:   periods,
		URL:       r.sourceURL(types.Parquet),
		Workers:   cfg.Trips.Workers,
	}, r.fetcher(), sink, log)

	return &TripsJob{runner: r, svc: svc}, nil
}

func (r *runner) tripsSink(ctx context.Context) (trips.Sink, error) {
	tcfg := r.cfg.Trips

	if types.SinkKind(tcfg.Sink) == types.SinkPostgres {
		writer, _, err := r.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return trips.NewPostgresSink(writer, tcfg.Table, tcfg.ChunkSize), nil
	}

	creds, err := r.credentials(ctx)
	if err != nil {
		return nil, err
	}
	store, retrier, err := r.objectStore(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx, r.cfg.GCP.Bucket); err != nil {
		return nil, err
	}
	wh, err := r.warehouse(ctx, creds)
	if err != nil {
		return nil, err
	}

	return trips.NewWarehouseSink(trips.WarehouseSinkConfig{
		Bucket:     r.cfg.GCP.Bucket,
		Prefix:     tcfg.Prefix,
		Dataset:    tcfg.Dataset,
		Table:      tcfg.BQTable,
		StagingDir: filepath.Join(r.cfg.Source.StagingDir, "trips"),
		RunID:      r.cfg.RunID,
	}, bq.WriteNDJSON, retrier, wh), nil
}

func (j *TripsJob) Start(ctx context.Context) error {
	return j.run(ctx, j.svc.Run)
}
