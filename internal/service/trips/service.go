// Package trips builds the unified trips table from every (taxi type, month)
// of a date window and appends it to a sink.
package trips

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/normalize"
	"github.com/Temutjin2k/taxi-ingest/internal/service/report"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-ingest/pkg/metrics"
	"github.com/Temutjin2k/taxi-ingest/pkg/workerpool"
)

type Config struct {
	TaxiTypes []types.TaxiType
	Periods   []models.Period
	URL       models.URLTemplate
	Workers   int
}

type Service struct {
	cfg  Config
	src  Source
	sink Sink
	now  func() time.Time
	log  logger.Logger
}

func NewService(cfg Config, src Source, sink Sink, log logger.Logger) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = workerpool.DefaultWorkers
	}
	return &Service{
		cfg:  cfg,
		src:  src,
		sink: sink,
		now:  time.Now,
		log:  log,
	}
}

type fetch struct {
	variant types.TaxiType
	period  models.Period
}

func (f fetch) item() string {
	return models.FileName(f.variant, f.period, types.Parquet.Ext())
}

// Run fetches and normalizes every file of the window. Frames keep taxi type
// then month order. When nothing was fetched the sink is not touched.
func (s *Service) Run(ctx context.Context, agg *report.Aggregator) error {
	extractedAt := s.now().UTC()

	var jobs []fetch
	for _, v := range s.cfg.TaxiTypes {
		for _, p := range s.cfg.Periods {
			jobs = append(jobs, fetch{variant: v, period: p})
		}
	}

	frames := workerpool.Map(ctx, s.cfg.Workers, jobs, func(ctx context.Context, f fetch) *models.Table {
		ctx = wrap.WithPeriod(wrap.WithDataset(ctx, string(f.variant)), f.period.String())
		url := s.cfg.URL.Render(f.variant, f.period)

		raw, err := s.src.ReadParquet(ctx, url)
		if err != nil {
			s.log.Warn(ctx, "skipping month", "url", url, "reason", err.Error())
			metrics.RecordFetch(types.TripsMode.String(), string(f.variant), true, 0)
			agg.Add(models.Skipped(f.item(), types.ActionFetch, err))
			return nil
		}
		metrics.RecordFetch(types.TripsMode.String(), string(f.variant), false, 0)

		t := normalize.Normalize(raw, f.variant, extractedAt)
		s.log.Info(wrap.WithAction(ctx, types.ActionNormalize), "normalized", "rows", t.Len(), "columns", len(t.Columns))
		return t
	})

	var present []*models.Table
	for _, t := range frames {
		if t != nil {
			present = append(present, t)
		}
	}
	if len(present) == 0 {
		s.log.Warn(ctx, "no data fetched for the window, nothing written", "taxi_types", s.cfg.TaxiTypes, "months", len(s.cfg.Periods))
		return nil
	}

	batch := models.Concat(present...)
	n, err := s.sink.Write(ctx, batch)
	if err != nil {
		o := models.Failed(s.sink.Name(), types.ActionAppendChunk, err)
		o.Rows = n
		agg.Add(o)
		return fmt.Errorf("write to %s: %w", s.sink.Name(), err)
	}

	o := models.Done(s.sink.Name(), types.ActionAppendChunk)
	o.Rows = n
	agg.Add(o)
	s.log.Info(ctx, "appended trips", "sink", s.sink.Name(), "rows", n, "files", len(present))
	return nil
}
