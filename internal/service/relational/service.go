// Package relational loads one month of trips into a Postgres table in chunks,
// followed by the zone lookup table.
package relational

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/normalize"
	"github.com/Temutjin2k/taxi-ingest/internal/service/report"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-ingest/pkg/metrics"
	"github.com/Temutjin2k/taxi-ingest/pkg/trm"
)

const DefaultChunkSize = 100_000

type Config struct {
	Dataset   types.TaxiType
	Period    models.Period
	Format    types.DataFormat
	URL       models.URLTemplate
	Table     string
	ChunkSize int

	// SingleTx runs every statement of the ingest in one transaction. By
	// default each chunk commits on its own.
	SingleTx bool

	ZonesURL   string
	ZonesTable string
}

type Service struct {
	cfg  Config
	src  Source
	sink Sink
	trm  trm.TxManager
	log  logger.Logger
}

func NewService(cfg Config, src Source, sink Sink, trm trm.TxManager, log logger.Logger) *Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &Service{
		cfg:  cfg,
		src:  src,
		sink: sink,
		trm:  trm,
		log:  log,
	}
}

// Ingest writes the configured month into the trips table and refreshes the
// zone lookup. A missing source file is a skip. A failed write stops the run.
func (s *Service) Ingest(ctx context.Context, agg *report.Aggregator) error {
	ctx = wrap.WithPeriod(wrap.WithDataset(ctx, string(s.cfg.Dataset)), s.cfg.Period.String())

	run := func(ctx context.Context) error {
		if err := s.ingestTrips(ctx, agg); err != nil {
			return err
		}
		if s.cfg.ZonesURL != "" && s.cfg.ZonesTable != "" {
			return s.ingestZones(ctx, agg)
		}
		return nil
	}

	if !s.cfg.SingleTx {
		return run(ctx)
	}
	return s.trm.Do(ctx, run)
}

func (s *Service) ingestTrips(ctx context.Context, agg *report.Aggregator) error {
	url := s.cfg.URL.Render(s.cfg.Dataset, s.cfg.Period)
	item := models.FileName(s.cfg.Dataset, s.cfg.Period, s.cfg.Format.Ext())

	var (
		rows int64
		err  error
	)
	switch s.cfg.Format {
	case types.Parquet:
		rows, err = s.fromParquet(ctx, url)
	default:
		rows, err = s.fromCSV(ctx, url)
	}

	var fetchErr *fetchError
	switch {
	case errors.As(err, &fetchErr):
		s.log.Warn(ctx, "skipping source file", "url", url, "reason", fetchErr.Error())
		metrics.RecordFetch(types.PostgresMode.String(), string(s.cfg.Dataset), true, 0)
		agg.Add(models.Skipped(item, types.ActionFetch, fetchErr.err))
		return nil
	case err != nil:
		o := models.Failed(item, types.ActionAppendChunk, err)
		o.Rows = rows
		agg.Add(o)
		return err
	}

	metrics.RecordFetch(types.PostgresMode.String(), string(s.cfg.Dataset), false, 0)
	o := models.Done(item, types.ActionAppendChunk)
	o.Rows = rows
	agg.Add(o)

	if total, err := s.sink.RowCount(ctx, s.cfg.Table); err == nil {
		s.log.Info(ctx, "finished ingesting trips", "table", s.cfg.Table, "rows_written", rows, "rows_in_table", total)
	}
	return nil
}

// fromCSV streams the file chunk by chunk. The table is recreated from the
// first chunk's columns before that chunk is appended.
func (s *Service) fromCSV(ctx context.Context, url string) (int64, error) {
	stream, err := s.src.OpenCSV(ctx, url)
	if err != nil {
		return 0, &fetchError{err: err}
	}
	defer stream.Close()

	coercer := normalize.NewCoercer(models.SourceSchema(s.cfg.Dataset))

	var (
		total   int64
		chunkNo int
	)
	for {
		batch, readErr := stream.Next(s.cfg.ChunkSize)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return total, fmt.Errorf("read chunk %d: %w", chunkNo+1, readErr)
		}

		if len(batch) > 0 || chunkNo == 0 {
			chunk := coercer.Rows(stream.Header(), batch)
			if chunkNo == 0 {
				if err := s.sink.Replace(ctx, s.cfg.Table, chunk.Schema()); err != nil {
					return total, err
				}
			}
			chunkNo++

			n, err := s.appendChunk(ctx, chunkNo, chunk)
			total += n
			if err != nil {
				return total, err
			}
		}

		if errors.Is(readErr, io.EOF) {
			return total, nil
		}
	}
}

func (s *Service) fromParquet(ctx context.Context, url string) (int64, error) {
	raw, err := s.src.ReadParquet(ctx, url)
	if err != nil {
		return 0, &fetchError{err: err}
	}

	table := normalize.NewCoercer(models.SourceSchema(s.cfg.Dataset)).Table(raw)
	if err := s.sink.Replace(ctx, s.cfg.Table, table.Schema()); err != nil {
		return 0, err
	}

	var total int64
	for i, chunk := range table.Chunks(s.cfg.ChunkSize) {
		n, err := s.appendChunk(ctx, i+1, chunk)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *Service) appendChunk(ctx context.Context, chunkNo int, chunk *models.Table) (int64, error) {
	start := time.Now()
	n, err := s.sink.Append(ctx, s.cfg.Table, chunk)
	metrics.RecordChunk(types.PostgresMode.String(), s.cfg.Table, n, err, time.Since(start))
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("chunk %d: %w", chunkNo, err))
	}

	s.log.Info(ctx, "inserted chunk", "chunk", chunkNo, "rows", n, "took", time.Since(start).Round(time.Millisecond).String())
	return n, nil
}

func (s *Service) ingestZones(ctx context.Context, agg *report.Aggregator) error {
	ctx = wrap.WithAction(ctx, types.ActionReplaceZones)

	zones, err := s.src.FetchZones(ctx, s.cfg.ZonesURL)
	if err != nil {
		s.log.Warn(ctx, "skipping zone lookup", "url", s.cfg.ZonesURL, "reason", err.Error())
		agg.Add(models.Skipped(s.cfg.ZonesTable, types.ActionFetch, err))
		return nil
	}

	if err := s.sink.ReplaceZones(ctx, s.cfg.ZonesTable, zones); err != nil {
		agg.Add(models.Failed(s.cfg.ZonesTable, types.ActionReplaceZones, err))
		return err
	}

	o := models.Done(s.cfg.ZonesTable, types.ActionReplaceZones)
	o.Rows = int64(len(zones))
	agg.Add(o)
	s.log.Info(ctx, "replaced zone lookup", "table", s.cfg.ZonesTable, "rows", len(zones))
	return nil
}

// fetchError marks a source that could not be read at all.
type fetchError struct{ err error }

func (e *fetchError) Error() string { return e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }
