package trips

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-ingest/pkg/metrics"
)

// PostgresSink appends to a table that is created on first use. Each chunk
// commits on its own.
type PostgresSink struct {
	writer    TableWriter
	table     string
	chunkSize int
}

func NewPostgresSink(writer TableWriter, table string, chunkSize int) *PostgresSink {
	if chunkSize <= 0 {
		chunkSize = 100_000
	}
	return &PostgresSink{writer: writer, table: table, chunkSize: chunkSize}
}

func (s *PostgresSink) Name() string { return "postgres:" + s.table }

func (s *PostgresSink) Write(ctx context.Context, t *models.Table) (int64, error) {
	ctx = wrap.WithAction(ctx, types.ActionAppendChunk)

	if err := s.writer.Ensure(ctx, s.table, t.Schema()); err != nil {
		return 0, err
	}

	var total int64
	for _, chunk := range t.Chunks(s.chunkSize) {
		start := time.Now()
		n, err := s.writer.Append(ctx, s.table, chunk)
		metrics.RecordChunk(types.TripsMode.String(), s.table, n, err, time.Since(start))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// EncodeFunc writes a table to a local file in the load format.
type EncodeFunc func(path string, t *models.Table) (int64, error)

type WarehouseSinkConfig struct {
	Bucket     string
	Prefix     string
	Dataset    string
	Table      string
	StagingDir string
	RunID      string
}

// WarehouseSink stages the batch as compressed NDJSON in the bucket and appends
// it to the warehouse table with an explicit schema.
type WarehouseSink struct {
	cfg      WarehouseSinkConfig
	encode   EncodeFunc
	uploader Uploader
	loader   Loader
}

func NewWarehouseSink(cfg WarehouseSinkConfig, encode EncodeFunc, uploader Uploader, loader Loader) *WarehouseSink {
	return &WarehouseSink{cfg: cfg, encode: encode, uploader: uploader, loader: loader}
}

func (s *WarehouseSink) Name() string {
	return fmt.Sprintf("bigquery:%s.%s", s.cfg.Dataset, s.cfg.Table)
}

// ObjectKey is where the staged batch of this run lives.
func (s *WarehouseSink) ObjectKey() string {
	name := fmt.Sprintf("%s_%s.%s", s.cfg.Table, s.cfg.RunID, types.NDJSON.Ext())
	return path.Join(strings.Trim(s.cfg.Prefix, "/"), s.cfg.Table, name)
}

func (s *WarehouseSink) Write(ctx context.Context, t *models.Table) (int64, error) {
	key := s.ObjectKey()
	local := filepath.Join(s.cfg.StagingDir, path.Base(key))

	if err := os.MkdirAll(s.cfg.StagingDir, 0o755); err != nil {
		return 0, fmt.Errorf("create staging dir: %w", err)
	}
	n, err := s.encode(local, t)
	if err != nil {
		return 0, fmt.Errorf("encode batch: %w", err)
	}
	defer os.Remove(local)

	attempt := s.uploader.Upload(ctx, local, key)
	if !attempt.Verified() {
		return 0, fmt.Errorf("stage %s: %w", key, attempt.Err)
	}

	if err := s.loader.EnsureDataset(ctx, s.cfg.Dataset); err != nil {
		return 0, err
	}

	err = s.loader.LoadFromGCS(ctx, models.LoadRequest{
		URI:         fmt.Sprintf("gs://%s/%s", s.cfg.Bucket, key),
		Dataset:     s.cfg.Dataset,
		Table:       s.cfg.Table,
		Format:      types.NDJSON,
		Schema:      t.Schema(),
		Disposition: models.WriteAppend,
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
