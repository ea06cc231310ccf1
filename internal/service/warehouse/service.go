// Package warehouse stages a year of trip files in the bucket and loads them
// into one warehouse table.
package warehouse

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/report"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

type Config struct {
	Bucket  string
	Prefix  string
	Dataset types.TaxiType
	Year    int
	Format  types.DataFormat

	WarehouseDataset string
	Table            string

	Partition       bool
	PartitionColumn string
	ClusterColumns  []string
}

type Service struct {
	cfg    Config
	stager Stager
	wh     Warehouse
	log    logger.Logger
}

func NewService(cfg Config, stager Stager, wh Warehouse, log logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		stager: stager,
		wh:     wh,
		log:    log,
	}
}

// Load stages the files, replaces the table with their contents and optionally
// builds the partitioned and clustered copy.
func (s *Service) Load(ctx context.Context, agg *report.Aggregator) error {
	ctx = wrap.WithDataset(ctx, string(s.cfg.Dataset))

	keys, err := s.stager.Transfer(ctx, agg)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return wrap.Error(wrap.WithAction(ctx, types.ActionWarehouseLoad), fmt.Errorf("%w: no object was uploaded", types.ErrNothingToLoad))
	}

	if err := s.wh.EnsureDataset(ctx, s.cfg.WarehouseDataset); err != nil {
		return err
	}

	req := models.LoadRequest{
		URI:         models.LoadURI(s.cfg.Bucket, s.cfg.Prefix, s.cfg.Dataset, s.cfg.Year, s.cfg.Format.Ext()),
		Dataset:     s.cfg.WarehouseDataset,
		Table:       s.cfg.Table,
		Format:      s.cfg.Format,
		Autodetect:  true,
		Disposition: models.WriteTruncate,
	}
	if s.cfg.Format == types.CSV {
		req.SkipRows = 1
	}

	if err := s.wh.LoadFromGCS(ctx, req); err != nil {
		agg.Add(models.Failed(s.cfg.Table, types.ActionWarehouseLoad, err))
		return err
	}

	load := models.Done(s.cfg.Table, types.ActionWarehouseLoad)
	if stats, err := s.wh.TableStats(ctx, s.cfg.WarehouseDataset, s.cfg.Table); err != nil {
		s.log.Warn(ctx, "could not read table stats", "table", s.cfg.Table, "error", err.Error())
	} else {
		load.Rows = int64(stats.NumRows)
		s.log.Info(ctx, "loaded table", "table", stats.Table, "rows", stats.NumRows, "size_gb", fmt.Sprintf("%.3f", stats.SizeGB()))
	}
	agg.Add(load)

	if !s.cfg.Partition {
		return nil
	}

	id, err := s.wh.CreatePartitioned(ctx, models.PartitionRequest{
		Dataset:         s.cfg.WarehouseDataset,
		Table:           s.cfg.Table,
		PartitionColumn: s.cfg.PartitionColumn,
		ClusterColumns:  s.cfg.ClusterColumns,
	})
	if err != nil {
		agg.Add(models.Failed(s.cfg.Table, types.ActionPartitionTable, err))
		return err
	}

	agg.Add(models.Done(id, types.ActionPartitionTable))
	s.log.Info(ctx, "created partitioned table", "table", id, "partition_by", s.cfg.PartitionColumn, "cluster_by", s.cfg.ClusterColumns)
	return nil
}
