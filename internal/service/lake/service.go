// Package lake copies monthly trip files from the public source into an
// object storage bucket.
package lake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/report"
	"github.com/Temutjin2k/taxi-ingest/internal/service/upload"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-ingest/pkg/metrics"
	"github.com/Temutjin2k/taxi-ingest/pkg/workerpool"
)

type Config struct {
	Mode       types.JobMode
	Bucket     string
	Dataset    types.TaxiType
	Periods    []models.Period
	Format     types.DataFormat
	URL        models.URLTemplate
	Prefix     string
	Workers    int
	StagingDir string
	// KeepLocal leaves downloaded files in StagingDir after upload.
	KeepLocal bool
}

type Service struct {
	cfg      Config
	fetcher  Fetcher
	bucket   BucketManager
	uploader Uploader
	log      logger.Logger
}

func NewService(cfg Config, fetcher Fetcher, bucket BucketManager, uploader Uploader, log logger.Logger) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = workerpool.DefaultWorkers
	}
	if cfg.Mode == "" {
		cfg.Mode = types.LakeMode
	}
	return &Service{
		cfg:      cfg,
		fetcher:  fetcher,
		bucket:   bucket,
		uploader: uploader,
		log:      log,
	}
}

type staged struct {
	period models.Period
	path   string
	key    string
	bytes  int64
	err    error
}

// Transfer ensures the bucket, downloads every month and then uploads what was
// downloaded. All downloads finish before the first upload starts. It returns
// the keys of the verified objects. Only bucket problems are returned as errors.
func (s *Service) Transfer(ctx context.Context, agg *report.Aggregator) ([]string, error) {
	ctx = wrap.WithDataset(ctx, string(s.cfg.Dataset))

	if err := s.bucket.EnsureBucket(ctx, s.cfg.Bucket); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.cfg.StagingDir, 0o755); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("create staging dir %s: %w", s.cfg.StagingDir, err))
	}

	downloads := workerpool.Map(ctx, s.cfg.Workers, s.cfg.Periods, s.download)

	var ready []staged
	for _, d := range downloads {
		if d.err != nil {
			agg.Add(models.Skipped(models.FileName(s.cfg.Dataset, d.period, s.cfg.Format.Ext()), types.ActionDownload, d.err))
			continue
		}
		ready = append(ready, d)
	}
	s.log.Info(ctx, "download phase finished", "downloaded", len(ready), "requested", len(s.cfg.Periods))

	attempts := workerpool.Map(ctx, s.cfg.Workers, ready, func(ctx context.Context, f staged) models.UploadAttempt {
		ctx = wrap.WithPeriod(ctx, f.period.String())
		a := s.uploader.Upload(ctx, f.path, f.key)
		if !s.cfg.KeepLocal {
			os.Remove(f.path)
		}
		return a
	})

	var keys []string
	for _, a := range attempts {
		agg.Add(upload.Outcome(a))
		if a.Verified() {
			keys = append(keys, a.Object)
		}
	}
	s.log.Info(ctx, "upload phase finished", "verified", len(keys), "uploaded", len(ready))

	return keys, nil
}

func (s *Service) download(ctx context.Context, p models.Period) staged {
	ctx = wrap.WithPeriod(wrap.WithAction(ctx, types.ActionDownload), p.String())

	ext := s.cfg.Format.Ext()
	out := staged{
		period: p,
		path:   filepath.Join(s.cfg.StagingDir, models.FileName(s.cfg.Dataset, p, ext)),
		key:    models.ObjectKey(s.cfg.Prefix, s.cfg.Dataset, p, ext),
	}

	url := s.cfg.URL.Render(s.cfg.Dataset, p)
	n, err := s.fetcher.Download(ctx, url, out.path)
	metrics.RecordFetch(s.cfg.Mode.String(), string(s.cfg.Dataset), err != nil, n)
	if err != nil {
		s.log.Warn(ctx, "skipping month", "url", url, "reason", err.Error())
		out.err = err
		return out
	}

	s.log.Info(ctx, "downloaded", "url", url, "bytes", n)
	out.bytes = n
	return out
}
