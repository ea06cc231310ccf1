package jobs

import (
	"context"

	bq "github.com/Temutjin2k/taxi-ingest/internal/adapter/bigquery"
	"github.com/Temutjin2k/taxi-ingest/internal/adapter/gcs"
	pgadapter "github.com/Temutjin2k/taxi-ingest/internal/adapter/postgres"
	"github.com/Temutjin2k/taxi-ingest/internal/adapter/tlc"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/upload"
	"github.com/Temutjin2k/taxi-ingest/pkg/gcp"
	"github.com/Temutjin2k/taxi-ingest/pkg/postgres"
	"github.com/Temutjin2k/taxi-ingest/pkg/trm"
)

// Clients are built once per run and closed through the runner.

func (r *runner) fetcher() *tlc.Client {
	return tlc.New(r.cfg.Source.Timeout, r.cfg.Source.StagingDir, r.log)
}

func (r *runner) sourceURL(format types.DataFormat) models.URLTemplate {
	if format == types.Parquet {
		return models.URLTemplate(r.cfg.Source.ParquetURL)
	}
	return models.URLTemplate(r.cfg.Source.CSVURL)
}

func (r *runner) postgres(ctx context.Context) (*pgadapter.TableWriter, trm.TxManager, error) {
	db, err := postgres.New(ctx, r.cfg.Database)
	if err != nil {
		r.log.Error(ctx, "Failed to setup database", err)
		return nil, nil, err
	}
	r.onClose(func(context.Context) { db.Close() })

	txManager := trm.New(db.Pool)
	return pgadapter.NewTableWriter(db.Pool, txManager), txManager, nil
}

func (r *runner) credentials(ctx context.Context) (*gcp.Credentials, error) {
	creds, err := gcp.LoadCredentials(ctx, r.cfg.GCP.Key, r.cfg.GCP.KeyB64, r.cfg.GCP.Project)
	if err != nil {
		r.log.Error(ctx, "Failed to load GCP credentials", err)
		return nil, err
	}
	r.log.Info(ctx, "loaded GCP credentials", "source", creds.Source, "project", creds.ProjectID)
	return creds, nil
}

// objectStore returns the bucket store and a retrier uploading into it.
func (r *runner) objectStore(ctx context.Context, creds *gcp.Credentials) (*gcs.Store, *upload.Retrier, error) {
	client, err := gcs.NewClient(ctx, creds)
	if err != nil {
		r.log.Error(ctx, "Failed to setup storage client", err)
		return nil, nil, err
	}
	r.onClose(func(ctx context.Context) {
		if err := client.Close(); err != nil {
			r.log.Warn(ctx, "Failed to close storage client", "error", err.Error())
		}
	})

	store := gcs.New(client, creds.ProjectID, gcs.Config{
		Bucket:    r.cfg.GCP.Bucket,
		Location:  r.cfg.GCP.Location,
		ChunkSize: r.cfg.Upload.ChunkSize,
	}, r.log)

	retrier := upload.NewRetrier(store, r.mode, r.log,
		upload.WithMaxAttempts(r.cfg.Upload.MaxAttempts),
		upload.WithDelay(r.cfg.Upload.Delay),
	)
	return store, retrier, nil
}

func (r *runner) warehouse(ctx context.Context, creds *gcp.Credentials) (*bq.Warehouse, error) {
	client, err := bq.NewClient(ctx, creds)
	if err != nil {
		r.log.Error(ctx, "Failed to setup bigquery client", err)
		return nil, err
	}

	wh := bq.New(client, r.cfg.GCP.Location, r.log)
	r.onClose(func(ctx context.Context) {
		if err := wh.Close(); err != nil {
			r.log.Warn(ctx, "Failed to close bigquery client", "error", err.Error())
		}
	})
	return wh, nil
}
