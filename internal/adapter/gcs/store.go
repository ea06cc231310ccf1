// Package gcs is the object storage side of the lake and warehouse jobs.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/pkg/gcp"
	"github.com/Temutjin2k/taxi-ingest/pkg/hasher"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

const (
	DefaultChunkSize = 8 << 20
	DefaultLocation  = "US"

	metadataSHA256 = "sha256"
)

type Store struct {
	client    *storage.Client
	project   string
	bucket    string
	location  string
	chunkSize int
	log       logger.Logger
}

type Config struct {
	Bucket    string
	Location  string
	ChunkSize int
}

// NewClient builds a storage client from resolved credentials.
func NewClient(ctx context.Context, creds *gcp.Credentials) (*storage.Client, error) {
	client, err := storage.NewClient(ctx, creds.Options...)
	if err != nil {
		return nil, fmt.Errorf("create storage client (%s): %w", creds.Source, err)
	}
	return client, nil
}

func New(client *storage.Client, project string, cfg Config, log logger.Logger) *Store {
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &Store{
		client:    client,
		project:   project,
		bucket:    cfg.Bucket,
		location:  cfg.Location,
		chunkSize: cfg.ChunkSize,
		log:       log,
	}
}

func (s *Store) Bucket() string {
	return s.bucket
}

// EnsureBucket reuses name when the project owns it and creates it when it does
// not exist. A bucket that exists elsewhere, or that the caller cannot see, is
// an error the run cannot recover from.
func (s *Store) EnsureBucket(ctx context.Context, name string) error {
	const op = "Store.EnsureBucket"
	ctx = wrap.WithAction(ctx, types.ActionEnsureBucket)

	_, err := s.client.Bucket(name).Attrs(ctx)
	switch {
	case err == nil:
		owned, err := s.ownsBucket(ctx, name)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: list buckets: %w", op, err))
		}
		if !owned {
			return wrap.Error(ctx, fmt.Errorf("%s: %s: %w", op, name, types.ErrBucketNotOwned))
		}
		s.log.Info(ctx, "bucket exists and belongs to the project", "bucket", name)
		return nil

	case errors.Is(err, storage.ErrBucketNotExist):
		if err := s.client.Bucket(name).Create(ctx, s.project, &storage.BucketAttrs{Location: s.location}); err != nil {
			if apiCode(err) == http.StatusConflict {
				return wrap.Error(ctx, fmt.Errorf("%s: %s: %w", op, name, types.ErrBucketNotOwned))
			}
			return wrap.Error(ctx, fmt.Errorf("%s: create %s: %w", op, name, err))
		}
		s.log.Info(ctx, "created bucket", "bucket", name, "location", s.location)
		return nil

	default:
		return wrap.Error(ctx, fmt.Errorf("%s: %s: %w", op, name, classify(err)))
	}
}

func (s *Store) ownsBucket(ctx context.Context, name string) (bool, error) {
	it := s.client.Buckets(ctx, s.project)
	it.Prefix = name
	for {
		b, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if b.Name == name {
			return true, nil
		}
	}
}

// Upload writes the local file to key in resumable chunks and records its
// SHA-256 in the object metadata.
func (s *Store) Upload(ctx context.Context, localPath, key string) (int64, error) {
	const op = "Store.Upload"

	sum, _, err := hasher.File(localPath)
	if err != nil {
		return 0, fmt.Errorf("%s: hash: %w", op, err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ChunkSize = s.chunkSize
	w.ContentType = ContentType(key)
	w.Metadata = map[string]string{metadataSHA256: sum}

	n, err := io.Copy(w, f)
	if err != nil {
		// cancelling before Close aborts the resumable session
		cancel()
		_ = w.Close()
		return n, fmt.Errorf("%s: copy %s: %w", op, key, err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("%s: finalize %s: %w", op, key, classify(err))
	}

	return n, nil
}

// Exists reports whether key is present in the bucket.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Store.Exists: %s: %w", key, classify(err))
	}
	return true, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ContentType picks the object content type from the key's extension.
func ContentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".parquet"):
		return "application/vnd.apache.parquet"
	case strings.HasSuffix(key, ".gz"):
		return "application/gzip"
	case strings.HasSuffix(key, ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

func apiCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// classify maps a 403 to ErrBucketForbidden and keeps everything else.
func classify(err error) error {
	if apiCode(err) == http.StatusForbidden {
		return fmt.Errorf("%w: %v", types.ErrBucketForbidden, err)
	}
	return err
}
