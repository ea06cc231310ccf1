// Package upload pushes local files to object storage with bounded retries and
// post-upload existence checks.
package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-ingest/pkg/metrics"
)

const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 5 * time.Second
)

// ObjectStore is the destination the retrier writes to.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Retrier drives one file through Pending -> Uploading -> Verifying and ends in
// Done or GivenUp. A failed upload or a negative existence check moves it to
// Retrying, waits a constant delay and tries again while attempts remain.
type Retrier struct {
	store       ObjectStore
	maxAttempts int
	delay       time.Duration
	timer       backoff.Timer
	mode        string
	log         logger.Logger
}

type Option func(*Retrier)

func WithMaxAttempts(n int) Option {
	return func(r *Retrier) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func WithDelay(d time.Duration) Option {
	return func(r *Retrier) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithTimer replaces the wall-clock timer used between attempts.
func WithTimer(t backoff.Timer) Option {
	return func(r *Retrier) {
		r.timer = t
	}
}

func NewRetrier(store ObjectStore, mode types.JobMode, log logger.Logger, opts ...Option) *Retrier {
	r := &Retrier{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		delay:       DefaultDelay,
		mode:        mode.String(),
		log:         log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Upload never returns an error: the final state and the last error are in the
// returned attempt.
func (r *Retrier) Upload(ctx context.Context, localPath, key string) models.UploadAttempt {
	ctx = wrap.WithObject(wrap.WithAction(ctx, types.ActionUpload), key)

	attempt := models.UploadAttempt{Object: key, State: models.UploadPending}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.delay), uint64(r.maxAttempts-1)),
		ctx,
	)

	operation := func() error {
		attempt.Attempts++
		attempt.State = models.UploadUploading
		r.log.Debug(ctx, "uploading", "path", localPath, "attempt", attempt.Attempts)

		n, err := r.store.Upload(ctx, localPath, key)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		attempt.Bytes = n

		attempt.State = models.UploadVerifying
		ok, err := r.store.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if !ok {
			return types.ErrUploadNotVerified
		}

		attempt.State = models.UploadDone
		return nil
	}

	notify := func(err error, wait time.Duration) {
		attempt.State = models.UploadRetrying
		r.log.Warn(ctx, "upload attempt failed, retrying",
			"attempt", attempt.Attempts,
			"max_attempts", r.maxAttempts,
			"wait", wait.String(),
			"error", err.Error(),
		)
	}

	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, r.timer); err != nil {
		attempt.State = models.UploadGivenUp
		attempt.Err = err
		r.log.Error(ctx, "giving up on upload", err, "path", localPath, "attempts", attempt.Attempts)
	} else {
		r.log.Info(ctx, "upload verified", "attempts", attempt.Attempts, "bytes", attempt.Bytes)
	}

	metrics.RecordUpload(r.mode, string(attempt.State), attempt.Attempts)
	return attempt
}

// Outcome converts an attempt into a report entry.
func Outcome(a models.UploadAttempt) models.Outcome {
	var o models.Outcome
	if a.Verified() {
		o = models.Done(a.Object, types.ActionUpload)
	} else {
		o = models.Failed(a.Object, types.ActionUpload, a.Err)
	}
	o.Attempts = a.Attempts
	o.Bytes = a.Bytes
	return o
}
