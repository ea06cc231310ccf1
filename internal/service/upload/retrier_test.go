package upload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
)

type fakeStore struct {
	mu sync.Mutex

	uploadErrs []error // consumed per call, nil afterwards
	exists     []bool  // consumed per call, last value repeats

	uploads int
	checks  int
}

func (s *fakeStore) Upload(_ context.Context, _, _ string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploads++
	if len(s.uploadErrs) > 0 {
		err := s.uploadErrs[0]
		s.uploadErrs = s.uploadErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	return 42, nil
}

func (s *fakeStore) Exists(_ context.Context, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checks++
	if len(s.exists) == 0 {
		return false, nil
	}
	ok := s.exists[0]
	if len(s.exists) > 1 {
		s.exists = s.exists[1:]
	}
	return ok, nil
}

// fakeTimer fires immediately and records every requested wait.
type fakeTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func (t *fakeTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time {
	return t.c
}

func newTestRetrier(store ObjectStore, timer *fakeTimer, maxAttempts int) *Retrier {
	return NewRetrier(store, types.LakeMode, logger.Nop(),
		WithMaxAttempts(maxAttempts),
		WithDelay(5*time.Second),
		WithTimer(timer),
	)
}

func TestRetrier_DoneOnFirstAttemptWithoutDelay(t *testing.T) {
	store := &fakeStore{exists: []bool{true}}
	timer := &fakeTimer{}

	got := newTestRetrier(store, timer, 3).Upload(context.Background(), "/tmp/a.parquet", "a.parquet")

	if got.State != models.UploadDone || got.Attempts != 1 || got.Err != nil {
		t.Fatalf("unexpected attempt %+v", got)
	}
	if store.uploads != 1 || store.checks != 1 {
		t.Fatalf("expected one upload and one check, got %d/%d", store.uploads, store.checks)
	}
	if len(timer.waits) != 0 {
		t.Fatalf("no delay expected, got %v", timer.waits)
	}
	if got.Bytes != 42 {
		t.Fatalf("expected bytes to be recorded, got %d", got.Bytes)
	}
}

func TestRetrier_GivesUpAfterMaxFailedVerifications(t *testing.T) {
	for _, max := range []int{1, 3, 5} {
		store := &fakeStore{exists: []bool{false}}
		timer := &fakeTimer{}

		got := newTestRetrier(store, timer, max).Upload(context.Background(), "/tmp/a.parquet", "a.parquet")

		if got.State != models.UploadGivenUp {
			t.Fatalf("max %d: expected GivenUp, got %s", max, got.State)
		}
		if !errors.Is(got.Err, types.ErrUploadNotVerified) {
			t.Fatalf("max %d: expected ErrUploadNotVerified, got %v", max, got.Err)
		}
		if store.uploads != max || store.checks != max || got.Attempts != max {
			t.Fatalf("max %d: uploads=%d checks=%d attempts=%d", max, store.uploads, store.checks, got.Attempts)
		}
		if len(timer.waits) != max-1 {
			t.Fatalf("max %d: expected %d waits, got %d", max, max-1, len(timer.waits))
		}
		for _, w := range timer.waits {
			if w != 5*time.Second {
				t.Fatalf("backoff must be constant 5s, got %s", w)
			}
		}
	}
}

func TestRetrier_RecoversAfterUploadError(t *testing.T) {
	store := &fakeStore{
		uploadErrs: []error{errors.New("connection reset")},
		exists:     []bool{true},
	}
	timer := &fakeTimer{}

	got := newTestRetrier(store, timer, 3).Upload(context.Background(), "/tmp/a.parquet", "a.parquet")

	if got.State != models.UploadDone || got.Attempts != 2 {
		t.Fatalf("unexpected attempt %+v", got)
	}
	// failed upload skips verification
	if store.uploads != 2 || store.checks != 1 {
		t.Fatalf("uploads=%d checks=%d", store.uploads, store.checks)
	}
	if len(timer.waits) != 1 {
		t.Fatalf("expected a single wait, got %v", timer.waits)
	}
}

func TestRetrier_StopsOnCancelledContext(t *testing.T) {
	store := &fakeStore{exists: []bool{false}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := newTestRetrier(store, &fakeTimer{}, 3).Upload(ctx, "/tmp/a.parquet", "a.parquet")

	if got.State != models.UploadGivenUp {
		t.Fatalf("expected GivenUp, got %s", got.State)
	}
	if store.uploads > 1 {
		t.Fatalf("cancelled run must not keep retrying, got %d uploads", store.uploads)
	}
}

func TestOutcome(t *testing.T) {
	o := Outcome(models.UploadAttempt{Object: "k", Attempts: 3, State: models.UploadGivenUp, Err: types.ErrUploadNotVerified})
	if o.Status != models.StatusFailed || o.Attempts != 3 || o.Reason == "" {
		t.Fatalf("unexpected outcome %+v", o)
	}
	if Outcome(models.UploadAttempt{Object: "k", Attempts: 1, State: models.UploadDone}).Status != models.StatusDone {
		t.Fatalf("verified attempt must be done")
	}
}
