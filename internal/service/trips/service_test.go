package trips

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/report"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
)

type fakeSource struct {
	missing map[string]bool
}

func (f *fakeSource) ReadParquet(_ context.Context, url string) (*models.Table, error) {
	if f.missing[url] {
		return nil, types.ErrNotFound
	}
	prefix := "tpep"
	if strings.Contains(url, "green") {
		prefix = "lpep"
	}
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Table{
		Columns: []models.Column{
			{Name: "VendorID", Type: models.TypeInt},
			{Name: prefix + "_pickup_datetime", Type: models.TypeTimestamp},
			{Name: "airport_fee", Type: models.TypeFloat},
		},
		Rows: [][]any{{int64(1), ts, 1.75}},
	}, nil
}

type fakeSink struct {
	got   *models.Table
	err   error
	calls int
}

func (f *fakeSink) Write(_ context.Context, t *models.Table) (int64, error) {
	f.calls++
	f.got = t
	return int64(t.Len()), f.err
}

func (f *fakeSink) Name() string { return "fake" }

func window() []models.Period {
	return []models.Period{{Year: 2024, Month: 1}, {Year: 2024, Month: 2}}
}

const url = "https://example.test/{dataset}_tripdata_{year}-{month}.parquet"

func TestRun_ConcatsInTaxiTypeThenMonthOrder(t *testing.T) {
	sink := &fakeSink{}
	cfg := Config{TaxiTypes: []types.TaxiType{types.Yellow, types.Green}, Periods: window(), URL: url, Workers: 3}
	svc := NewService(cfg, &fakeSource{}, sink, logger.Nop())

	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	agg := report.NewAggregator()
	if err := svc.Run(context.Background(), agg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := sink.got
	if got.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", got.Len())
	}
	if got.Index("airport_fee") != -1 || got.Index("pickup_datetime") == -1 {
		t.Fatalf("unexpected columns %v", got.Names())
	}

	typeIdx, extIdx := got.Index(models.ColTaxiType), got.Index(models.ColExtractedAt)
	wantTypes := []string{"yellow", "yellow", "green", "green"}
	for i, row := range got.Rows {
		if row[typeIdx] != wantTypes[i] {
			t.Fatalf("row %d taxi_type = %v", i, row[typeIdx])
		}
		if row[extIdx] != fixed {
			t.Fatalf("row %d extracted_at = %v", i, row[extIdx])
		}
	}

	if s := agg.Summary(); s.Done != 1 || s.Rows != 4 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestRun_SkipsMissingMonths(t *testing.T) {
	src := &fakeSource{missing: map[string]bool{"https://example.test/green_tripdata_2024-02.parquet": true}}
	sink := &fakeSink{}
	cfg := Config{TaxiTypes: []types.TaxiType{types.Yellow, types.Green}, Periods: window(), URL: url}

	agg := report.NewAggregator()
	if err := NewService(cfg, src, sink, logger.Nop()).Run(context.Background(), agg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sink.got.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", sink.got.Len())
	}
	if s := agg.Summary(); s.Skipped != 1 || s.Issues[0].Item != "green_tripdata_2024-02.parquet" {
		t.Fatalf("summary = %+v", s)
	}
}

func TestRun_NothingFetchedWritesNothing(t *testing.T) {
	src := &fakeSource{missing: map[string]bool{
		"https://example.test/yellow_tripdata_2024-01.parquet": true,
		"https://example.test/yellow_tripdata_2024-02.parquet": true,
	}}
	sink := &fakeSink{}
	cfg := Config{TaxiTypes: []types.TaxiType{types.Yellow}, Periods: window(), URL: url}

	if err := NewService(cfg, src, sink, logger.Nop()).Run(context.Background(), report.NewAggregator()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sink.calls != 0 {
		t.Fatalf("sink must not be called")
	}
}

func TestRun_EmptyWindow(t *testing.T) {
	sink := &fakeSink{}
	cfg := Config{TaxiTypes: []types.TaxiType{types.Yellow}, URL: url}

	if err := NewService(cfg, &fakeSource{}, sink, logger.Nop()).Run(context.Background(), report.NewAggregator()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sink.calls != 0 {
		t.Fatalf("sink must not be called")
	}
}

func TestRun_SinkErrorFails(t *testing.T) {
	sink := &fakeSink{err: errors.New("quota exceeded")}
	cfg := Config{TaxiTypes: []types.TaxiType{types.Yellow}, Periods: window(), URL: url}

	agg := report.NewAggregator()
	if err := NewService(cfg, &fakeSource{}, sink, logger.Nop()).Run(context.Background(), agg); err == nil {
		t.Fatalf("expected error")
	}
	if s := agg.Summary(); s.Failed != 1 {
		t.Fatalf("summary = %+v", s)
	}
}

