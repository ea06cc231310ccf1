package report

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
)

func TestAggregator_Summary(t *testing.T) {
	a := NewAggregator()

	done := models.Done("yellow_tripdata_2024-01.parquet", "upload")
	done.Bytes = 100
	write := models.Done("yellow_taxi_data", "write")
	write.Rows = 1369765

	a.Add(done, write)
	a.Add(models.Skipped("yellow_tripdata_2024-07.parquet", "fetch", errors.New("404")))
	a.Add(models.Failed("yellow_tripdata_2024-02.parquet", "upload", errors.New("given up")))

	s := a.Summary()
	if s.Total != 4 || s.Done != 2 || s.Skipped != 1 || s.Failed != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.Rows != 1369765 || s.Bytes != 100 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if len(s.Issues) != 2 || s.Issues[0].Reason != "404" {
		t.Fatalf("unexpected issues %+v", s.Issues)
	}
	if s.OK() {
		t.Fatalf("summary with a failure is not OK")
	}
}

func TestAggregator_Concurrent(t *testing.T) {
	a := NewAggregator()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a.Add(models.Done(fmt.Sprintf("file-%d", i), "download"))
		}(i)
	}
	wg.Wait()

	if s := a.Summary(); s.Done != 50 || !s.OK() {
		t.Fatalf("expected 50 done, got %+v", s)
	}
	if len(a.Outcomes()) != 50 {
		t.Fatalf("expected 50 outcomes")
	}
}
