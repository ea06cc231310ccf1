package tlc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
)

type greenRecord struct {
	VendorID     int32    `parquet:"name=VendorID, type=INT32"`
	Pickup       int64    `parquet:"name=lpep_pickup_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS"`
	Flag         *string  `parquet:"name=store_and_fwd_flag, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	PassengerCnt *float64 `parquet:"name=passenger_count, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func writeGreenParquet(t *testing.T, path string, recs []greenRecord) {
	t.Helper()

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		t.Fatalf("file writer: %v", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(greenRecord), 1)
	if err != nil {
		fw.Close()
		t.Fatalf("parquet writer: %v", err)
	}
	for _, r := range recs {
		if err := pw.Write(r); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		t.Fatalf("write stop: %v", err)
	}
	fw.Close()
}

func TestReadParquetFile(t *testing.T) {
	pickup := time.Date(2025, 11, 1, 8, 15, 0, 0, time.UTC)
	flag := "N"
	one := 1.0

	path := filepath.Join(t.TempDir(), "green_tripdata_2025-11.parquet")
	writeGreenParquet(t, path, []greenRecord{
		{VendorID: 2, Pickup: pickup.UnixMicro(), Flag: &flag, PassengerCnt: &one},
		{VendorID: 1, Pickup: pickup.Add(time.Hour).UnixMicro()},
	})

	table, err := ReadParquetFile(path)
	if err != nil {
		t.Fatalf("ReadParquetFile: %v", err)
	}

	want := []models.Column{
		{Name: "VendorID", Type: models.TypeInt},
		{Name: "lpep_pickup_datetime", Type: models.TypeTimestamp},
		{Name: "store_and_fwd_flag", Type: models.TypeString},
		{Name: "passenger_count", Type: models.TypeFloat},
	}
	for i, c := range want {
		if table.Columns[i] != c {
			t.Fatalf("column %d: got %+v want %+v", i, table.Columns[i], c)
		}
	}

	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if table.Rows[0][0] != int64(2) {
		t.Fatalf("expected int64 vendor, got %#v", table.Rows[0][0])
	}
	if ts, ok := table.Rows[0][1].(time.Time); !ok || !ts.Equal(pickup) {
		t.Fatalf("unexpected pickup %#v", table.Rows[0][1])
	}
	if table.Rows[0][2] != "N" || table.Rows[0][3] != 1.0 {
		t.Fatalf("unexpected optional values %v", table.Rows[0])
	}
	if table.Rows[1][2] != nil || table.Rows[1][3] != nil {
		t.Fatalf("missing optional values must be NULL: %v", table.Rows[1])
	}
}

func TestReadParquet_OverHTTP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.parquet")
	writeGreenParquet(t, path, []greenRecord{{VendorID: 2, Pickup: time.Now().UnixMicro()}})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	srv := newServer(t, map[string][]byte{"/trip-data/green_tripdata_2025-11.parquet": data})
	staging := t.TempDir()
	c := New(time.Second, staging, logger.Nop())

	table, err := c.ReadParquet(context.Background(), srv.URL+"/trip-data/green_tripdata_2025-11.parquet")
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", table.Len())
	}

	left, _ := os.ReadDir(staging)
	if len(left) != 0 {
		t.Fatalf("staging file not removed: %v", left)
	}
}

func TestReadParquetFile_NotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.parquet")
	if err := os.WriteFile(path, []byte("<html>not found</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadParquetFile(path); !errors.Is(err, types.ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile, got %v", err)
	}
}
