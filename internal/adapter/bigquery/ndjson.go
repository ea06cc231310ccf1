package bigquery

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
)

// timestampLayout is accepted by BigQuery JSON loads and read as UTC.
const timestampLayout = "2006-01-02 15:04:05.999999"

// WriteNDJSON writes t to path as gzip-compressed newline-delimited JSON, one
// object per row, skipping NULL cells. It returns the number of rows written.
func WriteNDJSON(path string, t *models.Table) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	bw := bufio.NewWriterSize(zw, 1<<20)
	enc := json.NewEncoder(bw)

	names := t.Names()
	var n int64
	for _, row := range t.Rows {
		obj := make(map[string]any, len(names))
		for i, v := range row {
			if v == nil {
				continue
			}
			if ts, ok := v.(time.Time); ok {
				v = ts.UTC().Format(timestampLayout)
			}
			obj[names[i]] = v
		}
		if err := enc.Encode(obj); err != nil {
			return n, fmt.Errorf("encode row %d: %w", n, err)
		}
		n++
	}

	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush: %w", err)
	}
	if err := zw.Close(); err != nil {
		return n, fmt.Errorf("close gzip: %w", err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", path, err)
	}
	return n, nil
}
