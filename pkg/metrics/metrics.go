package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Fetch metrics
	FilesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_files_fetched_total",
			Help: "Total number of remote files fetched, by outcome",
		},
		[]string{"mode", "dataset", "status"}, // status: done, skipped
	)

	BytesDownloadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_bytes_downloaded_total",
			Help: "Total bytes downloaded from remote sources",
		},
		[]string{"mode", "dataset"},
	)

	// Upload metrics
	UploadAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_upload_attempts_total",
			Help: "Total number of object storage upload attempts",
		},
		[]string{"mode"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_uploads_total",
			Help: "Total number of uploads by final state",
		},
		[]string{"mode", "state"}, // state: done, given_up
	)

	// Sink metrics
	RowsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_written_total",
			Help: "Total number of rows written to a destination table",
		},
		[]string{"mode", "table"},
	)

	ChunkWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_chunk_write_duration_seconds",
			Help:    "Duration of a single chunk append",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode", "status"},
	)

	WarehouseJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_warehouse_jobs_total",
			Help: "Total number of warehouse load/query jobs",
		},
		[]string{"kind", "status"}, // kind: load, query
	)

	// Run metrics
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_job_duration_seconds",
			Help:    "Duration of a whole ingestion run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"mode", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordFetch records one fetched (or skipped) remote file.
func RecordFetch(mode, dataset string, skipped bool, bytes int64) {
	st := "done"
	if skipped {
		st = "skipped"
	}
	FilesFetchedTotal.WithLabelValues(mode, dataset, st).Inc()
	if bytes > 0 {
		BytesDownloadedTotal.WithLabelValues(mode, dataset).Add(float64(bytes))
	}
}

// RecordUpload records the attempts and terminal state of one file upload.
func RecordUpload(mode, state string, attempts int) {
	UploadAttemptsTotal.WithLabelValues(mode).Add(float64(attempts))
	UploadsTotal.WithLabelValues(mode, state).Inc()
}

// RecordChunk records one chunk append.
func RecordChunk(mode, table string, rows int64, err error, duration time.Duration) {
	ChunkWriteDuration.WithLabelValues(mode, status(err)).Observe(duration.Seconds())
	if err == nil {
		RowsWrittenTotal.WithLabelValues(mode, table).Add(float64(rows))
	}
}

// RecordWarehouseJob records one warehouse job.
func RecordWarehouseJob(kind string, err error) {
	WarehouseJobsTotal.WithLabelValues(kind, status(err)).Inc()
}

// RecordJob records a finished run.
func RecordJob(mode string, err error, duration time.Duration) {
	JobDuration.WithLabelValues(mode, status(err)).Observe(duration.Seconds())
}
