// Package bigquery runs load and query jobs against the warehouse.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/pkg/gcp"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-ingest/pkg/metrics"
)

const PartitionedSuffix = "_partitioned_clustered"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Warehouse struct {
	client   *bigquery.Client
	location string
	log      logger.Logger
}

// NewClient builds a BigQuery client for the credentials' project.
func NewClient(ctx context.Context, creds *gcp.Credentials) (*bigquery.Client, error) {
	client, err := bigquery.NewClient(ctx, creds.ProjectID, creds.Options...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client (%s): %w", creds.Source, err)
	}
	return client, nil
}

func New(client *bigquery.Client, location string, log logger.Logger) *Warehouse {
	return &Warehouse{client: client, location: location, log: log}
}

// EnsureDataset creates the dataset when it is missing.
func (w *Warehouse) EnsureDataset(ctx context.Context, dataset string) error {
	const op = "Warehouse.EnsureDataset"
	ctx = wrap.WithAction(ctx, types.ActionEnsureDataset)

	ds := w.client.Dataset(dataset)
	_, err := ds.Metadata(ctx)
	if err == nil {
		return nil
	}
	if apiCode(err) != http.StatusNotFound {
		return wrap.Error(ctx, fmt.Errorf("%s: %s: %w", op, dataset, err))
	}

	if err := ds.Create(ctx, &bigquery.DatasetMetadata{Location: w.location}); err != nil && apiCode(err) != http.StatusConflict {
		return wrap.Error(ctx, fmt.Errorf("%s: create %s: %w", op, dataset, err))
	}
	w.log.Info(ctx, "created dataset", "dataset", dataset, "location", w.location)
	return nil
}

// LoadFromGCS runs one load job and waits for it to finish.
func (w *Warehouse) LoadFromGCS(ctx context.Context, req models.LoadRequest) (err error) {
	const op = "Warehouse.LoadFromGCS"
	ctx = wrap.WithAction(ctx, types.ActionWarehouseLoad)
	defer func() { metrics.RecordWarehouseJob("load", err) }()

	ref := bigquery.NewGCSReference(req.URI)
	switch req.Format {
	case types.Parquet:
		ref.SourceFormat = bigquery.Parquet
	case types.NDJSON:
		ref.SourceFormat = bigquery.JSON
	default:
		ref.SourceFormat = bigquery.CSV
		ref.SkipLeadingRows = req.SkipRows
	}
	ref.AutoDetect = req.Autodetect
	if len(req.Schema) > 0 {
		ref.Schema = Schema(req.Schema)
	}

	loader := w.client.Dataset(req.Dataset).Table(req.Table).LoaderFrom(ref)
	loader.CreateDisposition = bigquery.CreateIfNeeded
	loader.WriteDisposition = bigquery.WriteAppend
	if req.Disposition == models.WriteTruncate {
		loader.WriteDisposition = bigquery.WriteTruncate
	}

	w.log.Info(ctx, "starting load job", "uri", req.URI, "table", req.Dataset+"."+req.Table, "disposition", req.Disposition)

	job, err := loader.Run(ctx)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: start: %w", op, err))
	}
	if err := wait(ctx, job); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: job %s: %w", op, job.ID(), err))
	}
	return nil
}

// TableStats reads row count and size of a table.
func (w *Warehouse) TableStats(ctx context.Context, dataset, table string) (models.TableStats, error) {
	md, err := w.client.Dataset(dataset).Table(table).Metadata(ctx)
	if err != nil {
		if apiCode(err) == http.StatusNotFound {
			return models.TableStats{}, fmt.Errorf("Warehouse.TableStats: %s.%s: %w", dataset, table, types.ErrTableNotFound)
		}
		return models.TableStats{}, fmt.Errorf("Warehouse.TableStats: %s.%s: %w", dataset, table, err)
	}
	return models.TableStats{
		Table:    w.TableID(dataset, table),
		NumRows:  md.NumRows,
		NumBytes: md.NumBytes,
	}, nil
}

// CreatePartitioned materializes a partitioned and clustered copy of a table
// and returns its id.
func (w *Warehouse) CreatePartitioned(ctx context.Context, req models.PartitionRequest) (id string, err error) {
	const op = "Warehouse.CreatePartitioned"
	ctx = wrap.WithAction(ctx, types.ActionPartitionTable)
	defer func() { metrics.RecordWarehouseJob("query", err) }()

	source := w.TableID(req.Dataset, req.Table)
	target := w.TableID(req.Dataset, req.Table+PartitionedSuffix)

	sql, err := PartitionSQL(source, target, req.PartitionColumn, req.ClusterColumns)
	if err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	q := w.client.Query(sql)
	q.Location = w.location

	job, err := q.Run(ctx)
	if err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: start: %w", op, err))
	}
	if err := wait(ctx, job); err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: job %s: %w", op, job.ID(), err))
	}
	return target, nil
}

// TableID is the fully qualified project.dataset.table name.
func (w *Warehouse) TableID(dataset, table string) string {
	return fmt.Sprintf("%s.%s.%s", w.client.Project(), dataset, table)
}

func (w *Warehouse) Close() error {
	return w.client.Close()
}

func wait(ctx context.Context, job *bigquery.Job) error {
	status, err := job.Wait(ctx)
	if err != nil {
		return err
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrLoadJobFailed, err)
	}
	return nil
}

// PartitionSQL builds the CREATE OR REPLACE statement for a copy of source
// partitioned by the day of partitionCol and clustered by clusterCols.
func PartitionSQL(source, target, partitionCol string, clusterCols []string) (string, error) {
	if !identRe.MatchString(partitionCol) {
		return "", fmt.Errorf("invalid partition column %q", partitionCol)
	}
	for _, c := range clusterCols {
		if !identRe.MatchString(c) {
			return "", fmt.Errorf("invalid cluster column %q", c)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE TABLE `%s`\n", target)
	fmt.Fprintf(&b, "PARTITION BY DATE(%s)\n", partitionCol)
	if len(clusterCols) > 0 {
		fmt.Fprintf(&b, "CLUSTER BY %s\n", strings.Join(clusterCols, ", "))
	}
	fmt.Fprintf(&b, "AS SELECT * FROM `%s`", source)
	return b.String(), nil
}

// Schema converts table columns to a BigQuery schema. Every column is nullable.
func Schema(cols []models.Column) bigquery.Schema {
	out := make(bigquery.Schema, len(cols))
	for i, c := range cols {
		out[i] = &bigquery.FieldSchema{Name: c.Name, Type: fieldType(c.Type)}
	}
	return out
}

func fieldType(t models.ColumnType) bigquery.FieldType {
	switch t {
	case models.TypeInt:
		return bigquery.IntegerFieldType
	case models.TypeFloat:
		return bigquery.FloatFieldType
	case models.TypeTimestamp:
		return bigquery.TimestampFieldType
	case models.TypeBool:
		return bigquery.BooleanFieldType
	default:
		return bigquery.StringFieldType
	}
}

func apiCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
