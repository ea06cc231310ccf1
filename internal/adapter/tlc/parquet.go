package tlc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	ptypes "github.com/xitongsys/parquet-go/types"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

const (
	parquetReadBatch   = 50_000
	parquetReaderProcs = 4
)

// ReadParquet downloads the Parquet file at url into the staging directory and
// decodes it into a table. Timestamp columns become time.Time whatever their
// physical encoding.
func (c *Client) ReadParquet(ctx context.Context, url string) (*models.Table, error) {
	ctx = wrap.WithAction(ctx, types.ActionFetch)

	dir := c.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("create staging dir: %w", err))
	}
	dst, err := os.CreateTemp(dir, "*-"+path.Base(url))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("create staging file: %w", err))
	}
	dst.Close()
	defer os.Remove(dst.Name())

	if _, err := c.Download(ctx, url, dst.Name()); err != nil {
		return nil, err
	}

	table, err := ReadParquetFile(dst.Name())
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("decode %s: %w", url, err))
	}

	c.log.Debug(ctx, "decoded parquet", "url", url, "rows", table.Len(), "columns", len(table.Columns))
	return table, nil
}

// timeUnit is the scale of an integer timestamp column.
type timeUnit int

const (
	notTime timeUnit = iota
	unitMillis
	unitMicros
	unitNanos
	unitDays
	unitInt96
)

type parquetColumn struct {
	models.Column
	unit timeUnit
}

// ReadParquetFile decodes a flat Parquet file from local disk.
func ReadParquetFile(filePath string) (*models.Table, error) {
	if err := checkMagic(filePath); err != nil {
		return nil, err
	}

	fr, err := local.NewLocalFileReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, parquetReaderProcs)
	if err != nil {
		return nil, fmt.Errorf("%w: footer: %v", types.ErrMalformedFile, err)
	}
	defer pr.ReadStop()

	cols := leafColumns(pr.Footer.Schema)
	if len(cols) == 0 {
		return nil, types.ErrEmptyTable
	}

	table := &models.Table{Columns: make([]models.Column, len(cols))}
	for i, col := range cols {
		table.Columns[i] = col.Column
	}

	total := int(pr.GetNumRows())
	table.Rows = make([][]any, 0, total)

	var fields []int
	for len(table.Rows) < total {
		recs, err := pr.ReadByNumber(min(parquetReadBatch, total-len(table.Rows)))
		if err != nil {
			return nil, fmt.Errorf("%w: read rows: %v", types.ErrMalformedFile, err)
		}
		if len(recs) == 0 {
			break
		}
		if fields == nil {
			if fields, err = fieldIndexes(reflect.TypeOf(recs[0]), cols); err != nil {
				return nil, err
			}
		}

		for _, rec := range recs {
			v := reflect.ValueOf(rec)
			row := make([]any, len(cols))
			for i, col := range cols {
				row[i] = decodeValue(v.Field(fields[i]), col)
			}
			table.Rows = append(table.Rows, row)
		}
	}

	return table, nil
}

var parquetMagic = []byte("PAR1")

// checkMagic rejects files that do not start and end with PAR1, which is what
// an HTML error page saved under a .parquet name looks like.
func checkMagic(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if st.Size() < 12 {
		return fmt.Errorf("%w: too short for parquet", types.ErrMalformedFile)
	}

	head := make([]byte, 4)
	tail := make([]byte, 4)
	if _, err := f.ReadAt(head, 0); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if _, err := f.ReadAt(tail, st.Size()-4); err != nil {
		return fmt.Errorf("read trailer: %w", err)
	}
	if !bytes.Equal(head, parquetMagic) || !bytes.Equal(tail, parquetMagic) {
		return fmt.Errorf("%w: missing PAR1 magic", types.ErrMalformedFile)
	}
	return nil
}

// leafColumns maps the footer schema of a flat file to table columns.
func leafColumns(schema []*parquet.SchemaElement) []parquetColumn {
	var out []parquetColumn
	for i, el := range schema {
		if i == 0 || el.GetNumChildren() > 0 {
			continue
		}
		col := parquetColumn{Column: models.Column{Name: el.GetName()}}

		switch el.GetType() {
		case parquet.Type_BOOLEAN:
			col.Type = models.TypeBool
		case parquet.Type_INT32, parquet.Type_INT64:
			col.Type = models.TypeInt
			if unit := integerTimeUnit(el); unit != notTime {
				col.Type, col.unit = models.TypeTimestamp, unit
			}
		case parquet.Type_INT96:
			col.Type, col.unit = models.TypeTimestamp, unitInt96
		case parquet.Type_FLOAT, parquet.Type_DOUBLE:
			col.Type = models.TypeFloat
		default:
			col.Type = models.TypeString
		}
		out = append(out, col)
	}
	return out
}

func integerTimeUnit(el *parquet.SchemaElement) timeUnit {
	if lt := el.GetLogicalType(); lt != nil {
		if lt.IsSetTIMESTAMP() {
			unit := lt.GetTIMESTAMP().GetUnit()
			switch {
			case unit == nil:
				return unitMicros
			case unit.IsSetMILLIS():
				return unitMillis
			case unit.IsSetNANOS():
				return unitNanos
			default:
				return unitMicros
			}
		}
		if lt.IsSetDATE() {
			return unitDays
		}
	}

	if el.IsSetConvertedType() {
		switch el.GetConvertedType() {
		case parquet.ConvertedType_TIMESTAMP_MILLIS:
			return unitMillis
		case parquet.ConvertedType_TIMESTAMP_MICROS:
			return unitMicros
		case parquet.ConvertedType_DATE:
			return unitDays
		}
	}
	return notTime
}

// fieldIndexes finds the struct field of each column in the reader's generated
// record type. Fields carry the on-disk name in their json tag; a record
// without tags is matched by position.
func fieldIndexes(t reflect.Type, cols []parquetColumn) ([]int, error) {
	byName := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" {
			name = t.Field(i).Name
		}
		byName[strings.ToLower(name)] = i
	}

	out := make([]int, len(cols))
	for i, col := range cols {
		idx, ok := byName[strings.ToLower(col.Name)]
		if !ok {
			if t.NumField() != len(cols) {
				return nil, fmt.Errorf("%w: column %s has no field", types.ErrMalformedFile, col.Name)
			}
			idx = i
		}
		out[i] = idx
	}
	return out, nil
}

func decodeValue(f reflect.Value, col parquetColumn) any {
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return nil
		}
		f = f.Elem()
	}

	switch col.unit {
	case unitMillis:
		return time.UnixMilli(f.Int()).UTC()
	case unitMicros:
		return time.UnixMicro(f.Int()).UTC()
	case unitNanos:
		return time.Unix(0, f.Int()).UTC()
	case unitDays:
		return time.Unix(f.Int()*86400, 0).UTC()
	case unitInt96:
		return ptypes.INT96ToTime(f.String()).UTC()
	}

	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(f.Uint())
	case reflect.Float32, reflect.Float64:
		return f.Float()
	case reflect.Bool:
		return f.Bool()
	case reflect.String:
		return f.String()
	default:
		return fmt.Sprint(f.Interface())
	}
}
