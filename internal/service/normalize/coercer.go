package normalize

import (
	"sync"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
)

// Coercer turns raw source rows into typed tables. Declared columns always use
// their declared type. Any other column takes the type inferred from the first
// batch it appears in and keeps it for the rest of the stream, so every chunk of
// one file lands in the same table schema.
type Coercer struct {
	declared map[string]models.ColumnType

	mu    sync.Mutex
	fixed map[string]models.ColumnType
}

func NewCoercer(declared map[string]models.ColumnType) *Coercer {
	if declared == nil {
		declared = map[string]models.ColumnType{}
	}
	return &Coercer{
		declared: declared,
		fixed:    make(map[string]models.ColumnType),
	}
}

// Rows converts one batch of CSV rows. Short rows are padded with NULL.
func (c *Coercer) Rows(header []string, rows [][]string) *models.Table {
	cols := make([]models.Column, len(header))
	for i, name := range header {
		cols[i] = models.Column{Name: name, Type: c.typeOf(name, i, rows)}
	}

	out := &models.Table{Columns: cols, Rows: make([][]any, len(rows))}
	for r, raw := range rows {
		row := make([]any, len(cols))
		for i, col := range cols {
			if i < len(raw) {
				row[i] = Coerce(raw[i], col.Type)
			}
		}
		out.Rows[r] = row
	}
	return out
}

// Table re-types an already decoded table: declared columns are converted,
// the rest keep their decoded type.
func (c *Coercer) Table(t *models.Table) *models.Table {
	cols := t.Schema()
	convert := make([]bool, len(cols))
	for i, col := range cols {
		if typ, ok := c.declared[col.Name]; ok {
			cols[i].Type = typ
			convert[i] = true
		}
	}

	out := &models.Table{Columns: cols, Rows: make([][]any, len(t.Rows))}
	for r, raw := range t.Rows {
		row := make([]any, len(cols))
		for i := range cols {
			if convert[i] {
				row[i] = Coerce(raw[i], cols[i].Type)
			} else {
				row[i] = raw[i]
			}
		}
		out.Rows[r] = row
	}
	return out
}

func (c *Coercer) typeOf(name string, idx int, rows [][]string) models.ColumnType {
	if typ, ok := c.declared[name]; ok {
		return typ
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if typ, ok := c.fixed[name]; ok {
		return typ
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	typ := Infer(values)
	c.fixed[name] = typ
	return typ
}
