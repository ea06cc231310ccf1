package models

// ColumnType is the logical type of a table column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeTimestamp
	TypeBool
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeTimestamp:
		return "timestamp"
	case TypeBool:
		return "bool"
	default:
		return "string"
	}
}

type Column struct {
	Name string
	Type ColumnType
}

// Table is a column-named batch of rows. A nil cell is NULL.
// Cell values are int64, float64, string, bool or time.Time.
type Table struct {
	Columns []Column
	Rows    [][]any
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Schema returns a copy of the column list, the zero-row head of the table.
func (t *Table) Schema() []Column {
	out := make([]Column, len(t.Columns))
	copy(out, t.Columns)
	return out
}

// Chunks splits the table into consecutive slices of at most size rows.
// The slices share the row storage of t.
func (t *Table) Chunks(size int) []*Table {
	if size <= 0 {
		size = len(t.Rows)
	}

	var out []*Table
	for i := 0; i < len(t.Rows); i += size {
		end := min(i+size, len(t.Rows))
		out = append(out, &Table{Columns: t.Columns, Rows: t.Rows[i:end]})
	}
	return out
}

// Concat stacks tables by column name. The result carries the union of all
// columns: canonical trip columns first in canonical order, then any others in
// first-seen order. Cells of columns a table lacks are NULL.
func Concat(tables ...*Table) *Table {
	seen := make(map[string]ColumnType)
	var extra []string
	total := 0

	for _, t := range tables {
		if t == nil {
			continue
		}
		total += len(t.Rows)
		for _, c := range t.Columns {
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = c.Type
			if _, canonical := canonicalPosition[c.Name]; !canonical {
				extra = append(extra, c.Name)
			}
		}
	}

	out := &Table{Rows: make([][]any, 0, total)}
	for _, name := range TripColumnOrder {
		if typ, ok := seen[name]; ok {
			out.Columns = append(out.Columns, Column{Name: name, Type: typ})
		}
	}
	for _, name := range extra {
		out.Columns = append(out.Columns, Column{Name: name, Type: seen[name]})
	}

	for _, t := range tables {
		if t == nil {
			continue
		}
		// position of each output column in t
		src := make([]int, len(out.Columns))
		for i, c := range out.Columns {
			src[i] = t.Index(c.Name)
		}
		for _, row := range t.Rows {
			dst := make([]any, len(out.Columns))
			for i, j := range src {
				if j >= 0 {
					dst[i] = row[j]
				}
			}
			out.Rows = append(out.Rows, dst)
		}
	}

	return out
}

// RowStream yields raw string rows of a delimited file.
type RowStream interface {
	Header() []string
	// Next returns up to n rows. It returns io.EOF together with the final
	// (possibly empty) batch.
	Next(n int) ([][]string, error)
	Close() error
}
