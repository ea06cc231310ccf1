// Package normalize maps variant-specific trip tables onto the canonical trip schema.
package normalize

import (
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
)

// Normalize renames source columns to canonical names, drops everything outside
// the canonical set, coerces values to the canonical types and appends the
// variant tag and extractedAt to every row. Canonical columns the source lacks
// are omitted, not filled.
func Normalize(raw *models.Table, variant types.TaxiType, extractedAt time.Time) *models.Table {
	// canonical name -> source column index, first match wins
	src := make(map[string]int)
	for i, c := range raw.Columns {
		name := c.Name
		if renamed, ok := models.TripRenames[name]; ok {
			name = renamed
		}
		if name == models.ColTaxiType || name == models.ColExtractedAt {
			continue
		}
		if _, canonical := models.CanonicalType(name); !canonical {
			continue
		}
		if _, dup := src[name]; !dup {
			src[name] = i
		}
	}

	var (
		cols []models.Column
		idx  []int
	)
	for _, col := range models.TripSchema {
		if i, ok := src[col.Name]; ok {
			cols = append(cols, col)
			idx = append(idx, i)
		}
	}
	cols = append(cols,
		models.Column{Name: models.ColTaxiType, Type: models.TypeString},
		models.Column{Name: models.ColExtractedAt, Type: models.TypeTimestamp},
	)

	tag := string(variant)
	ts := extractedAt.UTC()

	out := &models.Table{Columns: cols, Rows: make([][]any, len(raw.Rows))}
	for r, in := range raw.Rows {
		row := make([]any, len(cols))
		for j, i := range idx {
			row[j] = Coerce(in[i], cols[j].Type)
		}
		row[len(idx)] = tag
		row[len(idx)+1] = ts
		out.Rows[r] = row
	}
	return out
}
