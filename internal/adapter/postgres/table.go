package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-ingest/pkg/postgres"
	"github.com/Temutjin2k/taxi-ingest/pkg/trm"
)

// TableWriter creates trip tables and bulk-loads chunks into them with COPY.
// Every method runs in a transaction: the one carried by ctx when there is one,
// otherwise its own.
type TableWriter struct {
	db trm.Querier
	tx trm.TxManager
}

func NewTableWriter(db trm.Querier, tx trm.TxManager) *TableWriter {
	return &TableWriter{db: db, tx: tx}
}

// Replace drops table and recreates it empty with the given columns.
func (w *TableWriter) Replace(ctx context.Context, table string, schema []models.Column) error {
	const op = "TableWriter.Replace"
	ctx = wrap.WithAction(ctx, types.ActionCreateTable)

	ident, err := identifier(table)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	ddl, err := createTableSQL(ident, schema, false)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	err = w.tx.Do(ctx, func(ctx context.Context) error {
		q := trm.TxorDB(ctx, w.db)

		if _, err := q.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		if _, err := q.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		return nil
	})
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %s: %w", op, table, err))
	}
	return nil
}

// Ensure creates table when it does not exist and leaves it alone otherwise.
func (w *TableWriter) Ensure(ctx context.Context, table string, schema []models.Column) error {
	const op = "TableWriter.Ensure"
	ctx = wrap.WithAction(ctx, types.ActionCreateTable)

	ident, err := identifier(table)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	ddl, err := createTableSQL(ident, schema, true)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	err = w.tx.Do(ctx, func(ctx context.Context) error {
		if len(ident) > 1 {
			if _, err := trm.TxorDB(ctx, w.db).Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{ident[0]}.Sanitize()); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
		}
		_, err := trm.TxorDB(ctx, w.db).Exec(ctx, ddl)
		return err
	})
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %s: %w", op, table, err))
	}
	return nil
}

// Append copies every row of chunk into table and returns the number copied.
func (w *TableWriter) Append(ctx context.Context, table string, chunk *models.Table) (int64, error) {
	const op = "TableWriter.Append"
	ctx = wrap.WithAction(ctx, types.ActionAppendChunk)

	if chunk.Len() == 0 {
		return 0, nil
	}

	ident, err := identifier(table)
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	var copied int64
	err = w.tx.Do(ctx, func(ctx context.Context) error {
		n, err := trm.TxorDB(ctx, w.db).CopyFrom(ctx, ident, chunk.Names(), pgx.CopyFromRows(chunk.Rows))
		if err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		copied = n
		return nil
	})
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %s: %w", op, table, err))
	}
	return copied, nil
}

// ReplaceZones swaps the zone lookup table for zones in one transaction.
func (w *TableWriter) ReplaceZones(ctx context.Context, table string, zones []models.Zone) error {
	const op = "TableWriter.ReplaceZones"
	ctx = wrap.WithAction(ctx, types.ActionReplaceZones)

	ident, err := identifier(table)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	ddl, err := createTableSQL(ident, models.ZoneColumns, false)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	names := make([]string, len(models.ZoneColumns))
	for i, c := range models.ZoneColumns {
		names[i] = c.Name
	}
	rows := make([][]any, len(zones))
	for i, z := range zones {
		rows[i] = []any{z.LocationID, z.Borough, z.Zone, z.ServiceZone}
	}

	err = w.tx.Do(ctx, func(ctx context.Context) error {
		q := trm.TxorDB(ctx, w.db)

		if _, err := q.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		if _, err := q.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		if _, err := q.CopyFrom(ctx, ident, names, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		return nil
	})
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %s: %w", op, table, err))
	}
	return nil
}

// RowCount returns the number of rows in table, or ErrTableNotFound.
func (w *TableWriter) RowCount(ctx context.Context, table string) (int64, error) {
	const op = "TableWriter.RowCount"

	ident, err := identifier(table)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var n int64
	err = trm.TxorDB(ctx, w.db).QueryRow(ctx, "SELECT count(*) FROM "+ident.Sanitize()).Scan(&n)
	if err != nil {
		if postgres.IsUndefinedTable(err) {
			return 0, fmt.Errorf("%s: %s: %w", op, table, types.ErrTableNotFound)
		}
		return 0, fmt.Errorf("%s: %s: %w", op, table, err)
	}
	return n, nil
}

// identifier splits an optionally schema-qualified name.
func identifier(table string) (pgx.Identifier, error) {
	parts := strings.Split(strings.TrimSpace(table), ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidTableName, table)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidTableName, table)
		}
	}
	return pgx.Identifier(parts), nil
}

func createTableSQL(ident pgx.Identifier, schema []models.Column, ifNotExists bool) (string, error) {
	if len(schema) == 0 {
		return "", types.ErrEmptyTable
	}

	defs := make([]string, len(schema))
	seen := make(map[string]bool, len(schema))
	for i, c := range schema {
		if c.Name == "" || seen[c.Name] {
			return "", errors.New("empty or duplicate column name " + c.Name)
		}
		seen[c.Name] = true
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + columnType(c.Type)
	}

	stmt := "CREATE TABLE "
	if ifNotExists {
		stmt += "IF NOT EXISTS "
	}
	return stmt + ident.Sanitize() + " (" + strings.Join(defs, ", ") + ")", nil
}

func columnType(t models.ColumnType) string {
	switch t {
	case models.TypeInt:
		return "BIGINT"
	case models.TypeFloat:
		return "DOUBLE PRECISION"
	case models.TypeTimestamp:
		return "TIMESTAMP"
	case models.TypeBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
