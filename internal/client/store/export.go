package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/common"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

// Row is one exported row keyed by column name.
type Row map[string]any

// ExportTables reads every local table inside one transaction so the result
// is a consistent snapshot. TEXT columns come back as strings, so the rows
// encode to JSON as-is.
func (s *Store) ExportTables(ctx context.Context) (map[string][]Row, error) {
	out := make(map[string][]Row, len(models.AllTables))
	err := s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range models.AllTables {
			rows, err := exportTable(ctx, tx, table)
			if err != nil {
				return fmt.Errorf("export %s: %w", table, err)
			}
			out[table] = rows
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrStorage) {
			return nil, err
		}
		return nil, storageErr("export tables", err)
	}
	return out, nil
}

func exportTable(ctx context.Context, tx dbx.DBTX, table string) ([]Row, error) {
	rows, err := tx.QueryContext(ctx, `SELECT * FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
