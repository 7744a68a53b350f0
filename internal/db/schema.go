package db

import (
	"context"
	"fmt"
)

// Schema is the table shape shown to the model. Column names keep the
// engine's order and are not deduplicated.
type Schema struct {
	Table   string
	Columns []string
	Dialect string
}

// LoadSchema reads the column names of tableName as the engine reports them.
func (hdb *HDb) LoadSchema(ctx context.Context, tableName string) (Schema, error) {
	rows, err := hdb.QueryxContext(ctx, fmt.Sprintf(`SELECT * FROM %s LIMIT 0`, quoteIdent(tableName)))
	if err != nil {
		return Schema{}, fmt.Errorf("describe table %q: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Schema{}, fmt.Errorf("describe table %q: %w", tableName, err)
	}

	return Schema{
		Table:   tableName,
		Columns: columns,
		Dialect: hdb.Dialect.Name,
	}, nil
}
