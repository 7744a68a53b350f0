package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// LoadTable creates a fresh in-memory engine for driverName and writes data
// into tableName. No index or primary-key column is added. Column types are
// inferred from the values.
func LoadTable(ctx context.Context, driverName string, data *Dataset, tableName string) (*HDb, error) {
	hdb, err := NewHDb(driverName)
	if err != nil {
		return nil, err
	}

	if err := hdb.writeTable(ctx, data, tableName); err != nil {
		_ = hdb.Close()
		return nil, fmt.Errorf("write table %q: %w", tableName, err)
	}

	return hdb, nil
}

func (hdb *HDb) writeTable(ctx context.Context, data *Dataset, tableName string) error {
	types := inferColumnTypes(data)

	columnDefs := lo.Map(data.Header, func(name string, i int) string {
		return quoteIdent(name) + " " + hdb.sqlType(types[i])
	})
	createSQL := fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(tableName), strings.Join(columnDefs, ", "))

	tx, err := hdb.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(data.Header)), ", ")
	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, quoteIdent(tableName), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, record := range data.Records {
		args := make([]any, len(data.Header))
		for col := range data.Header {
			args[col] = convertValue(record[col], types[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
