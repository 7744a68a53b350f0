package db

import (
	// Register the modernc sqlite driver under the name "sqlite"
	_ "modernc.org/sqlite"
)

func init() {
	dialects["sqlite"] = Dialect{
		Name:           "sqlite",
		DataSourceName: ":memory:",
		// Each connection to ":memory:" is a separate database, so the pool
		// must never hand out a second one.
		MaxOpenConns: 1,
		columnTypes: map[columnType]string{
			columnTypeText:    "TEXT",
			columnTypeInteger: "INTEGER",
			columnTypeReal:    "REAL",
		},
	}
}
