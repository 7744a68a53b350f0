package db

import (
	_ "github.com/marcboeker/go-duckdb/v2"
)

func init() {
	dialects["duckdb"] = Dialect{
		Name:           "duckdb",
		DataSourceName: "",
		columnTypes: map[columnType]string{
			columnTypeText:    "VARCHAR",
			columnTypeInteger: "BIGINT",
			columnTypeReal:    "DOUBLE",
		},
	}
}
