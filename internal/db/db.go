package db

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jmoiron/sqlx"
)

var dialects = make(map[string]Dialect)

// HDb is one hosting engine holding the loaded table.
type HDb struct {
	*sqlx.DB
	Dialect
}

// Dialect describes how to open a fresh in-memory engine for a driver
// and which column types it uses for inferred data.
type Dialect struct {
	// Name is the engine label shown to the model, e.g. "sqlite".
	Name string
	// DataSourceName opens a private in-memory database.
	DataSourceName string
	// MaxOpenConns pins the pool size; 0 leaves database/sql's default.
	MaxOpenConns int
	columnTypes  map[columnType]string
}

func (d Dialect) sqlType(ct columnType) string {
	if t, ok := d.columnTypes[ct]; ok {
		return t
	}
	return d.columnTypes[columnTypeText]
}

// NewHDb allocates a new, empty in-memory engine for driverName.
// Every call yields an independent database.
func NewHDb(driverName string) (*HDb, error) {
	dialect, ok := dialects[driverName]
	if !ok {
		return nil, fmt.Errorf("unsupported engine driver %q", driverName)
	}

	db, err := sqlx.Open(driverName, dialect.DataSourceName)
	if err != nil {
		return nil, err
	}
	if dialect.MaxOpenConns > 0 {
		db.SetMaxOpenConns(dialect.MaxOpenConns)
	}

	return &HDb{db, dialect}, nil
}

// Drivers lists the registered engine drivers.
func Drivers() []string {
	return slices.Sorted(maps.Keys(dialects))
}
