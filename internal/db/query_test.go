package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockHDb(t *testing.T) (*HDb, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	return &HDb{DB: sqlx.NewDb(mockDB, "sqlmock"), Dialect: dialects["sqlite"]}, mock
}

func TestExecuteQueryNormalizesBytes(t *testing.T) {
	hdb, mock := newMockHDb(t)

	mock.ExpectQuery("Select STATUS, SALES from Sales").
		WillReturnRows(sqlmock.NewRows([]string{"STATUS", "SALES"}).
			AddRow([]byte("Shipped"), 200.5).
			AddRow(nil, 300.0))

	result, err := hdb.ExecuteQuery(context.Background(), "Select STATUS, SALES from Sales")
	require.NoError(t, err)

	assert.Equal(t, []string{"STATUS", "SALES"}, result.Columns)
	assert.Equal(t, [][]any{{"Shipped", 200.5}, {nil, 300.0}}, result.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteQueryReturnsEngineError(t *testing.T) {
	hdb, mock := newMockHDb(t)

	syntaxErr := errors.New(`near "SELECT": syntax error`)
	mock.ExpectQuery("Select SELECT * FROM Sales").WillReturnError(syntaxErr)

	_, err := hdb.ExecuteQuery(context.Background(), "Select SELECT * FROM Sales")
	assert.ErrorIs(t, err, syntaxErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteQueryReturnsRowError(t *testing.T) {
	hdb, mock := newMockHDb(t)

	rowErr := errors.New("interrupted")
	mock.ExpectQuery("Select ORDERNUMBER from Sales").
		WillReturnRows(sqlmock.NewRows([]string{"ORDERNUMBER"}).
			AddRow(100).
			RowError(0, rowErr))

	_, err := hdb.ExecuteQuery(context.Background(), "Select ORDERNUMBER from Sales")
	assert.ErrorIs(t, err, rowErr)
}

func TestExecuteQueryEmptyResult(t *testing.T) {
	hdb, mock := newMockHDb(t)

	mock.ExpectQuery("Select ORDERNUMBER from Sales where 1 = 0").
		WillReturnRows(sqlmock.NewRows([]string{"ORDERNUMBER"}))

	result, err := hdb.ExecuteQuery(context.Background(), "Select ORDERNUMBER from Sales where 1 = 0")
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.NotNil(t, result.Rows)
}

func TestExecuteQueryMalformedSQL(t *testing.T) {
	ctx := context.Background()

	hdb, err := LoadTable(ctx, "sqlite", salesDataset(), "Sales")
	require.NoError(t, err)
	t.Cleanup(func() { _ = hdb.Close() })

	_, err = hdb.ExecuteQuery(ctx, "Select SELECT * FROM Sales")
	assert.Error(t, err)

	// The single pinned connection is released after the failure
	result, err := hdb.ExecuteQuery(ctx, "Select COUNT(*) FROM Sales")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(2)}}, result.Rows)
}
