package dialect_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/arrayrel/dialect"
	"github.com/syssam/arrayrel/dialect/sql"
)

func TestNopTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	// Statements go through the wrapped driver; Commit and Rollback reach
	// nothing, so the mock expects neither.
	mock.ExpectExec("UPDATE articles").WillReturnResult(sqlmock.NewResult(0, 1))

	drv := sql.OpenDB(dialect.Postgres, db)
	tx := dialect.NopTx(drv)
	var res sql.Result
	require.NoError(t, tx.Exec(ctx, "UPDATE articles SET headline = $1", []any{"NASA"}, &res))
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
