package arrayrel_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/arrayrel"
)

func pks(recs []*arrayrel.Record) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r.PK()
	}
	return out
}

func TestPrefetchForward(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, true)
	mock.ExpectQuery(selectArticles + ` ORDER BY "t0"."headline"`).
		WillReturnRows(articleRows().
			AddRow(int64(1), "A", "{2,3}").
			AddRow(int64(2), "B", "{3}"))
	mock.ExpectQuery(`SELECT "t0"."id", "t0"."title" FROM "publications" AS "t0" WHERE "t0"."id" = ANY($1::bigint[]) ORDER BY "t0"."title"`).
		WithArgs("{2,3}").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(int64(3), "Science News").
			AddRow(int64(2), "The Python Journal"))

	recs, err := c.Query("Article").WithRelated("publications").All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	pubs, err := recs[0].Related("publications")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(3)}, pks(pubs))
	pubs, err = recs[1].Related("publications")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3)}, pks(pubs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrefetchReverse(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, true)
	mock.ExpectQuery(`SELECT "t0"."id", "t0"."title" FROM "publications" AS "t0" ORDER BY "t0"."title"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(int64(2), "Science News").
			AddRow(int64(3), "The Python Journal"))
	mock.ExpectQuery(selectArticles + ` WHERE "t0"."publications" && $1::bigint[] ORDER BY "t0"."headline"`).
		WithArgs("{2,3}").
		WillReturnRows(articleRows().
			AddRow(int64(1), "A", "{2,3}").
			AddRow(int64(2), "B", "{3}"))

	recs, err := c.Query("Publication").WithRelated("article_set").All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	arts, err := recs[0].Related("article_set")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1)}, pks(arts))
	arts, err = recs[1].Related("article_set")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, pks(arts))

	_, err = recs[0].Related("publications")
	assert.True(t, arrayrel.IsNotLoaded(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrefetchPerRecord(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, false)
	mock.ExpectQuery(selectArticles + ` ORDER BY "t0"."headline"`).
		WillReturnRows(articleRows().AddRow(int64(1), "A", "{2}"))
	mock.ExpectQuery(`SELECT "t0"."id", "t0"."title" FROM "publications" AS "t0" WHERE "t0"."id" = ANY((SELECT "publications" FROM "articles" WHERE "id" = $1)) ORDER BY "t0"."title"`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(2), "Science News"))

	recs, err := c.Query("Article").WithRelated("publications").All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	pubs, err := recs[0].Related("publications")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2)}, pks(pubs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrefetchUnknown(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, true)
	mock.ExpectQuery(selectArticles + ` ORDER BY "t0"."headline"`).
		WillReturnRows(articleRows().AddRow(int64(1), "A", "{}"))

	_, err := c.Query("Article").WithRelated("authors").All(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, arrayrel.ErrUnknownField)
	require.NoError(t, mock.ExpectationsWereMet())
}
