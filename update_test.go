package arrayrel_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/arrayrel"
	"github.com/syssam/arrayrel/dialect/sql/sqlarray"
)

func TestQueryUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Array", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectExec(appendSQL("articles", "publications", "bigint", `"id" IN (SELECT "t0"."id" FROM "articles" AS "t0" WHERE "t0"."headline" = $2)`)).
			WithArgs("{3}", "Go").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		n, err := c.Query("Article").Filter("headline", "Go").
			Update(ctx, sqlarray.AppendDistinct("publications", "bigint", int64(3)))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Inherited", func(t *testing.T) {
		c, mock := newClient(t, false)
		ids := `(SELECT "t0"."place_ptr_id" FROM "restaurants" AS "t0" JOIN "places" AS "t1" ON "t0"."place_ptr_id" = "t1"."id" WHERE "t0"."serves_pizza" = $2)`
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "places" SET "name" = $1 WHERE "id" IN ` + ids).
			WithArgs("Pizzeria", true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "restaurants" SET "toppings" = '{}'::uuid[] WHERE "place_ptr_id" IN ` +
			`(SELECT "t0"."place_ptr_id" FROM "restaurants" AS "t0" JOIN "places" AS "t1" ON "t0"."place_ptr_id" = "t1"."id" WHERE "t0"."serves_pizza" = $1)`).
			WithArgs(true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		n, err := c.Query("Restaurant").Filter("serves_pizza", true).
			Update(ctx, arrayrel.Set("name", "Pizzeria"), sqlarray.Clear("toppings", "uuid"))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Key", func(t *testing.T) {
		c, mock := newClient(t, false)
		_, err := c.Query("Article").Update(ctx, arrayrel.Set("id", 9))
		require.Error(t, err)
		assert.ErrorIs(t, err, arrayrel.ErrKeyAssign)
		assert.True(t, arrayrel.IsValidationError(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown", func(t *testing.T) {
		c, mock := newClient(t, false)
		_, err := c.Query("Article").Update(ctx, arrayrel.Set("nosuch", 9))
		require.Error(t, err)
		assert.ErrorIs(t, err, arrayrel.ErrUnknownField)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQueryFormat(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, false)
	mock.ExpectQuery(`SELECT "t0"."id", "t0"."headline", ARRAY(SELECT elem FROM unnest("t0"."publications") WITH ORDINALITY AS a(elem, pos) WHERE NOT (elem = ANY($1::bigint[])) ORDER BY pos) AS "publications" FROM "articles" AS "t0" ORDER BY "t0"."headline"`).
		WithArgs("{1}").
		WillReturnRows(articleRows().AddRow(int64(1), "A", "{2}"))

	recs, err := c.Query("Article").Format(ctx, sqlarray.RemoveAll("publications", "bigint", int64(1)))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []any{int64(2)}, recs[0].IDs("publications"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("NoMatch", func(t *testing.T) {
		c, mock := newClient(t, true)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "t0"."id" FROM "publications" AS "t0" WHERE "t0"."id" = $1 FOR UPDATE`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectCommit()

		n, err := c.Query("Publication").Filter("pk", 1).Delete(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WithoutCascade", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "t0"."id" FROM "publications" AS "t0" WHERE "t0"."id" = $1 FOR UPDATE`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectExec(`DELETE FROM "publications" WHERE "id" = ANY($1::bigint[])`).
			WithArgs("{1}").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		n, err := c.Query("Publication").Filter("pk", 1).Delete(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Descendants", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "t0"."id" FROM "places" AS "t0" WHERE "t0"."name" = $1 FOR UPDATE`).
			WithArgs("Closed").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(4)))
		mock.ExpectExec(`DELETE FROM "restaurants" WHERE "place_ptr_id" = ANY($1::bigint[])`).
			WithArgs("{3,4}").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "places" WHERE "id" = ANY($1::bigint[])`).
			WithArgs("{3,4}").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		n, err := c.Query("Place").Filter("name", "Closed").Delete(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
