package arrayrel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/arrayrel"
)

// appendSQL is the statement appending keys not yet held by the column.
func appendSQL(table, column, elem, where string) string {
	return `UPDATE "` + table + `" SET "` + column + `" = "` + column + `" || ARRAY(SELECT elem FROM unnest($1::` + elem + `[]) WITH ORDINALITY AS a(elem, pos) WHERE NOT (elem = ANY("` + column + `")) ORDER BY pos) WHERE ` + where
}

// removeSQL is the statement removing keys from the column.
func removeSQL(table, column, elem, where string) string {
	return `UPDATE "` + table + `" SET "` + column + `" = ARRAY(SELECT elem FROM unnest("` + column + `") WITH ORDINALITY AS a(elem, pos) WHERE NOT (elem = ANY($1::` + elem + `[])) ORDER BY pos) WHERE ` + where
}

func TestManagerAdd(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, false)
	mock.ExpectBegin()
	mock.ExpectExec(appendSQL("articles", "publications", "bigint", `"id" = $2`)).
		WithArgs("{2,3}", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mg, err := c.Related(arrayrel.Ref("Article", 1), "publications")
	require.NoError(t, err)
	assert.True(t, mg.Bound())
	assert.False(t, mg.Reverse())
	require.NoError(t, mg.Add(ctx, 2, arrayrel.Ref("Publication", 3), 2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerAddMissingOwner(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, false)
	mock.ExpectBegin()
	mock.ExpectExec(appendSQL("articles", "publications", "bigint", `"id" = $2`)).
		WithArgs("{2}", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	mg, err := c.Related(arrayrel.Ref("Article", 42), "publications")
	require.NoError(t, err)
	err = mg.Add(ctx, 2)
	require.Error(t, err)
	assert.True(t, arrayrel.IsMutationError(err))
	assert.True(t, arrayrel.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerSymmetric(t *testing.T) {
	ctx := context.Background()

	t.Run("Add", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectExec(appendSQL("people", "friends", "bigint", `"id" = $2`)).
			WithArgs("{2}", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(appendSQL("people", "friends", "bigint", `"id" = ANY($2::bigint[])`)).
			WithArgs("{1}", "{2}").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mg, err := c.Related(arrayrel.Ref("Person", 1), "friends")
		require.NoError(t, err)
		require.NoError(t, mg.Add(ctx, 2))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Remove", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectExec(removeSQL("people", "friends", "bigint", `"id" = $2`)).
			WithArgs("{2}", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(removeSQL("people", "friends", "bigint", `("id" = ANY($2::bigint[])) AND ("friends" @> $3::bigint[])`)).
			WithArgs("{1}", "{2}", "{1}").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mg, err := c.Related(arrayrel.Ref("Person", 1), "friends")
		require.NoError(t, err)
		require.NoError(t, mg.Remove(ctx, 2))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Clear", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "friends" FROM "people" WHERE "id" = $1 FOR UPDATE`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"friends"}).AddRow("{2,3}"))
		mock.ExpectExec(`UPDATE "people" SET "friends" = '{}'::bigint[] WHERE "id" = $1`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(removeSQL("people", "friends", "bigint", `("id" = ANY($2::bigint[])) AND ("friends" @> $3::bigint[])`)).
			WithArgs("{1}", "{2,3}", "{1}").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		mg, err := c.Related(arrayrel.Ref("Person", 1), "friends")
		require.NoError(t, err)
		require.NoError(t, mg.Clear(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestManagerReverse(t *testing.T) {
	ctx := context.Background()

	t.Run("Add", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectExec(appendSQL("articles", "publications", "bigint", `"id" = ANY($2::bigint[])`)).
			WithArgs("{7}", "{1,2}").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		mg, err := c.Related(arrayrel.Ref("Publication", 7), "article_set")
		require.NoError(t, err)
		assert.True(t, mg.Reverse())
		require.NoError(t, mg.Add(ctx, 1, 2))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Clear", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectExec(removeSQL("articles", "publications", "bigint", `"publications" @> $2::bigint[]`)).
			WithArgs("{7}", "{7}").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		mg, err := c.Related(arrayrel.Ref("Publication", 7), "article_set")
		require.NoError(t, err)
		require.NoError(t, mg.Clear(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Query", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectQuery(`SELECT "t0"."id" FROM "articles" AS "t0" WHERE "t0"."publications" @> $1::bigint[] ORDER BY "t0"."headline"`).
			WithArgs("{7}").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

		mg, err := c.Related(arrayrel.Ref("Publication", 7), "article_set")
		require.NoError(t, err)
		ids, err := mg.IDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1)}, ids)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestManagerSet(t *testing.T) {
	ctx := context.Background()
	current := `SELECT "publications" FROM "articles" WHERE "id" = $1 FOR UPDATE`

	t.Run("NoChange", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectQuery(current).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"publications"}).AddRow("{2,3}"))
		mock.ExpectCommit()

		mg, err := c.Related(arrayrel.Ref("Article", 1), "publications")
		require.NoError(t, err)
		require.NoError(t, mg.Set(ctx, []any{3, 2}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Difference", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectQuery(current).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"publications"}).AddRow("{2,3}"))
		mock.ExpectExec(removeSQL("articles", "publications", "bigint", `"id" = $2`)).
			WithArgs("{2}", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(appendSQL("articles", "publications", "bigint", `"id" = $2`)).
			WithArgs("{4}", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mg, err := c.Related(arrayrel.Ref("Article", 1), "publications")
		require.NoError(t, err)
		require.NoError(t, mg.Set(ctx, []any{3, 4}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WithClear", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "articles" SET "publications" = '{}'::bigint[] WHERE "id" = $1`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(appendSQL("articles", "publications", "bigint", `"id" = $2`)).
			WithArgs("{3,4}", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mg, err := c.Related(arrayrel.Ref("Article", 1), "publications")
		require.NoError(t, err)
		require.NoError(t, mg.Set(ctx, []any{3, 4}, arrayrel.WithClear()))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicates", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "songs" FROM "playlists" WHERE "id" = $1 FOR UPDATE`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"songs"}).AddRow("{1,2}"))
		mock.ExpectExec(`UPDATE "playlists" SET "songs" = $1::bigint[] WHERE "id" = $2`).
			WithArgs("{1,1,2}", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mg, err := c.Related(arrayrel.Ref("Playlist", 1), "songs")
		require.NoError(t, err)
		require.NoError(t, mg.Set(ctx, []any{1, 1, 2}))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestManagerQueryOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("TargetOrdering", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectQuery(`SELECT "t0"."id" FROM "publications" AS "t0" WHERE "t0"."id" = ANY((SELECT "publications" FROM "articles" WHERE "id" = $1)) ORDER BY "t0"."title"`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(2)))

		mg, err := c.Related(arrayrel.Ref("Article", 1), "publications")
		require.NoError(t, err)
		ids, err := mg.IDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []any{int64(3), int64(2)}, ids)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ArrayPosition", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectQuery(`SELECT "t0"."id" FROM "people" AS "t0" WHERE "t0"."id" = ANY((SELECT "friends" FROM "people" WHERE "id" = $1)) ORDER BY array_position((SELECT "friends" FROM "people" WHERE "id" = $2), "t0"."id")`).
			WithArgs(int64(1), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(2)))

		mg, err := c.Related(arrayrel.Ref("Person", 1), "friends")
		require.NoError(t, err)
		ids, err := mg.IDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []any{int64(3), int64(2)}, ids)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Count", func(t *testing.T) {
		c, mock := newClient(t, false)
		mock.ExpectQuery(`SELECT COUNT(*) FROM "people" AS "t0" WHERE "t0"."id" = ANY((SELECT "friends" FROM "people" WHERE "id" = $1))`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

		mg, err := c.Related(arrayrel.Ref("Person", 1), "friends")
		require.NoError(t, err)
		n, err := mg.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestManagerCreate(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, false)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "publications" ("title") VALUES ($1) RETURNING "id"`).
		WithArgs("Science News").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectQuery(`SELECT "t0"."id", "t0"."title" FROM "publications" AS "t0" WHERE "t0"."id" = $1 ORDER BY "t0"."title" LIMIT 2`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(4), "Science News"))
	mock.ExpectExec(appendSQL("articles", "publications", "bigint", `"id" = $2`)).
		WithArgs("{4}", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mg, err := c.Related(arrayrel.Ref("Article", 1), "publications")
	require.NoError(t, err)
	rec, err := mg.Create(ctx, map[string]any{"title": "Science News"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), rec.PK())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerErrors(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, false)

	mg, err := c.Related(arrayrel.Ref("Article", nil), "publications")
	require.NoError(t, err)
	assert.False(t, mg.Bound())
	var unbound *arrayrel.UnboundError
	require.ErrorAs(t, mg.Add(ctx, 1), &unbound)
	assert.Equal(t, "publications", unbound.Relation)
	assert.ErrorIs(t, mg.Clear(ctx), arrayrel.ErrUnbound)
	_, err = mg.All(ctx)
	assert.ErrorIs(t, err, arrayrel.ErrUnbound)

	mg, err = c.Related(arrayrel.Ref("Article", 1), "publications")
	require.NoError(t, err)
	assert.True(t, arrayrel.IsTypeError(mg.Add(ctx, arrayrel.Ref("Person", 2))))
	assert.True(t, arrayrel.IsTypeError(mg.Add(ctx, c.Query("Person"))))

	_, err = c.Related(arrayrel.Ref("Article", 1), "nosuch")
	assert.ErrorIs(t, err, arrayrel.ErrUnknownField)

	_, err = c.Related(arrayrel.Ref("Article", "abc"), "publications")
	assert.True(t, arrayrel.IsTypeError(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerRollbackOnFailure(t *testing.T) {
	ctx := context.Background()
	c, mock := newClient(t, false)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "publications" FROM "articles" WHERE "id" = $1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"publications"}).AddRow("{2}"))
	mock.ExpectExec(removeSQL("articles", "publications", "bigint", `"id" = $2`)).
		WithArgs("{2}", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(appendSQL("articles", "publications", "bigint", `"id" = $2`)).
		WithArgs("{5}", int64(1)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	mg, err := c.Related(arrayrel.Ref("Article", 1), "publications")
	require.NoError(t, err)
	err = mg.Set(ctx, []any{5})
	require.Error(t, err)
	assert.True(t, arrayrel.IsMutationError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
