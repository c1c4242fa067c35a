package sql

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	tests := []struct {
		input     Querier
		wantQuery string
		wantArgs  []any
	}{
		{
			input:     Select("id", "headline").From(Table("articles")),
			wantQuery: `SELECT "id", "headline" FROM "articles"`,
		},
		{
			input:     Select().From(Table("articles")).Where(EQ("id", 1)),
			wantQuery: `SELECT * FROM "articles" WHERE "id" = $1`,
			wantArgs:  []any{1},
		},
		{
			input: func() Querier {
				t0 := Table("articles").As("t0")
				t1 := Table("publications").As("t1")
				return Select(t0.C("id")).
					From(t0).
					Join(t1).
					OnP(ExprP(t1.C("id") + " = ANY(" + t0.C("publications") + ")")).
					Where(HasPrefix(t1.C("title"), "Science")).
					Distinct()
			}(),
			wantQuery: `SELECT DISTINCT "t0"."id" FROM "articles" AS "t0" JOIN "publications" AS "t1" ON "t1"."id" = ANY("t0"."publications") WHERE "t1"."title" LIKE $1`,
			wantArgs:  []any{"Science%"},
		},
		{
			input: func() Querier {
				t0 := Table("restaurants").As("t0")
				t1 := Table("places").As("t1")
				return Select(t0.C("place_ptr_id"), t1.C("name")).
					From(t0).
					LeftJoin(t1).On(t0.C("place_ptr_id"), t1.C("id"))
			}(),
			wantQuery: `SELECT "t0"."place_ptr_id", "t1"."name" FROM "restaurants" AS "t0" LEFT JOIN "places" AS "t1" ON "t0"."place_ptr_id" = "t1"."id"`,
		},
		{
			input: Select("id").From(Table("articles")).
				Where(EQ("a", 1)).
				Where(Or(EQ("b", 2), IsNull("c"))),
			wantQuery: `SELECT "id" FROM "articles" WHERE ("a" = $1) AND (("b" = $2) OR ("c" IS NULL))`,
			wantArgs:  []any{1, 2},
		},
		{
			input:     Select("id").From(Table("articles")).Where(In("id", 1, 2, 3)),
			wantQuery: `SELECT "id" FROM "articles" WHERE "id" IN ($1, $2, $3)`,
			wantArgs:  []any{1, 2, 3},
		},
		{
			input:     Select("id").From(Table("articles")).Where(In("id")),
			wantQuery: `SELECT "id" FROM "articles" WHERE FALSE`,
		},
		{
			input:     Select("id").From(Table("articles")).Where(NotIn("id")),
			wantQuery: `SELECT "id" FROM "articles" WHERE TRUE`,
		},
		{
			input: Select("id").From(Table("articles")).
				Where(NotIn("id", Select("id").From(Table("drafts")).Where(EQ("owner", "a8m")))),
			wantQuery: `SELECT "id" FROM "articles" WHERE "id" NOT IN (SELECT "id" FROM "drafts" WHERE "owner" = $1)`,
			wantArgs:  []any{"a8m"},
		},
		{
			input: Select("id").From(Table("articles")).
				Where(Exists(Select("id").From(Table("publications")).Where(GT("id", 5)))).
				Where(Not(Contains("headline", "50%_off"))),
			wantQuery: `SELECT "id" FROM "articles" WHERE (EXISTS (SELECT "id" FROM "publications" WHERE "id" > $1)) AND (NOT ("headline" LIKE $2))`,
			wantArgs:  []any{5, `%50\%\_off%`},
		},
		{
			input: Select("id").From(Table("articles")).
				OrderBy(Desc("headline"), "id").
				Limit(10).
				Offset(20).
				ForUpdate(),
			wantQuery: `SELECT "id" FROM "articles" ORDER BY "headline" DESC, "id" LIMIT 10 OFFSET 20 FOR UPDATE`,
		},
		{
			input:     Select("id").From(Table("articles")).OrderBy("headline").Distinct().Count("id"),
			wantQuery: `SELECT COUNT(DISTINCT "id") FROM "articles"`,
		},
		{
			input:     Select().From(Table("articles")).Count(),
			wantQuery: `SELECT COUNT(*) FROM "articles"`,
		},
		{
			input: Select("id").
				AppendSelectExprAs(Expr("array_position(?, id)", "x"), "pos").
				From(Table("t")),
			wantQuery: `SELECT "id", array_position($1, id) AS "pos" FROM "t"`,
			wantArgs:  []any{"x"},
		},
		{
			input: Update("articles").
				Set("headline", "NASA").
				SetExpr("publications", Expr("array_remove(publications, ?)", 3)).
				Where(EQ("id", 1)).
				Returning("id"),
			wantQuery: `UPDATE "articles" SET "headline" = $1, "publications" = array_remove(publications, $2) WHERE "id" = $3 RETURNING "id"`,
			wantArgs:  []any{"NASA", 3, 1},
		},
		{
			input:     Update("articles").Set("headline", "x").Where(EQ("id", 1)).Where(NEQ("headline", "x")),
			wantQuery: `UPDATE "articles" SET "headline" = $1 WHERE ("id" = $2) AND ("headline" <> $3)`,
			wantArgs:  []any{"x", 1, "x"},
		},
		{
			input:     Delete("articles").Where(LTE("id", 10)),
			wantQuery: `DELETE FROM "articles" WHERE "id" <= $1`,
			wantArgs:  []any{10},
		},
		{
			input:     Delete("articles"),
			wantQuery: `DELETE FROM "articles"`,
		},
		{
			input:     Insert("articles").Columns("headline", "publications").Values("a", Expr("?::bigint[]", "{1}")).Returning("id"),
			wantQuery: `INSERT INTO "articles" ("headline", "publications") VALUES ($1, $2::bigint[]) RETURNING "id"`,
			wantArgs:  []any{"a", "{1}"},
		},
		{
			input:     Insert("articles").Returning("id"),
			wantQuery: `INSERT INTO "articles" DEFAULT VALUES RETURNING "id"`,
		},
		{
			input:     ExprP(`"tags" @> '{"a?"}' AND "n" = ?`, 1),
			wantQuery: `"tags" @> '{"a?"}' AND "n" = $1`,
			wantArgs:  []any{1},
		},
		{
			input:     EqualFold("title", "Go"),
			wantQuery: `"title" ILIKE $1`,
			wantArgs:  []any{"Go"},
		},
	}
	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			query, args := tt.input.Query()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestIdent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"id", `"id"`},
		{"t0.id", `"t0"."id"`},
		{`"t0"."id"`, `"t0"."id"`},
		{"*", "*"},
		{"COUNT(*)", "COUNT(*)"},
		{`we"ird`, `"we""ird"`},
	}
	for _, tt := range tests {
		b := &Builder{}
		assert.Equal(t, tt.want, b.Ident(tt.in).String())
	}
}

func TestSelectorClone(t *testing.T) {
	s := Select("id").From(Table("articles")).OrderBy("id")
	c := s.Clone().Where(EQ("id", 1)).Limit(1)
	query, _ := s.Query()
	assert.Equal(t, `SELECT "id" FROM "articles" ORDER BY "id"`, query)
	query, args := c.Query()
	assert.Equal(t, `SELECT "id" FROM "articles" WHERE "id" = $1 ORDER BY "id" LIMIT 1`, query)
	assert.Equal(t, []any{1}, args)
}

func TestSelectorErrors(t *testing.T) {
	s := Select("id").From(Table("articles")).OnP(EQ("id", 1))
	require.Error(t, s.Err())

	b := &Builder{}
	b.Join(s)
	require.Error(t, b.Err())
}

func TestFieldPredicates(t *testing.T) {
	title := StringField[func(*Selector)]("title")
	tests := []struct {
		pred      func(*Selector)
		wantQuery string
		wantArgs  []any
	}{
		{title.EQ("Go"), `SELECT * FROM "publications" AS "t0" WHERE "t0"."title" = $1`, []any{"Go"}},
		{title.HasSuffix("News"), `SELECT * FROM "publications" AS "t0" WHERE "t0"."title" LIKE $1`, []any{"%News"}},
		{title.In("a", "b"), `SELECT * FROM "publications" AS "t0" WHERE "t0"."title" IN ($1, $2)`, []any{"a", "b"}},
		{title.IsNull(), `SELECT * FROM "publications" AS "t0" WHERE "t0"."title" IS NULL`, nil},
		{FieldGTE("id", 3), `SELECT * FROM "publications" AS "t0" WHERE "t0"."id" >= $1`, []any{3}},
	}
	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			s := Select().From(Table("publications").As("t0"))
			tt.pred(s)
			query, args := s.Query()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
