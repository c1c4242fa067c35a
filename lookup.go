package arrayrel

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/dialect/sql/sqlarray"
	"github.com/syssam/arrayrel/dialect/sql/sqlgraph"
	"github.com/syssam/arrayrel/graph"
)

// Lookup operators.
var (
	// arrayOps apply to a forward relation column.
	arrayOps = map[string]bool{
		"exact": true, "exactly": true, "contains": true, "contained_by": true,
		"overlap": true, "in": true, "gt": true, "gte": true, "lt": true,
		"lte": true, "len": true, "isnull": true,
	}
	// reverseOps apply to a reverse relation, comparing owner keys.
	reverseOps = map[string]bool{
		"exact": true, "in": true, "gt": true, "gte": true, "lt": true,
		"lte": true, "isnull": true,
	}
)

// scope translates lookups of a single statement. Tables joined for a
// lookup path are shared by all lookups of the scope, and aliases are
// unique across scopes sharing an allocator.
type scope struct {
	cfg     *config
	planner *sqlgraph.Planner
	aliases *sqlgraph.Aliases
	prefix  string
	joins   []joinStep
}

type joinStep struct {
	table *sql.SelectTable
	on    *sql.Predicate
}

func (s *scope) clone() *scope {
	c := *s
	c.aliases = s.aliases.Clone()
	c.joins = slices.Clone(s.joins)
	return &c
}

// sub returns a scope for a nested statement sharing the alias allocator.
func (s *scope) sub() *scope {
	return &scope{
		cfg:     s.cfg,
		planner: s.planner,
		aliases: s.aliases,
		prefix:  fmt.Sprintf("%s!%d", s.prefix, s.aliases.Len()),
	}
}

// apply adds the joins of the scope to the selector.
func (s *scope) apply(sel *sql.Selector) {
	for _, j := range s.joins {
		sel.Join(j.table).OnP(j.on)
	}
}

// table returns the table of model m, where m is base or one of its
// ancestors and bt is the table of base at the given path. Missing
// ancestor tables are joined over the inheritance links.
func (s *scope) table(path string, base *graph.Model, bt *sql.SelectTable, m *graph.Model) (*sql.SelectTable, error) {
	t, cur := bt, base
	for cur != m {
		p := cur.Parent
		if p == nil {
			return nil, fmt.Errorf("arrayrel: %s does not inherit from %s", base.Name, m.Name)
		}
		path += "^" + p.Name
		next, created := s.aliases.Table(path, p.Table)
		if created {
			on, err := s.planner.On(sqlgraph.Step{Kind: sqlgraph.Inherit, FromKey: cur.ID.Column, ToKey: p.ID.Column}, t, next)
			if err != nil {
				return nil, err
			}
			s.joins = append(s.joins, joinStep{table: next, on: on})
		}
		t, cur = next, p
	}
	return t, nil
}

// fieldColumn returns the qualified column of f, a field of m or of one of
// its ancestors. Keys of the inheritance chain share the value of m's key.
func (s *scope) fieldColumn(path string, m *graph.Model, t *sql.SelectTable, f *graph.Field) (string, error) {
	if isKey(m, f) {
		return t.C(m.ID.Column), nil
	}
	ft, err := s.table(path, m, t, f.Model)
	if err != nil {
		return "", err
	}
	return ft.C(f.Column), nil
}

// isKey reports if f is the primary key of m or of one of its ancestors.
func isKey(m *graph.Model, f *graph.Field) bool {
	for c := m; c != nil; c = c.Parent {
		if c.ID == f {
			return true
		}
	}
	return false
}

// resolvable reports if name is a field, relation or reverse relation of m.
func resolvable(m *graph.Model, name string) bool {
	return m.Field(name) != nil || m.Relation(name) != nil || m.ReverseRelation(name) != nil
}

// predicate translates the lookup on model m, rooted at table root.
func (s *scope) predicate(root *sql.SelectTable, m *graph.Model, lookup string, v any) (*sql.Predicate, error) {
	p, err := s.resolve(root, m, lookup, v)
	if err != nil {
		return nil, &LookupError{Model: m.Name, Lookup: lookup, Err: err}
	}
	return p, nil
}

func (s *scope) resolve(root *sql.SelectTable, m *graph.Model, lookup string, v any) (*sql.Predicate, error) {
	parts := strings.Split(lookup, "__")
	path, cur, t := s.prefix, m, root
	for i, name := range parts {
		rest := parts[i+1:]
		if f := cur.Field(name); f != nil {
			if len(rest) > 1 {
				return nil, fmt.Errorf("%w %q", ErrUnsupportedLookup, strings.Join(rest, "__"))
			}
			op := "exact"
			if len(rest) == 1 {
				op = rest[0]
			}
			col, err := s.fieldColumn(path, cur, t, f)
			if err != nil {
				return nil, err
			}
			return s.fieldPredicate(col, cur, f, op, v)
		}
		if r := cur.Relation(name); r != nil {
			if len(rest) == 0 || len(rest) == 1 && arrayOps[rest[0]] {
				op := "exact"
				if len(rest) == 1 {
					op = rest[0]
				}
				ot, err := s.table(path, cur, t, r.Owner)
				if err != nil {
					return nil, err
				}
				return s.arrayPredicate(ot.C(r.Column), r, op, v)
			}
			if !resolvable(r.Target, rest[0]) {
				return nil, fmt.Errorf("%w %q", ErrUnsupportedLookup, rest[0])
			}
			ot, err := s.table(path, cur, t, r.Owner)
			if err != nil {
				return nil, err
			}
			next := path + "." + r.Name
			to, created := s.aliases.Table(next, r.Target.Table)
			if created {
				on, err := s.planner.On(sqlgraph.Step{Kind: sqlgraph.ArrayForward, Column: r.Column, ToKey: r.Target.ID.Column}, ot, to)
				if err != nil {
					return nil, err
				}
				s.joins = append(s.joins, joinStep{table: to, on: on})
			}
			path, cur, t = next, r.Target, to
			continue
		}
		if r := cur.ReverseRelation(name); r != nil {
			if len(rest) == 0 || len(rest) == 1 && reverseOps[rest[0]] {
				op := "exact"
				if len(rest) == 1 {
					op = rest[0]
				}
				return s.reversePredicate(t.C(cur.ID.Column), r, op, v)
			}
			if !resolvable(r.Owner, rest[0]) {
				return nil, fmt.Errorf("%w %q", ErrUnsupportedLookup, rest[0])
			}
			next := path + "<" + r.String()
			to, created := s.aliases.Table(next, r.Owner.Table)
			if created {
				on, err := s.planner.On(sqlgraph.Step{Kind: sqlgraph.ArrayReverse, Column: r.Column, FromKey: cur.ID.Column}, t, to)
				if err != nil {
					return nil, err
				}
				s.joins = append(s.joins, joinStep{table: to, on: on})
			}
			path, cur, t = next, r.Owner, to
			continue
		}
		return nil, fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return nil, ErrUnknownField
}

// arrayOperand converts the value of an array lookup to an array
// expression. Scalars are also returned as a single identifier.
func (s *scope) arrayOperand(r *graph.Relation, v any) (arr sql.Querier, id any, seq bool, err error) {
	elem := r.ElemType()
	if q, ok := v.(*Query); ok {
		sel, err := q.idSelector()
		if err != nil {
			return nil, nil, false, err
		}
		if !q.model.Is(r.Target) {
			return nil, nil, false, &TypeError{Expected: r.Target.Name, Got: q.model.Name + " query"}
		}
		return sql.ExprFunc(func(b *sql.Builder) {
			b.WriteString("ARRAY").Arg(sel)
		}), nil, true, nil
	}
	if !isSequence(v) {
		id, err := s.cfg.resolveID(r.Target, v)
		if err != nil {
			return nil, nil, false, err
		}
		return sqlarray.Of(elem, []any{id}), id, false, nil
	}
	ids, err := s.cfg.resolveIDs(r.Target, v)
	if err != nil {
		return nil, nil, false, err
	}
	return sqlarray.Of(elem, ids), nil, true, nil
}

func (s *scope) arrayPredicate(col string, r *graph.Relation, op string, v any) (*sql.Predicate, error) {
	switch op {
	case "isnull":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("arrayrel: isnull expects a bool, got %T", v)
		}
		if b {
			return sqlarray.IsEmpty(col), nil
		}
		return sqlarray.NotEmpty(col), nil
	case "len":
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("arrayrel: len expects an int, got %T", v)
		}
		return sqlarray.LenEQ(col, n), nil
	}
	arr, id, seq, err := s.arrayOperand(r, v)
	if err != nil {
		return nil, err
	}
	switch op {
	case "exact", "in":
		if !seq {
			return sqlarray.Has(col, sqlarray.Elem(r.ElemType(), id)), nil
		}
		if op == "in" {
			return sqlarray.Overlap(col, arr), nil
		}
		return sqlarray.EQ(col, arr), nil
	case "exactly":
		return sqlarray.EQ(col, arr), nil
	case "contains":
		return sqlarray.Contains(col, arr), nil
	case "contained_by":
		return sqlarray.ContainedBy(col, arr), nil
	case "overlap":
		return sqlarray.Overlap(col, arr), nil
	case "gt":
		return sqlarray.GT(col, arr), nil
	case "gte":
		return sqlarray.GTE(col, arr), nil
	case "lt":
		return sqlarray.LT(col, arr), nil
	case "lte":
		return sqlarray.LTE(col, arr), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedLookup, op)
	}
}

// reversePredicate matches rows whose key (the qualified column key) is
// held by the array column of an owner row matching the value:
//
//	EXISTS (SELECT "t1"."id" FROM "articles" AS "t1" WHERE "t1"."id" = ? AND "t1"."publications" @> ARRAY["t0"."id"])
//
// It uses containment directly, so it does not depend on the registered
// join strategies.
func (s *scope) reversePredicate(key string, r *graph.Relation, op string, v any) (*sql.Predicate, error) {
	owner := r.Owner
	inner, _ := s.aliases.Table(fmt.Sprintf("%s?%d", s.prefix, s.aliases.Len()), owner.Table)
	sub := sql.Select(inner.C(owner.ID.Column)).From(inner)
	if op == "isnull" {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("arrayrel: isnull expects a bool, got %T", v)
		}
		sub.Where(sqlarray.ContainsColumn(inner.C(r.Column), key))
		if b {
			return sql.NotExists(sub), nil
		}
		return sql.Exists(sub), nil
	}
	cond, err := s.keyPredicate(inner.C(owner.ID.Column), owner, op, v)
	if err != nil {
		return nil, err
	}
	sub.Where(cond).Where(sqlarray.ContainsColumn(inner.C(r.Column), key))
	return sql.Exists(sub), nil
}

// keyPredicate compares the key column of model m with identifiers,
// entities or a query of m's family.
func (s *scope) keyPredicate(col string, m *graph.Model, op string, v any) (*sql.Predicate, error) {
	if q, ok := v.(*Query); ok {
		if op != "exact" && op != "in" {
			return nil, fmt.Errorf("%w %q with a query value", ErrUnsupportedLookup, op)
		}
		sel, err := q.idSelector()
		if err != nil {
			return nil, err
		}
		if !q.model.Is(m) {
			return nil, &TypeError{Expected: m.Name, Got: q.model.Name + " query"}
		}
		return sql.In(col, sel), nil
	}
	if (op == "exact" || op == "in") && isSequence(v) {
		ids, err := s.cfg.resolveIDs(m, v)
		if err != nil {
			return nil, err
		}
		return sqlarray.In(col, m.IDType().SQLType(), ids), nil
	}
	id, err := s.cfg.resolveID(m, v)
	if err != nil {
		return nil, err
	}
	switch op {
	case "exact", "in":
		return sql.EQ(col, id), nil
	case "gt":
		return sql.GT(col, id), nil
	case "gte":
		return sql.GTE(col, id), nil
	case "lt":
		return sql.LT(col, id), nil
	case "lte":
		return sql.LTE(col, id), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedLookup, op)
	}
}

func (s *scope) fieldPredicate(col string, m *graph.Model, f *graph.Field, op string, v any) (*sql.Predicate, error) {
	if isKey(m, f) && op != "isnull" {
		return s.keyPredicate(col, m, op, v)
	}
	str := func() (string, error) {
		sv, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("arrayrel: %s expects a string, got %T", op, v)
		}
		return sv, nil
	}
	switch op {
	case "exact":
		if v == nil {
			return sql.IsNull(col), nil
		}
		return sql.EQ(col, v), nil
	case "iexact", "contains", "icontains", "startswith", "endswith":
		sv, err := str()
		if err != nil {
			return nil, err
		}
		switch op {
		case "iexact":
			return sql.EqualFold(col, sv), nil
		case "contains":
			return sql.Contains(col, sv), nil
		case "icontains":
			return sql.ContainsFold(col, sv), nil
		case "startswith":
			return sql.HasPrefix(col, sv), nil
		default:
			return sql.HasSuffix(col, sv), nil
		}
	case "gt":
		return sql.GT(col, v), nil
	case "gte":
		return sql.GTE(col, v), nil
	case "lt":
		return sql.LT(col, v), nil
	case "lte":
		return sql.LTE(col, v), nil
	case "in":
		if !isSequence(v) {
			return nil, fmt.Errorf("arrayrel: in expects a sequence, got %T", v)
		}
		rv := reflect.ValueOf(v)
		vs := make([]any, rv.Len())
		for i := range vs {
			vs[i] = rv.Index(i).Interface()
		}
		return sql.In(col, vs...), nil
	case "isnull":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("arrayrel: isnull expects a bool, got %T", v)
		}
		if b {
			return sql.IsNull(col), nil
		}
		return sql.NotNull(col), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedLookup, op)
	}
}
