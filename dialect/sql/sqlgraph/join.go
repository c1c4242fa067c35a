package sqlgraph

import (
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/dialect/sql/sqlarray"
)

// Kind is the kind of a join step.
type Kind uint8

// Join kinds.
const (
	// Inherit joins two tables of an inheritance chain over their shared key.
	Inherit Kind = iota + 1
	// ArrayForward joins the owner of an array relation to its targets.
	ArrayForward
	// ArrayReverse joins the target of an array relation to its owners.
	ArrayReverse
)

// String returns the name of the join kind.
func (k Kind) String() string {
	switch k {
	case Inherit:
		return "inherit"
	case ArrayForward:
		return "array-forward"
	case ArrayReverse:
		return "array-reverse"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Step is a single hop of a lookup path.
type Step struct {
	Kind Kind
	// Column is the array column on the owner table (array joins).
	Column string
	// FromKey is the key column on the "from" side. For reverse joins it is
	// the target's primary key; for inheritance joins the link column.
	FromKey string
	// ToKey is the key column on the "to" side. For forward joins it is the
	// target's primary key; for inheritance joins the referenced key.
	ToKey string
}

// A JoinStrategy renders the join condition of a step, given the table of
// the side the path comes from and the table it joins.
type JoinStrategy interface {
	JoinOn(step Step, from, to *sql.SelectTable) *sql.Predicate
}

// JoinFunc is an adapter to allow the use of ordinary functions as join strategies.
type JoinFunc func(step Step, from, to *sql.SelectTable) *sql.Predicate

// JoinOn calls f(step, from, to).
func (f JoinFunc) JoinOn(step Step, from, to *sql.SelectTable) *sql.Predicate {
	return f(step, from, to)
}

// Built-in strategies.
var (
	// InheritJoin equates the link column with the referenced key.
	InheritJoin = JoinFunc(func(step Step, from, to *sql.SelectTable) *sql.Predicate {
		return sql.ColumnsEQ(from.C(step.FromKey), to.C(step.ToKey))
	})
	// ArrayForwardJoin joins targets whose key is an element of the owner's
	// array: "to"."id" = ANY("from"."col").
	ArrayForwardJoin = JoinFunc(func(step Step, from, to *sql.SelectTable) *sql.Predicate {
		return sqlarray.HasColumn(from.C(step.Column), to.C(step.ToKey))
	})
	// ArrayReverseJoin joins owners whose array holds the target's key:
	// "to"."col" @> ARRAY["from"."id"].
	ArrayReverseJoin = JoinFunc(func(step Step, from, to *sql.SelectTable) *sql.Predicate {
		return sqlarray.ContainsColumn(to.C(step.Column), from.C(step.FromKey))
	})
)

// ErrNoStrategy is returned when a join is requested for a kind that has no
// registered strategy.
var ErrNoStrategy = errors.New("sqlgraph: no join strategy registered")

// Planner holds the join strategies registered per join kind.
type Planner struct {
	strategies map[Kind]JoinStrategy
}

// NewPlanner returns a planner with the inheritance strategy registered.
// The array strategies are registered only if enableArrays is set.
func NewPlanner(enableArrays bool) *Planner {
	p := &Planner{strategies: make(map[Kind]JoinStrategy)}
	p.Register(Inherit, InheritJoin)
	if enableArrays {
		p.Register(ArrayForward, ArrayForwardJoin)
		p.Register(ArrayReverse, ArrayReverseJoin)
	}
	return p
}

// Register sets the strategy of the given join kind, replacing any
// previously registered one.
func (p *Planner) Register(k Kind, s JoinStrategy) {
	p.strategies[k] = s
}

// Supports reports if a strategy is registered for the given kind.
func (p *Planner) Supports(k Kind) bool {
	_, ok := p.strategies[k]
	return ok
}

// On returns the join condition of the step.
func (p *Planner) On(step Step, from, to *sql.SelectTable) (*sql.Predicate, error) {
	s, ok := p.strategies[step.Kind]
	if !ok {
		return nil, fmt.Errorf("%w for %s joins", ErrNoStrategy, step.Kind)
	}
	return s.JoinOn(step, from, to), nil
}

// Join appends a JOIN of the "to" table to the selector.
func (p *Planner) Join(s *sql.Selector, step Step, from, to *sql.SelectTable) error {
	on, err := p.On(step, from, to)
	if err != nil {
		return err
	}
	s.Join(to).OnP(on)
	return nil
}

// Aliases allocates table aliases ("t0", "t1", ...) for a statement. A
// path that was already joined gets the same alias back, so chained
// lookups sharing a prefix share their joins.
type Aliases struct {
	prefix string
	byPath map[string]*sql.SelectTable
	n      int
}

// NewAliases returns an alias allocator using the given prefix.
func NewAliases(prefix string) *Aliases {
	return &Aliases{prefix: prefix, byPath: make(map[string]*sql.SelectTable)}
}

// Table returns the aliased table for the path, and reports if it was
// allocated by this call.
func (a *Aliases) Table(path, table string) (*sql.SelectTable, bool) {
	if t, ok := a.byPath[path]; ok {
		return t, false
	}
	t := sql.Table(table).As(a.prefix + strconv.Itoa(a.n))
	a.n++
	a.byPath[path] = t
	return t, true
}

// Len returns the number of allocated aliases.
func (a *Aliases) Len() int {
	return a.n
}

// Clone returns a copy of the allocator. Aliases allocated afterwards by
// either copy do not affect the other.
func (a *Aliases) Clone() *Aliases {
	return &Aliases{prefix: a.prefix, byPath: maps.Clone(a.byPath), n: a.n}
}
