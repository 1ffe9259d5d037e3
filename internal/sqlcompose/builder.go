// Package sqlcompose is the fluent SQL query composer: builder state in,
// (sql string, parameter vector) out. Every mutator validates the
// identifiers it touches immediately and sticks the first error it sees —
// subsequent mutator calls become no-ops once an error is recorded, and
// every terminal Build* method returns that error unchanged.
package sqlcompose

import (
	"github.com/relaydata/corebridge/internal/identifier"
)

// Builder accumulates a query plan (§3 "Query Plan (SQL side)") through
// chained mutator calls, then renders it with one of the Build* terminal
// methods.
type Builder struct {
	table string
	err   error

	selectCols []string
	aggregates []Aggregate
	windows    []WindowExpr
	distinct   bool
	distinctOn []string

	joins  []join
	wheres []Condition

	groupBy []string
	havings []Condition

	orderBy []orderTerm
	limit   *int64
	offset  *int64

	ctes   []cte
	setOps []setOp

	returning []string
}

// New starts a builder rooted at table. table is validated immediately.
func New(table string) *Builder {
	b := &Builder{}
	if err := identifier.Validate(table); err != nil {
		b.err = err
		return b
	}
	b.table = table
	return b
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Select sets the explicit projection column list.
func (b *Builder) Select(columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, c := range columns {
		if err := identifier.Validate(c); err != nil {
			return b.fail(err)
		}
	}
	b.selectCols = append(b.selectCols, columns...)
	return b
}

// Aggregate adds an aggregate projection/HAVING-eligible expression.
func (b *Builder) Aggregate(agg Aggregate) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := agg.renderSelect(); err != nil {
		return b.fail(err)
	}
	b.aggregates = append(b.aggregates, agg)
	return b
}

// Window adds a window-function projection expression.
func (b *Builder) Window(w WindowExpr) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := w.render(); err != nil {
		return b.fail(err)
	}
	b.windows = append(b.windows, w)
	return b
}

// Distinct sets a plain DISTINCT flag. DistinctOn, if also set, wins.
func (b *Builder) Distinct() *Builder {
	if b.err != nil {
		return b
	}
	b.distinct = true
	return b
}

// DistinctOn sets a DISTINCT ON (cols...) clause, which takes precedence
// over a plain Distinct() call if both are configured.
func (b *Builder) DistinctOn(columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, c := range columns {
		if err := identifier.Validate(c); err != nil {
			return b.fail(err)
		}
	}
	b.distinctOn = append(b.distinctOn, columns...)
	return b
}

// Join adds a join clause. table, alias and on's identifiers are validated
// immediately; kind is used as given; alias may be empty.
func (b *Builder) Join(kind JoinKind, table, alias string, on JoinCondition) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(table); err != nil {
		return b.fail(err)
	}
	if alias != "" {
		if err := identifier.Validate(alias); err != nil {
			return b.fail(err)
		}
	}
	if err := identifier.Validate(on.LeftColumn); err != nil {
		return b.fail(err)
	}
	if err := identifier.Validate(on.RightTableOrAlias); err != nil {
		return b.fail(err)
	}
	if err := identifier.Validate(on.RightColumn); err != nil {
		return b.fail(err)
	}
	b.joins = append(b.joins, join{Kind: kind, Table: table, Alias: alias, On: on})
	return b
}

// Where adds a WHERE condition, joined to the others with AND.
func (b *Builder) Where(cond Condition) *Builder {
	if b.err != nil {
		return b
	}
	if !cond.rawLHS {
		if err := identifier.Validate(cond.Column); err != nil {
			return b.fail(err)
		}
	}
	b.wheres = append(b.wheres, cond)
	return b
}

// GroupBy sets the GROUP BY column list.
func (b *Builder) GroupBy(columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, c := range columns {
		if err := identifier.Validate(c); err != nil {
			return b.fail(err)
		}
	}
	b.groupBy = append(b.groupBy, columns...)
	return b
}

// Having adds a HAVING condition, joined to the others with AND. Build
// Having conditions with HavingAgg.
func (b *Builder) Having(cond Condition) *Builder {
	if b.err != nil {
		return b
	}
	if !cond.rawLHS {
		if err := identifier.Validate(cond.Column); err != nil {
			return b.fail(err)
		}
	}
	b.havings = append(b.havings, cond)
	return b
}

// OrderBy appends one ORDER BY term.
func (b *Builder) OrderBy(column string, dir Direction) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(column); err != nil {
		return b.fail(err)
	}
	b.orderBy = append(b.orderBy, orderTerm{Column: column, Dir: dir})
	return b
}

// Limit sets LIMIT n. n is bound as a BigInt (Int64) parameter.
func (b *Builder) Limit(n int64) *Builder {
	if b.err != nil {
		return b
	}
	v := n
	b.limit = &v
	return b
}

// Offset sets OFFSET n. n is bound as a BigInt (Int64) parameter; negative
// values are accepted and passed through unchanged.
func (b *Builder) Offset(n int64) *Builder {
	if b.err != nil {
		return b
	}
	v := n
	b.offset = &v
	return b
}

// WithCTE adds a named common table expression, rendered before SELECT.
// CTE params are spliced into the running parameter vector ahead of the
// main query's own WHERE/HAVING/LIMIT/OFFSET/set-operation params, in
// declaration order.
func (b *Builder) WithCTE(name string, sub SubPlan) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(name); err != nil {
		return b.fail(err)
	}
	b.ctes = append(b.ctes, cte{Name: name, Sub: sub})
	return b
}

// SetOp appends a set-operation (UNION/INTERSECT/EXCEPT, optionally ALL)
// against sub's right-hand side.
func (b *Builder) SetOp(op SetOperation, sub SubPlan) *Builder {
	if b.err != nil {
		return b
	}
	b.setOps = append(b.setOps, setOp{Operation: op, Sub: sub})
	return b
}

// Returning sets the RETURNING column list for UPDATE/DELETE. "*" collapses
// to a single RETURNING *; it is the only identifier text exempt from
// validation. INSERT and UPSERT always return * unconditionally and ignore
// this setting.
func (b *Builder) Returning(columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, c := range columns {
		if c == "*" {
			continue
		}
		if err := identifier.Validate(c); err != nil {
			return b.fail(err)
		}
	}
	b.returning = append(b.returning, columns...)
	return b
}
