package sqlcompose

import (
	"fmt"

	"github.com/relaydata/corebridge/internal/identifier"
	"github.com/relaydata/corebridge/internal/value"
)

// AggFunc enumerates the supported aggregate functions.
type AggFunc int

const (
	AggCount AggFunc = iota
	AggCountColumn
	AggCountDistinct
	AggSum
	AggAvg
	AggMin
	AggMax
)

// Aggregate is a projection or HAVING aggregate expression: FUNC(col) or
// FUNC(col) AS "alias" when used in the SELECT list. Alias is ignored when
// the aggregate is rendered for a HAVING clause via HavingAgg.
type Aggregate struct {
	Func   AggFunc
	Column string
	Alias  string
}

// Count builds a bare COUNT(*) aggregate with an optional projection alias.
func Count(alias string) Aggregate { return Aggregate{Func: AggCount, Alias: alias} }

// CountColumn builds a COUNT("col") aggregate.
func CountColumn(column, alias string) Aggregate {
	return Aggregate{Func: AggCountColumn, Column: column, Alias: alias}
}

// CountDistinct builds a COUNT(DISTINCT "col") aggregate.
func CountDistinct(column, alias string) Aggregate {
	return Aggregate{Func: AggCountDistinct, Column: column, Alias: alias}
}

// Sum builds a SUM("col") aggregate.
func Sum(column, alias string) Aggregate { return Aggregate{Func: AggSum, Column: column, Alias: alias} }

// Avg builds an AVG("col") aggregate.
func Avg(column, alias string) Aggregate { return Aggregate{Func: AggAvg, Column: column, Alias: alias} }

// Min builds a MIN("col") aggregate.
func Min(column, alias string) Aggregate { return Aggregate{Func: AggMin, Column: column, Alias: alias} }

// Max builds a MAX("col") aggregate.
func Max(column, alias string) Aggregate { return Aggregate{Func: AggMax, Column: column, Alias: alias} }

func (a Aggregate) bare() (string, error) {
	switch a.Func {
	case AggCount:
		return "COUNT(*)", nil
	case AggCountColumn:
		if err := identifier.Validate(a.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("COUNT(%s)", identifier.Quote(a.Column)), nil
	case AggCountDistinct:
		if err := identifier.Validate(a.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("COUNT(DISTINCT %s)", identifier.Quote(a.Column)), nil
	case AggSum:
		if err := identifier.Validate(a.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("SUM(%s)", identifier.Quote(a.Column)), nil
	case AggAvg:
		if err := identifier.Validate(a.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("AVG(%s)", identifier.Quote(a.Column)), nil
	case AggMin:
		if err := identifier.Validate(a.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("MIN(%s)", identifier.Quote(a.Column)), nil
	case AggMax:
		if err := identifier.Validate(a.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("MAX(%s)", identifier.Quote(a.Column)), nil
	default:
		return "", fmt.Errorf("sqlcompose: unknown aggregate function %d", a.Func)
	}
}

func (a Aggregate) renderSelect() (string, error) {
	base, err := a.bare()
	if err != nil {
		return "", err
	}
	if a.Alias == "" {
		return base, nil
	}
	if err := identifier.Validate(a.Alias); err != nil {
		return "", err
	}
	return base + " AS " + identifier.Quote(a.Alias), nil
}

// HavingAgg builds a HAVING condition whose left-hand side is a bare
// (alias-less) rendering of agg, e.g. `SUM("revenue") >= $n`. Column
// validation happens here, eagerly, so an invalid aggregate column is
// reported at the call that built the condition rather than at BuildSelect.
func HavingAgg(agg Aggregate, op Operator, v value.Value) (Condition, error) {
	sql, err := agg.bare()
	if err != nil {
		return Condition{}, err
	}
	return Condition{Column: sql, Op: op, Val: v, rawLHS: true}, nil
}
