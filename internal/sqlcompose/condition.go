package sqlcompose

import (
	"fmt"
	"strings"

	"github.com/relaydata/corebridge/internal/identifier"
	"github.com/relaydata/corebridge/internal/paramrenum"
	"github.com/relaydata/corebridge/internal/value"
)

// Operator enumerates the WHERE/HAVING operator classes of §4.2. For
// Eq/Ne/Gt/Gte/Lt/Lte/Like/ILike the string value is the literal SQL
// operator rendered between the column and its placeholder, and for
// IsNull/IsNotNull it is the suffix rendered after the column; the remaining
// operators are dispatched on explicitly and their string value is unused.
type Operator string

const (
	Eq    Operator = "="
	Ne    Operator = "!="
	Gt    Operator = ">"
	Gte   Operator = ">="
	Lt    Operator = "<"
	Lte   Operator = "<="
	Like  Operator = "LIKE"
	ILike Operator = "ILIKE"

	IsNull    Operator = "IS NULL"
	IsNotNull Operator = "IS NOT NULL"

	In    Operator = "IN"
	NotIn Operator = "NOT IN"

	InSubquery    Operator = "IN_SUBQUERY"
	NotInSubquery Operator = "NOT_IN_SUBQUERY"

	Exists    Operator = "EXISTS"
	NotExists Operator = "NOT_EXISTS"

	JSONContains    Operator = "JSON_CONTAINS"
	JSONContainedBy Operator = "JSON_CONTAINED_BY"
	JSONKeyExists   Operator = "JSON_KEY_EXISTS"

	JSONAnyKeyExists  Operator = "JSON_ANY_KEY_EXISTS"
	JSONAllKeysExist  Operator = "JSON_ALL_KEYS_EXIST"
)

// Condition is the triple (field, operator, value-or-subquery-or-key-array)
// of §3. Build one with Cond, NullCond, SubqueryCond, JSONLiteralCond,
// JSONKeyCond, JSONKeysCond or HavingAgg rather than constructing it directly.
type Condition struct {
	Column      string
	Op          Operator
	Val         value.Value
	Subquery    *SubPlan
	JSONLiteral []byte
	Keys        []string

	// rawLHS is true when Column already holds rendered SQL (an aggregate
	// expression used in a HAVING clause) rather than a plain identifier
	// that still needs quoting.
	rawLHS bool
}

// Cond builds a simple column/operator/value condition for use with Where.
// column is a plain identifier; validated when passed to Where.
func Cond(column string, op Operator, v value.Value) Condition {
	return Condition{Column: column, Op: op, Val: v}
}

// NullCond builds an IS NULL / IS NOT NULL condition.
func NullCond(column string, op Operator) Condition {
	return Condition{Column: column, Op: op}
}

// SubqueryCond builds an IN/NOT IN-subquery or EXISTS/NOT EXISTS condition.
// sub may be nil for InSubquery/NotInSubquery, which then renders as
// "col" IN (NULL) / NOT IN (NULL).
func SubqueryCond(column string, op Operator, sub *SubPlan) Condition {
	return Condition{Column: column, Op: op, Subquery: sub}
}

// JSONLiteralCond builds a JsonContains/JsonContainedBy condition. raw is
// inlined as a single-quoted ::jsonb literal (single quotes doubled); it is
// never parameterized, per §9's documented fragment-composition limitation.
func JSONLiteralCond(column string, op Operator, raw []byte) Condition {
	return Condition{Column: column, Op: op, JSONLiteral: raw}
}

// JSONKeyCond builds a parameterized JsonKeyExists ("col" ? $n) condition.
func JSONKeyCond(column string, key string) Condition {
	return Condition{Column: column, Op: JSONKeyExists, Val: value.NewString(key)}
}

// JSONKeysCond builds a JsonAnyKeyExists/JsonAllKeysExist condition. keys
// are rendered as a literal ARRAY[...] of single-quoted strings, not bound
// as parameters, matching the "identifier-derived literal array" payload
// described in §3.
func JSONKeysCond(column string, op Operator, keys []string) Condition {
	return Condition{Column: column, Op: op, Keys: keys}
}

// renderConditions renders conds in order, joined by the caller with
// " AND ", appending any bound values to *params in left-to-right order.
func renderConditions(conds []Condition, params *[]value.Value) ([]string, error) {
	out := make([]string, 0, len(conds))
	for _, c := range conds {
		lhs := c.Column
		if !c.rawLHS {
			if err := identifier.Validate(c.Column); err != nil {
				return nil, err
			}
			lhs = identifier.Quote(c.Column)
		}

		rendered, err := renderOne(c, lhs, params)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

func renderOne(c Condition, lhs string, params *[]value.Value) (string, error) {
	switch c.Op {
	case IsNull, IsNotNull:
		return lhs + " " + string(c.Op), nil

	case In, NotIn:
		*params = append(*params, c.Val)
		kw := "IN"
		if c.Op == NotIn {
			kw = "NOT IN"
		}
		return fmt.Sprintf("%s %s ($%d)", lhs, kw, len(*params)), nil

	case InSubquery, NotInSubquery:
		kw := "IN"
		if c.Op == NotInSubquery {
			kw = "NOT IN"
		}
		if c.Subquery == nil {
			return fmt.Sprintf("%s %s (NULL)", lhs, kw), nil
		}
		offset := len(*params)
		*params = append(*params, c.Subquery.Params...)
		rendered := paramrenum.Renumber(c.Subquery.SQL, offset)
		return fmt.Sprintf("%s %s (%s)", lhs, kw, rendered), nil

	case Exists, NotExists:
		kw := "EXISTS"
		if c.Op == NotExists {
			kw = "NOT EXISTS"
		}
		if c.Subquery == nil {
			return fmt.Sprintf("%s (SELECT 1 WHERE FALSE)", kw), nil
		}
		offset := len(*params)
		*params = append(*params, c.Subquery.Params...)
		rendered := paramrenum.Renumber(c.Subquery.SQL, offset)
		return fmt.Sprintf("%s (%s)", kw, rendered), nil

	case JSONContains, JSONContainedBy:
		op := "@>"
		if c.Op == JSONContainedBy {
			op = "<@"
		}
		escaped := strings.ReplaceAll(string(c.JSONLiteral), "'", "''")
		return fmt.Sprintf("%s %s '%s'::jsonb", lhs, op, escaped), nil

	case JSONKeyExists:
		*params = append(*params, c.Val)
		return fmt.Sprintf("%s ? $%d", lhs, len(*params)), nil

	case JSONAnyKeyExists, JSONAllKeysExist:
		op := "?|"
		if c.Op == JSONAllKeysExist {
			op = "?&"
		}
		quoted := make([]string, len(c.Keys))
		for i, k := range c.Keys {
			quoted[i] = "'" + strings.ReplaceAll(k, "'", "''") + "'"
		}
		return fmt.Sprintf("%s %s ARRAY[%s]", lhs, op, strings.Join(quoted, ", ")), nil

	default: // Eq, Ne, Gt, Gte, Lt, Lte, Like, ILike
		*params = append(*params, c.Val)
		return fmt.Sprintf("%s %s $%d", lhs, string(c.Op), len(*params)), nil
	}
}
