package sqlcompose

import "github.com/relaydata/corebridge/internal/value"

// ColumnValue is one (column, value) pair fed to BuildInsert, BuildUpdate or
// BuildUpsert.
type ColumnValue struct {
	Column string
	Val    value.Value
}

// SubPlan is a pre-rendered SQL fragment with its own $1-numbered
// placeholders and parameter vector — the shape a CTE, subquery or
// set-operation right-hand side carries. The composer is opaque to how a
// SubPlan's SQL was produced; it only renumbers and splices it.
type SubPlan struct {
	SQL    string
	Params []value.Value
}

// cte is an internal (name, subplan) pair recorded by WithCTE.
type cte struct {
	Name string
	Sub  SubPlan
}

// SetOperation names a SQL set operator joining the main query to a
// SubPlan's right-hand side.
type SetOperation string

const (
	Union        SetOperation = "UNION"
	UnionAll     SetOperation = "UNION ALL"
	Intersect    SetOperation = "INTERSECT"
	IntersectAll SetOperation = "INTERSECT ALL"
	Except       SetOperation = "EXCEPT"
	ExceptAll    SetOperation = "EXCEPT ALL"
)

// setOp is an internal (operation, subplan) pair recorded by SetOp.
type setOp struct {
	Operation SetOperation
	Sub       SubPlan
}

// JoinKind names a SQL join type.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
	RightJoin JoinKind = "RIGHT JOIN"
	FullJoin  JoinKind = "FULL OUTER JOIN"
)

// JoinCondition is the triple (left_column, right_table_or_alias,
// right_column) described by §3 — each already an identifier validated by
// the Join builder method.
type JoinCondition struct {
	LeftColumn        string
	RightTableOrAlias string
	RightColumn       string
}

// join is an internal join-clause record.
type join struct {
	Kind  JoinKind
	Table string
	Alias string
	On    JoinCondition
}

// Direction names an ORDER BY sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// orderTerm is an internal (column, direction) pair recorded by OrderBy.
type orderTerm struct {
	Column string
	Dir    Direction
}
