// Package schemadiff compares two sets of table descriptors and emits
// ordered forward (UP) and reverse (DOWN) DDL statement lists.
package schemadiff

import "fmt"

// ColumnTypeKind enumerates the fixed type taxonomy mirroring the Value
// enum, per §3's "Table Descriptor" column type descriptor.
type ColumnTypeKind int

const (
	SmallInt ColumnTypeKind = iota
	Integer
	BigInt
	Real
	DoublePrecision
	Boolean
	Text
	VarChar
	Bytea
	UUID
	Date
	Time
	Timestamp
	TimestampTZ
	JSONB
	Numeric
	ArrayOf
	Custom
)

// ColumnType is a type descriptor with optional length/precision/scale,
// rendered back to Postgres type syntax by SQL.
type ColumnType struct {
	Kind      ColumnTypeKind
	Length    int         // VarChar
	Precision int         // Numeric
	Scale     int         // Numeric
	Elem      *ColumnType // ArrayOf
	Raw       string      // Custom
}

// SQL renders t as Postgres type syntax.
func (t ColumnType) SQL() string {
	switch t.Kind {
	case SmallInt:
		return "SMALLINT"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Real:
		return "REAL"
	case DoublePrecision:
		return "DOUBLE PRECISION"
	case Boolean:
		return "BOOLEAN"
	case Text:
		return "TEXT"
	case VarChar:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case Bytea:
		return "BYTEA"
	case UUID:
		return "UUID"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		return "TIMESTAMP"
	case TimestampTZ:
		return "TIMESTAMPTZ"
	case JSONB:
		return "JSONB"
	case Numeric:
		switch {
		case t.Precision > 0 && t.Scale > 0:
			return fmt.Sprintf("NUMERIC(%d,%d)", t.Precision, t.Scale)
		case t.Precision > 0:
			return fmt.Sprintf("NUMERIC(%d)", t.Precision)
		default:
			return "NUMERIC"
		}
	case ArrayOf:
		if t.Elem == nil {
			return "TEXT[]"
		}
		return t.Elem.SQL() + "[]"
	case Custom:
		return t.Raw
	default:
		return "TEXT"
	}
}

// Equal reports whether t and other render identically and carry the same
// structured fields.
func (t ColumnType) Equal(other ColumnType) bool {
	if t.Kind != other.Kind || t.Length != other.Length || t.Precision != other.Precision || t.Scale != other.Scale || t.Raw != other.Raw {
		return false
	}
	if (t.Elem == nil) != (other.Elem == nil) {
		return false
	}
	if t.Elem != nil && !t.Elem.Equal(*other.Elem) {
		return false
	}
	return true
}

// Column describes one table column.
type Column struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	Default    *string // opaque SQL text, carried through verbatim
	PrimaryKey bool
	Unique     bool
}

func (c Column) defaultEqual(other Column) bool {
	if (c.Default == nil) != (other.Default == nil) {
		return false
	}
	return c.Default == nil || *c.Default == *other.Default
}

// Index describes one table index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
	Method  string // e.g. "btree", "gin"; empty uses the backend default
}

// FKRule is a foreign-key ON DELETE / ON UPDATE action.
type FKRule string

const (
	Cascade    FKRule = "CASCADE"
	Restrict   FKRule = "RESTRICT"
	SetNull    FKRule = "SET NULL"
	SetDefault FKRule = "SET DEFAULT"
	NoAction   FKRule = "NO ACTION"
)

// ForeignKey describes one foreign-key constraint.
type ForeignKey struct {
	Name          string
	Columns       []string
	TargetTable   string
	TargetColumns []string
	OnDelete      FKRule
	OnUpdate      FKRule
}

// TableDescriptor fully describes one table, per §3.
type TableDescriptor struct {
	Name        string
	Schema      string
	Columns     []Column
	Indexes     []Index
	ForeignKeys []ForeignKey
}

// ChangeKind tags a ColumnChange/IndexChange/FKChange.
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	TypeChanged
	NullabilityChanged
	DefaultChanged
)

// ColumnChange is one detected per-column difference. Old and/or New are
// populated depending on Kind: Added carries only New, Removed only Old,
// the three *Changed kinds carry both.
type ColumnChange struct {
	Kind ChangeKind
	Old  *Column
	New  *Column
}

// IndexChange is one detected Added/Removed index difference.
type IndexChange struct {
	Kind  ChangeKind
	Index Index
}

// FKChange is one detected Added/Removed foreign-key difference.
type FKChange struct {
	Kind ChangeKind
	FK   ForeignKey
}

// TableChangeKind tags a TableChange.
type TableChangeKind int

const (
	Created TableChangeKind = iota
	Dropped
	Altered
)

// TableChange is one table-level entry in a SchemaDiff.
type TableChange struct {
	Kind TableChangeKind

	// Table is set for Created.
	Table *TableDescriptor
	// Name is the table name for Dropped and Altered.
	Name string

	ColumnChanges []ColumnChange
	IndexChanges  []IndexChange
	FKChanges     []FKChange
}

// SchemaDiff is the ordered list of table-level changes between two sets of
// descriptors.
type SchemaDiff struct {
	Changes []TableChange
}
