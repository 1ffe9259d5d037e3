package schemadiff

import (
	"fmt"
	"strings"

	"github.com/relaydata/corebridge/internal/identifier"
)

// UpSQL renders the forward DDL statements that transform current into
// desired, in the order Diff detected them.
func (d SchemaDiff) UpSQL() ([]string, error) {
	var stmts []string
	for _, tc := range d.Changes {
		switch tc.Kind {
		case Dropped:
			stmts = append(stmts, dropTableStmt(tc.Name))
		case Created:
			stmt, err := createTableStmt(*tc.Table)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
			for _, idx := range tc.Table.Indexes {
				stmt, err := createIndexStmt(tc.Table.Name, idx)
				if err != nil {
					return nil, err
				}
				stmts = append(stmts, stmt)
			}
			for _, fk := range tc.Table.ForeignKeys {
				stmt, err := addForeignKeyStmt(tc.Table.Name, fk)
				if err != nil {
					return nil, err
				}
				stmts = append(stmts, stmt)
			}
		case Altered:
			alterStmts, err := alterTableUpStmts(tc)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, alterStmts...)
		}
	}
	return stmts, nil
}

// DownSQL renders the reverse of UpSQL, walking the changes in reverse
// order: a created table is dropped, an altered table's changes are undone
// in reverse, and a dropped table yields only a "-- Cannot auto-generate"
// comment line, since its column set is not known to the diff.
func (d SchemaDiff) DownSQL() ([]string, error) {
	var stmts []string
	for i := len(d.Changes) - 1; i >= 0; i-- {
		tc := d.Changes[i]
		switch tc.Kind {
		case Dropped:
			stmts = append(stmts, fmt.Sprintf("-- Cannot auto-generate: recreate table %s", identifier.Quote(tc.Name)))
		case Created:
			stmts = append(stmts, dropTableStmt(tc.Table.Name))
		case Altered:
			alterStmts, err := alterTableDownStmts(tc)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, alterStmts...)
		}
	}
	return stmts, nil
}

func dropTableStmt(name string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", identifier.Quote(name))
}

func createTableStmt(t TableDescriptor) (string, error) {
	lines := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		line, err := columnDefSQL(c)
		if err != nil {
			return "", err
		}
		lines[i] = "    " + line
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", identifier.Quote(t.Name), strings.Join(lines, ",\n")), nil
}

func columnDefSQL(c Column) (string, error) {
	if err := identifier.Validate(c.Name); err != nil {
		return "", err
	}
	parts := []string{identifier.Quote(c.Name), c.Type.SQL()}
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if !c.Nullable && !c.PrimaryKey {
		parts = append(parts, "NOT NULL")
	}
	if c.Unique && !c.PrimaryKey {
		parts = append(parts, "UNIQUE")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT "+*c.Default)
	}
	return strings.Join(parts, " "), nil
}

func createIndexStmt(table string, idx Index) (string, error) {
	if err := identifier.Validate(idx.Name); err != nil {
		return "", err
	}
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		if err := identifier.Validate(c); err != nil {
			return "", err
		}
		cols[i] = identifier.Quote(c)
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	using := ""
	if idx.Method != "" {
		using = "USING " + idx.Method + " "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s %s(%s);",
		unique, identifier.Quote(idx.Name), identifier.Quote(table), using, strings.Join(cols, ", ")), nil
}

func dropIndexStmt(idx Index) (string, error) {
	if err := identifier.Validate(idx.Name); err != nil {
		return "", err
	}
	return fmt.Sprintf("DROP INDEX IF EXISTS %s;", identifier.Quote(idx.Name)), nil
}

func addForeignKeyStmt(table string, fk ForeignKey) (string, error) {
	if err := identifier.Validate(fk.Name); err != nil {
		return "", err
	}
	if err := identifier.Validate(fk.TargetTable); err != nil {
		return "", err
	}
	cols := make([]string, len(fk.Columns))
	for i, c := range fk.Columns {
		if err := identifier.Validate(c); err != nil {
			return "", err
		}
		cols[i] = identifier.Quote(c)
	}
	targetCols := make([]string, len(fk.TargetColumns))
	for i, c := range fk.TargetColumns {
		if err := identifier.Validate(c); err != nil {
			return "", err
		}
		targetCols[i] = identifier.Quote(c)
	}
	onDelete := ""
	if fk.OnDelete != "" {
		onDelete = " ON DELETE " + string(fk.OnDelete)
	}
	onUpdate := ""
	if fk.OnUpdate != "" {
		onUpdate = " ON UPDATE " + string(fk.OnUpdate)
	}
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)%s%s;",
		identifier.Quote(table), identifier.Quote(fk.Name), strings.Join(cols, ", "),
		identifier.Quote(fk.TargetTable), strings.Join(targetCols, ", "), onDelete, onUpdate), nil
}

func dropForeignKeyStmt(table string, fk ForeignKey) (string, error) {
	if err := identifier.Validate(fk.Name); err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", identifier.Quote(table), identifier.Quote(fk.Name)), nil
}

func alterTableUpStmts(tc TableChange) ([]string, error) {
	var stmts []string
	table := identifier.Quote(tc.Name)

	for _, cc := range tc.ColumnChanges {
		switch cc.Kind {
		case Removed:
			if err := identifier.Validate(cc.Old.Name); err != nil {
				return nil, err
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, identifier.Quote(cc.Old.Name)))
		case Added:
			def, err := columnDefSQL(*cc.New)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, def))
		case TypeChanged:
			if err := identifier.Validate(cc.New.Name); err != nil {
				return nil, err
			}
			col := identifier.Quote(cc.New.Name)
			typ := cc.New.Type.SQL()
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s;",
				table, col, typ, col, typ))
		case NullabilityChanged:
			stmts = append(stmts, nullabilityStmt(table, *cc.New))
		case DefaultChanged:
			stmts = append(stmts, defaultStmt(table, *cc.New))
		}
	}

	for _, ic := range tc.IndexChanges {
		switch ic.Kind {
		case Added:
			stmt, err := createIndexStmt(tc.Name, ic.Index)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		case Removed:
			stmt, err := dropIndexStmt(ic.Index)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		}
	}

	for _, fc := range tc.FKChanges {
		switch fc.Kind {
		case Added:
			stmt, err := addForeignKeyStmt(tc.Name, fc.FK)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		case Removed:
			stmt, err := dropForeignKeyStmt(tc.Name, fc.FK)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		}
	}

	return stmts, nil
}

// alterTableDownStmts reverses both the category order (FK, then index,
// then column — the mirror of alterTableUpStmts) and each sub-list's
// element order, per §4.5's "within Alter, reverses the sub-lists too".
func alterTableDownStmts(tc TableChange) ([]string, error) {
	var stmts []string
	table := identifier.Quote(tc.Name)

	for i := len(tc.FKChanges) - 1; i >= 0; i-- {
		fc := tc.FKChanges[i]
		switch fc.Kind {
		case Added:
			stmt, err := dropForeignKeyStmt(tc.Name, fc.FK)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		case Removed:
			stmt, err := addForeignKeyStmt(tc.Name, fc.FK)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		}
	}

	for i := len(tc.IndexChanges) - 1; i >= 0; i-- {
		ic := tc.IndexChanges[i]
		switch ic.Kind {
		case Added:
			stmt, err := dropIndexStmt(ic.Index)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		case Removed:
			stmt, err := createIndexStmt(tc.Name, ic.Index)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		}
	}

	for i := len(tc.ColumnChanges) - 1; i >= 0; i-- {
		cc := tc.ColumnChanges[i]
		switch cc.Kind {
		case Added:
			if err := identifier.Validate(cc.New.Name); err != nil {
				return nil, err
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, identifier.Quote(cc.New.Name)))
		case Removed:
			def, err := columnDefSQL(*cc.Old)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, def))
		case TypeChanged:
			if err := identifier.Validate(cc.Old.Name); err != nil {
				return nil, err
			}
			col := identifier.Quote(cc.Old.Name)
			typ := cc.Old.Type.SQL()
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s;",
				table, col, typ, col, typ))
		case NullabilityChanged:
			stmts = append(stmts, nullabilityStmt(table, *cc.Old))
		case DefaultChanged:
			stmts = append(stmts, defaultStmt(table, *cc.Old))
		}
	}

	return stmts, nil
}

func nullabilityStmt(quotedTable string, c Column) string {
	col := identifier.Quote(c.Name)
	if c.Nullable {
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;", quotedTable, col)
	}
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;", quotedTable, col)
}

func defaultStmt(quotedTable string, c Column) string {
	col := identifier.Quote(c.Name)
	if c.Default == nil {
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", quotedTable, col)
	}
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;", quotedTable, col, *c.Default)
}
