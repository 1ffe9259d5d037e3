package schemadiff

import "github.com/relaydata/corebridge/internal/identifier"

// Diff compares current against desired and returns the ordered set of
// changes needed to bring current to desired, per §4.5. Every identifier
// named by either descriptor set is validated eagerly; the first invalid
// name aborts the comparison.
func Diff(current, desired []TableDescriptor) (SchemaDiff, error) {
	for _, t := range current {
		if err := validateTable(t); err != nil {
			return SchemaDiff{}, err
		}
	}
	for _, t := range desired {
		if err := validateTable(t); err != nil {
			return SchemaDiff{}, err
		}
	}

	currentByName := make(map[string]TableDescriptor, len(current))
	for _, t := range current {
		currentByName[t.Name] = t
	}
	desiredByName := make(map[string]TableDescriptor, len(desired))
	for _, t := range desired {
		desiredByName[t.Name] = t
	}

	var changes []TableChange

	for _, t := range current {
		if _, ok := desiredByName[t.Name]; !ok {
			changes = append(changes, TableChange{Kind: Dropped, Name: t.Name})
		}
	}

	for _, t := range desired {
		old, ok := currentByName[t.Name]
		if !ok {
			table := t
			changes = append(changes, TableChange{Kind: Created, Table: &table})
			continue
		}

		colChanges := compareColumns(old.Columns, t.Columns)
		idxChanges := compareIndexes(old.Indexes, t.Indexes)
		fkChanges := compareForeignKeys(old.ForeignKeys, t.ForeignKeys)
		if len(colChanges) > 0 || len(idxChanges) > 0 || len(fkChanges) > 0 {
			changes = append(changes, TableChange{
				Kind:          Altered,
				Name:          t.Name,
				ColumnChanges: colChanges,
				IndexChanges:  idxChanges,
				FKChanges:     fkChanges,
			})
		}
	}

	return SchemaDiff{Changes: changes}, nil
}

func validateTable(t TableDescriptor) error {
	if err := identifier.Validate(t.Name); err != nil {
		return err
	}
	for _, c := range t.Columns {
		if err := identifier.Validate(c.Name); err != nil {
			return err
		}
	}
	for _, idx := range t.Indexes {
		if err := identifier.Validate(idx.Name); err != nil {
			return err
		}
		for _, c := range idx.Columns {
			if err := identifier.Validate(c); err != nil {
				return err
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		if err := identifier.Validate(fk.Name); err != nil {
			return err
		}
		if err := identifier.Validate(fk.TargetTable); err != nil {
			return err
		}
		for _, c := range fk.Columns {
			if err := identifier.Validate(c); err != nil {
				return err
			}
		}
		for _, c := range fk.TargetColumns {
			if err := identifier.Validate(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// compareColumns detects, for each desired column present in current, the
// single highest-priority change (TypeChanged, else NullabilityChanged,
// else DefaultChanged) — these are mutually exclusive for one diff pass.
// Removed columns are reported first, then Added/Changed columns in
// desired's declared order.
func compareColumns(current, desired []Column) []ColumnChange {
	currentByName := make(map[string]Column, len(current))
	for _, c := range current {
		currentByName[c.Name] = c
	}
	desiredByName := make(map[string]Column, len(desired))
	for _, c := range desired {
		desiredByName[c.Name] = c
	}

	var changes []ColumnChange

	for _, c := range current {
		if _, ok := desiredByName[c.Name]; !ok {
			old := c
			changes = append(changes, ColumnChange{Kind: Removed, Old: &old})
		}
	}

	for _, c := range desired {
		old, ok := currentByName[c.Name]
		if !ok {
			newCol := c
			changes = append(changes, ColumnChange{Kind: Added, New: &newCol})
			continue
		}
		newCol := c
		oldCol := old
		switch {
		case !old.Type.Equal(c.Type):
			changes = append(changes, ColumnChange{Kind: TypeChanged, Old: &oldCol, New: &newCol})
		case old.Nullable != c.Nullable:
			changes = append(changes, ColumnChange{Kind: NullabilityChanged, Old: &oldCol, New: &newCol})
		case !old.defaultEqual(c):
			changes = append(changes, ColumnChange{Kind: DefaultChanged, Old: &oldCol, New: &newCol})
		}
	}

	return changes
}

func compareIndexes(current, desired []Index) []IndexChange {
	currentByName := make(map[string]Index, len(current))
	for _, i := range current {
		currentByName[i.Name] = i
	}
	desiredByName := make(map[string]Index, len(desired))
	for _, i := range desired {
		desiredByName[i.Name] = i
	}

	var changes []IndexChange
	for _, i := range current {
		if _, ok := desiredByName[i.Name]; !ok {
			changes = append(changes, IndexChange{Kind: Removed, Index: i})
		}
	}
	for _, i := range desired {
		if _, ok := currentByName[i.Name]; !ok {
			changes = append(changes, IndexChange{Kind: Added, Index: i})
		}
	}
	return changes
}

func compareForeignKeys(current, desired []ForeignKey) []FKChange {
	currentByName := make(map[string]ForeignKey, len(current))
	for _, f := range current {
		currentByName[f.Name] = f
	}
	desiredByName := make(map[string]ForeignKey, len(desired))
	for _, f := range desired {
		desiredByName[f.Name] = f
	}

	var changes []FKChange
	for _, f := range current {
		if _, ok := desiredByName[f.Name]; !ok {
			changes = append(changes, FKChange{Kind: Removed, FK: f})
		}
	}
	for _, f := range desired {
		if _, ok := currentByName[f.Name]; !ok {
			changes = append(changes, FKChange{Kind: Added, FK: f})
		}
	}
	return changes
}
