package sqlcompose

import (
	"fmt"
	"strings"

	"github.com/relaydata/corebridge/internal/bridgeerr"
	"github.com/relaydata/corebridge/internal/identifier"
	"github.com/relaydata/corebridge/internal/value"
)

// BuildInsert renders INSERT INTO "<t>" (cols...) VALUES (placeholders...)
// RETURNING *. Empty values fails with a ComposerError.
func (b *Builder) BuildInsert(values []ColumnValue) (string, []value.Value, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if len(values) == 0 {
		return "", nil, bridgeerr.NewComposerError(bridgeerr.MsgEmptyValues)
	}

	cols := make([]string, len(values))
	placeholders := make([]string, len(values))
	params := make([]value.Value, len(values))
	for i, cv := range values {
		if err := identifier.Validate(cv.Column); err != nil {
			return "", nil, err
		}
		cols[i] = identifier.Quote(cv.Column)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		params[i] = cv.Val
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		identifier.Quote(b.table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return sql, params, nil
}

// BuildUpdate renders UPDATE "<t>" SET "c1" = $1, ... [WHERE ...]
// [RETURNING ...]. SET placeholders are numbered before WHERE placeholders.
// Empty values fails with a ComposerError.
func (b *Builder) BuildUpdate(values []ColumnValue) (string, []value.Value, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if len(values) == 0 {
		return "", nil, bridgeerr.NewComposerError(bridgeerr.MsgEmptyValues)
	}

	params := make([]value.Value, 0, len(values))
	setParts := make([]string, len(values))
	for i, cv := range values {
		if err := identifier.Validate(cv.Column); err != nil {
			return "", nil, err
		}
		params = append(params, cv.Val)
		setParts[i] = fmt.Sprintf("%s = $%d", identifier.Quote(cv.Column), len(params))
	}

	var sql strings.Builder
	sql.WriteString(fmt.Sprintf("UPDATE %s SET %s", identifier.Quote(b.table), strings.Join(setParts, ", ")))

	if len(b.wheres) > 0 {
		parts, err := renderConditions(b.wheres, &params)
		if err != nil {
			return "", nil, err
		}
		sql.WriteString(" WHERE " + strings.Join(parts, " AND "))
	}

	sql.WriteString(b.renderReturning())
	return sql.String(), params, nil
}

// BuildUpsert renders INSERT ... ON CONFLICT (target...) DO UPDATE SET
// "c" = EXCLUDED."c" ... RETURNING *. If updateColumns is nil, every
// inserted column except those in conflictTarget is updated.
func (b *Builder) BuildUpsert(values []ColumnValue, conflictTarget []string, updateColumns []string) (string, []value.Value, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if len(values) == 0 {
		return "", nil, bridgeerr.NewComposerError(bridgeerr.MsgEmptyValues)
	}
	if len(conflictTarget) == 0 {
		return "", nil, bridgeerr.NewComposerError(bridgeerr.MsgEmptyConflictTarget)
	}

	cols := make([]string, len(values))
	placeholders := make([]string, len(values))
	params := make([]value.Value, len(values))
	valueCols := make([]string, len(values))
	for i, cv := range values {
		if err := identifier.Validate(cv.Column); err != nil {
			return "", nil, err
		}
		cols[i] = identifier.Quote(cv.Column)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		params[i] = cv.Val
		valueCols[i] = cv.Column
	}

	conflictQuoted := make([]string, len(conflictTarget))
	conflictSet := make(map[string]struct{}, len(conflictTarget))
	for i, c := range conflictTarget {
		if err := identifier.Validate(c); err != nil {
			return "", nil, err
		}
		conflictQuoted[i] = identifier.Quote(c)
		conflictSet[c] = struct{}{}
	}

	toUpdate := updateColumns
	if toUpdate == nil {
		toUpdate = make([]string, 0, len(valueCols))
		for _, c := range valueCols {
			if _, excluded := conflictSet[c]; !excluded {
				toUpdate = append(toUpdate, c)
			}
		}
	}
	if len(toUpdate) == 0 {
		return "", nil, bridgeerr.NewComposerError(bridgeerr.MsgEmptyUpdateColumns)
	}

	setParts := make([]string, len(toUpdate))
	for i, c := range toUpdate {
		if err := identifier.Validate(c); err != nil {
			return "", nil, err
		}
		q := identifier.Quote(c)
		setParts[i] = fmt.Sprintf("%s = EXCLUDED.%s", q, q)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
		identifier.Quote(b.table), strings.Join(cols, ", "), strings.Join(placeholders, ", "),
		strings.Join(conflictQuoted, ", "), strings.Join(setParts, ", "))
	return sql, params, nil
}

// BuildDelete renders DELETE FROM "<t>" [WHERE ...] [RETURNING ...]. No
// WHERE is required; an unconditional delete is well-formed.
func (b *Builder) BuildDelete() (string, []value.Value, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	params := make([]value.Value, 0)
	var sql strings.Builder
	sql.WriteString("DELETE FROM " + identifier.Quote(b.table))

	if len(b.wheres) > 0 {
		parts, err := renderConditions(b.wheres, &params)
		if err != nil {
			return "", nil, err
		}
		sql.WriteString(" WHERE " + strings.Join(parts, " AND "))
	}

	sql.WriteString(b.renderReturning())
	return sql.String(), params, nil
}

func (b *Builder) renderReturning() string {
	if len(b.returning) == 0 {
		return ""
	}
	for _, c := range b.returning {
		if c == "*" {
			return " RETURNING *"
		}
	}
	quoted := make([]string, len(b.returning))
	for i, c := range b.returning {
		quoted[i] = identifier.Quote(c)
	}
	return " RETURNING " + strings.Join(quoted, ", ")
}
