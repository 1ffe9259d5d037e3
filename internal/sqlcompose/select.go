package sqlcompose

import (
	"fmt"
	"strings"

	"github.com/relaydata/corebridge/internal/identifier"
	"github.com/relaydata/corebridge/internal/paramrenum"
	"github.com/relaydata/corebridge/internal/value"
)

// BuildSelect renders the accumulated state as a SELECT statement, per the
// rendering order in §4.2: WITH → SELECT → FROM → JOIN* → WHERE → GROUP BY
// → HAVING → ORDER BY → LIMIT → OFFSET → set-operation*.
func (b *Builder) BuildSelect() (string, []value.Value, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	var sql strings.Builder
	params := make([]value.Value, 0)

	if len(b.ctes) > 0 {
		parts := make([]string, len(b.ctes))
		for i, c := range b.ctes {
			offset := len(params)
			params = append(params, c.Sub.Params...)
			rendered := paramrenum.Renumber(c.Sub.SQL, offset)
			parts[i] = fmt.Sprintf("%s AS (%s)", identifier.Quote(c.Name), rendered)
		}
		sql.WriteString("WITH " + strings.Join(parts, ", ") + " ")
	}

	sql.WriteString("SELECT ")
	switch {
	case len(b.distinctOn) > 0:
		parts := make([]string, len(b.distinctOn))
		for i, c := range b.distinctOn {
			parts[i] = identifier.Quote(c)
		}
		sql.WriteString("DISTINCT ON (" + strings.Join(parts, ", ") + ") ")
	case b.distinct:
		sql.WriteString("DISTINCT ")
	}

	projection, err := b.renderProjection()
	if err != nil {
		return "", nil, err
	}
	sql.WriteString(projection)

	sql.WriteString(` FROM ` + identifier.Quote(b.table))

	for _, j := range b.joins {
		tableRef := identifier.Quote(j.Table)
		rightRef := j.Table
		if j.Alias != "" {
			tableRef = identifier.Quote(j.Table) + " AS " + identifier.Quote(j.Alias)
			rightRef = j.Alias
		}
		onSQL := fmt.Sprintf("%s.%s = %s.%s",
			identifier.Quote(b.table), identifier.Quote(j.On.LeftColumn),
			identifier.Quote(rightRef), identifier.Quote(j.On.RightColumn))
		sql.WriteString(fmt.Sprintf(" %s %s ON %s", j.Kind, tableRef, onSQL))
	}

	if len(b.wheres) > 0 {
		parts, err := renderConditions(b.wheres, &params)
		if err != nil {
			return "", nil, err
		}
		sql.WriteString(" WHERE " + strings.Join(parts, " AND "))
	}

	if len(b.groupBy) > 0 {
		parts := make([]string, len(b.groupBy))
		for i, c := range b.groupBy {
			parts[i] = identifier.Quote(c)
		}
		sql.WriteString(" GROUP BY " + strings.Join(parts, ", "))
	}

	if len(b.havings) > 0 {
		parts, err := renderConditions(b.havings, &params)
		if err != nil {
			return "", nil, err
		}
		sql.WriteString(" HAVING " + strings.Join(parts, " AND "))
	}

	if len(b.orderBy) > 0 {
		parts := make([]string, len(b.orderBy))
		for i, t := range b.orderBy {
			parts[i] = fmt.Sprintf("%s %s", identifier.Quote(t.Column), t.Dir)
		}
		sql.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	if b.limit != nil {
		params = append(params, value.NewInt64(*b.limit))
		sql.WriteString(fmt.Sprintf(" LIMIT $%d", len(params)))
	}

	if b.offset != nil {
		params = append(params, value.NewInt64(*b.offset))
		sql.WriteString(fmt.Sprintf(" OFFSET $%d", len(params)))
	}

	for _, s := range b.setOps {
		offset := len(params)
		params = append(params, s.Sub.Params...)
		rendered := paramrenum.Renumber(s.Sub.SQL, offset)
		sql.WriteString(fmt.Sprintf(" %s %s", s.Operation, rendered))
	}

	return sql.String(), params, nil
}

// renderProjection implements §4.2's "Projection composition": if
// aggregates are present, GROUP BY columns are auto-prepended (in their
// declared order) ahead of the aggregate expressions; else explicit select
// columns are used. Window expressions always follow. SELECT * is used only
// when none of the above produced anything.
func (b *Builder) renderProjection() (string, error) {
	var parts []string

	switch {
	case len(b.aggregates) > 0:
		for _, c := range b.groupBy {
			parts = append(parts, identifier.Quote(c))
		}
		for _, agg := range b.aggregates {
			rendered, err := agg.renderSelect()
			if err != nil {
				return "", err
			}
			parts = append(parts, rendered)
		}
	case len(b.selectCols) > 0:
		for _, c := range b.selectCols {
			parts = append(parts, identifier.Quote(c))
		}
	}

	for _, w := range b.windows {
		rendered, err := w.render()
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}

	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, ", "), nil
}
