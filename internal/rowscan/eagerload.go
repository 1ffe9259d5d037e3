package rowscan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/relaydata/corebridge/internal/bridgeerr"
	"github.com/relaydata/corebridge/internal/identifier"
	"github.com/relaydata/corebridge/internal/sqlcompose"
	"github.com/relaydata/corebridge/internal/value"
)

// Executor is the minimal catalog-query contract the eager-load plan
// builder needs, shared with the cascade engine's own Executor.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// RelationSpec describes one relation to eager-load alongside the base
// row, per §4.9.
type RelationSpec struct {
	Name         string
	ForeignTable string
	LocalColumn  string
	RemoteColumn string
	Kind         sqlcompose.JoinKind
	Columns      []string // nil/empty means "unknown column set": use the __exists/__data sentinel pair
}

const columnsQuery = `
SELECT column_name
FROM information_schema.columns
WHERE table_name = $1
ORDER BY ordinal_position
`

// loadColumns discovers table's column list via the catalog, re-validating
// every name before it is ever spliced into SQL (the same catalog-trust
// boundary the cascade engine enforces).
func loadColumns(ctx context.Context, exec Executor, table string) ([]string, error) {
	rows, err := exec.Query(ctx, columnsQuery, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if err := identifier.Validate(name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, bridgeerr.NewUnknownColumnError(table)
	}
	return cols, nil
}

// BuildPlan composes the aliased multi-join query described in §4.9: every
// base column is aliased "<table>.<col> AS \"_main_<col>\"", each relation
// either projects its declared column subset as "<relname>__<col>" or, for
// an unknown column set, emits a "<relname>__exists" sentinel plus a
// row_to_json "<relname>__data" pair. The result is filtered on
// "<table>"."id" = $1.
func BuildPlan(ctx context.Context, exec Executor, table string, relations []RelationSpec) (sql string, err error) {
	if err := identifier.Validate(table); err != nil {
		return "", err
	}
	baseCols, err := loadColumns(ctx, exec, table)
	if err != nil {
		return "", err
	}
	return renderPlan(table, baseCols, relations)
}

// renderPlan is the pure rendering half of BuildPlan, split out so it can
// be exercised directly without faking the catalog Executor.
func renderPlan(table string, baseCols []string, relations []RelationSpec) (sql string, err error) {
	var b strings.Builder
	b.WriteString("SELECT ")

	selectParts := make([]string, 0, len(baseCols)+len(relations)*2)
	for _, c := range baseCols {
		selectParts = append(selectParts, fmt.Sprintf("%s.%s AS %s", identifier.Quote(table), identifier.Quote(c), identifier.Quote(mainPrefix+c)))
	}

	var joinParts []string
	for _, rel := range relations {
		if err := identifier.Validate(rel.Name); err != nil {
			return "", err
		}
		if err := identifier.Validate(rel.ForeignTable); err != nil {
			return "", err
		}
		if err := identifier.Validate(rel.LocalColumn); err != nil {
			return "", err
		}
		if err := identifier.Validate(rel.RemoteColumn); err != nil {
			return "", err
		}

		alias := rel.Name
		if err := identifier.Validate(alias); err != nil {
			return "", err
		}

		if len(rel.Columns) == 0 {
			selectParts = append(selectParts,
				fmt.Sprintf("%s.%s AS %s", identifier.Quote(alias), identifier.Quote(rel.RemoteColumn), identifier.Quote(rel.Name+relationSep+"exists")),
				fmt.Sprintf("row_to_json(%s) AS %s", identifier.Quote(alias), identifier.Quote(rel.Name+relationSep+"data")),
			)
		} else {
			for _, c := range rel.Columns {
				if err := identifier.Validate(c); err != nil {
					return "", err
				}
				selectParts = append(selectParts,
					fmt.Sprintf("%s.%s AS %s", identifier.Quote(alias), identifier.Quote(c), identifier.Quote(rel.Name+relationSep+c)))
			}
		}

		joinParts = append(joinParts, fmt.Sprintf("%s %s AS %s ON %s.%s = %s.%s",
			rel.Kind, identifier.Quote(rel.ForeignTable), identifier.Quote(alias),
			identifier.Quote(table), identifier.Quote(rel.LocalColumn),
			identifier.Quote(alias), identifier.Quote(rel.RemoteColumn)))
	}

	b.WriteString(strings.Join(selectParts, ", "))
	b.WriteString(" FROM " + identifier.Quote(table))
	for _, j := range joinParts {
		b.WriteString(" " + j)
	}
	b.WriteString(fmt.Sprintf(" WHERE %s.%s = $1", identifier.Quote(table), identifier.Quote("id")))

	return b.String(), nil
}

const relationSep = "__"

// CollapseRelations applies the row-reader half of §4.9: after
// StripMainPrefix has removed the base-table prefix, this collapses every
// "<relname>__*" key group into a single nested value.Value stored under
// the relation name. A null "__exists" sentinel collapses to value.Null().
// Otherwise, a group that has a "data" key and at most two keys in all
// collapses to the "__data" value itself; any other group collapses to one
// document of its keys other than "exists", sorted by key. The "__data"
// JSON object is not merged into such a document: it stays a "data" field.
func CollapseRelations(row map[string]value.Value, relationNames []string) map[string]value.Value {
	out := make(map[string]value.Value, len(row))
	grouped := make(map[string]map[string]value.Value, len(relationNames))

	for k, v := range row {
		matched := false
		for _, rel := range relationNames {
			prefix := rel + relationSep
			if rest, ok := cutPrefix(k, prefix); ok {
				if grouped[rel] == nil {
					grouped[rel] = make(map[string]value.Value)
				}
				grouped[rel][rest] = v
				matched = true
				break
			}
		}
		if !matched {
			out[k] = v
		}
	}

	for _, rel := range relationNames {
		fields, ok := grouped[rel]
		if !ok {
			continue
		}
		out[rel] = collapseOne(fields)
	}
	return out
}

func collapseOne(fields map[string]value.Value) value.Value {
	exists, hasExists := fields["exists"]
	if hasExists && exists.IsNull() {
		return value.Null()
	}

	if data, ok := fields["data"]; ok && len(fields) <= 2 {
		return data
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "exists" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := make([]value.DocField, 0, len(keys))
	for _, k := range keys {
		doc = append(doc, value.DocField{Key: k, Val: fields[k]})
	}
	return value.NewDocument(doc)
}
