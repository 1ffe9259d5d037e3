// Package rowscan reconstitutes pgx result rows into the Value model
// (§4.8) and composes eager-loading query plans over related tables
// (§4.9), sharing the same prefix-stripping and JSON-collapsing logic
// between the two.
package rowscan

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/relaydata/corebridge/internal/bridgelog"
	"github.com/relaydata/corebridge/internal/value"
)

// ScanRow reads every column of row by index, dispatching on the driver's
// decoded Go type into the matching Value variant. A column whose decoded
// type FromPgxNative does not recognize falls back to a string extraction
// via fmt, with a warning logged through log (per §4.8).
func ScanRow(ctx context.Context, log bridgelog.Logger, row pgx.Rows) (map[string]value.Value, error) {
	fields := row.FieldDescriptions()
	raw, err := row.Values()
	if err != nil {
		return nil, err
	}

	out := make(map[string]value.Value, len(fields))
	for i, f := range fields {
		name := string(f.Name)
		v, ok := value.FromPgxNative(raw[i])
		if !ok {
			if log != nil {
				log.WarnContext(ctx, "rowscan: unrecognized column type, falling back to string", "column", name)
			}
			v = value.NewString(fmt.Sprintf("%v", raw[i]))
		}
		out[name] = v
	}
	return out, nil
}

// ScanAll reads every row of rows into a []map[string]value.Value.
func ScanAll(ctx context.Context, log bridgelog.Logger, rows pgx.Rows) ([]map[string]value.Value, error) {
	var out []map[string]value.Value
	for rows.Next() {
		row, err := ScanRow(ctx, log, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const mainPrefix = "_main_"

// StripMainPrefix strips the "_main_" prefix §4.9's eager-loading plan
// gives every base-table column, leaving relation-prefixed columns
// (`<relname>__<col>`) untouched.
func StripMainPrefix(row map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(row))
	for k, v := range row {
		if rest, ok := cutPrefix(k, mainPrefix); ok {
			out[rest] = v
			continue
		}
		out[k] = v
	}
	return out
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}
