// Package identifier validates and quotes the SQL identifiers (table,
// column, alias, CTE, schema and constraint names) that flow through the
// composer, the schema differ and the cascade engine. No identifier ever
// reaches rendered SQL without passing through Validate first.
package identifier

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/relaydata/corebridge/internal/bridgeerr"
)

const maxIdentifierBytes = 63

// sqlKeywords is the reserved-word denylist. Matching is case-insensitive.
var sqlKeywords = map[string]struct{}{
	"select": {}, "insert": {}, "update": {}, "delete": {}, "drop": {}, "create": {},
	"alter": {}, "truncate": {}, "grant": {}, "revoke": {}, "exec": {}, "execute": {},
	"union": {}, "declare": {}, "table": {}, "index": {}, "view": {}, "schema": {},
	"database": {}, "user": {}, "role": {}, "from": {}, "where": {}, "join": {},
	"inner": {}, "outer": {}, "left": {}, "right": {}, "on": {}, "using": {},
	"and": {}, "or": {}, "not": {}, "in": {}, "exists": {}, "between": {}, "like": {},
	"ilike": {}, "is": {}, "null": {}, "true": {}, "false": {}, "case": {}, "when": {},
	"then": {}, "else": {}, "end": {}, "as": {}, "order": {}, "by": {}, "group": {},
	"having": {}, "limit": {}, "offset": {}, "distinct": {}, "all": {}, "any": {},
	"some": {},
}

// Validate checks text against §4.1's rules after NFKC-normalizing it. A
// qualified (dotted) identifier must be exactly two parts, each
// independently valid; anything else is validated as a single simple part.
func Validate(text string) error {
	normalized := norm.NFKC.String(text)
	if strings.Contains(normalized, ".") {
		parts := strings.Split(normalized, ".")
		if len(parts) != 2 {
			return bridgeerr.NewIdentifierError(bridgeerr.TooManyParts, text)
		}
		for _, p := range parts {
			if err := validatePart(p, text); err != nil {
				return err
			}
		}
		return nil
	}
	return validatePart(normalized, text)
}

func validatePart(part, original string) error {
	if part == "" {
		return bridgeerr.NewIdentifierError(bridgeerr.EmptyIdentifier, original)
	}
	if len(part) > maxIdentifierBytes {
		return bridgeerr.NewIdentifierError(bridgeerr.TooLong, original)
	}

	first := rune(part[0])
	if !isASCIILetter(first) && first != '_' {
		return bridgeerr.NewIdentifierError(bridgeerr.InvalidFirstChar, original)
	}
	for _, r := range part {
		if !isASCIIAlnum(r) && r != '_' {
			return bridgeerr.NewIdentifierError(bridgeerr.InvalidChar, original)
		}
	}

	lower := strings.ToLower(part)
	if strings.HasPrefix(lower, "pg_") {
		return bridgeerr.NewIdentifierError(bridgeerr.SystemNamespace, original)
	}
	if lower == "information_schema" {
		return bridgeerr.NewIdentifierError(bridgeerr.SystemNamespace, original)
	}
	if _, reserved := sqlKeywords[lower]; reserved {
		return bridgeerr.NewIdentifierError(bridgeerr.ReservedWord, original)
	}
	return nil
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIAlnum(r rune) bool {
	return isASCIILetter(r) || (r >= '0' && r <= '9')
}

// Quote renders a validated identifier as double-quoted SQL text, splitting
// on "." for qualified names: each dot-separated part is independently
// quoted and rejoined with ".". Callers must call Validate first; Quote does
// not re-validate.
func Quote(text string) string {
	normalized := norm.NFKC.String(text)
	parts := strings.Split(normalized, ".")
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return strings.Join(quoted, ".")
}
