package docstore

import (
	"strings"

	"github.com/relaydata/corebridge/internal/bridgeerr"
)

// maxCollectionNameBytes mirrors the MongoDB server's own collection-name
// byte budget (counted in UTF-8 bytes, not runes).
const maxCollectionNameBytes = 255

// systemNamespacePrefix is reserved for the backend's own bookkeeping
// collections.
const systemNamespacePrefix = "system."

// validateCollectionName rejects empty strings, names starting with "$",
// names containing NUL bytes, names exceeding the backend's byte budget,
// and names reserved by the backend's system-namespace prefix, per §4.7's
// "Collection-name safety".
func validateCollectionName(name string) error {
	switch {
	case name == "":
		return bridgeerr.NewIdentifierError(bridgeerr.EmptyIdentifier, name)
	case strings.HasPrefix(name, "$"):
		return bridgeerr.NewIdentifierError(bridgeerr.InvalidFirstChar, name)
	case strings.ContainsRune(name, 0):
		return bridgeerr.NewIdentifierError(bridgeerr.InvalidChar, name)
	case len(name) > maxCollectionNameBytes:
		return bridgeerr.NewIdentifierError(bridgeerr.TooLong, name)
	case strings.HasPrefix(name, systemNamespacePrefix):
		return bridgeerr.NewIdentifierError(bridgeerr.SystemNamespace, name)
	default:
		return nil
	}
}

// deniedOperators evaluate server-side host-language code and are never
// permitted in a filter or pipeline-stage document, per §4.7 / §6.
var deniedOperators = map[string]struct{}{
	"$where":       {},
	"$function":    {},
	"$accumulator": {},
}

// validateQueryDocument recursively scans doc (as decoded into a generic
// map/slice tree) for denylisted operator keys, including inside nested
// "$and"/"$or"/array values — a shallow top-level-only scan would miss
// `{"$and": [{"$where": "..."}]}`.
func validateQueryDocument(doc map[string]any) error {
	return scanForDeniedOperators(doc)
}

func scanForDeniedOperators(node any) error {
	switch v := node.(type) {
	case map[string]any:
		for key, val := range v {
			if _, denied := deniedOperators[key]; denied {
				return bridgeerr.NewQueryValidationError(key)
			}
			if err := scanForDeniedOperators(val); err != nil {
				return err
			}
		}
	case []any:
		for _, elem := range v {
			if err := scanForDeniedOperators(elem); err != nil {
				return err
			}
		}
	}
	return nil
}
