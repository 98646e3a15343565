package hardsize

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// foldName returns the caseless matching key for an instance name.
func foldName(s string) string {
	return cases.Fold().String(s)
}

// Match pairs an instance name as the results store reports it with the name
// used for document lookups.
type Match struct {
	// Store is the name to pass back to the store.
	Store string
	// Document is the document's spelling, or Store when nothing matched.
	Document string
}

// Reconcile resolves results-store instance names against the casing used
// by the model document. The store upper-cases names; the document may use
// any casing. A store name whose case-folded form equals a document name's
// takes the document spelling. Store names with no match keep their own
// spelling. The result follows the order of storeNames.
//
// Matching is case-insensitive equality only. When two or more document names
// fold to the same key and a store name matches that key, Reconcile returns
// ErrAmbiguousName rather than picking one.
func Reconcile(documentNames, storeNames []string) ([]Match, error) {
	byKey := make(map[string][]string, len(documentNames))
	for _, name := range documentNames {
		k := foldName(name)
		byKey[k] = append(byKey[k], name)
	}

	out := make([]Match, len(storeNames))
	for i, name := range storeNames {
		candidates := byKey[foldName(name)]
		switch len(candidates) {
		case 0:
			out[i] = Match{Store: name, Document: name}
		case 1:
			out[i] = Match{Store: name, Document: candidates[0]}
		default:
			sorted := append([]string(nil), candidates...)
			sort.Strings(sorted)
			return nil, fmt.Errorf("%w: %q matches %s", ErrAmbiguousName, name, quoteAll(sorted))
		}
	}
	return out, nil
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
