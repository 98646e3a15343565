// Package results provides read access to the engine's component sizing
// output: rows of (CompType, CompName, Description, Value).
package results

import (
	"context"
	"errors"
	"strings"
)

// ErrValueNotFound reports that no row matches a (class, name, description) lookup.
var ErrValueNotFound = errors.New("no sizing value for component field")

// Row is one component sizing result. Name is upper-cased by the engine.
type Row struct {
	Class       string  `json:"class"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
}

// EngineName returns name as the engine records it. Only ASCII letters are
// upper-cased; "Kühler Fan" becomes "KüHLER FAN".
func EngineName(name string) string {
	return strings.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}, name)
}

// Store is a read-only view over the sizing results.
//
// Class, name and description arguments must match the store exactly. Pass
// instance names as ComponentNames reported them, not in document casing.
type Store interface {
	// ComponentClasses returns the distinct component classes, sorted.
	ComponentClasses(ctx context.Context) ([]string, error)

	// ComponentNames returns the distinct instance names recorded for class, sorted.
	ComponentNames(ctx context.Context, class string) ([]string, error)

	// FieldDescriptions returns the distinct descriptions recorded for one instance, sorted.
	FieldDescriptions(ctx context.Context, class, name string) ([]string, error)

	// Value returns the value of the first row matching class, name and description.
	// It returns ErrValueNotFound when none matches.
	Value(ctx context.Context, class, name, description string) (float64, error)

	// Close releases the underlying connection.
	Close() error
}
