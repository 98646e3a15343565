// Package hardsize turns engine sizing results into concrete field values on
// an epJSON model: it extracts a SizingMap from the results store, optionally
// scales it, and applies it to the document.
package hardsize

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMissingResultValue reports a value lookup that failed after the
	// store had listed the description for the same instance.
	ErrMissingResultValue = errors.New("missing sizing result value")

	// ErrIntegrity reports a SizingMap entry with no matching document object.
	ErrIntegrity = errors.New("sizing map integrity violation")

	// ErrAmbiguousName reports several document names that differ only by case
	// competing for one results-store name.
	ErrAmbiguousName = errors.New("ambiguous instance name")
)

// SizingMap maps component class -> instance name (document casing) -> field key -> value.
type SizingMap map[string]map[string]map[string]float64

// NewSizingMap returns an empty map.
func NewSizingMap() SizingMap {
	return make(SizingMap)
}

// Set records a value, creating intermediate levels as needed.
func (m SizingMap) Set(class, name, key string, value float64) {
	names, ok := m[class]
	if !ok {
		names = make(map[string]map[string]float64)
		m[class] = names
	}
	fields, ok := names[name]
	if !ok {
		fields = make(map[string]float64)
		names[name] = fields
	}
	fields[key] = value
}

// Get returns a recorded value.
func (m SizingMap) Get(class, name, key string) (float64, bool) {
	v, ok := m[class][name][key]
	return v, ok
}

// Len returns the number of recorded field values.
func (m SizingMap) Len() int {
	n := 0
	for _, names := range m {
		for _, fields := range names {
			n += len(fields)
		}
	}
	return n
}

// Classes returns the classes present, sorted.
func (m SizingMap) Classes() []string {
	return sortedKeys(m)
}

// Each calls fn for every entry in class, name, key order.
func (m SizingMap) Each(fn func(class, name, key string, value float64)) {
	for _, class := range sortedKeys(m) {
		names := m[class]
		for _, name := range sortedKeys(names) {
			fields := names[name]
			for _, key := range sortedKeys(fields) {
				fn(class, name, key, fields[key])
			}
		}
	}
}

// Scale multiplies field key of every instance of class by multiplier, in
// place. Instances without the field are left alone; an absent class is a
// no-op. It returns m for chaining.
func (m SizingMap) Scale(class, key string, multiplier float64) SizingMap {
	for _, fields := range m[class] {
		if v, ok := fields[key]; ok {
			fields[key] = v * multiplier
		}
	}
	return m
}

// ScaleRule is a configured Scale call, e.g. oversizing cooling coils by 1.15.
type ScaleRule struct {
	Class      string  `json:"class" yaml:"class"`
	Field      string  `json:"field" yaml:"field"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// Validate checks that the rule names a class and field and has a positive multiplier.
func (r ScaleRule) Validate() error {
	if r.Class == "" || r.Field == "" {
		return fmt.Errorf("scale rule needs both class and field, got %q/%q", r.Class, r.Field)
	}
	if r.Multiplier <= 0 {
		return fmt.Errorf("scale rule %s.%s: multiplier must be positive, got %v", r.Class, r.Field, r.Multiplier)
	}
	return nil
}

// ApplyScaleRules runs Scale for each rule in order.
func (m SizingMap) ApplyScaleRules(rules []ScaleRule) SizingMap {
	for _, r := range rules {
		m.Scale(r.Class, r.Field, r.Multiplier)
	}
	return m
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
