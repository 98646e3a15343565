// Package dictionary loads the versioned field dictionaries that map engine
// sizing-output descriptions to epJSON field keys.
//
// A dictionary source is a headerless CSV with three columns:
//
//	ComponentClass,ResultFieldDescription,DocumentFieldKey
//
// Cells after the third, such as a units column, are ignored.
//
// for example
//
//	Fan:VariableVolume,Design Size Maximum Flow Rate,maximum_flow_rate
//
// One file exists per engine version, named after the version's major and
// minor parts ("22-1.csv" for version 22.1).
package dictionary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvandessel/hardsize/internal/constants"
)

// ErrMissingVersion reports that no dictionary exists for an engine version.
// It is fatal for a whole batch: no document of that version can be processed.
var ErrMissingVersion = errors.New("no field dictionary for engine version")

// FieldPair links a results-store description to the document key it fills.
type FieldPair struct {
	Description string `json:"description" yaml:"description"`
	Key         string `json:"key" yaml:"key"`
}

// Dictionary maps component classes to their ordered field pairs.
// It is immutable once loaded.
type Dictionary struct {
	classes map[string][]FieldPair
}

// Load reads dictionary records from r, grouping them by component class and
// preserving the order of pairs within each class. Duplicate keys within one
// class are kept; callers applying them in order get last-wins semantics.
func Load(r io.Reader) (*Dictionary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	d := &Dictionary{classes: make(map[string][]FieldPair)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing field dictionary: %w", err)
		}

		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(record) < 3 {
			return nil, fmt.Errorf("parsing field dictionary: line %d: expected 3 columns, got %d", line, len(record))
		}

		class := strings.TrimSpace(record[0])
		pair := FieldPair{
			Description: strings.TrimSpace(record[1]),
			Key:         strings.TrimSpace(record[2]),
		}
		if class == "" || pair.Description == "" || pair.Key == "" {
			return nil, fmt.Errorf("parsing field dictionary: line %d: empty column", line)
		}
		d.classes[class] = append(d.classes[class], pair)
	}
	return d, nil
}

// LoadFile loads the dictionary at path.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open field dictionary: %w", err)
	}
	defer f.Close()

	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return d, nil
}

// FileName returns the dictionary file name for an engine version:
// the major and minor parts joined with "-" ("22.1.0" -> "22-1.csv").
func FileName(version string) string {
	parts := strings.Split(strings.TrimSpace(version), ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "-") + constants.DictionaryExtension
}

// Locate returns the path of the dictionary for version inside dir.
// A missing file yields an error wrapping ErrMissingVersion that names both
// the version and the expected location.
func Locate(dir, version string) (string, error) {
	path := filepath.Join(dir, FileName(version))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w %s: expected %s", ErrMissingVersion, version, path)
	}
	return path, nil
}

// LoadVersion locates and loads the dictionary for version.
func LoadVersion(dir, version string) (*Dictionary, error) {
	path, err := Locate(dir, version)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// Versions lists the engine versions that have a dictionary in dir,
// e.g. "22.1" for 22-1.csv. A missing directory yields an empty list.
func Versions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dictionary directory: %w", err)
	}

	var versions []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), constants.DictionaryExtension) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		versions = append(versions, strings.ReplaceAll(stem, "-", "."))
	}
	sort.Strings(versions)
	return versions, nil
}

// Has reports whether class has entries.
func (d *Dictionary) Has(class string) bool {
	_, ok := d.classes[class]
	return ok
}

// Pairs returns the ordered field pairs for class, or nil when absent.
// The returned slice is a copy.
func (d *Dictionary) Pairs(class string) []FieldPair {
	pairs, ok := d.classes[class]
	if !ok {
		return nil
	}
	out := make([]FieldPair, len(pairs))
	copy(out, pairs)
	return out
}

// Classes returns the component classes covered by the dictionary, sorted.
func (d *Dictionary) Classes() []string {
	names := make([]string, 0, len(d.classes))
	for name := range d.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of classes.
func (d *Dictionary) Len() int {
	return len(d.classes)
}
