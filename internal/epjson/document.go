// Package epjson reads, inspects and writes EnergyPlus epJSON model documents.
//
// A document is a three-level tree: component class, then instance name,
// then field key. Lookups are checked: accessors report absence explicitly
// instead of handing back zero values, so callers can distinguish a missing
// object from an empty one.
package epjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/nvandessel/hardsize/internal/constants"
)

// ErrMalformed reports a document that lacks the shape hardsizing depends on.
var ErrMalformed = errors.New("malformed model document")

// ErrNotFound reports a class or instance absent from the document.
var ErrNotFound = errors.New("object not found in model document")

// Object is the field map of a single instance.
type Object map[string]any

// Class maps instance names to their objects.
type Class map[string]Object

// Document is a parsed epJSON model. It is owned by a single caller and
// mutated in place; it is not safe for concurrent use.
type Document struct {
	classes map[string]Class
}

// New returns an empty document.
func New() *Document {
	return &Document{classes: make(map[string]Class)}
}

// Read decodes an epJSON document. Numbers are kept as json.Number so values
// that are not hardsized are written back exactly as they were read.
func Read(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decoding document: %v", ErrMalformed, err)
	}

	doc := New()
	for className, body := range raw {
		inner := json.NewDecoder(bytes.NewReader(body))
		inner.UseNumber()
		var class Class
		if err := inner.Decode(&class); err != nil {
			return nil, fmt.Errorf("%w: class %q is not a map of objects: %v", ErrMalformed, className, err)
		}
		if class == nil {
			class = make(Class)
		}
		for name, obj := range class {
			if obj == nil {
				class[name] = make(Object)
			}
		}
		doc.classes[className] = class
	}
	return doc, nil
}

// ReadFile reads and decodes the document at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model document: %w", err)
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Write encodes the document with the given indent. Keys are emitted in
// sorted order so repeated runs produce identical files.
func (d *Document) Write(w io.Writer, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(d.classes); err != nil {
		return fmt.Errorf("failed to encode model document: %w", err)
	}
	return nil
}

// WriteFile writes the document atomically via temp file + rename, so a
// failed write never leaves a partial document at path.
func (d *Document) WriteFile(path, indent string) error {
	var buf bytes.Buffer
	if err := d.Write(&buf, indent); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing model document temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming model document: %w", err)
	}
	return nil
}

// Classes returns the class names present in the document, sorted.
func (d *Document) Classes() []string {
	names := make([]string, 0, len(d.classes))
	for name := range d.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasClass reports whether the class is present.
func (d *Document) HasClass(class string) bool {
	_, ok := d.classes[class]
	return ok
}

// InstanceNames returns the instance names of class in document casing, sorted.
// It returns nil when the class is absent.
func (d *Document) InstanceNames(class string) []string {
	c, ok := d.classes[class]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Object returns the instance of class named name. The returned map aliases
// the document; writes through it mutate the document.
func (d *Document) Object(class, name string) (Object, bool) {
	c, ok := d.classes[class]
	if !ok {
		return nil, false
	}
	obj, ok := c[name]
	return obj, ok
}

// AddObject inserts or replaces an instance, creating the class if needed.
func (d *Document) AddObject(class, name string, obj Object) {
	c, ok := d.classes[class]
	if !ok {
		c = make(Class)
		d.classes[class] = c
	}
	if obj == nil {
		obj = make(Object)
	}
	c[name] = obj
}

// RemoveClass deletes a class and all its instances. It reports whether the
// class was present.
func (d *Document) RemoveClass(class string) bool {
	if _, ok := d.classes[class]; !ok {
		return false
	}
	delete(d.classes, class)
	return true
}

// Set writes a field on an existing instance and returns the previous value.
// It never creates classes or instances: a missing one yields ErrNotFound.
func (d *Document) Set(class, name, key string, value any) (any, error) {
	obj, ok := d.Object(class, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, class, name)
	}
	old := obj[key]
	obj[key] = value
	return old, nil
}

// Version returns the engine version declared by the document's Version object.
func (d *Document) Version() (string, error) {
	c, ok := d.classes[constants.VersionClass]
	if !ok || len(c) == 0 {
		return "", fmt.Errorf("%w: missing %s object", ErrMalformed, constants.VersionClass)
	}
	for _, name := range d.InstanceNames(constants.VersionClass) {
		switch v := c[name][constants.VersionIdentifierField].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case json.Number:
			// Some exporters write the identifier as a bare number.
			return v.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %s object has no %s", ErrMalformed, constants.VersionClass, constants.VersionIdentifierField)
}

// SimulationControl returns the single SimulationControl instance and its name.
func (d *Document) SimulationControl() (string, Object, error) {
	c, ok := d.classes[constants.SimulationControlClass]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %s object", ErrMalformed, constants.SimulationControlClass)
	}
	if len(c) != 1 {
		return "", nil, fmt.Errorf("%w: expected exactly one %s object, found %d",
			ErrMalformed, constants.SimulationControlClass, len(c))
	}
	for name, obj := range c {
		return name, obj, nil
	}
	return "", nil, nil
}

// Validate checks the shape hardsizing relies on: a Version object with a
// version identifier and exactly one SimulationControl object.
func (d *Document) Validate() error {
	if _, err := d.Version(); err != nil {
		return err
	}
	if _, _, err := d.SimulationControl(); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := New()
	for className, c := range d.classes {
		nc := make(Class, len(c))
		for name, obj := range c {
			nc[name] = cloneObject(obj)
		}
		out.classes[className] = nc
	}
	return out
}

func cloneObject(obj Object) Object {
	out := make(Object, len(obj))
	for k, v := range obj {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}
