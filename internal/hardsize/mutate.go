package hardsize

import (
	"fmt"

	"github.com/nvandessel/hardsize/internal/constants"
	"github.com/nvandessel/hardsize/internal/epjson"
)

// Summary describes what Apply changed.
type Summary struct {
	FieldsWritten     int      `json:"fields_written"`
	DirectivesRemoved []string `json:"directives_removed,omitempty"`
}

// Apply writes sizing onto doc in place.
//
// When opts.DisableDirectives is set, each sizing directive class present is
// deleted and its SimulationControl flag set to "No". Then every SizingMap
// entry overwrites its document field. Entries are checked before anything
// is changed: a class or instance missing from the document (or targeting a
// directive class being removed) yields ErrIntegrity and leaves doc untouched.
//
// Applying the same map twice gives the same document as applying it once.
func Apply(doc *epjson.Document, sizing SizingMap, opts Options) (*Summary, error) {
	if err := checkIntegrity(doc, sizing, opts); err != nil {
		return nil, err
	}

	log := opts.logger()
	summary := &Summary{}

	if opts.DisableDirectives {
		removed, err := disableDirectives(doc)
		if err != nil {
			return nil, err
		}
		for _, d := range removed {
			log.Debug("removed sizing directive", "class", d.Class, "flag", d.Flag)
			opts.Decisions.Log(map[string]any{
				"event":    "directive_removed",
				"document": opts.Document,
				"class":    d.Class,
				"flag":     d.Flag,
			})
			summary.DirectivesRemoved = append(summary.DirectivesRemoved, d.Class)
		}
	}

	var setErr error
	sizing.Each(func(class, name, key string, value float64) {
		if setErr != nil {
			return
		}
		old, err := doc.Set(class, name, key, value)
		if err != nil {
			setErr = fmt.Errorf("%w: %v", ErrIntegrity, err)
			return
		}
		summary.FieldsWritten++
		opts.Decisions.Log(map[string]any{
			"event":    "field_hardsized",
			"document": opts.Document,
			"class":    class,
			"name":     name,
			"field":    key,
			"old":      old,
			"new":      value,
		})
	})
	if setErr != nil {
		return nil, setErr
	}

	log.Debug("sizing map applied", "fields", summary.FieldsWritten, "directives_removed", len(summary.DirectivesRemoved))
	return summary, nil
}

// disableDirectives removes each directive class present and switches off
// its flag. Absent classes are skipped.
func disableDirectives(doc *epjson.Document) ([]constants.SizingDirective, error) {
	var present []constants.SizingDirective
	for _, d := range constants.SizingDirectives {
		if doc.HasClass(d.Class) {
			present = append(present, d)
		}
	}
	if len(present) == 0 {
		return nil, nil
	}

	controlName, _, err := doc.SimulationControl()
	if err != nil {
		return nil, err
	}
	for _, d := range present {
		doc.RemoveClass(d.Class)
		if _, err := doc.Set(constants.SimulationControlClass, controlName, d.Flag, constants.FlagDisabled); err != nil {
			return nil, err
		}
	}
	return present, nil
}

func checkIntegrity(doc *epjson.Document, sizing SizingMap, opts Options) error {
	for _, class := range sizing.Classes() {
		if opts.DisableDirectives && isDirective(class) {
			return fmt.Errorf("%w: entries target sizing directive %s, which is removed", ErrIntegrity, class)
		}
		for _, name := range sortedKeys(sizing[class]) {
			if _, ok := doc.Object(class, name); !ok {
				return fmt.Errorf("%w: %s %q not in document", ErrIntegrity, class, name)
			}
		}
	}
	return nil
}

func isDirective(class string) bool {
	for _, d := range constants.SizingDirectives {
		if d.Class == class {
			return true
		}
	}
	return false
}
