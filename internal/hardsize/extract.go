package hardsize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nvandessel/hardsize/internal/dictionary"
	"github.com/nvandessel/hardsize/internal/epjson"
	"github.com/nvandessel/hardsize/internal/logging"
	"github.com/nvandessel/hardsize/internal/results"
)

// Options configures extraction and application.
type Options struct {
	// OnlyAutosized restricts extraction to fields whose current value is an
	// autosize marker. By default every declared field named by the dictionary
	// is overwritten, even one already holding a number.
	OnlyAutosized bool

	// DisableDirectives removes Sizing:System / Sizing:Plant and switches off
	// their SimulationControl flags when applying.
	DisableDirectives bool

	// Document labels log lines and decision events (usually the file name).
	Document string

	Logger    *slog.Logger
	Decisions *logging.DecisionLogger
}

// DefaultOptions returns the options used by the batch driver when nothing is configured.
func DefaultOptions() Options {
	return Options{DisableDirectives: true}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger.With("document", o.Document)
}

// Extract walks the results store and builds the SizingMap for doc.
//
// Only classes present in both the store and the dictionary are visited.
// Store instance names are reconciled to document casing; instances absent
// from the document are skipped. A field is recorded only when the document
// object already declares its key and the store lists its description for
// that instance, so every entry names an existing document field.
func Extract(ctx context.Context, dict *dictionary.Dictionary, store results.Store, doc *epjson.Document, opts Options) (SizingMap, error) {
	log := opts.logger()
	sizing := NewSizingMap()

	classes, err := store.ComponentClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing component classes: %w", err)
	}

	for _, class := range classes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !dict.Has(class) {
			log.Log(ctx, logging.LevelTrace, "class not in dictionary", "class", class)
			continue
		}

		storeNames, err := store.ComponentNames(ctx, class)
		if err != nil {
			return nil, fmt.Errorf("listing %s instances: %w", class, err)
		}
		matches, err := Reconcile(doc.InstanceNames(class), storeNames)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", class, err)
		}

		for _, m := range matches {
			obj, ok := doc.Object(class, m.Document)
			if !ok {
				log.Debug("sized object not in document", "class", class, "name", m.Store)
				opts.Decisions.Log(map[string]any{
					"event":    "object_skipped",
					"document": opts.Document,
					"class":    class,
					"name":     m.Store,
				})
				continue
			}

			if err := extractObject(ctx, dict, store, sizing, class, m, obj, opts); err != nil {
				return nil, err
			}
		}
	}

	log.Debug("sizing map built", "fields", sizing.Len(), "classes", len(sizing))
	return sizing, nil
}

// extractObject records every dictionary field of one document object that
// the store has a value for. The store is queried with m.Store; the sizing
// map is keyed by m.Document.
func extractObject(ctx context.Context, dict *dictionary.Dictionary, store results.Store, sizing SizingMap,
	class string, m Match, obj epjson.Object, opts Options) error {
	name := m.Document
	descs, err := store.FieldDescriptions(ctx, class, m.Store)
	if err != nil {
		return fmt.Errorf("listing fields of %s %q: %w", class, name, err)
	}
	recorded := make(map[string]bool, len(descs))
	for _, d := range descs {
		recorded[d] = true
	}

	for _, pair := range dict.Pairs(class) {
		if !obj.Has(pair.Key) || !recorded[pair.Description] {
			continue
		}
		if opts.OnlyAutosized && !obj.IsAutosized(pair.Key) {
			opts.logger().Debug("field already hardsized, keeping", "class", class, "name", name, "field", pair.Key)
			continue
		}

		v, err := store.Value(ctx, class, m.Store, pair.Description)
		if err != nil {
			if errors.Is(err, results.ErrValueNotFound) {
				return fmt.Errorf("%w: %v", ErrMissingResultValue, err)
			}
			return fmt.Errorf("reading %s %q %q: %w", class, name, pair.Description, err)
		}
		sizing.Set(class, name, pair.Key, v)
	}
	return nil
}
