// Package batch drives hardsizing over a directory of model documents.
//
// Each model is paired with the engine output of the same stem, sized against
// the dictionary for its engine version and written next to the input. One
// document failing does not stop the others; a missing dictionary version
// aborts the whole run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/hardsize/internal/constants"
	"github.com/nvandessel/hardsize/internal/dictionary"
	"github.com/nvandessel/hardsize/internal/epjson"
	"github.com/nvandessel/hardsize/internal/hardsize"
	"github.com/nvandessel/hardsize/internal/logging"
	"github.com/nvandessel/hardsize/internal/pathutil"
	"github.com/nvandessel/hardsize/internal/results"
)

// ErrNoResults marks a model without a paired engine output.
var ErrNoResults = errors.New("no paired results store")

// Options configures a batch run.
type Options struct {
	// Root is the directory searched for models. Symlinked files and
	// directories under it are not followed.
	Root string

	// DictionaryDir holds the per-version dictionary files.
	DictionaryDir string

	// Suffix and Indent control output naming and formatting.
	Suffix string
	Indent string

	Recursive bool
	Jobs      int

	OnlyAutosized     bool
	DisableDirectives bool
	Scale             []hardsize.ScaleRule

	Logger    *slog.Logger
	Decisions *logging.DecisionLogger
}

// DefaultOptions returns options for root with the built-in defaults.
func DefaultOptions(root string) Options {
	return Options{
		Root:              root,
		DictionaryDir:     filepath.Join(root, constants.DefaultDictionaryDir),
		Suffix:            constants.DefaultOutputSuffix,
		Indent:            constants.DefaultIndent,
		Jobs:              constants.DefaultJobs,
		DisableDirectives: true,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o Options) sizingOptions(document string) hardsize.Options {
	return hardsize.Options{
		OnlyAutosized:     o.OnlyAutosized,
		DisableDirectives: o.DisableDirectives,
		Document:          document,
		Logger:            o.Logger,
		Decisions:         o.Decisions,
	}
}

// Result is the outcome for one model document.
type Result struct {
	Document          string           `json:"document"`
	Results           string           `json:"results,omitempty"`
	Output            string           `json:"output,omitempty"`
	Version           string           `json:"version,omitempty"`
	Status            constants.Status `json:"status"`
	FieldsWritten     int              `json:"fields_written"`
	DirectivesRemoved []string         `json:"directives_removed,omitempty"`
	Reason            string           `json:"reason,omitempty"`
}

// Report collects the per-document results of a run in discovery order.
type Report struct {
	Documents []Result `json:"documents"`
}

// Count returns how many documents ended with status.
func (r *Report) Count(status constants.Status) int {
	n := 0
	for _, d := range r.Documents {
		if d.Status == status {
			n++
		}
	}
	return n
}

// Discover lists model documents under root in lexical order. Outputs of a
// previous run (stem ending in suffix) are left out. Hidden directories are
// not entered.
func Discover(root string, recursive bool, suffix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !pathutil.IsModel(path) || pathutil.IsOutput(path, suffix) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover models in %s: %w", pathutil.RedactPath(root), err)
	}
	return paths, nil
}

// Run hardsizes every model under opts.Root.
//
// The returned report always lists every discovered document. The error is
// non-nil only when the run as a whole stopped early: a missing dictionary
// version or cancellation of ctx.
func Run(ctx context.Context, opts Options) (*Report, error) {
	log := opts.logger()

	paths, err := Discover(opts.Root, opts.Recursive, opts.Suffix)
	if err != nil {
		return nil, err
	}
	log.Info("discovered models", "count", len(paths), "root", opts.Root)

	report := &Report{Documents: make([]Result, len(paths))}
	dicts := newDictionaryCache(opts.DictionaryDir)

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				report.Documents[i] = Result{
					Document: relative(opts.Root, path),
					Status:   constants.StatusSkipped,
					Reason:   "run stopped before this document",
				}
				return nil
			}
			res, err := processDocument(gctx, path, opts, dicts)
			report.Documents[i] = res
			if errors.Is(err, dictionary.ErrMissingVersion) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	log.Info("batch complete",
		"written", report.Count(constants.StatusWritten),
		"skipped", report.Count(constants.StatusSkipped),
		"failed", report.Count(constants.StatusFailed))
	return report, nil
}

// processDocument runs the full pipeline for one model. Every failure becomes
// a failed Result; the error is returned as well so Run can spot fatal ones.
func processDocument(ctx context.Context, path string, opts Options, dicts *dictionaryCache) (Result, error) {
	log := opts.logger().With("document", relative(opts.Root, path))
	res := Result{Document: relative(opts.Root, path)}

	resultsPath := pathutil.ResultsPath(path)
	if _, err := os.Stat(resultsPath); err != nil {
		log.Warn("skipping model without results", "expected", filepath.Base(resultsPath))
		res.Status = constants.StatusSkipped
		res.Reason = fmt.Sprintf("%v: expected %s", ErrNoResults, filepath.Base(resultsPath))
		return res, nil
	}
	res.Results = relative(opts.Root, resultsPath)

	fail := func(err error) (Result, error) {
		log.Error("hardsizing failed", "error", err)
		res.Status = constants.StatusFailed
		res.Reason = err.Error()
		return res, err
	}

	doc, version, err := readModel(path)
	if err != nil {
		return fail(err)
	}
	res.Version = version

	dict, err := dicts.get(version)
	if err != nil {
		return fail(err)
	}

	sizing, err := extract(ctx, dict, resultsPath, doc, opts.sizingOptions(res.Document))
	if err != nil {
		return fail(err)
	}
	sizing.ApplyScaleRules(opts.Scale)

	summary, err := hardsize.Apply(doc, sizing, opts.sizingOptions(res.Document))
	if err != nil {
		return fail(err)
	}

	out := pathutil.OutputPath(path, opts.Suffix)
	if err := doc.WriteFile(out, opts.Indent); err != nil {
		return fail(err)
	}

	res.Output = relative(opts.Root, out)
	res.Status = constants.StatusWritten
	res.FieldsWritten = summary.FieldsWritten
	res.DirectivesRemoved = summary.DirectivesRemoved
	log.Info("hardsized document", "output", res.Output, "fields", res.FieldsWritten, "version", version)
	return res, nil
}

// ExtractFile builds the sizing map for one model and its results store
// without writing anything. Scale rules in opts are applied.
func ExtractFile(ctx context.Context, modelPath, resultsPath string, opts Options) (hardsize.SizingMap, error) {
	doc, version, err := readModel(modelPath)
	if err != nil {
		return nil, err
	}
	dict, err := dictionary.LoadVersion(opts.DictionaryDir, version)
	if err != nil {
		return nil, err
	}
	sizing, err := extract(ctx, dict, resultsPath, doc, opts.sizingOptions(filepath.Base(modelPath)))
	if err != nil {
		return nil, err
	}
	return sizing.ApplyScaleRules(opts.Scale), nil
}

func readModel(path string) (*epjson.Document, string, error) {
	doc, err := epjson.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if err := doc.Validate(); err != nil {
		return nil, "", err
	}
	version, err := doc.Version()
	if err != nil {
		return nil, "", err
	}
	return doc, version, nil
}

// extract holds the results store open only for the extraction itself.
func extract(ctx context.Context, dict *dictionary.Dictionary, resultsPath string, doc *epjson.Document, opts hardsize.Options) (hardsize.SizingMap, error) {
	store, err := results.Open(ctx, resultsPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return hardsize.Extract(ctx, dict, store, doc, opts)
}

func relative(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}

// dictionaryCache loads each dictionary once per run. Versions that share a
// file ("22.1" and "22.1.0") share an entry.
type dictionaryCache struct {
	dir string

	mu     sync.Mutex
	byFile map[string]*dictionary.Dictionary
}

func newDictionaryCache(dir string) *dictionaryCache {
	return &dictionaryCache{dir: dir, byFile: make(map[string]*dictionary.Dictionary)}
}

func (c *dictionaryCache) get(version string) (*dictionary.Dictionary, error) {
	key := dictionary.FileName(version)

	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.byFile[key]; ok {
		return d, nil
	}
	d, err := dictionary.LoadVersion(c.dir, version)
	if err != nil {
		return nil, err
	}
	c.byFile[key] = d
	return d, nil
}
