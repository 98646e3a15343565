// Package pathutil derives the file names a run reads and writes from a
// model document's path.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/nvandessel/hardsize/internal/constants"
)

// IsModel reports whether path has the epJSON extension, in any case.
func IsModel(path string) bool {
	return strings.EqualFold(filepath.Ext(path), constants.ModelExtension)
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsOutput reports whether path looks like a file a previous run wrote,
// i.e. its stem ends in suffix.
func IsOutput(path, suffix string) bool {
	return suffix != "" && strings.HasSuffix(Stem(path), suffix)
}

// ResultsPath returns the engine output expected next to a model:
// office.epJSON pairs with office.sql in the same directory.
func ResultsPath(modelPath string) string {
	return filepath.Join(filepath.Dir(modelPath), Stem(modelPath)+constants.ResultsExtension)
}

// OutputPath returns where the hardsized copy of modelPath is written:
// office.epJSON becomes office_out.epJSON in the same directory.
func OutputPath(modelPath, suffix string) string {
	return filepath.Join(filepath.Dir(modelPath), Stem(modelPath)+suffix+constants.DefaultOutputExtension)
}

// RedactPath shortens path to its last directory and base name for error
// messages: /home/ana/runs/office.epJSON becomes .../runs/office.epJSON.
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	path = filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(path))
	if parent == "." || parent == string(filepath.Separator) {
		return filepath.Base(path)
	}
	return ".../" + parent + "/" + filepath.Base(path)
}
