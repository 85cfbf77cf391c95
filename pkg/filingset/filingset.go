// Package filingset resolves the fixed layout of files that make up one
// unpacked XBRL filing directory: exactly one schema, one label linkbase, one
// each of the definition/presentation/calculation linkbases, and the set of
// inline-XBRL HTML documents.
package filingset

import (
	"path/filepath"
	"sort"

	"github.com/nk-xbrl/jpxbrl/pkg/xbrl"
)

// Set is the resolved path layout for one filing directory.
type Set struct {
	Dir               string
	SchemaPath        string // "" if absent
	LabelPath         string // "" if absent
	DefinitionPath    string // "" if absent
	PresentationPath  string // "" if absent
	CalculationPath   string // "" if absent
	InlineXBRLPaths   []string
}

// Resolve scans dir and returns its filing layout. Duplicate matches for any
// singleton slot (schema, label, def, pre, cal) are a hard failure; a filer
// shipping two *.xsd files in one directory means something about the layout
// assumption is wrong, not that one should be picked arbitrarily.
func Resolve(dir string) (*Set, error) {
	s := &Set{Dir: dir}

	var err error
	if s.SchemaPath, err = singleton(dir, "*.xsd"); err != nil {
		return nil, err
	}
	if s.LabelPath, err = singleton(dir, "*lab.xml"); err != nil {
		return nil, err
	}
	if s.DefinitionPath, err = singleton(dir, "*def.xml"); err != nil {
		return nil, err
	}
	if s.PresentationPath, err = singleton(dir, "*pre.xml"); err != nil {
		return nil, err
	}
	if s.CalculationPath, err = singleton(dir, "*cal.xml"); err != nil {
		return nil, err
	}

	s.InlineXBRLPaths, err = inlineXBRLPaths(dir)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// singleton globs dir for pattern and returns the sole match, "" if there are
// none, or an AnalysisError if there is more than one.
func singleton(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", &xbrl.AnalysisError{Op: "glob filing directory", Err: err}
	}
	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &xbrl.AnalysisError{Op: "resolve filing layout", Context: pattern, Err: errDuplicateMatch}
	}
}

// inlineXBRLPaths prefers "-ixbrl.htm" documents, falling back to
// "_ixbrl.htm" only when none of the preferred form exist.
func inlineXBRLPaths(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*-ixbrl.htm"))
	if err != nil {
		return nil, &xbrl.AnalysisError{Op: "glob inline XBRL documents", Err: err}
	}
	if len(matches) == 0 {
		matches, err = filepath.Glob(filepath.Join(dir, "*_ixbrl.htm"))
		if err != nil {
			return nil, &xbrl.AnalysisError{Op: "glob inline XBRL documents", Err: err}
		}
	}
	sort.Strings(matches)
	return matches, nil
}
