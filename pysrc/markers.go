package pysrc

import (
	"fmt"
	"regexp"
	"strings"
)

// Default delimiters for embedded documentation blocks inside docstrings.
const (
	DefaultBlockStart = ">>>openapi"
	DefaultBlockEnd   = "<<<openapi"
)

// Docstring markers that exclude source from swagger generation.
const (
	IgnoreMarker     = "swagsync: ignore"
	IgnoreFileMarker = "swagsync: ignore-file"
)

// httpMethods is the set of operation keys recognized in method-rooted
// documentation blocks, lowercase.
var httpMethods = map[string]bool{
	"get":     true,
	"put":     true,
	"post":    true,
	"delete":  true,
	"options": true,
	"head":    true,
	"patch":   true,
	"trace":   true,
}

// IsHTTPMethod reports whether key names an HTTP method, case-insensitively.
func IsHTTPMethod(key string) bool {
	return httpMethods[strings.ToLower(key)]
}

// Markers holds the configurable delimiter pair used to locate documentation
// blocks, with the compiled extraction pattern.
type Markers struct {
	Start string
	End   string

	pattern *regexp.Regexp
}

// DefaultMarkers returns the standard ">>>openapi" / "<<<openapi" pair.
func DefaultMarkers() Markers {
	m, err := NewMarkers(DefaultBlockStart, DefaultBlockEnd)
	if err != nil {
		panic(err) // static pattern, cannot fail
	}
	return m
}

// NewMarkers compiles the extraction pattern for a delimiter pair. The match
// is case-insensitive, non-greedy, and spans newlines.
func NewMarkers(start, end string) (Markers, error) {
	if start == "" || end == "" {
		return Markers{}, fmt.Errorf("documentation block markers must be non-empty")
	}
	// Only horizontal whitespace and a single newline may be consumed after
	// the start marker: eating further would swallow the first content
	// line's indentation and break dedenting.
	pattern, err := regexp.Compile(`(?is)` + regexp.QuoteMeta(start) + `[^\S\n]*\n?(.*?)` + regexp.QuoteMeta(end))
	if err != nil {
		return Markers{}, fmt.Errorf("failed to compile block pattern: %w", err)
	}
	return Markers{Start: start, End: end, pattern: pattern}, nil
}

// Find returns the text enclosed by the marker pair inside a docstring, and
// whether a block was present.
func (m Markers) Find(docstring string) (string, bool) {
	if docstring == "" {
		return "", false
	}
	groups := m.pattern.FindStringSubmatch(docstring)
	if groups == nil {
		return "", false
	}
	return groups[1], true
}
