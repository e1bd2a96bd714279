package pysrc

import (
	"errors"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"
)

// ErrMalformedDocBlock indicates an embedded documentation block that failed
// to parse as a YAML mapping. Unlike inference fallbacks, this is a hard
// authoring error: the handler's contract cannot be trusted at all.
var ErrMalformedDocBlock = errors.New("malformed documentation block")

// DocBlockError carries the source context of a malformed documentation
// block so the orchestration layer can report where the authoring error is.
type DocBlockError struct {
	File     string
	Function string
	Err      error
}

func (e *DocBlockError) Error() string {
	where := e.File
	if e.Function != "" {
		where = fmt.Sprintf("%s:%s", e.File, e.Function)
	}
	return fmt.Sprintf("malformed documentation block in %s: %v", where, e.Err)
}

func (e *DocBlockError) Unwrap() error {
	return ErrMalformedDocBlock
}

// ExtractDocBlock finds and parses the documentation block embedded in a
// docstring. It returns (nil, false, nil) when no block is present, and a
// *DocBlockError when a present block is not a YAML mapping.
func ExtractDocBlock(markers Markers, docstring, file, function string) (map[string]any, bool, error) {
	text, ok := markers.Find(docstring)
	if !ok {
		return nil, false, nil
	}
	block := make(map[string]any)
	if err := yaml.Unmarshal([]byte(normalizeBlockIndent(text)), &block); err != nil {
		return nil, false, &DocBlockError{File: file, Function: function, Err: err}
	}
	if block == nil {
		block = make(map[string]any)
	}
	return block, true, nil
}

// normalizeBlockIndent strips the common leading indentation that a block
// inherits from its position inside an indented docstring, so the enclosed
// text parses as a top-level YAML document.
func normalizeBlockIndent(text string) string {
	lines := strings.Split(text, "\n")
	indent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		n := len(line) - len(trimmed)
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return text
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= indent {
			out[i] = line[indent:]
		}
	}
	return strings.Join(out, "\n")
}
