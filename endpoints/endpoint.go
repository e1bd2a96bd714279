package endpoints

import (
	"errors"
	"fmt"
)

// Endpoint is one HTTP operation implementation discovered in handler
// source. Records are immutable after the scan; merged metadata is computed
// on demand by the merge engine, never cached here.
type Endpoint struct {
	// Path is the URL template, possibly containing {var} segments.
	Path string
	// Method is the lowercase HTTP verb.
	Method string
	// File is the handler's source location, relative to the scan root.
	File string
	// Function is the handler method name.
	Function string
	// Meta is the mapping parsed from the embedded documentation block;
	// empty if the block was absent. Endpoints produced from one
	// multi-method decorator share the same mapping.
	Meta map[string]any
	// DecoratorMeta is assembled from discrete annotation-style decorators
	// on the handler (doc_summary, doc_tags, ...); nil when none present.
	DecoratorMeta map[string]any
}

// IgnoredRoute is a route explicitly excluded from swagger generation,
// either by a pattern-based decorator or an ignore marker.
type IgnoredRoute struct {
	Path     string
	Method   string
	File     string
	Function string
}

// Result is the outcome of one handler-tree scan.
type Result struct {
	Endpoints []Endpoint
	Ignored   []IgnoredRoute
}

// ErrStrictValidation indicates a documentation/decorator mismatch that
// aborts the scan in strict mode.
var ErrStrictValidation = errors.New("strict validation failed")

// ValidationError identifies the handler whose method-rooted documentation
// block declares a method missing from its routing decorator.
type ValidationError struct {
	File     string
	Function string
	Method   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("documentation block in %s:%s declares method %q not declared in decorator",
		e.File, e.Function, e.Method)
}

func (e *ValidationError) Unwrap() error {
	return ErrStrictValidation
}
