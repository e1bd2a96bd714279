package merge

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/swagsync/swagsync/endpoints"
	"github.com/swagsync/swagsync/spec"
)

// operationFields are the OpenAPI operation keys retained when building a
// canonical operation. Anything else in the merged metadata is dropped.
var operationFields = []string{
	"summary",
	"description",
	"tags",
	"parameters",
	"requestBody",
	"responses",
	"security",
}

// Result describes one merge pass over a document.
type Result struct {
	Changed bool
	// Notes are human-readable change descriptions, one per drifted entry.
	Notes []string
	// Diffs maps a changed entry ("GET /pets" or a component name) to its
	// display diff: the old value's lines prefixed "- ", the new value's
	// prefixed "+ ".
	Diffs map[string][]string
}

func newResult() *Result {
	return &Result{Diffs: make(map[string][]string)}
}

// MergeMetadata combines decorator metadata with documentation-block
// metadata. Decorator fields win; block fields fill the gaps. Neither input
// is mutated.
func MergeMetadata(decorator, doc map[string]any) map[string]any {
	merged := make(map[string]any, len(decorator)+len(doc))
	for k, v := range doc {
		merged[k] = v
	}
	for k, v := range decorator {
		merged[k] = v
	}
	return merged
}

// CanonicalOperation builds the operation object maintained for an endpoint:
// recognized fields selected from the merged metadata, responses defaulted to
// a bare 200, and a scalar tags value normalized to a one-element list.
func CanonicalOperation(ep endpoints.Endpoint) spec.Operation {
	meta := MergeMetadata(ep.DecoratorMeta, ep.Meta)
	op := make(spec.Operation)
	for _, field := range operationFields {
		if v, ok := meta[field]; ok {
			op[field] = v
		}
	}
	if _, ok := op["responses"]; !ok {
		op["responses"] = map[string]any{"200": map[string]any{"description": "OK"}}
	}
	switch op["tags"].(type) {
	case nil, []any, []string:
	default:
		op["tags"] = []any{op["tags"]}
	}
	return op
}

// Merge reconciles endpoints into doc.Paths in place. Unchanged operations
// are left alone; drifted or missing ones are overwritten with the canonical
// operation and reported through the result.
func Merge(doc *spec.Document, eps []endpoints.Endpoint) *Result {
	res := newResult()

	sorted := make([]endpoints.Endpoint, len(eps))
	copy(sorted, eps)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Method < sorted[j].Method
	})

	for _, ep := range sorted {
		op := CanonicalOperation(ep)
		current := doc.Operation(ep.Path, ep.Method)
		if current != nil && equalYAML(current, op) {
			continue
		}
		key := strings.ToUpper(ep.Method) + " " + ep.Path
		var old any
		if current == nil {
			res.Notes = append(res.Notes, fmt.Sprintf("added operation %s", key))
		} else {
			old = current
			res.Notes = append(res.Notes, fmt.Sprintf("updated operation %s", key))
		}
		res.Diffs[key] = diffLines(old, op)
		doc.SetOperation(ep.Path, ep.Method, op)
		res.Changed = true
	}
	return res
}

// MergeComponents reconciles scanned component schemas into
// doc.components.schemas in place. Author-written schemas without a scanned
// counterpart are left untouched; orphan reporting is DetectOrphans's job.
func MergeComponents(doc *spec.Document, components map[string]*spec.Schema) *Result {
	res := newResult()
	schemas := doc.Schemas()
	for _, name := range spec.SortedNames(components) {
		schema := components[name]
		current, exists := schemas[name]
		if exists && equalYAML(current, schema) {
			continue
		}
		var old any
		if exists {
			old = current
			res.Notes = append(res.Notes, fmt.Sprintf("updated component %s", name))
		} else {
			res.Notes = append(res.Notes, fmt.Sprintf("added component %s", name))
		}
		res.Diffs[name] = diffLines(old, schema)
		schemas[name] = schema
		res.Changed = true
	}
	return res
}

// Merge folds another result into this one.
func (r *Result) Merge(other *Result) {
	r.Changed = r.Changed || other.Changed
	r.Notes = append(r.Notes, other.Notes...)
	for key, lines := range other.Diffs {
		r.Diffs[key] = lines
	}
}

// equalYAML compares two values structurally through their YAML encodings,
// sidestepping typed-versus-generic representation differences.
func equalYAML(a, b any) bool {
	ab, err := yaml.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := yaml.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// diffLines renders old and new independently, prefixing each serialized
// line for display. A nil old value contributes no lines.
func diffLines(old, updated any) []string {
	var lines []string
	for _, l := range yamlDisplay(old) {
		lines = append(lines, "- "+l)
	}
	for _, l := range yamlDisplay(updated) {
		lines = append(lines, "+ "+l)
	}
	return lines
}

func yamlDisplay(v any) []string {
	if v == nil {
		return nil
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
