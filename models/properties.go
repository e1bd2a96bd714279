package models

import (
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/swagsync/swagsync/pysrc"
	"github.com/swagsync/swagsync/spec"
	"github.com/swagsync/swagsync/typeinfer"
)

// inferProperties scans the class __init__ for self-attribute assignments and
// resolves each into a property schema. Leading-underscore attributes are
// skipped; the first assignment to a name wins.
func (s *Scanner) inferProperties(cls pysrc.Class, hints map[string]string) map[string]*spec.Schema {
	props := make(map[string]*spec.Schema)
	init, ok := findInit(cls)
	if !ok {
		return props
	}
	for _, a := range init.SelfAssignments() {
		if strings.HasPrefix(a.Target, "_") {
			continue
		}
		if _, seen := props[a.Target]; seen {
			continue
		}
		if a.Annotation != "" {
			props[a.Target] = s.resolveAnnotation(a.Annotation, hints[a.Target])
		} else {
			props[a.Target] = literalSchema(a.Value)
		}
	}
	return props
}

func findInit(cls pysrc.Class) (pysrc.Method, bool) {
	for _, m := range cls.Methods() {
		if m.Name == "__init__" {
			return m, true
		}
	}
	return pysrc.Method{}, false
}

// resolveAnnotation expands aliases and resolves the annotation text. When
// the annotation involves a registered type variable, the property hint (if
// any) supplies the concrete replacement; without one the schema degrades to
// a plain object.
func (s *Scanner) resolveAnnotation(text, hint string) *spec.Schema {
	expanded := s.reg.Expand(text)
	tv := s.typeVarIn(expanded)
	if tv == "" {
		return typeinfer.Resolve(expanded)
	}
	if hint == "" {
		return spec.ObjectSchema()
	}
	hinted := typeinfer.Resolve(s.reg.Expand(hint))
	if strings.TrimSpace(expanded) == tv {
		return hinted
	}
	// Type variable nested inside a container. An array hint stands for
	// the element type, not the array itself.
	if hinted.Type == "array" && hinted.Items != nil {
		hinted = hinted.Items
	}
	if isArrayText(expanded) {
		return &spec.Schema{Type: "array", Items: hinted}
	}
	return spec.ObjectSchema()
}

func (s *Scanner) typeVarIn(text string) string {
	names := make([]string, 0, len(s.typeVars))
	for name := range s.typeVars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`).MatchString(text) {
			return name
		}
	}
	return ""
}

func isArrayText(text string) bool {
	for _, marker := range []string{"List[", "list[", "Sequence[", "Set[", "Tuple[", "FrozenSet["} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// literalSchema infers a property schema from an unannotated assignment's
// right-hand side.
func literalSchema(value *sitter.Node) *spec.Schema {
	if value == nil {
		return spec.StringSchema()
	}
	switch value.Type() {
	case "true", "false":
		return &spec.Schema{Type: "boolean"}
	case "integer":
		return &spec.Schema{Type: "integer"}
	case "float":
		return &spec.Schema{Type: "number"}
	default:
		return spec.StringSchema()
	}
}

// requiredNames returns the sorted names of all non-nullable properties.
func requiredNames(props map[string]*spec.Schema) []string {
	var required []string
	for name, schema := range props {
		if !schema.Nullable {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return required
}

// mergeBlockProperties folds a documentation block's properties mapping into
// the inferred set. Inferred keys win, except description and enum which the
// block may override; block-only properties are added as written.
func mergeBlockProperties(props map[string]*spec.Schema, block map[string]any) {
	blockProps, ok := block["properties"].(map[string]any)
	if !ok {
		return
	}
	for name, raw := range blockProps {
		meta, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		schema, exists := props[name]
		if !exists {
			schema = &spec.Schema{}
			props[name] = schema
		}
		for k, v := range meta {
			applyMeta(schema, k, v, k == "description" || k == "enum")
		}
	}
}

// applyMeta sets one metadata key on a property schema. With overwrite false
// an already-populated field is left alone.
func applyMeta(s *spec.Schema, key string, value any, overwrite bool) {
	switch key {
	case "description":
		if v, ok := value.(string); ok && (overwrite || s.Description == "") {
			s.Description = v
		}
	case "enum":
		if vs := stringSlice(value); vs != nil && (overwrite || s.Enum == nil) {
			s.Enum = vs
		}
	case "type":
		if v, ok := value.(string); ok && (overwrite || s.Type == "") {
			s.Type = v
		}
	case "format":
		if v, ok := value.(string); ok && (overwrite || s.Format == "") {
			s.Format = v
		}
	case "default":
		if overwrite || s.Default == nil {
			s.Default = value
		}
	case "example":
		if overwrite || s.Example == nil {
			s.Example = value
		}
	case "nullable":
		if v, ok := value.(bool); ok && (overwrite || !s.Nullable) {
			s.Nullable = v
		}
	case "deprecated":
		if v, ok := value.(bool); ok && (overwrite || !s.Deprecated) {
			s.Deprecated = v
		}
	case "readOnly":
		if v, ok := value.(bool); ok && (overwrite || !s.ReadOnly) {
			s.ReadOnly = v
		}
	case "writeOnly":
		if v, ok := value.(bool); ok && (overwrite || !s.WriteOnly) {
			s.WriteOnly = v
		}
	default:
		if s.Extra == nil {
			s.SetExtension(key, value)
			return
		}
		if _, present := s.Extra[key]; overwrite || !present {
			s.SetExtension(key, value)
		}
	}
}

func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}
