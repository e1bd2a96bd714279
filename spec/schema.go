package spec

import "sort"

// RefPrefix is the component-schema reference prefix used throughout the
// generated document.
const RefPrefix = "#/components/schemas/"

// Schema represents an OpenAPI schema object as produced by the inference
// engine. It covers the subset of JSON Schema that type-annotation analysis
// can derive: primitives, arrays, objects, enums, $ref targets, and the
// allOf/anyOf/oneOf compositions used for inheritance and unions.
type Schema struct {
	Ref string `yaml:"$ref,omitempty" json:"$ref,omitempty"`

	// Metadata
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
	Example     any    `yaml:"example,omitempty" json:"example,omitempty"`

	// Type validation
	Type   string   `yaml:"type,omitempty" json:"type,omitempty"`
	Format string   `yaml:"format,omitempty" json:"format,omitempty"`
	Enum   []string `yaml:"enum,omitempty" json:"enum,omitempty"`

	// Array validation
	Items *Schema `yaml:"items,omitempty" json:"items,omitempty"`

	// Object validation
	Properties           map[string]*Schema `yaml:"properties,omitempty" json:"properties,omitempty"`
	Required             []string           `yaml:"required,omitempty" json:"required,omitempty"`
	AdditionalProperties *Schema            `yaml:"additionalProperties,omitempty" json:"additionalProperties,omitempty"`

	// Composition
	AllOf []*Schema `yaml:"allOf,omitempty" json:"allOf,omitempty"`
	AnyOf []*Schema `yaml:"anyOf,omitempty" json:"anyOf,omitempty"`
	OneOf []*Schema `yaml:"oneOf,omitempty" json:"oneOf,omitempty"`

	// OAS 3.0 nullability. Never set alongside Ref: the specification
	// disallows sibling keywords next to $ref.
	Nullable bool `yaml:"nullable,omitempty" json:"nullable,omitempty"`

	ReadOnly   bool `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	WriteOnly  bool `yaml:"writeOnly,omitempty" json:"writeOnly,omitempty"`
	Deprecated bool `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`

	// Raw holds a verbatim full-override schema supplied by the author.
	// When non-nil it is marshaled instead of the typed fields.
	Raw map[string]any `yaml:"-" json:"-"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Ref returns a bare reference schema pointing at the named component.
func Ref(name string) *Schema {
	return &Schema{Ref: RefPrefix + name}
}

// StringSchema returns the generic fallback schema used whenever inference
// cannot do better.
func StringSchema() *Schema {
	return &Schema{Type: "string"}
}

// ObjectSchema returns a bare object schema.
func ObjectSchema() *Schema {
	return &Schema{Type: "object"}
}

// IsRef reports whether the schema is a bare component reference.
func (s *Schema) IsRef() bool {
	return s != nil && s.Ref != ""
}

// SetExtension records a specification extension on the schema.
func (s *Schema) SetExtension(key string, value any) {
	if s.Extra == nil {
		s.Extra = make(map[string]any, 1)
	}
	s.Extra[key] = value
}

// MarshalYAML emits the raw override verbatim when present; otherwise the
// typed fields are marshaled normally.
func (s *Schema) MarshalYAML() (any, error) {
	if s.Raw != nil {
		return s.Raw, nil
	}
	type plain Schema
	return (*plain)(s), nil
}

// SortedNames returns the keys of a component-schema mapping in sorted order,
// for deterministic output and reporting.
func SortedNames(schemas map[string]*Schema) []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
