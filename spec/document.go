package spec

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v4"
)

// Operation is one HTTP operation object (summary, parameters, responses,
// ...). Operations are generic mappings because they are authored as YAML
// documentation blocks and reconciled structurally.
type Operation = map[string]any

// PathItem maps a lowercase HTTP method to its operation object.
type PathItem = map[string]Operation

// Components holds the reusable objects of the document. Only schemas are
// managed by swagsync; everything else the author wrote is preserved
// verbatim through Extra.
type Components struct {
	Schemas map[string]*Schema `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	Extra   map[string]any     `yaml:",inline" json:"-"`
}

// Document is an in-memory swagger/OpenAPI document. Fields swagsync does
// not manage are captured in Info and Extra and round-trip untouched.
type Document struct {
	OpenAPI    string              `yaml:"openapi,omitempty" json:"openapi,omitempty"`
	Swagger    string              `yaml:"swagger,omitempty" json:"swagger,omitempty"`
	Info       map[string]any      `yaml:"info,omitempty" json:"info,omitempty"`
	Paths      map[string]PathItem `yaml:"paths" json:"paths"`
	Components *Components         `yaml:"components,omitempty" json:"components,omitempty"`
	Extra      map[string]any      `yaml:",inline" json:"-"`
}

// New returns an empty OAS 3.0 document.
func New() *Document {
	return &Document{
		OpenAPI: "3.0.3",
		Paths:   make(map[string]PathItem),
	}
}

// Schemas returns the component-schema mapping, creating the containers on
// first use.
func (d *Document) Schemas() map[string]*Schema {
	if d.Components == nil {
		d.Components = &Components{}
	}
	if d.Components.Schemas == nil {
		d.Components.Schemas = make(map[string]*Schema)
	}
	return d.Components.Schemas
}

// Operation returns the operation at paths[path][method], or nil.
func (d *Document) Operation(path, method string) Operation {
	item, ok := d.Paths[path]
	if !ok {
		return nil
	}
	return item[method]
}

// SetOperation stores an operation object, creating the path item if needed.
func (d *Document) SetOperation(path, method string, op Operation) {
	if d.Paths == nil {
		d.Paths = make(map[string]PathItem)
	}
	item, ok := d.Paths[path]
	if !ok {
		item = make(PathItem)
		d.Paths[path] = item
	}
	item[method] = op
}

// SortedPaths returns the document's path templates in sorted order.
func (d *Document) SortedPaths() []string {
	paths := make([]string, 0, len(d.Paths))
	for p := range d.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Load reads and decodes a swagger document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read swagger document: %w", err)
	}
	return Parse(data)
}

// Parse decodes a swagger document from YAML (or JSON, which YAML subsumes).
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode swagger document: %w", err)
	}
	if doc.Paths == nil {
		doc.Paths = make(map[string]PathItem)
	}
	return &doc, nil
}

// Marshal encodes the document as YAML.
func Marshal(doc *Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode swagger document: %w", err)
	}
	return data, nil
}

// Save writes the document to disk as YAML.
func Save(path string, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write swagger document: %w", err)
	}
	return nil
}
