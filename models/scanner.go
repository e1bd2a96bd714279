package models

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/swagsync/swagsync/aliases"
	"github.com/swagsync/swagsync/pysrc"
	"github.com/swagsync/swagsync/spec"
	"github.com/swagsync/swagsync/typeinfer"
)

// Default decorator names recognized on model classes.
const (
	DefaultComponentDecorator = "component"
	DefaultPropertyDecorator  = "doc_property"
	DefaultAttributeDecorator = "doc_attribute"

	// attrAliasFactory is the call spelling that declares a project
	// attribute alias inside a helper module.
	attrAliasFactory = "attribute_alias"
)

// DefaultHelperFiles are the conventional modules searched under the models
// root for project attribute-alias declarations.
var DefaultHelperFiles = []string{"doc_helpers.py", "swagger_helpers.py"}

// ignoredBases are base-class names that never contribute an allOf member.
var ignoredBases = map[string]struct{}{
	"Generic":    {},
	"ABC":        {},
	"object":     {},
	"Protocol":   {},
	"Enum":       {},
	"TypedDict":  {},
	"NamedTuple": {},
}

// attrAlias maps a project decorator name to the extension field it sets.
type attrAlias struct {
	Key   string
	Value any
}

// Result is the outcome of one model scan.
type Result struct {
	// Components maps component name to its assembled schema.
	Components map[string]*spec.Schema
	// Excluded lists component names carrying the exclude extension, in
	// sorted order. They never appear in Components.
	Excluded []string
}

// Scanner walks a model directory and assembles component schemas. The zero
// value is not usable; construct with NewScanner. Fields may be adjusted
// before the first Scan call.
type Scanner struct {
	// Markers delimit embedded documentation blocks.
	Markers pysrc.Markers
	// ComponentDecorator, PropertyDecorator, and AttributeDecorator
	// override the recognized decorator names.
	ComponentDecorator string
	PropertyDecorator  string
	AttributeDecorator string
	// HelperFiles are module names searched under the scan root for
	// attribute-alias declarations.
	HelperFiles []string
	// Aliases is the session alias registry. When nil a registry rooted at
	// the scan root is created for the duration of the scan.
	Aliases *aliases.Registry
	// Logger receives skip-and-warn diagnostics. Nil disables logging.
	Logger pysrc.Logger

	parser *pysrc.Parser

	// populated per scan
	reg         *aliases.Registry
	typeVars    map[string]bool
	attrAliases map[string]attrAlias
}

// NewScanner returns a Scanner with default markers, decorator names, and
// helper-module locations.
func NewScanner() *Scanner {
	return &Scanner{
		Markers:            pysrc.DefaultMarkers(),
		ComponentDecorator: DefaultComponentDecorator,
		PropertyDecorator:  DefaultPropertyDecorator,
		AttributeDecorator: DefaultAttributeDecorator,
		HelperFiles:        DefaultHelperFiles,
		parser:             pysrc.NewParser(),
	}
}

// Close releases parser resources.
func (s *Scanner) Close() {
	s.parser.Close()
}

func (s *Scanner) log() pysrc.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return pysrc.NopLogger{}
}

// Scan walks the model tree rooted at root. Files whose name starts with an
// underscore are skipped; files that fail to parse are skipped with a
// warning. Malformed documentation blocks abort the scan.
func (s *Scanner) Scan(root string) (*Result, error) {
	s.reg = s.Aliases
	if s.reg == nil {
		s.reg = aliases.NewRegistry(root)
		s.reg.Logger = s.Logger
		defer s.reg.Close()
	}
	s.typeVars = make(map[string]bool)
	s.attrAliases = make(map[string]attrAlias)
	s.discoverAttrAliases(root)

	result := &Result{Components: make(map[string]*spec.Schema)}
	excluded := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".py") || strings.HasPrefix(d.Name(), "_") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		return s.scanFile(path, rel, result, excluded)
	})
	if err != nil {
		return nil, err
	}

	s.synthesizeAliasComponents(root, result, excluded)

	result.Excluded = make([]string, 0, len(excluded))
	for name := range excluded {
		result.Excluded = append(result.Excluded, name)
	}
	sort.Strings(result.Excluded)
	return result, nil
}

// discoverAttrAliases reads the conventional helper modules once, collecting
// assignments of the attribute_alias factory into the alias table.
func (s *Scanner) discoverAttrAliases(root string) {
	for _, name := range s.HelperFiles {
		path := filepath.Join(root, name)
		file, err := s.parser.ParseFile(path)
		if err != nil {
			continue
		}
		for _, a := range file.TopLevelAssignments() {
			if file.CallName(a.Value) != attrAliasFactory {
				continue
			}
			args, _ := file.CallArguments(a.Value)
			if len(args) == 0 {
				continue
			}
			key, ok := file.StringValue(args[0])
			if !ok {
				continue
			}
			alias := attrAlias{Key: extensionKey(key), Value: true}
			if len(args) > 1 {
				alias.Value = file.LiteralValue(args[1])
			}
			s.attrAliases[a.Target] = alias
		}
		file.Close()
	}
}

func (s *Scanner) scanFile(path, rel string, result *Result, excluded map[string]bool) error {
	file, err := s.parser.ParseFile(path)
	if err != nil {
		s.log().Warn("skipping unparseable file", "file", rel, "error", err)
		return nil
	}
	defer file.Close()

	if _, err := s.reg.Load(path); err != nil {
		s.log().Warn("failed to load aliases", "file", rel, "error", err)
	}
	for _, a := range file.TopLevelAssignments() {
		if file.CallName(a.Value) == "TypeVar" {
			s.typeVars[a.Target] = true
		}
	}

	for _, cls := range file.Classes() {
		dec, ok := s.componentDecorator(cls)
		if !ok {
			continue
		}
		if err := s.scanClass(file, rel, cls, dec, result, excluded); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) componentDecorator(cls pysrc.Class) (pysrc.Decorator, bool) {
	for _, dec := range cls.Decorators {
		if dec.BaseName() == s.ComponentDecorator {
			return dec, true
		}
	}
	return pysrc.Decorator{}, false
}

func (s *Scanner) scanClass(file *pysrc.File, rel string, cls pysrc.Class, dec pysrc.Decorator, result *Result, excluded map[string]bool) error {
	name := cls.Name
	if len(dec.Args) > 0 {
		if v, ok := file.StringValue(dec.Args[0]); ok {
			name = v
		}
	} else if v, ok := file.StringValue(dec.Kwargs["name"]); ok {
		name = v
	}
	description, _ := file.StringValue(dec.Kwargs["description"])

	meta := s.classMetadata(file, cls)
	if truthy(meta.extensions["x-exclude"]) {
		excluded[name] = true
		s.log().Debug("component excluded", "component", name, "file", rel)
		return nil
	}

	block, found, err := pysrc.ExtractDocBlock(s.Markers, cls.Docstring, rel, cls.Name)
	if err != nil {
		return err
	}

	// A block with a type key and no properties key is a verbatim schema
	// override, short-circuiting attribute inference.
	if found {
		_, hasType := block["type"]
		_, hasProps := block["properties"]
		if hasType && !hasProps {
			result.Components[name] = &spec.Schema{Raw: block}
			return nil
		}
	}

	props := s.inferProperties(cls, meta.hints)
	for propName, keys := range meta.properties {
		schema, exists := props[propName]
		if !exists {
			schema = &spec.Schema{}
			props[propName] = schema
		}
		for k, v := range keys {
			applyMeta(schema, k, v, true)
		}
	}
	if found {
		mergeBlockProperties(props, block)
	}

	required := requiredNames(props)

	if description == "" && found {
		if v, ok := block["description"].(string); ok {
			description = v
		}
	}

	schema := &spec.Schema{Description: description}
	if bases := s.relevantBases(cls.Bases); len(bases) > 0 {
		for _, base := range bases {
			schema.AllOf = append(schema.AllOf, spec.Ref(base))
		}
		if len(props) > 0 {
			schema.AllOf = append(schema.AllOf, &spec.Schema{
				Properties: props,
				Required:   required,
			})
		}
	} else {
		schema.Type = "object"
		schema.Properties = props
		schema.Required = required
	}
	for _, key := range sortedKeys(meta.extensions) {
		schema.SetExtension(key, meta.extensions[key])
	}
	result.Components[name] = schema
	return nil
}

// classMetadata collects property, attribute, and alias decorator metadata
// from a component class.
type classMeta struct {
	properties map[string]map[string]any
	hints      map[string]string
	extensions map[string]any
}

func (s *Scanner) classMetadata(file *pysrc.File, cls pysrc.Class) classMeta {
	meta := classMeta{
		properties: make(map[string]map[string]any),
		hints:      make(map[string]string),
		extensions: make(map[string]any),
	}
	for _, dec := range cls.Decorators {
		switch base := dec.BaseName(); base {
		case s.PropertyDecorator:
			s.propertyMetadata(file, dec, &meta)
		case s.AttributeDecorator:
			if len(dec.Args) == 0 {
				continue
			}
			key, ok := file.StringValue(dec.Args[0])
			if !ok {
				continue
			}
			var value any = true
			if len(dec.Args) > 1 {
				value = file.LiteralValue(dec.Args[1])
			}
			meta.extensions[extensionKey(key)] = value
		default:
			if alias, ok := s.attrAliases[base]; ok {
				meta.extensions[alias.Key] = alias.Value
			}
		}
	}
	return meta
}

// propertyMetadata handles both doc_property spellings: the legacy positional
// (name, key, value) triple and the keyword form with property=, hint=, and
// arbitrary OpenAPI keys.
func (s *Scanner) propertyMetadata(file *pysrc.File, dec pysrc.Decorator, meta *classMeta) {
	if len(dec.Args) >= 3 {
		name, nameOK := file.StringValue(dec.Args[0])
		key, keyOK := file.StringValue(dec.Args[1])
		if nameOK && keyOK {
			if meta.properties[name] == nil {
				meta.properties[name] = make(map[string]any)
			}
			meta.properties[name][key] = file.LiteralValue(dec.Args[2])
		}
		return
	}

	name, ok := file.StringValue(dec.Kwargs["property"])
	if !ok && len(dec.Args) > 0 {
		name, ok = file.StringValue(dec.Args[0])
	}
	if !ok || name == "" {
		return
	}
	for k, v := range dec.Kwargs {
		switch k {
		case "property":
		case "hint":
			if hint, ok := file.StringValue(v); ok {
				meta.hints[name] = hint
			}
		default:
			if meta.properties[name] == nil {
				meta.properties[name] = make(map[string]any)
			}
			meta.properties[name][k] = file.LiteralValue(v)
		}
	}
}

// relevantBases filters a class's base list down to component references:
// subscripts and module qualification are stripped, and known typing/ABC
// names and registered type variables are dropped.
func (s *Scanner) relevantBases(bases []string) []string {
	var out []string
	for _, base := range bases {
		if i := strings.Index(base, "["); i >= 0 {
			base = base[:i]
		}
		if i := strings.LastIndex(base, "."); i >= 0 {
			base = base[i+1:]
		}
		base = strings.TrimSpace(base)
		if base == "" {
			continue
		}
		if _, skip := ignoredBases[base]; skip {
			continue
		}
		if s.typeVars[base] {
			continue
		}
		out = append(out, base)
	}
	return out
}

// synthesizeAliasComponents turns alias-metadata records declared under the
// models root into components of their own, unless class scanning already
// produced (or excluded) the name.
func (s *Scanner) synthesizeAliasComponents(root string, result *Result, excluded map[string]bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	for name, rec := range s.reg.Metadata() {
		if _, exists := result.Components[name]; exists || excluded[name] {
			continue
		}
		if !underDir(rec.File, absRoot) {
			continue
		}
		expanded := s.reg.Expand(rec.TypeText)
		inner, nullable := typeinfer.UnwrapOptional(expanded)
		schema := typeinfer.ResolveWithOptions(inner, typeinfer.Options{AnyOf: rec.AnyOf})
		if nullable && !schema.IsRef() {
			schema.Nullable = true
		}
		if rec.Description != "" {
			schema.Description = rec.Description
		}
		if rec.Default != nil {
			schema.Default = rec.Default
		}
		for _, key := range sortedKeys(rec.Extensions) {
			schema.SetExtension(extensionKey(key), rec.Extensions[key])
		}
		result.Components[name] = schema
	}
}

func underDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func extensionKey(key string) string {
	if strings.HasPrefix(key, "x-") {
		return key
	}
	return "x-" + key
}

func truthy(v any) bool {
	return v != nil && v != false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
