package aliases

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/swagsync/swagsync/pysrc"
)

const (
	// aliasMarker is the declared type that marks an alias assignment.
	aliasMarker = "TypeAlias"
	// factoryName is the alias factory-call spelling.
	factoryName = "component_alias"
	// castName wraps an indirect alias reference inside a factory call.
	castName = "cast"

	// expandCap bounds recursive alias substitution.
	expandCap = 5
)

// Record is one discovered type alias: the underlying annotation text plus
// provenance and optional component metadata from the factory spelling.
type Record struct {
	Name     string
	TypeText string
	File     string

	ComponentName string
	Description   string
	Default       any
	Managed       bool
	AnyOf         bool
	Extensions    map[string]any
}

// Registry discovers and caches alias declarations for one scan session.
type Registry struct {
	// ProjectRoot anchors absolute dotted-module import resolution.
	ProjectRoot string
	// Logger receives skip-and-warn diagnostics. Nil disables logging.
	Logger pysrc.Logger

	parser *pysrc.Parser
	files  map[string]map[string]*Record
	global map[string]*Record
	meta   map[string]*Record
}

// NewRegistry creates an empty Registry rooted at projectRoot.
func NewRegistry(projectRoot string) *Registry {
	return &Registry{
		ProjectRoot: projectRoot,
		parser:      pysrc.NewParser(),
		files:       make(map[string]map[string]*Record),
		global:      make(map[string]*Record),
		meta:        make(map[string]*Record),
	}
}

func (r *Registry) log() pysrc.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return pysrc.NopLogger{}
}

// Close releases parser resources.
func (r *Registry) Close() {
	r.parser.Close()
}

// Records returns the accumulated process-wide alias table.
func (r *Registry) Records() map[string]*Record {
	return r.global
}

// Metadata returns the accumulated alias-metadata table: every alias carrying
// an explicit component name, keyed by that name.
func (r *Registry) Metadata() map[string]*Record {
	return r.meta
}

// Load returns the alias map for a file, computing and caching it on first
// use. The cache is keyed by resolved absolute path; re-loading the same file
// returns the cached map.
func (r *Registry) Load(path string) (map[string]*Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if cached, ok := r.files[abs]; ok {
		return cached, nil
	}

	// Seed the cache before recursing so import cycles terminate.
	m := make(map[string]*Record)
	r.files[abs] = m

	file, err := r.parser.ParseFile(abs)
	if err != nil {
		return m, fmt.Errorf("failed to load aliases: %w", err)
	}
	defer file.Close()

	r.collect(file, abs, m)
	r.resolveImports(file, abs, m)
	r.accumulate(m)
	return m, nil
}

// collect performs the two declaration passes over one file.
func (r *Registry) collect(file *pysrc.File, abs string, m map[string]*Record) {
	type deferred struct {
		rec  *Record
		cast *sitter.Node
	}
	var indirect []deferred

	for _, a := range file.TopLevelAssignments() {
		if a.Annotation != aliasMarker || a.Value == nil {
			continue
		}
		rec := &Record{Name: a.Target, File: abs}

		if file.CallName(a.Value) == factoryName {
			args, kwargs := file.CallArguments(a.Value)
			r.applyFactoryMetadata(file, rec, kwargs)
			if len(args) > 0 {
				if file.CallName(args[0]) == castName {
					indirect = append(indirect, deferred{rec: rec, cast: args[0]})
					continue
				}
				rec.TypeText = file.Text(args[0])
			}
		} else {
			rec.TypeText = file.Text(a.Value)
		}

		if rec.TypeText != "" {
			m[rec.Name] = rec
		}
	}

	// Second pass: factory calls that reference a previously-declared alias
	// through a cast wrapper inherit that alias's underlying text.
	for _, d := range indirect {
		castArgs, _ := file.CallArguments(d.cast)
		if len(castArgs) < 2 {
			continue
		}
		ref := strings.TrimSpace(file.Text(castArgs[1]))
		target, ok := m[ref]
		if !ok {
			r.log().Warn("alias cast references unknown alias",
				"file", abs, "alias", d.rec.Name, "target", ref)
			continue
		}
		d.rec.TypeText = target.TypeText
		m[d.rec.Name] = d.rec
	}
}

func (r *Registry) applyFactoryMetadata(file *pysrc.File, rec *Record, kwargs map[string]*sitter.Node) {
	if v, ok := file.StringValue(kwargs["component"]); ok {
		rec.ComponentName = v
	}
	if v, ok := file.StringValue(kwargs["description"]); ok {
		rec.Description = v
	}
	if n, ok := kwargs["default"]; ok {
		rec.Default = file.LiteralValue(n)
	}
	if v, ok := file.LiteralValue(kwargs["managed"]).(bool); ok {
		rec.Managed = v
	}
	if v, ok := file.LiteralValue(kwargs["any_of"]).(bool); ok {
		rec.AnyOf = v
	}
	if ext, ok := file.LiteralValue(kwargs["extensions"]).(map[string]any); ok {
		rec.Extensions = ext
	}
}

// resolveImports copies alias definitions referenced by "from X import name"
// into the local map. Local declarations win over imports.
func (r *Registry) resolveImports(file *pysrc.File, abs string, m map[string]*Record) {
	for _, imp := range file.FromImports() {
		modPath, ok := r.resolveModule(imp.Module, abs)
		if !ok {
			continue
		}
		imported, err := r.Load(modPath)
		if err != nil {
			r.log().Warn("failed to load imported module for aliases",
				"file", abs, "module", imp.Module, "error", err)
			continue
		}
		for _, name := range imp.Names {
			rec, ok := imported[name]
			if !ok {
				continue
			}
			if _, exists := m[name]; exists {
				continue
			}
			m[name] = rec
		}
	}
}

// resolveModule maps a Python module reference to a file path: absolute
// dotted modules resolve against the project root, relative imports walk up
// parent directories from the importing file.
func (r *Registry) resolveModule(module, importer string) (string, bool) {
	if module == "" {
		return "", false
	}
	if module[0] == '.' {
		dots := 0
		for dots < len(module) && module[dots] == '.' {
			dots++
		}
		dir := filepath.Dir(importer)
		for i := 1; i < dots; i++ {
			dir = filepath.Dir(dir)
		}
		rest := module[dots:]
		if rest == "" {
			return "", false
		}
		return existingFile(filepath.Join(dir, modulePath(rest)))
	}
	if r.ProjectRoot == "" {
		return "", false
	}
	return existingFile(filepath.Join(r.ProjectRoot, modulePath(module)))
}

func modulePath(dotted string) string {
	return filepath.Join(strings.Split(dotted, ".")...) + ".py"
}

func existingFile(path string) (string, bool) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, true
	}
	return "", false
}

// accumulate merges a per-file map into the session-wide tables.
func (r *Registry) accumulate(m map[string]*Record) {
	for name, rec := range m {
		if _, exists := r.global[name]; !exists {
			r.global[name] = rec
		}
		if rec.ComponentName != "" {
			if _, exists := r.meta[rec.ComponentName]; !exists {
				r.meta[rec.ComponentName] = rec
			}
		}
	}
}

// Expand substitutes known alias names inside annotation text with their
// parenthesized underlying type text. Substitution repeats so aliases nested
// inside other aliases' definitions are fully expanded, up to a fixed number
// of passes, stopping early on a fixed point.
func (r *Registry) Expand(text string) string {
	if len(r.global) == 0 || text == "" {
		return text
	}
	for range expandCap {
		next := text
		for name, rec := range r.global {
			next = wordPattern(name).ReplaceAllString(next, "("+rec.TypeText+")")
		}
		if next == text {
			return next
		}
		text = next
	}
	return text
}

func wordPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
}
