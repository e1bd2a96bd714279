package endpoints

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/swagsync/swagsync/pysrc"
)

// Default routing decorator names. The variable- and static-path decorators
// both produce swagger operations; the pattern decorator matches by regex at
// runtime and is always routed to the ignored list.
const (
	DefaultRouteDecorator   = "route"
	DefaultStaticDecorator  = "static_route"
	DefaultPatternDecorator = "pattern_route"
)

// Metadata decorators assembled into Endpoint.DecoratorMeta.
var metaDecorators = map[string]string{
	"doc_summary":     "summary",
	"doc_description": "description",
	"doc_tags":        "tags",
	"doc_deprecated":  "deprecated",
}

// Scanner walks a handler tree and extracts endpoint records. Configure the
// exported fields before calling Scan; the zero value of each field has a
// sensible default applied by NewScanner.
type Scanner struct {
	// Strict turns documentation/decorator method mismatches into
	// scan-aborting errors instead of warnings.
	Strict bool
	// IgnorePatterns are glob patterns matched against each file's
	// root-relative path and bare filename.
	IgnorePatterns []string
	// Markers delimit embedded documentation blocks.
	Markers pysrc.Markers
	// RouteDecorator, StaticDecorator, and PatternDecorator override the
	// recognized decorator names.
	RouteDecorator   string
	StaticDecorator  string
	PatternDecorator string
	// VersionValues resolves recognized f-string path placeholders to
	// literals, e.g. {"VERSION": "v1"}.
	VersionValues map[string]string
	// Logger receives skip-and-warn diagnostics.
	Logger pysrc.Logger

	parser *pysrc.Parser
}

// NewScanner returns a Scanner with default markers and decorator names.
func NewScanner() *Scanner {
	return &Scanner{
		Markers:          pysrc.DefaultMarkers(),
		RouteDecorator:   DefaultRouteDecorator,
		StaticDecorator:  DefaultStaticDecorator,
		PatternDecorator: DefaultPatternDecorator,
		VersionValues:    map[string]string{"VERSION": "v1"},
		parser:           pysrc.NewParser(),
	}
}

// Close releases parser resources.
func (s *Scanner) Close() {
	if s.parser != nil {
		s.parser.Close()
	}
}

func (s *Scanner) log() pysrc.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return pysrc.NopLogger{}
}

// Scan walks the handler tree rooted at root. Individual files that fail to
// parse are skipped with a warning; malformed documentation blocks and
// strict-mode validation failures abort the scan.
func (s *Scanner) Scan(root string) (*Result, error) {
	result := &Result{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if s.ignored(rel, d.Name()) {
			return nil
		}
		return s.scanFile(path, rel, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Scanner) ignored(rel, base string) bool {
	for _, pattern := range s.IgnorePatterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) scanFile(path, rel string, result *Result) error {
	file, err := s.parser.ParseFile(path)
	if err != nil {
		s.log().Warn("skipping unparseable file", "file", rel, "error", err)
		return nil
	}
	defer file.Close()

	moduleDoc := file.ModuleDocstring()
	if strings.Contains(moduleDoc, pysrc.IgnoreFileMarker) {
		return nil
	}
	moduleIgnored := strings.Contains(moduleDoc, pysrc.IgnoreMarker)

	for _, cls := range file.Classes() {
		for _, method := range cls.Methods() {
			if err := s.scanMethod(file, rel, method, moduleIgnored, result); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scanner) scanMethod(file *pysrc.File, rel string, method pysrc.Method, moduleIgnored bool, result *Result) error {
	decoratorMeta := s.decoratorMetadata(file, method)

	for _, dec := range method.Decorators {
		name := dec.BaseName()
		isPattern := name == s.PatternDecorator
		if name != s.RouteDecorator && name != s.StaticDecorator && !isPattern {
			continue
		}

		path, ok := s.resolvePath(file, dec)
		if !ok {
			s.log().Warn("skipping decorator with unresolvable path expression",
				"file", rel, "function", method.Name)
			continue
		}
		methods := s.resolveMethods(file, dec)

		// Pattern-based routes are matched by regex at runtime and never
		// appear in swagger, regardless of ignore markers.
		if isPattern {
			for _, m := range methods {
				result.Ignored = append(result.Ignored, IgnoredRoute{
					Path: path, Method: m, File: rel, Function: method.Name,
				})
			}
			continue
		}

		block, _, err := pysrc.ExtractDocBlock(s.Markers, method.Docstring, rel, method.Name)
		if err != nil {
			return err
		}
		methodRooted := isMethodRooted(block)

		if methodRooted {
			if err := s.validateBlockMethods(rel, method.Name, block, methods); err != nil {
				return err
			}
		}

		methodIgnored := moduleIgnored || strings.Contains(method.Docstring, pysrc.IgnoreMarker)

		for _, m := range methods {
			if methodIgnored {
				result.Ignored = append(result.Ignored, IgnoredRoute{
					Path: path, Method: m, File: rel, Function: method.Name,
				})
				continue
			}
			result.Endpoints = append(result.Endpoints, Endpoint{
				Path:          path,
				Method:        m,
				File:          rel,
				Function:      method.Name,
				Meta:          selectMeta(block, m, methodRooted),
				DecoratorMeta: decoratorMeta,
			})
		}
	}
	return nil
}

// resolvePath extracts the decorator's first positional argument as a path:
// a plain string literal, or a formatted string whose interpolations are all
// recognized version placeholders. Any other dynamic expression abandons
// resolution.
func (s *Scanner) resolvePath(file *pysrc.File, dec pysrc.Decorator) (string, bool) {
	if len(dec.Args) == 0 {
		return "", false
	}
	arg := dec.Args[0]
	if path, ok := file.StringValue(arg); ok {
		return path, true
	}
	return file.ResolveFString(arg, func(expr string) (string, bool) {
		value, ok := s.VersionValues[expr]
		return value, ok
	})
}

// resolveMethods returns the decorator's declared HTTP methods, lowercase.
// Absent method keyword defaults to GET.
func (s *Scanner) resolveMethods(file *pysrc.File, dec pysrc.Decorator) []string {
	node, ok := dec.Kwargs["method"]
	if !ok {
		return []string{"get"}
	}
	if single, ok := file.StringValue(node); ok {
		return []string{strings.ToLower(single)}
	}
	if list, ok := file.StringListValue(node); ok {
		methods := make([]string, 0, len(list))
		for _, m := range list {
			methods = append(methods, strings.ToLower(m))
		}
		if len(methods) > 0 {
			return methods
		}
	}
	return []string{"get"}
}

// decoratorMetadata assembles the discrete annotation-style decorators on a
// handler into one mapping. Returns nil when none are present.
func (s *Scanner) decoratorMetadata(file *pysrc.File, method pysrc.Method) map[string]any {
	var meta map[string]any
	set := func(key string, value any) {
		if meta == nil {
			meta = make(map[string]any)
		}
		meta[key] = value
	}
	for _, dec := range method.Decorators {
		name := dec.BaseName()
		if key, ok := metaDecorators[name]; ok && len(dec.Args) > 0 {
			if name == "doc_tags" {
				var tags []any
				for _, arg := range dec.Args {
					tags = append(tags, file.LiteralValue(arg))
				}
				set(key, tags)
				continue
			}
			set(key, file.LiteralValue(dec.Args[0]))
			continue
		}
		if name == "doc_field" && len(dec.Args) >= 2 {
			if key, ok := file.StringValue(dec.Args[0]); ok {
				set(key, file.LiteralValue(dec.Args[1]))
			}
		}
	}
	return meta
}

// isMethodRooted reports whether any top-level block key names an HTTP
// method, case-insensitively.
func isMethodRooted(block map[string]any) bool {
	for key := range block {
		if pysrc.IsHTTPMethod(key) {
			return true
		}
	}
	return false
}

// validateBlockMethods checks that every HTTP-method key in a method-rooted
// block is declared on the decorator. Strict mode aborts the scan; otherwise
// the extraneous sub-block is warned about and never emitted.
func (s *Scanner) validateBlockMethods(rel, function string, block map[string]any, declared []string) error {
	declaredSet := make(map[string]bool, len(declared))
	for _, m := range declared {
		declaredSet[m] = true
	}
	for key := range block {
		if !pysrc.IsHTTPMethod(key) {
			continue
		}
		if declaredSet[strings.ToLower(key)] {
			continue
		}
		verr := &ValidationError{File: rel, Function: function, Method: strings.ToLower(key)}
		if s.Strict {
			return verr
		}
		s.log().Warn(verr.Error())
	}
	return nil
}

// selectMeta picks the endpoint's documentation mapping: for method-rooted
// blocks the sub-mapping under the matching method key (empty if none), for
// flat blocks the whole block.
func selectMeta(block map[string]any, method string, methodRooted bool) map[string]any {
	if block == nil {
		return map[string]any{}
	}
	if !methodRooted {
		return block
	}
	for key, value := range block {
		if strings.ToLower(key) != method {
			continue
		}
		if sub, ok := value.(map[string]any); ok {
			return sub
		}
		return map[string]any{}
	}
	return map[string]any{}
}

// String renders an endpoint as "METHOD path (file:function)" for reports.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s %s (%s:%s)", strings.ToUpper(e.Method), e.Path, e.File, e.Function)
}
