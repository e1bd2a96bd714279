package typeinfer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/swagsync/swagsync/spec"
)

// flattenCap bounds union flattening so pathological input always terminates.
const flattenCap = 10

// genericKeywords are capitalized identifiers that never name a model.
var genericKeywords = map[string]bool{
	"List": true, "Dict": true, "Set": true, "Tuple": true, "Type": true,
	"Optional": true, "Union": true, "Literal": true, "Any": true,
	"Callable": true, "Iterable": true, "Iterator": true, "Sequence": true,
	"Mapping": true, "FrozenSet": true, "None": true, "Final": true,
	"ClassVar": true, "Annotated": true,
}

var identPattern = regexp.MustCompile(`[A-Z][A-Za-z0-9_]*`)

var enumTokenPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Options control resolution behavior that annotation text alone cannot
// express.
type Options struct {
	// AnyOf selects anyOf instead of oneOf for union compositions. It is
	// requested through alias metadata, never inferred.
	AnyOf bool
}

// Resolve converts annotation text into an OpenAPI schema fragment. It never
// fails; unresolvable text degrades to {type: string}.
func Resolve(text string) *spec.Schema {
	return ResolveWithOptions(text, Options{})
}

// ResolveWithOptions is Resolve with explicit union-composition options.
func ResolveWithOptions(text string, opts Options) *spec.Schema {
	text = stripParens(strings.TrimSpace(text))
	if text == "" {
		return spec.StringSchema()
	}

	// Literal enums win over everything and are never further transformed
	// by union or optional logic.
	if s := literalEnum(text); s != nil {
		return s
	}

	inner, nullable := UnwrapOptional(text)
	inner = FlattenUnions(strings.TrimSpace(inner))

	if s := unionSchema(inner, opts); s != nil {
		s.Nullable = nullable
		return s
	}

	s := containerOrPrimitive(inner)
	if nullable && !s.IsRef() {
		s.Nullable = true
	}
	return s
}

// literalEnum detects Literal["a", "b"] constructs and returns a string enum
// of the sorted, deduplicated valid tokens, or nil.
func literalEnum(text string) *spec.Schema {
	idx := strings.Index(text, "Literal[")
	if idx < 0 {
		return nil
	}
	content, ok := bracketContent(text, idx+len("Literal"))
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var values []string
	for _, raw := range SplitTopLevel(content) {
		token := strings.Trim(strings.TrimSpace(raw), `"'`)
		if token == "" || !enumTokenPattern.MatchString(token) {
			continue
		}
		if !seen[token] {
			seen[token] = true
			values = append(values, token)
		}
	}
	sort.Strings(values)
	return &spec.Schema{Type: "string", Enum: values}
}

// UnwrapOptional detects the three optional spellings — Optional[X],
// Union[..., None, ...], and X | None — and returns the inner type text plus
// whether the annotation was nullable.
func UnwrapOptional(text string) (string, bool) {
	text = stripParens(strings.TrimSpace(text))

	if inner, ok := wholeBracketArg(text, "Optional"); ok {
		return stripParens(strings.TrimSpace(inner)), true
	}

	if inner, ok := wholeBracketArg(text, "Union"); ok {
		members := SplitTopLevel(inner)
		kept := members[:0]
		hadNone := false
		for _, m := range members {
			if strings.TrimSpace(m) == "None" {
				hadNone = true
				continue
			}
			kept = append(kept, strings.TrimSpace(m))
		}
		if hadNone {
			if len(kept) == 1 {
				return kept[0], true
			}
			return "Union[" + strings.Join(kept, ", ") + "]", true
		}
		return text, false
	}

	if parts := splitTopLevelPipe(text); len(parts) > 1 {
		kept := parts[:0]
		hadNone := false
		for _, p := range parts {
			if strings.TrimSpace(p) == "None" {
				hadNone = true
				continue
			}
			kept = append(kept, strings.TrimSpace(p))
		}
		if hadNone {
			return strings.Join(kept, " | "), true
		}
	}

	return text, false
}

// FlattenUnions recursively inlines union-of-union spellings into a single
// flat argument list. Flattening is idempotent and bounded by a fixed
// iteration cap.
func FlattenUnions(text string) string {
	for range flattenCap {
		next, changed := flattenOnce(text)
		if !changed {
			return next
		}
		text = next
	}
	return text
}

func flattenOnce(text string) (string, bool) {
	// Bracket spelling: Union[Union[A, B], C] -> Union[A, B, C].
	if idx := strings.Index(text, "Union["); idx >= 0 {
		content, ok := bracketContent(text, idx+len("Union"))
		if ok {
			members := SplitTopLevel(content)
			var flat []string
			changed := false
			for _, m := range members {
				m = strings.TrimSpace(m)
				if inner, isUnion := wholeBracketArg(m, "Union"); isUnion {
					for _, im := range SplitTopLevel(inner) {
						flat = append(flat, strings.TrimSpace(im))
					}
					changed = true
					continue
				}
				flat = append(flat, m)
			}
			if changed {
				rebuilt := text[:idx] + "Union[" + strings.Join(flat, ", ") + "]" +
					text[idx+len("Union")+len(content)+2:]
				return rebuilt, true
			}
		}
	}

	// Parenthesized pipe spelling: (A | B) | C -> A | B | C.
	if parts := splitTopLevelPipe(text); len(parts) > 1 {
		var flat []string
		changed := false
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "(") && strings.HasSuffix(p, ")") {
				inner := strings.TrimSpace(p[1 : len(p)-1])
				if sub := splitTopLevelPipe(inner); len(sub) > 1 {
					for _, s := range sub {
						flat = append(flat, strings.TrimSpace(s))
					}
					changed = true
					continue
				}
			}
			flat = append(flat, p)
		}
		if changed {
			return strings.Join(flat, " | "), true
		}
	}

	return text, false
}

// unionSchema emits a oneOf/anyOf composition of model references for a
// flattened union, or nil when the text is not a union or no member
// resolves to a model reference.
func unionSchema(text string, opts Options) *spec.Schema {
	var members []string
	if inner, ok := wholeBracketArg(text, "Union"); ok {
		members = SplitTopLevel(inner)
	} else if parts := splitTopLevelPipe(text); len(parts) > 1 {
		members = parts
	} else {
		return nil
	}

	seen := make(map[string]bool)
	var refs []*spec.Schema
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" || m == "None" {
			continue
		}
		name := ModelName(m)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		refs = append(refs, spec.Ref(name))
	}
	if len(refs) == 0 {
		return nil
	}
	if opts.AnyOf {
		return &spec.Schema{AnyOf: refs}
	}
	return &spec.Schema{OneOf: refs}
}

// containerOrPrimitive is the last inference stage: containment checks over
// the annotation text, array/mapping keywords before scalars, then a bare
// model-name extraction, then the string fallback.
func containerOrPrimitive(text string) *spec.Schema {
	switch {
	case containsAny(text, "List[", "list[", "list", "Set[", "Tuple[", "Sequence[", "FrozenSet["):
		items := spec.StringSchema()
		if containsAny(text, "Dict[", "dict", "Mapping[") {
			items = spec.ObjectSchema()
		} else if inner, ok := firstBracketContent(text); ok {
			if name := ModelName(inner); name != "" {
				items = spec.Ref(name)
			}
		}
		return &spec.Schema{Type: "array", Items: items}
	case containsAny(text, "Dict[", "dict", "Mapping["):
		return spec.ObjectSchema()
	case strings.Contains(text, "int"):
		return &spec.Schema{Type: "integer"}
	case strings.Contains(text, "bool"):
		return &spec.Schema{Type: "boolean"}
	case strings.Contains(text, "float"):
		return &spec.Schema{Type: "number"}
	default:
		if name := ModelName(text); name != "" {
			return spec.Ref(name)
		}
		return spec.StringSchema()
	}
}

// ModelName extracts the first capitalized identifier that is not a known
// generic keyword. Best-effort by design.
func ModelName(text string) string {
	for _, ident := range identPattern.FindAllString(text, -1) {
		if !genericKeywords[ident] {
			return ident
		}
	}
	return ""
}

// SplitTopLevel splits an argument list on commas, respecting nesting: a
// depth counter over brackets prevents splitting inside a nested generic.
func SplitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func splitTopLevelPipe(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case '|':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// wholeBracketArg returns the bracketed argument when text is exactly
// "Name[...]" with the closing bracket at the end.
func wholeBracketArg(text, name string) (string, bool) {
	if !strings.HasPrefix(text, name+"[") || !strings.HasSuffix(text, "]") {
		return "", false
	}
	content, ok := bracketContent(text, len(name))
	if !ok {
		return "", false
	}
	if len(name)+len(content)+2 != len(text) {
		return "", false
	}
	return content, true
}

// bracketContent scans a balanced bracket group starting at openIdx, which
// must point at '['. It returns the content between the brackets.
func bracketContent(s string, openIdx int) (string, bool) {
	if openIdx >= len(s) || s[openIdx] != '[' {
		return "", false
	}
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[openIdx+1 : i], true
			}
		}
	}
	return "", false
}

// stripParens removes balanced outer parentheses, which alias expansion
// introduces around substituted type text.
func stripParens(s string) string {
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		depth := 0
		balanced := true
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 && i != len(s)-1 {
					balanced = false
				}
			}
		}
		if !balanced || depth != 0 {
			return s
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func firstBracketContent(s string) (string, bool) {
	idx := strings.IndexByte(s, '[')
	if idx < 0 {
		return "", false
	}
	return bracketContent(s, idx)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
