package pysrc

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// CallName returns the function expression text of a call node, or "".
func (f *File) CallName(call *sitter.Node) string {
	if call == nil || call.Type() != "call" {
		return ""
	}
	return f.Text(call.ChildByFieldName("function"))
}

// StringValue extracts a plain string literal's value. It refuses f-strings
// with interpolations, since those are not static.
func (f *File) StringValue(n *sitter.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "string":
		for i := 0; i < int(n.ChildCount()); i++ {
			if n.Child(i).Type() == "interpolation" {
				return "", false
			}
		}
		return Unquote(f.Text(n)), true
	case "concatenated_string":
		var b strings.Builder
		for i := 0; i < int(n.ChildCount()); i++ {
			part, ok := f.StringValue(n.Child(i))
			if !ok {
				return "", false
			}
			b.WriteString(part)
		}
		return b.String(), true
	}
	return "", false
}

// StringListValue extracts a list or tuple of string literals.
func (f *File) StringListValue(n *sitter.Node) ([]string, bool) {
	if n == nil {
		return nil, false
	}
	if n.Type() != "list" && n.Type() != "tuple" {
		return nil, false
	}
	var values []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "[", "]", "(", ")", ",", "comment":
			continue
		default:
			v, ok := f.StringValue(child)
			if !ok {
				return nil, false
			}
			values = append(values, v)
		}
	}
	return values, true
}

// LiteralValue evaluates a literal expression node into a Go value: strings,
// numbers, booleans, None, and nested lists/tuples/dicts of those. Any other
// expression yields its source text, so callers always get something
// serializable.
func (f *File) LiteralValue(n *sitter.Node) any {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "string", "concatenated_string":
		if v, ok := f.StringValue(n); ok {
			return v
		}
		return f.Text(n)
	case "integer":
		if v, err := strconv.Atoi(f.Text(n)); err == nil {
			return v
		}
		return f.Text(n)
	case "float":
		if v, err := strconv.ParseFloat(f.Text(n), 64); err == nil {
			return v
		}
		return f.Text(n)
	case "true":
		return true
	case "false":
		return false
	case "none":
		return nil
	case "list", "tuple", "set":
		var items []any
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "[", "]", "(", ")", "{", "}", ",", "comment":
			default:
				items = append(items, f.LiteralValue(child))
			}
		}
		return items
	case "dictionary":
		dict := make(map[string]any)
		for i := 0; i < int(n.ChildCount()); i++ {
			pair := n.Child(i)
			if pair.Type() != "pair" {
				continue
			}
			keyNode := pair.ChildByFieldName("key")
			valueNode := pair.ChildByFieldName("value")
			key, ok := f.StringValue(keyNode)
			if !ok {
				key = f.Text(keyNode)
			}
			dict[key] = f.LiteralValue(valueNode)
		}
		return dict
	case "unary_operator":
		// Negative numeric literals parse as unary minus over a number.
		text := f.Text(n)
		if v, err := strconv.Atoi(text); err == nil {
			return v
		}
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return v
		}
		return text
	default:
		return f.Text(n)
	}
}

var braceEscapes = strings.NewReplacer("{{", "{", "}}", "}")

// ResolveFString rebuilds an f-string's value by substituting each
// interpolated expression through resolve. It fails when any interpolation
// cannot be resolved, or when the node is not a string at all.
func (f *File) ResolveFString(n *sitter.Node, resolve func(expr string) (string, bool)) (string, bool) {
	if n == nil || n.Type() != "string" {
		return "", false
	}
	var b strings.Builder
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "string_start", "string_end":
			continue
		case "string_content":
			// Doubled braces are Python's escape for a literal brace.
			b.WriteString(braceEscapes.Replace(f.Text(child)))
		case "escape_sequence":
			b.WriteString(f.Text(child))
		case "escape_interpolation":
			text := f.Text(child)
			if text == "{{" || text == "}}" {
				text = text[:1]
			}
			b.WriteString(text)
		case "interpolation":
			expr := f.interpolationExpr(child)
			value, ok := resolve(expr)
			if !ok {
				return "", false
			}
			b.WriteString(value)
		default:
			return "", false
		}
	}
	return b.String(), true
}

func (f *File) interpolationExpr(n *sitter.Node) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "{", "}", "format_specifier", "type_conversion":
			continue
		default:
			return f.Text(child)
		}
	}
	return ""
}
