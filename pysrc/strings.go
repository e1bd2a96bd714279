package pysrc

import "strings"

// Unquote strips Python string quoting from a literal's source text: triple
// quotes, single/double quotes, and the f/r/b/u prefixes in either order.
func Unquote(s string) string {
	for _, prefix := range []string{"fr", "rf", "br", "rb", "f", "r", "b", "u",
		"FR", "RF", "BR", "RB", "F", "R", "B", "U"} {
		if strings.HasPrefix(s, prefix+`"`) || strings.HasPrefix(s, prefix+`'`) {
			s = s[len(prefix):]
			break
		}
	}
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
