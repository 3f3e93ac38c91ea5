package interp

import "strings"

// Substitute replaces every $name in text whose name is bound in scope.
// The escape $$name yields a literal $name. Names are matched longest
// first at each '$', and substituted values are not rescanned, so keys
// that prefix one another cannot interfere. Unbound names are left as is.
func Substitute(text string, scope *Scope) string {
	if scope == nil || scope.Len() == 0 || !strings.Contains(text, "$") {
		return text
	}
	names := scope.matchOrder()

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if text[i] != '$' {
			b.WriteByte(text[i])
			i++
			continue
		}
		if strings.HasPrefix(text[i:], "$$") {
			if name := longestName(text[i+2:], names); name != "" {
				b.WriteString("$" + name)
				i += 2 + len(name)
				continue
			}
			b.WriteString("$$")
			i += 2
			continue
		}
		if name := longestName(text[i+1:], names); name != "" {
			v, _ := scope.Get(name)
			b.WriteString(v)
			i += 1 + len(name)
			continue
		}
		b.WriteByte('$')
		i++
	}
	return b.String()
}

func longestName(rest string, names []string) string {
	for _, n := range names {
		if strings.HasPrefix(rest, n) {
			return n
		}
	}
	return ""
}

var controlEscapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r")

// unescape turns the two-character sequences \n, \t and \r into the
// control characters they name.
func unescape(s string) string {
	return controlEscapes.Replace(s)
}
