package interp

import "strings"

// Lines is the template source split into lines. It is never modified
// once a Program has been parsed.
type Lines []string

// SplitLines splits text on "\n", dropping a trailing "\r" from each line
// and the empty element produced by a final newline.
func SplitLines(text string) Lines {
	if text == "" {
		return Lines{}
	}
	raw := strings.Split(text, "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	lines := make(Lines, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Trimmed returns line i with surrounding whitespace removed.
func (l Lines) Trimmed(i int) string {
	return strings.TrimSpace(l[i])
}

func isOpenBrace(s string) bool {
	return strings.TrimSpace(s) == "{"
}

func isCloseBrace(s string) bool {
	return strings.TrimSpace(s) == "}"
}

func isComment(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "#") || strings.HasPrefix(s, "//")
}
