package interp

import (
	"fmt"
	"strings"
	"unicode"
)

// isCall reports whether line has the shape name(args...).
func isCall(line string) bool {
	open := strings.Index(line, "(")
	if open <= 0 || !strings.HasSuffix(line, ")") {
		return false
	}
	return isIdentifier(line[:open])
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return s != ""
}

// parseCall returns the function name and its arguments, each trimmed and
// substituted in scope.
func parseCall(line string, scope *Scope) (string, []string) {
	open := strings.Index(line, "(")
	name := line[:open]
	inner := strings.TrimSpace(line[open+1 : len(line)-1])
	if inner == "" {
		return name, nil
	}
	parts := strings.Split(inner, ",")
	args := make([]string, len(parts))
	for i, p := range parts {
		args[i] = Substitute(strings.TrimSpace(p), scope)
	}
	return name, args
}

// doCall runs a function body in a fork of the caller's scope with the
// parameters bound positionally. Nothing the body sets is visible to the
// caller afterwards.
func (s *session) doCall(f *frame, i int, line string) error {
	name, args := parseCall(line, f.scope)
	def, ok := s.prog.Functions.Lookup(name)
	if !ok {
		s.report(i, f.function, KindDispatch, fmt.Errorf("%w: %s", ErrUnknownFunction, name))
		return nil
	}
	if len(args) != len(def.Params) {
		s.report(i, f.function, KindDispatch, fmt.Errorf("function '%s' expects %d parameter(s), but %d were provided: %w",
			name, len(def.Params), len(args), ErrArity))
		return nil
	}
	if f.depth >= s.opts.MaxDepth {
		s.report(i, f.function, KindDispatch, fmt.Errorf("calling '%s': %w", name, ErrRecursionDepth))
		return nil
	}

	scope := f.scope.Fork()
	for j, p := range def.Params {
		scope.Set(p, args[j])
	}
	callee := &frame{
		scope:    scope,
		function: name,
		depth:    f.depth + 1,
		limit:    def.End,
	}
	return s.exec(callee, def.Start, def.End)
}
