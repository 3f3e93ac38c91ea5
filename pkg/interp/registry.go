package interp

import (
	"fmt"
	"strings"
)

const functionPrefix = "function:"

// FunctionDefinition is a named block declared with "function:". Start and
// End delimit the body as the half-open line range strictly between its
// braces.
type FunctionDefinition struct {
	Name   string
	Params []string
	Header int
	Start  int
	End    int
}

// Registry maps function names to their definitions. It is built once per
// program and only read afterwards.
type Registry map[string]FunctionDefinition

// Lookup returns the definition named name.
func (r Registry) Lookup(name string) (FunctionDefinition, bool) {
	def, ok := r[name]
	return def, ok
}

// BuildRegistry scans every line for function declarations. Bodies are
// not searched for nested declarations. Malformed declarations are
// returned as diagnostics and recorded with whatever range was scanned;
// a repeated name replaces the earlier definition.
func BuildRegistry(lines Lines) (Registry, []Diagnostic) {
	reg := make(Registry)
	var diags []Diagnostic
	for i := 0; i < len(lines); {
		if !strings.HasPrefix(lines.Trimmed(i), functionPrefix) {
			i++
			continue
		}
		def, next, err := parseFunction(lines, i, len(lines))
		if err != nil {
			diags = append(diags, Diagnostic{Line: i + 1, Kind: KindDeclaration, Err: err})
		}
		reg[def.Name] = def
		i = next
	}
	return reg, diags
}

// parseFunction reads the declaration at header and returns its definition
// together with the index of the first line after it.
func parseFunction(lines Lines, header, limit int) (FunctionDefinition, int, error) {
	decl := strings.TrimSpace(strings.TrimPrefix(lines.Trimmed(header), functionPrefix))
	braceOnHeader := strings.HasSuffix(decl, "{")
	decl = strings.TrimSpace(strings.TrimSuffix(decl, "{"))

	name, params := parseSignature(decl)
	def := FunctionDefinition{
		Name:   name,
		Params: params,
		Header: header,
		Start:  header + 1,
		End:    header + 1,
	}

	open := header
	if !braceOnHeader {
		var err error
		open, err = findOpenBrace(lines, header+1, limit)
		if err != nil {
			return def, header + 1, fmt.Errorf("function '%s': %w", name, err)
		}
	}

	def.Start = open + 1
	end, ok := matchClose(lines, open+1, limit)
	def.End = end
	if !ok {
		return def, limit, fmt.Errorf("function '%s': %w", name, ErrMissingCloseBrace)
	}
	return def, end + 1, nil
}

// findOpenBrace looks past blank and comment lines for a line that is
// exactly "{".
func findOpenBrace(lines Lines, from, limit int) (int, error) {
	for i := from; i < limit; i++ {
		t := lines.Trimmed(i)
		switch {
		case t == "{":
			return i, nil
		case t == "" || isComment(t):
			continue
		default:
			return 0, ErrUnexpectedContent
		}
	}
	return 0, ErrMissingOpenBrace
}

// parseSignature splits "name(a, b)" into its name and parameters. A bare
// name has no parameters; empty parameter tokens are dropped.
func parseSignature(decl string) (string, []string) {
	open := strings.Index(decl, "(")
	if open < 0 {
		return decl, []string{}
	}
	name := strings.TrimSpace(decl[:open])
	inner := decl[open+1:]
	if end := strings.LastIndex(inner, ")"); end >= 0 {
		inner = inner[:end]
	}
	params := []string{}
	for _, p := range strings.Split(inner, ",") {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	return name, params
}
