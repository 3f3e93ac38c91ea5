package interp

import (
	"errors"
	"fmt"
)

var (
	ErrMissingOpenBrace  = errors.New("missing opening '{'")
	ErrMissingCloseBrace = errors.New("missing closing '}'")
	ErrUnexpectedContent = errors.New("expected '{' after function declaration")
	ErrUnknownDirective  = errors.New("unknown directive")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrArity             = errors.New("wrong number of arguments")
	ErrInvalidCondition  = errors.New("invalid if condition")
	ErrInvalidWriteFile  = errors.New("invalid write_file syntax")
	ErrMissingHeredocEnd = errors.New("missing EOF>> terminator")
	ErrOutsideCommand    = errors.New("command line outside of command block")
	ErrEmptyCommand      = errors.New("empty command")
	ErrCommandFailed     = errors.New("command exited with non-zero status")
	ErrRecursionDepth    = errors.New("maximum function call depth exceeded")
	ErrNotDirectory      = errors.New("not a directory")
	ErrMissingName       = errors.New("missing variable name")
	ErrMissingPath       = errors.New("missing path")
)

// Kind classifies a non-fatal problem found while interpreting a template.
type Kind int

const (
	// KindDeclaration is a malformed function header or unbalanced body.
	KindDeclaration Kind = iota
	// KindDispatch is a line that could not be executed as written.
	KindDispatch
	// KindEffect is a filesystem, process or directory-change failure.
	KindEffect
)

func (k Kind) String() string {
	switch k {
	case KindDeclaration:
		return "declaration"
	case KindDispatch:
		return "dispatch"
	case KindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// Diagnostic records one reported problem. Line is 1-based.
type Diagnostic struct {
	Line int
	Kind Kind
	Err  error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %s error: %v", d.Line, d.Kind, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Report summarises one execution.
type Report struct {
	// Executed counts directive lines that were dispatched, including
	// lines inside function bodies.
	Executed    int
	Diagnostics []Diagnostic
	// Dir is the working directory when the run ended.
	Dir string
}

// Count returns the number of diagnostics of kind k.
func (r *Report) Count(k Kind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// OK reports whether the run produced no diagnostics at all.
func (r *Report) OK() bool {
	return len(r.Diagnostics) == 0
}

// Has reports whether any diagnostic wraps target.
func (r *Report) Has(target error) bool {
	for _, d := range r.Diagnostics {
		if errors.Is(d.Err, target) {
			return true
		}
	}
	return false
}
