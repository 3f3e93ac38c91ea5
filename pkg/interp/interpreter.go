// Package interp executes tmpl templates: a line-oriented directive
// language that creates files and directories, writes file contents, runs
// commands and prompts for variables.
//
// Execution happens in two passes. Parse collects every function
// declaration into a Registry; Run then walks the lines once, skipping
// function bodies and entering them only on an explicit call with a
// forked copy of the caller's variables.
package interp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultMaxDepth bounds nested function calls.
const DefaultMaxDepth = 64

// Program is a parsed template.
type Program struct {
	Lines     Lines
	Functions Registry
	// Diagnostics holds declaration errors found while parsing.
	Diagnostics []Diagnostic
}

// Parse splits source into lines and builds its function registry.
func Parse(source string) *Program {
	lines := SplitLines(source)
	reg, diags := BuildRegistry(lines)
	return &Program{Lines: lines, Functions: reg, Diagnostics: diags}
}

type Options struct {
	Prompter Prompter
	Progress Progress
	Runner   Runner
	Logger   logrus.FieldLogger
	// Vars seeds the top-level variables.
	Vars     map[string]string
	MaxDepth int
}

type Interpreter struct {
	prog *Program
	opts Options
}

func New(prog *Program, opts Options) *Interpreter {
	if opts.Prompter == nil {
		opts.Prompter = defaultAnswers{}
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Interpreter{prog: prog, opts: opts}
}

// Run executes the program with dir as the initial working directory.
// Problems with individual lines are collected in the report; an error is
// returned only when the run could not start or was aborted.
func (in *Interpreter) Run(ctx context.Context, dir string) (*Report, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read working directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory %s: %w", abs, ErrNotDirectory)
	}

	s := &session{
		Interpreter: in,
		ctx:         ctx,
		dir:         abs,
		rep:         &Report{},
	}
	for _, d := range in.prog.Diagnostics {
		s.report(d.Line-1, "", d.Kind, d.Err)
	}

	root := &frame{
		scope: NewScopeFrom(in.opts.Vars),
		limit: len(in.prog.Lines),
	}
	err = s.exec(root, 0, len(in.prog.Lines))
	s.rep.Dir = s.dir
	return s.rep, err
}

// session is the state of one Run. dir is shared by every frame, as the
// process working directory would be.
type session struct {
	*Interpreter
	ctx context.Context
	dir string
	rep *Report
}

// frame is the state owned by one level of function-call recursion.
type frame struct {
	scope     *Scope
	inCommand bool
	function  string
	depth     int
	// limit is the end of the line range being walked; blocks and
	// heredocs never extend past it.
	limit int
}

func (s *session) exec(f *frame, start, end int) error {
	for i := start; i < end; {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		next, err := s.step(f, i)
		if err != nil {
			return err
		}
		i = next
	}
	return nil
}

// step dispatches line i and returns the index of the next line to run.
// The first matching form wins.
func (s *session) step(f *frame, i int) (int, error) {
	line := s.prog.Lines.Trimmed(i)

	switch {
	case line == "" || line == "{" || line == "}" || strings.HasPrefix(line, "#"):
		return i + 1, nil
	case strings.HasPrefix(line, functionPrefix):
		_, next, _ := parseFunction(s.prog.Lines, i, f.limit)
		return next, nil
	}

	s.rep.Executed++
	s.log(f, i).Debugf("exec %s", line)

	switch {
	case strings.HasPrefix(line, "var:"):
		return i + 1, s.doVar(f, i, strings.TrimPrefix(line, "var:"))
	case strings.HasPrefix(line, "mkdir:"):
		s.doMkdir(f, i, strings.TrimPrefix(line, "mkdir:"))
	case strings.HasPrefix(line, "create_file:"):
		s.doCreateFile(f, i, strings.TrimPrefix(line, "create_file:"))
	case strings.HasPrefix(line, "write_file("):
		return s.doWriteFile(f, i, line), nil
	case line == "command":
		f.inCommand = true
	case line == "end_command":
		f.inCommand = false
	case strings.HasPrefix(line, "-"):
		s.doCommand(f, i, strings.TrimPrefix(line, "-"))
	case strings.HasPrefix(line, "cd:"):
		s.doCd(f, i, strings.TrimPrefix(line, "cd:"))
	case strings.HasPrefix(line, "if:"):
		return s.doIf(f, i, strings.TrimPrefix(line, "if:")), nil
	case isCall(line):
		return i + 1, s.doCall(f, i, line)
	default:
		s.report(i, f.function, KindDispatch, fmt.Errorf("%w: %s", ErrUnknownDirective, line))
	}
	return i + 1, nil
}

func (s *session) log(f *frame, i int) logrus.FieldLogger {
	entry := s.opts.Logger.WithField("line", i+1)
	if f != nil && f.function != "" {
		entry = entry.WithField("function", f.function)
	}
	return entry
}

// report records a diagnostic for line i and logs it.
func (s *session) report(i int, function string, kind Kind, err error) {
	s.rep.Diagnostics = append(s.rep.Diagnostics, Diagnostic{Line: i + 1, Kind: kind, Err: err})

	entry := s.opts.Logger.WithFields(logrus.Fields{"line": i + 1, "kind": kind.String()})
	if function != "" {
		entry = entry.WithField("function", function)
	}
	if kind == KindDispatch || isCommandFailure(err) {
		entry.Warn(err)
		return
	}
	entry.Error(err)
}

// withProgress runs fn between Start and Stop of a progress indication.
func (s *session) withProgress(message string, fn func() error) (err error) {
	task := s.opts.Progress.Start(message)
	defer func() { task.Stop(err) }()
	return fn()
}

// resolve interprets p relative to the session's working directory.
func (s *session) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.dir, p)
}
