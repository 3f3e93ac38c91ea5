package interp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmpl/pkg/testutil"
)

type progressEvent struct {
	message string
	stopped bool
	err     error
}

type recordingProgress struct {
	events []*progressEvent
}

func (p *recordingProgress) Start(message string) Task {
	ev := &progressEvent{message: message}
	p.events = append(p.events, ev)
	return &recordingTask{ev: ev}
}

type recordingTask struct {
	ev    *progressEvent
	stops int
}

func (t *recordingTask) Stop(err error) {
	t.stops++
	if t.stops > 1 {
		panic("progress stopped twice")
	}
	t.ev.stopped = true
	t.ev.err = err
}

type scriptedPrompter struct {
	answers   []string
	questions []string
	defaults  []string
	err       error
}

func (p *scriptedPrompter) Ask(question, def string) (string, error) {
	p.questions = append(p.questions, question)
	p.defaults = append(p.defaults, def)
	if p.err != nil {
		return "", p.err
	}
	if len(p.answers) == 0 {
		return def, nil
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

type runCall struct {
	dir  string
	argv []string
}

type fakeRunner struct {
	calls  []runCall
	result CommandResult
	err    error
}

func (r *fakeRunner) Run(_ context.Context, dir string, argv []string) (CommandResult, error) {
	r.calls = append(r.calls, runCall{dir: dir, argv: argv})
	if r.err != nil {
		return CommandResult{ExitCode: -1}, r.err
	}
	if !r.result.Success && r.result.ExitCode == 0 {
		return CommandResult{Success: true}, nil
	}
	return r.result, nil
}

type harness struct {
	dir      string
	progress *recordingProgress
	prompter *scriptedPrompter
	runner   *fakeRunner
	hook     *test.Hook
	opts     Options
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	h := &harness{
		dir:      t.TempDir(),
		progress: &recordingProgress{},
		prompter: &scriptedPrompter{},
		runner:   &fakeRunner{},
		hook:     hook,
	}
	h.opts = Options{
		Prompter: h.prompter,
		Progress: h.progress,
		Runner:   h.runner,
		Logger:   logger,
	}
	return h
}

func (h *harness) run(t *testing.T, src ...string) *Report {
	t.Helper()
	rep, err := New(Parse(strings.Join(src, "\n")), h.opts).Run(context.Background(), h.dir)
	require.NoError(t, err)
	return rep
}

func (h *harness) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestRun_FunctionCallCreatesFile(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"function: greet(name) {",
		"  create_file: hello_$name.txt",
		"}",
		"var: n = world",
		"greet($n)",
	)

	assert.True(t, rep.OK(), "%v", rep.Diagnostics)
	assert.FileExists(t, filepath.Join(h.dir, "hello_world.txt"))
}

func TestRun_FunctionBodyNotExecutedImplicitly(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"function: setup",
		"{",
		"  mkdir: never",
		"}",
		"mkdir: always",
	)

	assert.True(t, rep.OK())
	assert.NoDirExists(t, filepath.Join(h.dir, "never"))
	assert.DirExists(t, filepath.Join(h.dir, "always"))
	assert.Equal(t, 1, rep.Executed)
}

func TestRun_WriteFileUnescapes(t *testing.T) {
	h := newHarness(t)

	h.run(t, `write_file(out.txt): line1\nline2`)

	assert.Equal(t, "line1\nline2", h.read(t, "out.txt"))
}

func TestRun_WriteFileSubstitutes(t *testing.T) {
	h := newHarness(t)

	h.run(t,
		"var: project = demo",
		"write_file($project.md): # $project and $$project",
	)

	assert.Equal(t, "# demo and $project", h.read(t, "demo.md"))
}

func TestRun_Heredoc(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"var: name = demo",
		"write_file(out.txt): <<EOF",
		"  first $name",
		"mkdir: not-a-directive",
		"  EOF>>",
		"create_file: after.txt",
	)

	assert.True(t, rep.OK(), "%v", rep.Diagnostics)
	assert.Equal(t, "  first $name\nmkdir: not-a-directive\n", h.read(t, "out.txt"))
	assert.NoDirExists(t, filepath.Join(h.dir, "mkdir: not-a-directive"))
	assert.NoDirExists(t, filepath.Join(h.dir, "not-a-directive"))
	assert.FileExists(t, filepath.Join(h.dir, "after.txt"))
}

func TestRun_HeredocVerbatim(t *testing.T) {
	h := newHarness(t)
	body := testutil.RandomHeredocLines(12)

	src := append([]string{"write_file(body.txt): <<EOF"}, body...)
	src = append(src, "EOF>>")
	rep := h.run(t, src...)

	assert.True(t, rep.OK(), "%v", rep.Diagnostics)
	assert.Equal(t, 1, rep.Executed)
	assert.Equal(t, strings.Join(body, "\n")+"\n", h.read(t, "body.txt"))
}

func TestRun_HeredocMissingTerminator(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"write_file(out.txt): <<EOF",
		"a",
		"b",
	)

	assert.Equal(t, "a\nb\n", h.read(t, "out.txt"))
	assert.True(t, rep.Has(ErrMissingHeredocEnd))
}

func TestRun_InvalidWriteFile(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t, "write_file(out.txt) missing colon")

	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, KindDispatch, rep.Diagnostics[0].Kind)
	assert.True(t, rep.Has(ErrInvalidWriteFile))
}

func TestRun_Conditionals(t *testing.T) {
	t.Run("true executes guarded line", func(t *testing.T) {
		h := newHarness(t)
		h.run(t,
			"var: x = a",
			"if: $x == a",
			"mkdir: yes",
		)
		assert.DirExists(t, filepath.Join(h.dir, "yes"))
	})

	t.Run("false skips guarded line only", func(t *testing.T) {
		h := newHarness(t)
		h.run(t,
			"if: a == b",
			"mkdir: no",
			"mkdir: yes",
		)
		assert.NoDirExists(t, filepath.Join(h.dir, "no"))
		assert.DirExists(t, filepath.Join(h.dir, "yes"))
	})

	t.Run("false skips whole block", func(t *testing.T) {
		h := newHarness(t)
		rep := h.run(t,
			"if: a == b",
			"{",
			"  mkdir: no1",
			"  {",
			"    mkdir: no2",
			"  }",
			"  write_file(x.txt): { not a block }",
			"}",
			"mkdir: yes",
		)
		assert.True(t, rep.OK())
		assert.NoDirExists(t, filepath.Join(h.dir, "no1"))
		assert.NoDirExists(t, filepath.Join(h.dir, "no2"))
		assert.NoFileExists(t, filepath.Join(h.dir, "x.txt"))
		assert.DirExists(t, filepath.Join(h.dir, "yes"))
	})

	t.Run("true runs block", func(t *testing.T) {
		h := newHarness(t)
		rep := h.run(t,
			"if: a == a",
			"{",
			"  mkdir: inside",
			"}",
		)
		assert.True(t, rep.OK())
		assert.DirExists(t, filepath.Join(h.dir, "inside"))
	})

	t.Run("malformed condition", func(t *testing.T) {
		h := newHarness(t)
		rep := h.run(t,
			"if: a != b",
			"mkdir: next",
		)
		assert.True(t, rep.Has(ErrInvalidCondition))
		assert.DirExists(t, filepath.Join(h.dir, "next"))
	})
}

func TestRun_ArityMismatchHasNoEffect(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"function: setup {",
		"  mkdir: created",
		"}",
		"setup(extra)",
	)

	assert.True(t, rep.Has(ErrArity))
	assert.NoDirExists(t, filepath.Join(h.dir, "created"))
	assert.Empty(t, h.progress.events)
}

func TestRun_UnknownFunction(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t, "nothing(here)")

	assert.True(t, rep.Has(ErrUnknownFunction))
}

func TestRun_ForkedScopeIsolation(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"var: name = outer",
		"function: shadow(x) {",
		"  var: name = inner",
		"  var: fresh = $x",
		"  create_file: $name-$x.txt",
		"}",
		"shadow(arg)",
		"create_file: $name.txt",
		"create_file: [$fresh].txt",
	)

	assert.True(t, rep.OK(), "%v", rep.Diagnostics)
	assert.FileExists(t, filepath.Join(h.dir, "inner-arg.txt"))
	assert.FileExists(t, filepath.Join(h.dir, "outer.txt"))
	assert.FileExists(t, filepath.Join(h.dir, "[$fresh].txt"))
}

func TestRun_ParameterOverridesInheritedVariable(t *testing.T) {
	h := newHarness(t)

	h.run(t,
		"var: name = caller",
		"function: f(name) {",
		"  mkdir: $name",
		"}",
		"f(param)",
	)

	assert.DirExists(t, filepath.Join(h.dir, "param"))
	assert.NoDirExists(t, filepath.Join(h.dir, "caller"))
}

func TestRun_NestedCalls(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"function: inner(p) {",
		"  create_file: $base/$p.txt",
		"}",
		"function: outer(base) {",
		"  mkdir: $base",
		"  inner(one)",
		"  if: $base == pkg",
		"  {",
		"    inner(two)",
		"  }",
		"}",
		"outer(pkg)",
	)

	assert.True(t, rep.OK(), "%v", rep.Diagnostics)
	assert.FileExists(t, filepath.Join(h.dir, "pkg", "one.txt"))
	assert.FileExists(t, filepath.Join(h.dir, "pkg", "two.txt"))
}

func TestRun_RecursionDepth(t *testing.T) {
	h := newHarness(t)
	h.opts.MaxDepth = 3

	rep := h.run(t,
		"function: loop {",
		"  loop()",
		"}",
		"loop()",
	)

	assert.True(t, rep.Has(ErrRecursionDepth))
}

func TestRun_CommandBlock(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"var: pkg = left-pad",
		"- echo outside",
		"command",
		"- npm install $pkg",
		"mkdir: sub",
		"-   go  mod   tidy",
		"end_command",
		"- echo after",
	)

	require.Len(t, h.runner.calls, 2)
	assert.Equal(t, []string{"npm", "install", "left-pad"}, h.runner.calls[0].argv)
	assert.Equal(t, []string{"go", "mod", "tidy"}, h.runner.calls[1].argv)
	assert.Equal(t, h.dir, h.runner.calls[0].dir)

	require.Len(t, rep.Diagnostics, 2)
	assert.True(t, errors.Is(rep.Diagnostics[0].Err, ErrOutsideCommand))
	assert.Equal(t, 2, rep.Diagnostics[0].Line)
	assert.True(t, errors.Is(rep.Diagnostics[1].Err, ErrOutsideCommand))
	assert.Equal(t, 8, rep.Diagnostics[1].Line)
}

func TestRun_CommandFailureIsWarning(t *testing.T) {
	h := newHarness(t)
	h.runner.result = CommandResult{Success: false, ExitCode: 2}

	rep := h.run(t,
		"command",
		"- false",
		"end_command",
		"mkdir: continued",
	)

	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, KindEffect, rep.Diagnostics[0].Kind)
	assert.True(t, errors.Is(rep.Diagnostics[0].Err, ErrCommandFailed))
	assert.Contains(t, rep.Diagnostics[0].Err.Error(), "exit code 2")
	assert.DirExists(t, filepath.Join(h.dir, "continued"))

	var warned bool
	for _, e := range h.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["line"] == 2 {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRun_CommandSpawnError(t *testing.T) {
	h := newHarness(t)
	h.runner.err = errors.New("executable file not found")

	rep := h.run(t, "command", "- nope", "end_command")

	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, KindEffect, rep.Diagnostics[0].Kind)
	require.Len(t, h.progress.events, 1)
	assert.True(t, h.progress.events[0].stopped)
	assert.Error(t, h.progress.events[0].err)
}

func TestRun_CdChangesRelativeResolution(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"mkdir: app/src",
		"cd: app",
		"create_file: README.md",
		"command",
		"- git init",
		"end_command",
		"cd: missing",
		"create_file: still-in-app.txt",
	)

	assert.FileExists(t, filepath.Join(h.dir, "app", "README.md"))
	assert.FileExists(t, filepath.Join(h.dir, "app", "still-in-app.txt"))
	require.Len(t, h.runner.calls, 1)
	assert.Equal(t, filepath.Join(h.dir, "app"), h.runner.calls[0].dir)
	assert.Equal(t, filepath.Join(h.dir, "app"), rep.Dir)
	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, KindEffect, rep.Diagnostics[0].Kind)
}

func TestRun_CdPersistsAfterFunctionReturns(t *testing.T) {
	h := newHarness(t)

	h.run(t,
		"mkdir: nested",
		"function: enter {",
		"  cd: nested",
		"}",
		"enter()",
		"create_file: here.txt",
	)

	assert.FileExists(t, filepath.Join(h.dir, "nested", "here.txt"))
}

func TestRun_ProgressBracketsEveryEffect(t *testing.T) {
	h := newHarness(t)

	h.run(t,
		"mkdir: d",
		"create_file: d/f",
		"write_file(d/g): x",
		"cd: d",
		"command",
		"- true",
		"end_command",
		"create_file: missing/dir/file",
	)

	require.Len(t, h.progress.events, 6)
	for _, ev := range h.progress.events {
		assert.True(t, ev.stopped, ev.message)
	}
	assert.Equal(t, "Creating directory", h.progress.events[0].message)
	assert.NoError(t, h.progress.events[0].err)
	assert.Error(t, h.progress.events[5].err)
}

func TestRun_InputPrompt(t *testing.T) {
	h := newHarness(t)
	h.prompter.answers = []string{"my-app", ""}

	rep := h.run(t,
		"var: kind = service",
		`var: name = input("Project name", "app")`,
		"var: lang = input(Language for $kind, go)",
		"mkdir: $name-$lang",
	)

	assert.True(t, rep.OK())
	assert.Equal(t, []string{"Project name", "Language for service"}, h.prompter.questions)
	assert.Equal(t, []string{"app", "go"}, h.prompter.defaults)
	assert.DirExists(t, filepath.Join(h.dir, "my-app-go"))
}

func TestRun_InterruptedPromptAborts(t *testing.T) {
	h := newHarness(t)
	h.prompter.err = ErrInterrupted

	_, err := New(Parse("var: x = input(Name, a)\nmkdir: never"), h.opts).Run(context.Background(), h.dir)

	assert.ErrorIs(t, err, ErrInterrupted)
	assert.NoDirExists(t, filepath.Join(h.dir, "never"))
}

func TestRun_SeedVariables(t *testing.T) {
	h := newHarness(t)
	h.opts.Vars = map[string]string{"name": "seeded"}

	h.run(t, "mkdir: $name")

	assert.DirExists(t, filepath.Join(h.dir, "seeded"))
}

func TestRun_UnknownDirectiveContinues(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"# comment",
		"",
		"frobnicate: now",
		"mkdir: ok",
	)

	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, 3, rep.Diagnostics[0].Line)
	assert.True(t, errors.Is(rep.Diagnostics[0].Err, ErrUnknownDirective))
	assert.DirExists(t, filepath.Join(h.dir, "ok"))
}

func TestRun_DeclarationErrorsReported(t *testing.T) {
	h := newHarness(t)

	rep := h.run(t,
		"function: f",
		"mkdir: runs",
	)

	assert.Equal(t, 1, rep.Count(KindDeclaration))
	assert.DirExists(t, filepath.Join(h.dir, "runs"))
}

func TestRun_FatalSetup(t *testing.T) {
	_, err := New(Parse("mkdir: x"), Options{}).Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRun_CancelledContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Parse("mkdir: x"), h.opts).Run(ctx, h.dir)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, filepath.Join(h.dir, "x"))
}
