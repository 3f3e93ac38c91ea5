package interp

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const heredocStart, heredocEnd = "<<EOF", "EOF>>"

func (s *session) doVar(f *frame, i int, rest string) error {
	name, raw, hasValue := strings.Cut(rest, "=")
	name = strings.TrimSpace(name)
	raw = strings.TrimSpace(raw)
	if name == "" {
		s.report(i, f.function, KindDispatch, ErrMissingName)
		return nil
	}
	if !hasValue {
		f.scope.Set(name, "")
		return nil
	}

	if !strings.HasPrefix(raw, "input(") {
		f.scope.Set(name, Substitute(raw, f.scope))
		return nil
	}

	question, def := parseInput(raw, f.scope)
	answer, err := s.opts.Prompter.Ask(question, def)
	if err != nil {
		if errors.Is(err, ErrInterrupted) {
			return err
		}
		s.report(i, f.function, KindEffect, fmt.Errorf("failed to read '%s': %w", name, err))
		return nil
	}
	if answer == "" {
		answer = def
	}
	f.scope.Set(name, answer)
	return nil
}

// parseInput splits input(question, default) at the first comma.
func parseInput(raw string, scope *Scope) (string, string) {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "input("), ")")
	question, def, _ := strings.Cut(inner, ",")
	return Substitute(unquote(question), scope), Substitute(unquote(def), scope)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func (s *session) doMkdir(f *frame, i int, rest string) {
	path := strings.TrimSpace(Substitute(rest, f.scope))
	if path == "" {
		s.report(i, f.function, KindDispatch, fmt.Errorf("mkdir: %w", ErrMissingPath))
		return
	}
	err := s.withProgress("Creating directory", func() error {
		return os.MkdirAll(s.resolve(path), 0755)
	})
	if err != nil {
		s.report(i, f.function, KindEffect, fmt.Errorf("failed to create directory '%s': %w", path, err))
	}
}

func (s *session) doCreateFile(f *frame, i int, rest string) {
	path := strings.TrimSpace(Substitute(rest, f.scope))
	if path == "" {
		s.report(i, f.function, KindDispatch, fmt.Errorf("create_file: %w", ErrMissingPath))
		return
	}
	err := s.withProgress("Creating file", func() error {
		file, err := os.Create(s.resolve(path))
		if err != nil {
			return err
		}
		return file.Close()
	})
	if err != nil {
		s.report(i, f.function, KindEffect, fmt.Errorf("failed to create file '%s': %w", path, err))
	}
}

// doWriteFile handles "write_file(path): content". Content starting with
// <<EOF is replaced by the raw lines up to EOF>>, which are consumed.
func (s *session) doWriteFile(f *frame, i int, line string) int {
	head, content, ok := strings.Cut(line, "):")
	if !ok {
		s.report(i, f.function, KindDispatch, fmt.Errorf("%w: %s", ErrInvalidWriteFile, line))
		return i + 1
	}
	path := strings.TrimSpace(Substitute(strings.TrimSpace(strings.TrimPrefix(head, "write_file(")), f.scope))
	content = strings.TrimSpace(content)

	next := i + 1
	var data string
	if strings.HasPrefix(content, heredocStart) {
		var closed bool
		data, next, closed = collectHeredoc(s.prog.Lines, i+1, f.limit)
		if !closed {
			s.report(i, f.function, KindDispatch, ErrMissingHeredocEnd)
		}
	} else {
		data = unescape(Substitute(content, f.scope))
	}

	if path == "" {
		s.report(i, f.function, KindDispatch, fmt.Errorf("%w: %s", ErrInvalidWriteFile, line))
		return next
	}

	err := s.withProgress("Writing file", func() error {
		return os.WriteFile(s.resolve(path), []byte(data), 0644)
	})
	if err != nil {
		s.report(i, f.function, KindEffect, fmt.Errorf("failed to write to file '%s': %w", path, err))
	}
	return next
}

// collectHeredoc joins lines from start verbatim, each newline-terminated,
// until a line trimming to EOF>>. next is the line after the terminator.
func collectHeredoc(lines Lines, start, limit int) (body string, next int, closed bool) {
	var b strings.Builder
	for i := start; i < limit; i++ {
		if lines.Trimmed(i) == heredocEnd {
			return b.String(), i + 1, true
		}
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	return b.String(), limit, false
}

func (s *session) doCommand(f *frame, i int, rest string) {
	if !f.inCommand {
		s.report(i, f.function, KindDispatch, fmt.Errorf("%w: -%s", ErrOutsideCommand, rest))
		return
	}
	command := strings.TrimSpace(Substitute(strings.TrimSpace(rest), f.scope))
	argv := strings.Fields(command)
	if len(argv) == 0 {
		s.report(i, f.function, KindDispatch, ErrEmptyCommand)
		return
	}

	var res CommandResult
	err := s.withProgress(fmt.Sprintf("Running command %s", command), func() error {
		var err error
		res, err = s.opts.Runner.Run(s.ctx, s.dir, argv)
		if err == nil && !res.Success {
			return fmt.Errorf("%w (exit code %d)", ErrCommandFailed, res.ExitCode)
		}
		return err
	})
	if err == nil {
		return
	}
	if errors.Is(err, ErrCommandFailed) {
		s.report(i, f.function, KindEffect, fmt.Errorf("command '%s' failed: %w", command, err))
		return
	}
	s.report(i, f.function, KindEffect, fmt.Errorf("failed to execute command '%s': %w", command, err))
}

func isCommandFailure(err error) bool {
	return errors.Is(err, ErrCommandFailed)
}

func (s *session) doCd(f *frame, i int, rest string) {
	path := strings.TrimSpace(Substitute(rest, f.scope))
	if path == "" {
		s.report(i, f.function, KindDispatch, fmt.Errorf("cd: %w", ErrMissingPath))
		return
	}
	target := s.resolve(path)
	err := s.withProgress(fmt.Sprintf("Changing directory to '%s'", path), func() error {
		info, err := os.Stat(target)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s: %w", target, ErrNotDirectory)
		}
		s.dir = target
		return nil
	})
	if err != nil {
		s.report(i, f.function, KindEffect, fmt.Errorf("failed to change directory to '%s': %w", path, err))
	}
}

// doIf compares the two sides of "left == right" after substitution. A
// false condition skips the next line, or the whole block when the next
// line opens one.
func (s *session) doIf(f *frame, i int, rest string) int {
	left, right, ok := strings.Cut(rest, "==")
	if !ok {
		s.report(i, f.function, KindDispatch, fmt.Errorf("%w: if:%s", ErrInvalidCondition, rest))
		return i + 1
	}
	left = strings.TrimSpace(Substitute(strings.TrimSpace(left), f.scope))
	right = strings.TrimSpace(Substitute(strings.TrimSpace(right), f.scope))
	if left == right {
		return i + 1
	}

	guarded := i + 1
	if guarded >= f.limit {
		return f.limit
	}
	if !isOpenBrace(s.prog.Lines[guarded]) {
		return guarded + 1
	}
	next, closed := skipBlock(s.prog.Lines, guarded, f.limit)
	if !closed {
		s.report(i, f.function, KindDispatch, fmt.Errorf("if block: %w", ErrMissingCloseBrace))
	}
	return next
}
