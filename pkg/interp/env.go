package interp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrInterrupted is returned by a Prompter when the user aborts the
// question. It stops the whole run.
var ErrInterrupted = errors.New("prompt interrupted")

// Prompter asks the user a question. Implementations return def when the
// user gives no answer.
type Prompter interface {
	Ask(question, def string) (string, error)
}

// Progress brackets one blocking operation with a visible indication.
type Progress interface {
	Start(message string) Task
}

// Task is a running progress indication. Stop is called exactly once,
// with the error the operation finished with.
type Task interface {
	Stop(err error)
}

// CommandResult is the outcome of a child process that was started.
// ExitCode is -1 when the process did not exit normally.
type CommandResult struct {
	Success  bool
	ExitCode int
}

// Runner executes an argument vector as a child process in dir with its
// output streams discarded.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) (CommandResult, error)
}

// ExecRunner runs commands with os/exec. On Windows the vector is handed
// to "cmd /C" so that shell builtins resolve.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, argv []string) (CommandResult, error) {
	if len(argv) == 0 {
		return CommandResult{}, ErrEmptyCommand
	}

	name, args := argv[0], argv[1:]
	if runtime.GOOS == "windows" {
		name, args = "cmd", []string{"/C", strings.Join(argv, " ")}
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	err := cmd.Run()
	if err == nil {
		return CommandResult{Success: true, ExitCode: 0}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return CommandResult{Success: false, ExitCode: exitErr.ExitCode()}, nil
	}
	return CommandResult{ExitCode: -1}, fmt.Errorf("failed to start %s: %w", name, err)
}

type defaultAnswers struct{}

func (defaultAnswers) Ask(_, def string) (string, error) {
	return def, nil
}

type nopProgress struct{}

func (nopProgress) Start(string) Task { return nopTask{} }

type nopTask struct{}

func (nopTask) Stop(error) {}
