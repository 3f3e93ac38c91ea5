// Package testutil provides process test helpers
package testutil

import (
	"os/exec"
	"runtime"
	"testing"
)

// SkipIfNoCommand skips the test unless every named executable is on PATH.
// Windows is skipped outright since the helpers assume POSIX utilities.
func SkipIfNoCommand(t *testing.T, names ...string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX utilities not available on windows")
	}
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skip(name+" not available:", err)
		}
	}
}
