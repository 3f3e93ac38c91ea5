package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinner_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)

	task := s.Start("Creating directory")
	task.Stop(nil)
	task.Stop(errors.New("ignored"))

	assert.Equal(t, "√ Creating directory Done.\n", buf.String())
}

func TestSpinner_Failure(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)

	s.Start("Writing file").Stop(errors.New("disk full"))

	assert.Equal(t, "✗ Writing file failed\n", buf.String())
}

func TestSpinner_AnimatedStopsCleanly(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)
	s.animate = true
	s.Interval = 1

	task := s.Start("Running command go mod tidy")
	task.Stop(nil)

	out := buf.String()
	assert.Contains(t, out, "Running command go mod tidy")
	assert.True(t, strings.HasSuffix(out, "Done.\n"))
}

func TestPrompt_LineMode(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader("my-app\n\n  spaced  \n"), &out)

	answer, err := p.Ask("Project name", "app")
	require.NoError(t, err)
	assert.Equal(t, "my-app", answer)

	answer, err = p.Ask("Language", "go")
	require.NoError(t, err)
	assert.Equal(t, "go", answer)

	answer, err = p.Ask("Other", "x")
	require.NoError(t, err)
	assert.Equal(t, "spaced", answer)

	answer, err = p.Ask("After EOF", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", answer)

	assert.Contains(t, out.String(), "? Project name » app ")
}

func TestTextModel(t *testing.T) {
	var m tea.Model = newTextModel("Name", "app", false)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("cd")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "? Name ab c", m.View())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	tm := m.(textModel)
	assert.True(t, tm.done)
	assert.Equal(t, "ab c", tm.answer())
	assert.Equal(t, "√ Name ... ab c\n", tm.View())
}

func TestTextModel_DefaultAndCancel(t *testing.T) {
	var m tea.Model = newTextModel("Name", "app", false)
	assert.Equal(t, "? Name » app", m.View())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "app", m.(textModel).answer())

	m, _ = newTextModel("Name", "app", false).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.(textModel).cancelled)
	assert.Empty(t, m.View())
}
