package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tmpl/pkg/interp"
)

// Prompt is an interp.Prompter. On a terminal it runs an interactive
// bubbletea input; otherwise it reads one line per question.
type Prompt struct {
	in          io.Reader
	out         io.Writer
	reader      *bufio.Reader
	interactive bool
	color       bool
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:          in,
		out:         out,
		reader:      bufio.NewReader(in),
		interactive: IsTerminal(in) && IsTerminal(out),
		color:       ShouldUseColor(out),
	}
}

// Ask returns def when the answer is empty. Ctrl-C or Esc on a terminal
// yields interp.ErrInterrupted.
func (p *Prompt) Ask(question, def string) (string, error) {
	if p.interactive {
		return p.askInteractive(question, def)
	}
	return p.askLine(question, def)
}

func (p *Prompt) askLine(question, def string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "%s %s %s ", Colorize("?", ColorCyan, p.color), question, Colorize("» "+def, ColorGray, p.color))

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) {
		_, _ = fmt.Fprintln(p.out)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (p *Prompt) askInteractive(question, def string) (string, error) {
	model := newTextModel(question, def, p.color)
	final, err := tea.NewProgram(model, tea.WithInput(p.in), tea.WithOutput(p.out)).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	m, ok := final.(textModel)
	if !ok || m.cancelled {
		return "", interp.ErrInterrupted
	}
	return m.answer(), nil
}

type textModel struct {
	question  string
	def       string
	value     []rune
	color     bool
	done      bool
	cancelled bool
}

func newTextModel(question, def string, color bool) textModel {
	return textModel{question: question, def: def, color: color}
}

func (m textModel) Init() tea.Cmd {
	return nil
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.value) > 0 {
			m.value = m.value[:len(m.value)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.value = append(m.value, key.Runes...)
	}
	return m, nil
}

func (m textModel) answer() string {
	if len(m.value) == 0 {
		return m.def
	}
	return string(m.value)
}

func (m textModel) View() string {
	if m.cancelled {
		return ""
	}
	if m.done {
		return fmt.Sprintf("%s %s %s %s\n", Colorize("√", ColorGreen, m.color), m.question, Colorize("...", ColorGray, m.color), m.answer())
	}
	input := string(m.value)
	if input == "" {
		input = Colorize("» "+m.def, ColorGray, m.color)
	}
	return fmt.Sprintf("%s %s %s", Colorize("?", ColorCyan, m.color), m.question, input)
}
