package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"tmpl/pkg/interp"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is an interp.Progress that animates on a terminal and prints one
// result line per operation.
type Spinner struct {
	out      io.Writer
	animate  bool
	color    bool
	Interval time.Duration
}

// NewSpinner writes to out. Animation and color are used only when out is
// a terminal.
func NewSpinner(out io.Writer) *Spinner {
	tty := IsTerminal(out)
	return &Spinner{
		out:      out,
		animate:  tty,
		color:    ShouldUseColor(out),
		Interval: 100 * time.Millisecond,
	}
}

func (s *Spinner) Start(message string) interp.Task {
	t := &spinnerTask{spinner: s, message: message, done: make(chan struct{})}
	if s.animate {
		t.wg.Add(1)
		go t.spin()
	}
	return t
}

type spinnerTask struct {
	spinner *Spinner
	message string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func (t *spinnerTask) spin() {
	defer t.wg.Done()
	// Output is cosmetic; a panicking writer stays inside this goroutine.
	defer func() { _ = recover() }()

	ticker := time.NewTicker(t.spinner.Interval)
	defer ticker.Stop()
	for i := 0; ; i++ {
		frame := Colorize(spinnerFrames[i%len(spinnerFrames)], ColorCyan, t.spinner.color)
		_, _ = fmt.Fprintf(t.spinner.out, "\r%s %s", frame, t.message)
		select {
		case <-t.done:
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the animation and prints the outcome. Only the first call has
// any effect.
func (t *spinnerTask) Stop(err error) {
	t.once.Do(func() {
		close(t.done)
		t.wg.Wait()

		s := t.spinner
		prefix := ""
		if s.animate {
			prefix = "\r\033[K"
		}
		if err != nil {
			_, _ = fmt.Fprintf(s.out, "%s%s %s failed\n", prefix, Colorize("✗", ColorRed, s.color), t.message)
			return
		}
		_, _ = fmt.Fprintf(s.out, "%s%s %s Done.\n", prefix, Colorize("√", ColorGreen, s.color), t.message)
	})
}
