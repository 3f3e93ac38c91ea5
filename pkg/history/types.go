// Package history records template installs, removals and runs in a local
// SQLite database and summarises them.
package history

import "time"

// Kind is the category of a recorded event.
type Kind string

const (
	KindInstall Kind = "install"
	KindRemove  Kind = "remove"
	KindRun     Kind = "run"
)

// Event is one recorded operation. Directives and Diagnostics are only
// meaningful for runs.
type Event struct {
	ID          string
	Timestamp   time.Time
	Kind        Kind
	Template    string
	Duration    time.Duration
	Success     bool
	Directives  int
	Diagnostics int
	Error       string
}

// Stats summarises the events of a period.
type Stats struct {
	Period       string
	TotalRuns    int
	SuccessRate  float64
	AvgDuration  time.Duration
	Installs     int
	Removals     int
	Diagnostics  int
	TopTemplates []TemplateStat
}

type TemplateStat struct {
	Name  string
	Count int
}

// Recorder stores events. The CLI uses a no-op recorder when history is
// disabled.
type Recorder interface {
	Record(e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(Event) error { return nil }
func (Nop) Close() error { return nil }
