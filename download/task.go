package download

import (
	"github.com/google/uuid"
)

// State is a position in the per-task state machine.
type State int

const (
	StateProbed State = iota
	StateAttempting
	StateRetrying
	StateCompleted
	StateFailed
	StateInterrupted
	StateSkipped
)

var stateNames = [...]string{
	StateProbed:      "probed",
	StateAttempting:  "attempting",
	StateRetrying:    "retrying",
	StateCompleted:   "completed",
	StateFailed:      "failed",
	StateInterrupted: "interrupted",
	StateSkipped:     "skipped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions leave s.
func (s State) Terminal() bool {
	return s >= StateCompleted
}

// Task is a single resource to download. A Task is mutated only by the
// Worker running it and must not be reused after Run returns. State is
// meaningful only once Run has probed the resource or reached a
// terminal outcome.
type Task struct {
	ID          string
	URL         string
	Dest        string
	State       State
	Attempt     int
	Total       int64 // -1 until probed.
	Transferred int64
}

// NewTask creates a Task for url with a fresh ID.
func NewTask(url, dest string) *Task {
	return &Task{
		ID:    uuid.NewString(),
		URL:   url,
		Dest:  dest,
		Total: -1,
	}
}

// Outcome is the terminal result of a Task. Err is nil for Completed. A
// Skipped outcome carries ErrAlreadyExists for information only; every other
// state carries a *Error wrapping one of the package sentinels.
type Outcome struct {
	State    State
	Path     string
	Attempts int
	Err      error
}
