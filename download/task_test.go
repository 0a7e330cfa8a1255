package download

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	task := NewTask(testURL, "/tmp/x")

	if _, err := uuid.Parse(task.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", task.ID, err)
	}
	if task.Total != -1 {
		t.Errorf("Total = %d, want -1 before probing", task.Total)
	}
	if task.Attempt != 0 || task.Transferred != 0 {
		t.Errorf("new task has progress: attempt=%d transferred=%d", task.Attempt, task.Transferred)
	}
	if other := NewTask(testURL, "/tmp/x"); other.ID == task.ID {
		t.Error("task IDs must be unique")
	}
}

func TestState(t *testing.T) {
	testCases := map[State]struct {
		name     string
		terminal bool
	}{
		StateProbed:      {name: "probed"},
		StateAttempting:  {name: "attempting"},
		StateRetrying:    {name: "retrying"},
		StateCompleted:   {name: "completed", terminal: true},
		StateFailed:      {name: "failed", terminal: true},
		StateInterrupted: {name: "interrupted", terminal: true},
		StateSkipped:     {name: "skipped", terminal: true},
		State(42):        {name: "unknown", terminal: true},
	}

	for s, tc := range testCases {
		if got := s.String(); got != tc.name {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, tc.name)
		}
		if got := s.Terminal(); got != tc.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tc.name, got, tc.terminal)
		}
	}
}
