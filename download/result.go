package download

import (
	"context"
)

// Result represents an in-flight or finished task started on a Queue.
type Result struct {
	task   *Task
	done   chan struct{}
	out    Outcome
	cancel context.CancelFunc
	queue  *Queue
}

// Task returns the task this Result tracks. Its fields must not be read
// until Done is closed.
func (r *Result) Task() *Task { return r.task }

// Done returns a channel that is closed when the task finishes.
func (r *Result) Done() <-chan struct{} { return r.done }

// Outcome blocks until the task finishes and returns its outcome.
func (r *Result) Outcome() Outcome {
	<-r.done
	return r.out
}

// Err blocks until the task finishes and returns the outcome's error,
// which is nil for Completed and Skipped tasks.
func (r *Result) Err() error {
	out := r.Outcome()
	if out.State == StateSkipped {
		return nil
	}
	return out.Err
}

// Wait blocks until every task on the same Queue finishes.
func (r *Result) Wait() error {
	return r.queue.Wait()
}

// Cancel cancels this task's context. The worker observes it at the
// next chunk boundary.
func (r *Result) Cancel() {
	r.cancel()
}
