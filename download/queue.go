package download

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Queue runs tasks on their own goroutines with an optional bound on how
// many run at once. The Worker itself places no such bound.
type Queue struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	sem      chan struct{}
	shutdown atomic.Bool
	errs     []error
}

// NewQueue creates a Queue running at most maxConcurrent tasks at a time.
// If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{}
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}
	return q
}

// Wait blocks until every started task reaches a terminal outcome and
// returns the errors of Failed and Interrupted tasks joined together.
// Skipped tasks are not errors.
func (q *Queue) Wait() error {
	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()

	return errors.Join(q.errs...)
}

// Shutdown prevents tasks that have not yet started from running.
func (q *Queue) Shutdown() {
	q.shutdown.Store(true)
}

// Start runs task on w in a new goroutine and returns a Result tracking it.
func (q *Queue) Start(ctx context.Context, w *Worker, task *Task) *Result {
	ctx, cancel := context.WithCancel(ctx)
	r := &Result{
		task:   task,
		done:   make(chan struct{}),
		cancel: cancel,
		queue:  q,
	}

	q.wg.Add(1)
	go func() {
		defer func() {
			cancel()
			close(r.done)
			q.wg.Done()
		}()

		// A cancelled context skips the slot wait so the worker reports it.
		if q.sem != nil && ctx.Err() == nil {
			select {
			case q.sem <- struct{}{}:
				defer func() {
					<-q.sem
				}()
			case <-ctx.Done():
				r.out = w.abort(task, ctx.Err())
				q.record(r.out)
				return
			}
		}

		if q.shutdown.Load() {
			r.out = w.abort(task, &Error{
				Err:    fmt.Errorf("%w: %w", ErrGroupShutdown, ErrInterrupted),
				Detail: task.URL,
			})
			q.record(r.out)
			return
		}

		r.out = w.Run(ctx, task)
		q.record(r.out)
	}()

	return r
}

// record keeps the error of a non-successful outcome under the mutex.
func (q *Queue) record(out Outcome) {
	if out.State != StateFailed && out.State != StateInterrupted {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, out.Err)
}
