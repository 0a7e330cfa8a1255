package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// gateSource blocks every Open until release is closed or ctx ends,
// tracking how many Opens were in flight at once.
type gateSource struct {
	release chan struct{}
	started chan struct{}
	running atomic.Int32
	peak    atomic.Int32
}

func newGateSource() *gateSource {
	return &gateSource{
		release: make(chan struct{}),
		started: make(chan struct{}, 64),
	}
}

func (g *gateSource) Probe(context.Context, string) (int64, error) { return 4, nil }

func (g *gateSource) Open(ctx context.Context, _ string) (io.ReadCloser, error) {
	cur := g.running.Add(1)
	defer g.running.Add(-1)
	for {
		old := g.peak.Load()
		if cur <= old || g.peak.CompareAndSwap(old, cur) {
			break
		}
	}
	g.started <- struct{}{}

	select {
	case <-g.release:
		return io.NopCloser(bytes.NewReader([]byte("data"))), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func queueTask(t *testing.T, i int) *Task {
	return NewTask(testURL, filepath.Join(t.TempDir(), "f"+strconv.Itoa(i)))
}

func TestResult_Outcome_Success(t *testing.T) {
	q := NewQueue(0)
	w := newTestWorker(t, &fakeSource{size: 4, body: full([]byte("data"))}, nil, DefaultTransferConfig())

	r := q.Start(t.Context(), w, queueTask(t, 0))

	if out := r.Outcome(); out.State != StateCompleted {
		t.Errorf("state = %s, want completed (err: %v)", out.State, out.Err)
	}
	if err := r.Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := r.Wait(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestResult_Done(t *testing.T) {
	q := NewQueue(0)
	w := newTestWorker(t, &fakeSource{size: 4, body: full([]byte("data"))}, nil, DefaultTransferConfig())

	r := q.Start(t.Context(), w, queueTask(t, 0))

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("Done channel was not closed in time")
	}
	if r.Task().Transferred != 4 {
		t.Errorf("transferred = %d, want 4", r.Task().Transferred)
	}
}

func TestQueue_Wait_JoinedErrors(t *testing.T) {
	probeErr := errors.New("dns failure")
	q := NewQueue(0)

	good := newTestWorker(t, &fakeSource{size: 4, body: full([]byte("data"))}, nil, DefaultTransferConfig())
	bad := newTestWorker(t, &fakeSource{probeErr: probeErr}, nil, DefaultTransferConfig())
	flaky := newTestWorker(t, &fakeSource{size: 8, body: alwaysFail(nil)}, nil, TransferConfig{ChunkSize: 4})

	q.Start(t.Context(), good, queueTask(t, 0))
	q.Start(t.Context(), bad, queueTask(t, 1))
	q.Start(t.Context(), flaky, queueTask(t, 2))

	err := q.Wait()
	if err == nil {
		t.Fatal("expected joined error, got nil")
	}
	if !errors.Is(err, probeErr) {
		t.Errorf("expected error to contain %v", probeErr)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("expected error to contain %v", ErrRetriesExhausted)
	}
}

func TestQueue_Wait_SkippedIsNotError(t *testing.T) {
	task := queueTask(t, 0)
	if err := writeFile(task.Dest); err != nil {
		t.Fatal(err)
	}

	q := NewQueue(0)
	w := newTestWorker(t, &fakeSource{size: 4, body: full([]byte("data"))}, nil, DefaultTransferConfig())
	r := q.Start(t.Context(), w, task)

	if out := r.Outcome(); out.State != StateSkipped {
		t.Fatalf("state = %s, want skipped", out.State)
	}
	if err := r.Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := q.Wait(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestQueue_ConcurrencyLimit(t *testing.T) {
	const limit = 2
	const total = 5

	src := newGateSource()
	w := newTestWorker(t, src, nil, DefaultTransferConfig())
	q := NewQueue(limit)

	for i := range total {
		q.Start(t.Context(), w, queueTask(t, i))
	}

	<-src.started
	<-src.started
	time.Sleep(50 * time.Millisecond)
	close(src.release)

	if err := q.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if peak := src.peak.Load(); peak > limit {
		t.Errorf("max concurrent was %d, want <= %d", peak, limit)
	}
}

func TestQueue_UnlimitedConcurrency(t *testing.T) {
	const total = 10

	src := newGateSource()
	w := newTestWorker(t, src, nil, DefaultTransferConfig())
	q := NewQueue(0)

	for i := range total {
		q.Start(t.Context(), w, queueTask(t, i))
	}

	for range total {
		<-src.started
	}
	close(src.release)

	if err := q.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if peak := src.peak.Load(); peak < int32(total) {
		t.Errorf("expected all %d to run concurrently, peak was %d", total, peak)
	}
}

func TestResult_Cancel(t *testing.T) {
	src := newGateSource()
	w := newTestWorker(t, src, nil, DefaultTransferConfig())
	q := NewQueue(0)

	r := q.Start(t.Context(), w, queueTask(t, 0))

	<-src.started
	r.Cancel()

	out := r.Outcome()
	if out.State != StateInterrupted {
		t.Errorf("state = %s, want interrupted", out.State)
	}
	if !errors.Is(r.Err(), ErrInterrupted) {
		t.Errorf("expected ErrInterrupted, got %v", r.Err())
	}
}

func TestQueue_CancelledContextReportedOnce(t *testing.T) {
	// A free slot and a done context are both ready; the outcome must not
	// depend on which one the scheduler picks.
	for i := range 50 {
		obs := &recorder{}
		w := newTestWorker(t, &fakeSource{size: 4, body: full([]byte("data"))}, obs, DefaultTransferConfig())
		q := NewQueue(1)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		out := q.Start(ctx, w, queueTask(t, i)).Outcome()
		if out.State != StateInterrupted || !errors.Is(out.Err, ErrInterrupted) {
			t.Fatalf("run %d: expected interrupted outcome, got %s: %v", i, out.State, out.Err)
		}
		if diff := cmp.Diff([]string{"errored"}, obs.kinds()); diff != "" {
			t.Fatalf("run %d: events mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestQueue_ContextCancellationOnSemaphore(t *testing.T) {
	// Queue with limit 1: the first task holds the slot, the second is
	// cancelled while waiting for it and must not run.
	src := newGateSource()
	w := newTestWorker(t, src, nil, DefaultTransferConfig())
	q := NewQueue(1)

	q.Start(t.Context(), w, queueTask(t, 0))
	<-src.started

	obs := &recorder{}
	waiting := newTestWorker(t, src, obs, DefaultTransferConfig())

	ctx, cancel := context.WithCancel(t.Context())
	r := q.Start(ctx, waiting, queueTask(t, 1))
	time.Sleep(20 * time.Millisecond)
	cancel()

	out := r.Outcome()
	if out.State != StateInterrupted || !errors.Is(out.Err, ErrInterrupted) {
		t.Errorf("expected interrupted outcome, got %s: %v", out.State, out.Err)
	}
	if diff := cmp.Diff([]string{"errored"}, obs.kinds()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	close(src.release)

	if err := q.Wait(); err == nil {
		t.Error("expected queue error from cancelled task")
	}
	if got := src.peak.Load(); got != 1 {
		t.Errorf("open calls in flight peaked at %d, want 1", got)
	}
}

func TestQueue_Shutdown(t *testing.T) {
	src := newGateSource()
	w := newTestWorker(t, src, nil, DefaultTransferConfig())
	q := NewQueue(1)

	q.Start(t.Context(), w, queueTask(t, 0))
	<-src.started

	q.Shutdown()
	close(src.release)

	obs := &recorder{}
	refused := newTestWorker(t, src, obs, DefaultTransferConfig())
	r := q.Start(t.Context(), refused, queueTask(t, 1))

	err := r.Err()
	if !errors.Is(err, ErrGroupShutdown) || !errors.Is(err, ErrInterrupted) {
		t.Errorf("expected ErrGroupShutdown and ErrInterrupted, got %v", err)
	}
	if r.Outcome().State != StateInterrupted {
		t.Errorf("state = %s, want interrupted", r.Outcome().State)
	}
	if diff := cmp.Diff([]string{"errored"}, obs.kinds()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if got := src.peak.Load(); got != 1 {
		t.Errorf("open calls in flight peaked at %d, want 1", got)
	}
}
