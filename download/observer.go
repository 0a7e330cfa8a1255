package download

import (
	"context"
	"io"
)

// Observer receives lifecycle and progress events for a task. The worker
// never owns an Observer; it only calls it. When a Queue runs tasks in
// parallel, one Observer may be invoked from several goroutines at once,
// and the worker does not serialize those calls.
type Observer interface {
	// TotalBytes is called once, after a successful size probe.
	TotalBytes(n int64)
	// DownloadStarted is called at the start of every attempt, retries included.
	DownloadStarted(url string)
	// BytesCompleted is called after every chunk write with the bytes
	// transferred so far by the current attempt.
	BytesCompleted(n int64)
	// DownloadCompleted is called exactly once on success.
	DownloadCompleted(url, path string)
	// DownloadErrored is called exactly once on a fatal outcome: probe
	// failure, retry exhaustion or interruption.
	DownloadErrored(url, msg string)
	// DownloadProblem is called exactly once when the task is skipped.
	DownloadProblem(url, msg string)
	// CheckCancelled is polled before the task starts and at every chunk
	// boundary. A non-nil result is the cancellation signal.
	CheckCancelled() error
}

// Source is the transport a Worker pulls bytes from.
type Source interface {
	// Probe issues a metadata-only request and returns the declared size.
	Probe(ctx context.Context, url string) (int64, error)
	// Open starts a transfer of the full resource.
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// NopObserver ignores every event and never signals cancellation.
// Embed it to implement only the methods of interest.
type NopObserver struct{}

func (NopObserver) TotalBytes(int64)                 {}
func (NopObserver) DownloadStarted(string)           {}
func (NopObserver) BytesCompleted(int64)             {}
func (NopObserver) DownloadCompleted(string, string) {}
func (NopObserver) DownloadErrored(string, string)   {}
func (NopObserver) DownloadProblem(string, string)   {}
func (NopObserver) CheckCancelled() error            { return nil }
