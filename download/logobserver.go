package download

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// ErrStopped is returned by LogObserver.CheckCancelled after Stop.
var ErrStopped = errors.New("stopped by caller")

// LogObserver is an Observer that writes task events to a slog.Logger,
// logging progress at most once per interval. Use one LogObserver per
// task: the byte counters it keeps are not keyed by URL.
type LogObserver struct {
	logger   *slog.Logger
	interval time.Duration
	stopped  atomic.Bool
	total    atomic.Int64
	done     atomic.Int64

	mu      sync.Mutex
	start   time.Time
	lastLog time.Time
}

// NewLogObserver returns a LogObserver logging progress to logger every
// interval. A nil logger means slog.Default(); a non-positive interval
// means one second.
func NewLogObserver(logger *slog.Logger, interval time.Duration) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}

	o := LogObserver{
		logger:   logger,
		interval: interval,
	}
	o.total.Store(-1)

	return &o
}

// Stop makes every subsequent CheckCancelled report ErrStopped.
func (o *LogObserver) Stop() {
	o.stopped.Store(true)
}

// Transferred returns the last cumulative byte count reported.
func (o *LogObserver) Transferred() int64 {
	return o.done.Load()
}

func (o *LogObserver) TotalBytes(n int64) {
	o.total.Store(n)
	o.logger.Info("total size", "bytes", n, "size", humanize.Bytes(uint64(max(n, 0))))
}

func (o *LogObserver) DownloadStarted(url string) {
	o.mu.Lock()
	o.start = time.Now()
	o.lastLog = time.Time{}
	o.mu.Unlock()

	o.done.Store(0)
	o.logger.Info("download started", "url", url)
}

func (o *LogObserver) BytesCompleted(n int64) {
	o.done.Store(n)

	o.mu.Lock()
	due := time.Since(o.lastLog) >= o.interval
	if due {
		o.lastLog = time.Now()
	}
	start := o.start
	o.mu.Unlock()

	total := o.total.Load()
	if due || (total >= 0 && n == total) {
		o.logProgress(n, total, start)
	}
}

func (o *LogObserver) DownloadCompleted(url, path string) {
	o.logger.Info("download completed", "url", url, "path", path)
}

func (o *LogObserver) DownloadErrored(url, msg string) {
	o.logger.Error("download errored", "url", url, "reason", msg)
}

func (o *LogObserver) DownloadProblem(url, msg string) {
	o.logger.Warn("download problem", "url", url, "reason", msg)
}

func (o *LogObserver) CheckCancelled() error {
	if o.stopped.Load() {
		return ErrStopped
	}
	return nil
}

func (o *LogObserver) logProgress(n, total int64, start time.Time) {
	elapsed := time.Since(start)
	attrs := []any{
		"transferred", humanize.Bytes(uint64(n)),
		"elapsed", elapsed.Round(time.Millisecond),
	}
	if total > 0 {
		attrs = append(attrs,
			"progress", fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100),
			"total", humanize.Bytes(uint64(total)),
		)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		attrs = append(attrs, "rate", humanize.Bytes(uint64(float64(n)/secs))+"/s")
	}

	o.logger.Info("downloading", attrs...)
}
