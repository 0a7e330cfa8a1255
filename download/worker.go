package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Worker runs the single-task download protocol: cancellation check,
// destination collision policy, size probe, then a bounded retry loop
// over full restarts of the transfer.
//
// A Worker holds no per-task state and may run many tasks concurrently;
// each Task must be run by exactly one call to Run.
type Worker struct {
	src    Source
	obs    Observer
	cfg    TransferConfig
	policy RetryPolicy
	logger *slog.Logger
	tracer trace.Tracer
}

// NewWorker builds a Worker pulling from src and reporting to obs. A nil
// obs is replaced by NopObserver.
func NewWorker(src Source, obs Observer, optFns ...Option) (*Worker, error) {
	if src == nil {
		return nil, errors.New("source must not be nil")
	}
	if obs == nil {
		obs = NopObserver{}
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying worker option: %w", err)
		}
	}

	cfg := DefaultTransferConfig()
	if opts.config != nil {
		cfg = *opts.config
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating transfer config: %w", err)
	}

	w := Worker{
		src:    src,
		obs:    obs,
		cfg:    cfg,
		policy: cfg.RetryPolicy(),
		logger: opts.logger,
		tracer: opts.tracer,
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.tracer == nil {
		w.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	return &w, nil
}

// Run executes task to a terminal outcome. Exactly one of
// DownloadCompleted, DownloadErrored or DownloadProblem is reported to
// the observer before Run returns; failures are never returned any
// other way than through the Outcome.
func (w *Worker) Run(ctx context.Context, task *Task) Outcome {
	ctx, span := w.tracer.Start(ctx, "download.run", trace.WithAttributes(
		attribute.String("task.id", task.ID),
		attribute.String("task.url", task.URL),
		attribute.String("task.dest", task.Dest),
	))
	defer span.End()

	logger := w.logger.With("task", task.ID, "url", task.URL)

	out := w.run(ctx, task, logger)

	span.SetAttributes(
		attribute.String("task.outcome", out.State.String()),
		attribute.Int("task.attempts", out.Attempts),
	)
	if out.State == StateFailed || out.State == StateInterrupted {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.State.String())
	}

	return out
}

func (w *Worker) run(ctx context.Context, task *Task, logger *slog.Logger) Outcome {
	if err := w.cancelled(ctx); err != nil {
		return w.interrupt(task, logger, err)
	}

	if _, err := os.Stat(task.Dest); err == nil {
		if !w.cfg.Overwrite {
			w.enter(task, logger, StateSkipped)
			logger.Info("skipping, file already exists", "path", task.Dest)
			w.obs.DownloadProblem(task.URL, "file already exists: "+task.Dest)

			return Outcome{
				State: StateSkipped,
				Path:  task.Dest,
				Err:   &Error{Err: ErrAlreadyExists, Detail: task.Dest},
			}
		}

		logger.Info("deleting existing file", "path", task.Dest)
		if err := os.Remove(task.Dest); err != nil {
			return w.fail(task, logger, &Error{
				Err:    ErrAlreadyExists,
				Detail: fmt.Sprintf("removing %s: %v", task.Dest, err),
			})
		}
	}

	total, err := w.src.Probe(ctx, task.URL)
	switch {
	case err != nil:
		if cerr := w.cancelled(ctx); cerr != nil {
			return w.interrupt(task, logger, cerr)
		}
		return w.fail(task, logger, &Error{Err: fmt.Errorf("%w: %w", ErrProbeFailed, err)})
	case total < 0:
		return w.fail(task, logger, &Error{Err: ErrProbeFailed, Detail: "no declared content length"})
	}

	task.Total = total
	w.enter(task, logger, StateProbed)
	w.obs.TotalBytes(total)
	logger.Info("probed file size", "bytes", total, "size", humanize.Bytes(uint64(total)))

	for task.Attempt = 1; ; task.Attempt++ {
		task.Transferred = 0
		w.enter(task, logger, StateAttempting)

		err := w.attempt(ctx, task, logger)
		if err == nil {
			break
		}

		if !recoverable(err) {
			return w.interrupt(task, logger, err)
		}
		// A context cancelled mid-read surfaces as an I/O error.
		if cerr := w.cancelled(ctx); cerr != nil {
			return w.interrupt(task, logger, cerr)
		}

		w.enter(task, logger, StateRetrying)
		logger.Error("attempt failed", "attempt", task.Attempt, "transferred", task.Transferred, "error", err)

		if !w.policy.MayRetry(task.Attempt) {
			logger.Error("exceeded maximum retries", "max_retries", w.policy.MaxRetries())
			return w.fail(task, logger, &Error{Err: fmt.Errorf("%w: %w", ErrRetriesExhausted, err)})
		}
	}

	w.enter(task, logger, StateCompleted)
	logger.Info("saved file", "path", task.Dest, "attempts", task.Attempt)
	w.obs.DownloadCompleted(task.URL, task.Dest)

	return Outcome{State: StateCompleted, Path: task.Dest, Attempts: task.Attempt}
}

// attempt makes one full pass from byte zero. The destination is
// truncated before the source is opened, discarding any earlier partial.
func (w *Worker) attempt(ctx context.Context, task *Task, logger *slog.Logger) error {
	if task.Attempt > 1 {
		logger.Info("downloading file", "retry", task.Attempt-1)
	} else {
		logger.Info("downloading file")
	}
	w.obs.DownloadStarted(task.URL)

	if err := os.MkdirAll(filepath.Dir(task.Dest), 0o755); err != nil {
		return &Error{Err: ErrTransfer, Detail: fmt.Sprintf("creating parent directory: %v", err)}
	}

	file, err := os.Create(task.Dest)
	if err != nil {
		return &Error{Err: ErrTransfer, Detail: fmt.Sprintf("creating destination: %v", err)}
	}

	body, err := w.src.Open(ctx, task.URL)
	if err != nil {
		if cerr := file.Close(); cerr != nil {
			logger.Error("closing destination", "error", cerr)
		}
		return &Error{Err: fmt.Errorf("%w: %w", ErrTransfer, err)}
	}

	cp := Copier{
		ChunkSize: w.cfg.ChunkSize,
		Limit:     task.Total,
		Cancelled: func() error { return w.cancelled(ctx) },
		Progress: func(n int64) {
			task.Transferred = n
			w.obs.BytesCompleted(n)
		},
	}

	n, err := cp.Copy(file, body)
	if err != nil {
		return err
	}

	if n != task.Total {
		return &Error{
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", task.Total, n),
		}
	}

	return nil
}

// abort reports task as Interrupted without running it, for tasks a
// scheduler refuses before they start.
func (w *Worker) abort(task *Task, cause error) Outcome {
	return w.interrupt(task, w.logger.With("task", task.ID, "url", task.URL), cause)
}

func (w *Worker) enter(task *Task, logger *slog.Logger, s State) {
	logger.Debug("state transition", "from", task.State, "to", s, "attempt", task.Attempt)
	task.State = s
}

// cancelled merges the context with the observer's own stop signal.
func (w *Worker) cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.obs.CheckCancelled()
}

func (w *Worker) interrupt(task *Task, logger *slog.Logger, cause error) Outcome {
	var err *Error
	if !errors.As(cause, &err) || !errors.Is(err, ErrInterrupted) {
		err = &Error{Err: ErrInterrupted, Detail: cause.Error()}
	}

	w.enter(task, logger, StateInterrupted)
	logger.Info("download interrupted", "attempt", task.Attempt, "reason", err.Detail)
	w.obs.DownloadErrored(task.URL, ErrInterrupted.Error())

	return Outcome{State: StateInterrupted, Path: task.Dest, Attempts: task.Attempt, Err: err}
}

func (w *Worker) fail(task *Task, logger *slog.Logger, err *Error) Outcome {
	w.enter(task, logger, StateFailed)
	logger.Error("download failed", "attempts", task.Attempt, "error", err)
	w.obs.DownloadErrored(task.URL, err.Error())

	return Outcome{State: StateFailed, Path: task.Dest, Attempts: task.Attempt, Err: err}
}
