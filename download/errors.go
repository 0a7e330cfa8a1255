package download

import (
	"errors"
	"fmt"
)

var (
	// ErrInterrupted indicates the task observed a cancellation signal.
	// It is never retried and does not count against the retry budget.
	ErrInterrupted = errors.New("download interrupted")
	// ErrAlreadyExists indicates the destination exists and overwrite is disabled.
	ErrAlreadyExists = errors.New("file already exists")
	// ErrProbeFailed indicates the size probe failed. Never retried.
	ErrProbeFailed = errors.New("size probe failed")
	// ErrTransfer marks a recoverable I/O failure during an attempt.
	ErrTransfer = errors.New("transfer failed")
	// ErrRetriesExhausted is reported once every permitted attempt has failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrContentLengthMismatch indicates an attempt produced a byte count
	// different from the probed total.
	ErrContentLengthMismatch = errors.New("content length mismatch")
	// ErrGroupShutdown indicates the queue was shut down before the task ran.
	ErrGroupShutdown = errors.New("download queue shut down")
)

// Error wraps one of the sentinel errors above with additional detail.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}

	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// recoverable reports whether err may be retried by the attempt loop.
func recoverable(err error) bool {
	return err != nil && !errors.Is(err, ErrInterrupted)
}
