package client

import (
	"log/slog"

	"github.com/adamwoolhether/fetcher/download"
	"go.opentelemetry.io/otel/trace"
)

// -------------------------------------------------------------------------
// Type aliases – re-export user-facing types from [download].
// -------------------------------------------------------------------------

type (
	// DownloadError wraps a sentinel error with additional detail.
	DownloadError = download.Error

	// DownloadOption configures the worker behind [Client.Download].
	DownloadOption = download.Option

	// TransferConfig holds chunk size, retry bound and overwrite policy.
	TransferConfig = download.TransferConfig
)

// -------------------------------------------------------------------------
// Sentinel errors
// -------------------------------------------------------------------------

var (
	// ErrDownloadInterrupted indicates the download observed a cancellation.
	ErrDownloadInterrupted = download.ErrInterrupted

	// ErrProbeFailed indicates the size probe failed.
	ErrProbeFailed = download.ErrProbeFailed

	// ErrRetriesExhausted indicates every permitted attempt failed.
	ErrRetriesExhausted = download.ErrRetriesExhausted

	// ErrContentLengthMismatch indicates the byte count did not match the probed size.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch
)

// -------------------------------------------------------------------------
// Download option forwarding functions
// -------------------------------------------------------------------------

// WithTransferConfig sets the chunk size, retry bound and overwrite policy.
func WithTransferConfig(cfg TransferConfig) DownloadOption {
	return download.WithTransferConfig(cfg)
}

// WithDownloadLogger overrides the Client's logger for a single download.
func WithDownloadLogger(logger *slog.Logger) DownloadOption {
	return download.WithLogger(logger)
}

// WithTracer records one span per download.
func WithTracer(tracer trace.Tracer) DownloadOption { return download.WithTracer(tracer) }
