package download

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option configures a Worker.
//
// WithLogger sets the logger used for lifecycle messages, defaulting
// to slog.Default().
//
// WithTracer records one span per Run. A no-op tracer is used when unset.
//
// WithTransferConfig replaces DefaultTransferConfig(). The config is
// validated when the Worker is built.
type Option func(*options) error

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
	config *TransferConfig
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		opts.logger = logger
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(opts *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		opts.tracer = tracer
		return nil
	}
}

func WithTransferConfig(cfg TransferConfig) Option {
	return func(opts *options) error {
		opts.config = &cfg
		return nil
	}
}
