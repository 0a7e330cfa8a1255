package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	"github.com/adamwoolhether/fetcher/client"
	"github.com/adamwoolhether/fetcher/download"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitFailed       = 3
	ExitInterrupted  = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: fetch [options] <url> [url...]

Downloads each URL into the output directory, retrying transient
failures. Existing files are skipped unless -overwrite is given.

Options:`)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "YAML config file (default "+DefaultPath()+")")
	outputDir := fs.String("o", "", "output directory")
	retries := fs.Int("retries", 0, "maximum retries per file")
	chunkSize := fs.Int("chunk-size", 0, "copy buffer size in bytes")
	overwrite := fs.Bool("overwrite", false, "replace existing files")
	concurrency := fs.Int("j", 0, "maximum concurrent downloads, 0 for unlimited")
	timeout := fs.Duration("timeout", 0, "per-attempt HTTP timeout")
	userAgent := fs.String("user-agent", "", "User-Agent header")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	urls := fs.Args()
	if len(urls) == 0 {
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.OutputDir = *outputDir
		case "retries":
			cfg.Transfer.MaxRetries = *retries
		case "chunk-size":
			cfg.Transfer.ChunkSize = *chunkSize
		case "overwrite":
			cfg.Transfer.Overwrite = *overwrite
		case "j":
			cfg.Concurrency = *concurrency
		case "timeout":
			cfg.Timeout = *timeout
		case "user-agent":
			cfg.UserAgent = *userAgent
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: invalid configuration: %v\n", err)
		return ExitInvalidArgs
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	return fetchAll(ctx, cfg, urls, logger)
}

func fetchAll(ctx context.Context, cfg Config, urls []string, logger *slog.Logger) int {
	clientOpts := []client.Option{
		client.WithLogger(logger),
		client.WithTimeout(cfg.Timeout),
	}
	if cfg.UserAgent != "" {
		clientOpts = append(clientOpts, client.WithUserAgent(cfg.UserAgent))
	}
	for k, v := range cfg.Headers {
		clientOpts = append(clientOpts, client.WithHeader(k, v))
	}

	c, err := client.Build(clientOpts...)
	if err != nil {
		logger.Error("building client", "error", err)
		return ExitGeneralError
	}

	q := download.NewQueue(cfg.Concurrency)
	results := make([]*download.Result, 0, len(urls))
	claimed := make(map[string]string, len(urls))
	for _, u := range urls {
		dest, err := destination(cfg.OutputDir, u)
		if err != nil {
			logger.Error("skipping url", "url", u, "error", err)
			continue
		}
		if prev, ok := claimed[dest]; ok {
			logger.Error("skipping url", "url", u, "error", fmt.Errorf("destination %s already claimed by %s", dest, prev))
			continue
		}
		claimed[dest] = u

		obs := download.NewLogObserver(logger, cfg.ProgressInterval)
		w, err := download.NewWorker(c, obs,
			download.WithLogger(logger),
			download.WithTransferConfig(cfg.Transfer),
		)
		if err != nil {
			logger.Error("building worker", "error", err)
			return ExitGeneralError
		}

		results = append(results, q.Start(ctx, w, download.NewTask(u, dest)))
	}

	if err := q.Wait(); err != nil {
		logger.Debug("queue finished with errors", "error", err)
	}

	return summarize(results, len(urls), logger)
}

// summarize logs the outcome counts and maps them to an exit code.
func summarize(results []*download.Result, requested int, logger *slog.Logger) int {
	counts := make(map[download.State]int)
	for _, r := range results {
		out := r.Outcome()
		counts[out.State]++
		if out.State == download.StateFailed || out.State == download.StateInterrupted {
			logger.Debug("unfinished download", "url", r.Task().URL, "state", out.State, "error", out.Err)
		}
	}

	logger.Info("finished",
		"completed", counts[download.StateCompleted],
		"skipped", counts[download.StateSkipped],
		"failed", counts[download.StateFailed],
		"interrupted", counts[download.StateInterrupted],
	)

	switch {
	case counts[download.StateInterrupted] > 0:
		return ExitInterrupted
	case counts[download.StateFailed] > 0, len(results) < requested:
		return ExitFailed
	default:
		return ExitSuccess
	}
}

// destination names the local file for rawURL after the last path segment.
func destination(dir, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = "index"
	}

	return filepath.Join(dir, name), nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
