package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/adamwoolhether/fetcher/download"
)

// Client wraps the std-lib *http.Client and implements [download.Source].
// It sets a default *http.Client and *http.Transport, which
// can be customized via optional funcs.
type Client struct {
	c      *http.Client
	logger *slog.Logger
}

// Build creates a Client from the given options.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:      &http.Client{},
		logger: slog.Default(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" || len(opts.headers) > 0 || len(opts.cookies) > 0 {
		transport = decorate{
			userAgent: opts.userAgent,
			headers:   opts.headers,
			cookies:   opts.cookies,
			base:      transport,
		}
	}
	client.c.Transport = transport

	return client, nil
}

// Probe issues a HEAD request for rawURL and returns the declared
// Content-Length. A response without one yields [ErrUnknownLength].
func (c *Client) Probe(ctx context.Context, rawURL string) (int64, error) {
	req, err := Request(ctx, rawURL, http.MethodHead)
	if err != nil {
		return 0, err
	}

	var size int64
	probeFunc := func(resp *http.Response) error {
		if resp.ContentLength < 0 {
			return ErrUnknownLength
		}
		size = resp.ContentLength

		return nil
	}

	if err := c.exec(req, probeFunc); err != nil {
		return 0, fmt.Errorf("probe: %w", err)
	}

	return size, nil
}

// Open issues a GET request for rawURL and returns the response body.
// The caller must close it.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := Request(ctx, rawURL, http.MethodGet)
	if err != nil {
		return nil, err
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exec http do: %w", err)
	}

	if !successful(resp.StatusCode) {
		defer c.drain(resp)
		return nil, c.statusError(resp)
	}

	return resp.Body, nil
}

// Download runs a single task for rawURL with this Client as the source.
// The Client's logger is used unless opts carry their own.
func (c *Client) Download(ctx context.Context, rawURL, destPath string, obs download.Observer, opts ...download.Option) (download.Outcome, error) {
	if destPath == "" {
		return download.Outcome{}, errors.New("destPath must not be empty")
	}

	w, err := download.NewWorker(c, obs, slices.Concat([]download.Option{download.WithLogger(c.logger)}, opts)...)
	if err != nil {
		return download.Outcome{}, fmt.Errorf("building worker: %w", err)
	}

	return w.Run(ctx, download.NewTask(rawURL, destPath)), nil
}

// exec runs the request and injected function on success after validating the status code.
func (c *Client) exec(req *http.Request, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("exec http do: %w", err)
	}
	defer c.drain(resp)

	if !successful(resp.StatusCode) {
		return c.statusError(resp)
	}

	if err := fn(resp); err != nil {
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unable to read body")
	}

	return newStatusError(resp.StatusCode, b)
}

// drain discards what is left of the body so the connection can be reused.
func (c *Client) drain(resp *http.Response) {
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrBodySize)); err != nil {
		c.logger.Error("failed to discard unused body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}

// Request instantiates an *http.Request for rawURL without a body.
func Request(ctx context.Context, rawURL string, method string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	return req, nil
}

func successful(code int) bool {
	return code >= 200 && code < 300
}
