package client

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	headers           http.Header
	cookies           []*http.Cookie
	noFollowRedirects bool
	logger            *slog.Logger
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
// The timeout covers reading the whole body, so it bounds a single
// transfer attempt rather than a single chunk.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithHeader adds a header sent with every probe and transfer request,
// e.g. a Referer some hosts require before serving media.
func WithHeader(key, value string) Option {
	return func(c *options) error {
		if key == "" {
			return errors.New("header key must not be empty")
		}
		if c.headers == nil {
			c.headers = make(http.Header)
		}
		c.headers.Add(key, value)
		return nil
	}
}

// WithCookies attaches the given cookies to every outgoing request.
func WithCookies(cookies ...*http.Cookie) Option {
	return func(c *options) error {
		c.cookies = append(c.cookies, cookies...)
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// decorate is an http.RoundTripper applying the persistent User-Agent,
// headers and cookies to a clone of every request.
type decorate struct {
	userAgent string
	headers   http.Header
	cookies   []*http.Cookie
	base      http.RoundTripper
}

func (d decorate) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	if d.userAgent != "" {
		cpy.Header.Set("User-Agent", d.userAgent)
	}
	for k, v := range d.headers {
		for _, element := range v {
			cpy.Header.Add(k, element)
		}
	}
	for _, cookie := range d.cookies {
		cpy.AddCookie(cookie)
	}
	return d.base.RoundTrip(cpy)
}
