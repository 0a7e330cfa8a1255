// Package fetcher exposes client and worker builders.
package fetcher

import (
	"github.com/adamwoolhether/fetcher/client"
	"github.com/adamwoolhether/fetcher/download"
)

// NewClient instantiates a new *Client with the provided options.
// If not specified, a fresh http.Client over http.DefaultTransport is used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// NewWorker instantiates a *download.Worker pulling from c and reporting to obs.
func NewWorker(c *client.Client, obs download.Observer, opts ...download.Option) (*download.Worker, error) {
	return download.NewWorker(c, obs, opts...)
}
