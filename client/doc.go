// Package client provides the HTTP transport for downloads, built on
// [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(5 * time.Minute),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithHeader("Referer", "https://example.com/"),
//	)
//
// # Probing and Opening
//
// [Client.Probe] issues a HEAD request and returns the declared size;
// [Client.Open] streams the body with a GET. Together they satisfy
// [download.Source], so a Client can back a [download.Worker].
//
// # Downloading Files
//
// [Client.Download] runs one task end to end:
//
//	out, err := c.Download(ctx, "https://example.com/v.mp4", "/tmp/v.mp4", obs,
//		client.WithTransferConfig(client.TransferConfig{ChunkSize: 64 << 10, MaxRetries: 3}),
//	)
//
// For batches and lower-level control see the
// [github.com/adamwoolhether/fetcher/download] package.
package client
