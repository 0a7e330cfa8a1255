package download

import (
	"errors"
	"fmt"
	"io"
)

// Copier moves bytes from a source to a destination in fixed-size chunks.
//
// Cancelled is polled before every chunk read, the first included. It is
// never consulted in the middle of a read or write, so callers needing a
// faster stop must rely on timeouts of the underlying streams.
//
// Progress receives the cumulative byte count after every chunk write.
//
// Limit caps the bytes accepted from the source; a chunk that would pass
// it fails the copy with ErrContentLengthMismatch before being written.
// A negative Limit disables the check.
type Copier struct {
	ChunkSize int
	Limit     int64
	Cancelled func() error
	Progress  func(n int64)
}

// Copy transfers src to dst and returns the bytes written. Both streams
// are closed before Copy returns, whatever the outcome. A cancellation
// yields an error wrapping ErrInterrupted; every other failure wraps
// ErrTransfer or ErrContentLengthMismatch and may be retried.
func (c *Copier) Copy(dst io.WriteCloser, src io.ReadCloser) (n int64, err error) {
	defer func() {
		_ = src.Close()
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = &Error{Err: ErrTransfer, Detail: fmt.Sprintf("closing destination: %v", closeErr)}
		}
	}()

	size := c.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)

	for {
		if c.Cancelled != nil {
			if cerr := c.Cancelled(); cerr != nil {
				return n, &Error{Err: ErrInterrupted, Detail: cerr.Error()}
			}
		}

		nr, rerr := fill(src, buf)
		if nr > 0 {
			if c.Limit >= 0 && n+int64(nr) > c.Limit {
				return n, &Error{
					Err:    ErrContentLengthMismatch,
					Detail: fmt.Sprintf("source exceeds expected %d bytes", c.Limit),
				}
			}

			nw, werr := dst.Write(buf[:nr])
			n += int64(nw)
			if werr == nil && nw != nr {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return n, &Error{Err: ErrTransfer, Detail: fmt.Sprintf("writing chunk: %v", werr)}
			}

			if c.Progress != nil {
				c.Progress(n)
			}
		}

		switch {
		case rerr == nil:
		case errors.Is(rerr, io.EOF):
			return n, nil
		default:
			return n, &Error{Err: ErrTransfer, Detail: fmt.Sprintf("reading chunk: %v", rerr)}
		}
	}
}

// fill reads until buf is full or src returns an error. Unlike
// io.ReadFull it hands back the source's own error untranslated.
func fill(src io.Reader, buf []byte) (int, error) {
	var n int
	for n < len(buf) {
		nn, err := src.Read(buf[n:])
		n += nn
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
