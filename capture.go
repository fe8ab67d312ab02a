package fetch

import (
	"bytes"
	"io"
)

// DefaultCaptureLimit is the capture buffer bound used when
// BodyCapture.Limit is zero.
const DefaultCaptureLimit = 64 * 1024

// BodyCapture accumulates a bounded copy of a request body as it is
// written, for logging and debugging.  It is an explicit decorator
// around the body sink: attach it to a request with
// Request.CaptureBody(), and WriteBody will tee everything it writes
// into the capture, without altering what reaches the real sink and
// without consuming any stream twice.
//
// A BodyCapture is not safe for concurrent use, and holds body bytes
// longer than their natural lifespan, so it is intended for tests and
// diagnostics, not production hot paths.
type BodyCapture struct {
	// Limit bounds the number of bytes retained.  Bytes beyond the
	// limit are still written to the real sink, just not retained.
	// Defaults to DefaultCaptureLimit.
	Limit int

	buf       bytes.Buffer
	truncated bool
}

// Sink wraps w so that written bytes are also retained in the capture.
func (c *BodyCapture) Sink(w io.Writer) io.Writer {
	return &captureWriter{c: c, w: w}
}

// Bytes returns the captured copy of the body.
func (c *BodyCapture) Bytes() []byte {
	return c.buf.Bytes()
}

// String returns the captured copy decoded as text.  The body is not
// necessarily UTF-8, but text is the most useful form for logging.
func (c *BodyCapture) String() string {
	return c.buf.String()
}

// Truncated reports whether the body exceeded the capture limit.
func (c *BodyCapture) Truncated() bool {
	return c.truncated
}

// Reset clears the capture for reuse.
func (c *BodyCapture) Reset() {
	c.buf.Reset()
	c.truncated = false
}

func (c *BodyCapture) limit() int {
	if c.Limit <= 0 {
		return DefaultCaptureLimit
	}
	return c.Limit
}

type captureWriter struct {
	c *BodyCapture
	w io.Writer
}

// Write passes p through to the real sink, retaining up to the capture
// limit.  Capture never fails the write.
func (t *captureWriter) Write(p []byte) (int, error) {
	if room := t.c.limit() - t.c.buf.Len(); room > 0 {
		if len(p) > room {
			t.c.buf.Write(p[:room])
			t.c.truncated = true
		} else {
			t.c.buf.Write(p)
		}
	} else if len(p) > 0 {
		t.c.truncated = true
	}
	return t.w.Write(p)
}
