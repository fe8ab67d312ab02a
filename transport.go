package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ansel1/merry"
)

// Transport dispatches a Request and returns the raw response.  The
// descriptor exposes CompleteURL(), EffectiveContentType(), and
// WriteBody() for transports to use; the default implementation bridges
// them onto net/http.
//
// Transports own all blocking behavior: the descriptor's timeout and
// retries values are forwarded here as opaque configuration.
type Transport interface {
	Dispatch(ctx context.Context, r Request) (*http.Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, r Request) (*http.Response, error)

// Dispatch implements Transport.
func (f TransportFunc) Dispatch(ctx context.Context, r Request) (*http.Response, error) {
	return f(ctx, r)
}

// DefaultTransport is used by Request.Fetch when no transport has been
// set with Via().
// nolint:gochecknoglobals
var DefaultTransport Transport = &ClientTransport{}

// HTTPRequest resolves the descriptor into a *http.Request: the
// complete URL, the effective Content-Type header, the serialized body,
// and the accumulated headers, in insertion order.
//
// The body is buffered, so the constructed request is rewindable
// (req.GetBody is set), which the Retry middleware relies on.
func (r Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	if r.err != nil {
		return nil, r.err
	}

	completeURL, err := r.CompleteURL()
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.hasBodyContent() {
		buf := &bytes.Buffer{}
		if err := r.WriteBody(buf); err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf.Bytes())
	}

	req, err := http.NewRequest(r.methodOrDefault(), completeURL, body)
	if err != nil {
		return nil, merry.Prepend(err, "constructing request")
	}

	if ct := r.EffectiveContentType(); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	for _, h := range r.headers {
		req.Header.Set(h.Name, h.Value)
	}

	return req.WithContext(ctx), nil
}

// ClientTransport is the default Transport.  It executes requests with
// a Doer (http.DefaultClient unless replaced), wrapped in the
// configured Middleware.
//
// A descriptor's retries value is honored by appending Retry
// middleware, and its timeout by bounding the request context.  The
// zero value is ready to use.
type ClientTransport struct {
	// Doer executes the constructed requests.  Defaults to
	// http.DefaultClient.  See the clients package for building
	// customized clients.
	Doer Doer

	// Middleware wraps the Doer, invoked in slice order.
	Middleware []Middleware

	// Retry templates the retry policy applied when a request asks for
	// retries.  MaxAttempts is overridden per request.  Defaults to
	// DefaultRetryConfig.
	Retry *RetryConfig
}

// Dispatch implements Transport.
func (t *ClientTransport) Dispatch(ctx context.Context, r Request) (*http.Response, error) {
	req, err := r.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	doer := t.Doer
	if doer == nil {
		doer = http.DefaultClient
	}

	mw := make([]Middleware, len(t.Middleware), len(t.Middleware)+2)
	copy(mw, t.Middleware)

	if r.retries > 0 {
		cfg := DefaultRetryConfig
		if t.Retry != nil {
			cfg = *t.Retry
		}
		cfg.MaxAttempts = r.retries + 1
		mw = append(mw, Retry(&cfg))
	}
	if r.timeout > 0 {
		mw = append(mw, withDeadline(r.timeout))
	}

	resp, err := Wrap(doer, mw...).Do(req)
	if err != nil {
		return resp, merry.Prepend(merry.WithCause(ErrTransport, err), "dispatching "+r.methodOrDefault())
	}
	return resp, nil
}

// withDeadline bounds the request context.  The deadline must outlive
// Do(), since the body is streamed after Do() returns, so cancellation
// is tied to the response body's Close.
func withDeadline(d time.Duration) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			ctx, cancel := context.WithTimeout(req.Context(), d)
			resp, err := next.Do(req.WithContext(ctx))
			if err != nil || resp == nil {
				cancel()
				return resp, err
			}
			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// Fetch dispatches the request via its transport (DefaultTransport if
// none was set) and wraps the raw response.  Closing the response, or
// reading it with ReadBody/Into, is the caller's responsibility.
func (r Request) Fetch() (*Response, error) {
	return r.FetchContext(context.Background())
}

// FetchContext does the same as Fetch, but requires a context.
func (r Request) FetchContext(ctx context.Context) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}

	transport := r.transport
	if transport == nil {
		transport = DefaultTransport
	}

	resp, err := transport.Dispatch(ctx, r)
	if err != nil {
		return nil, err
	}

	deserializer := r.deserializer
	if deserializer == nil {
		deserializer = DefaultDeserializer
	}
	return &Response{Response: resp, deserializer: deserializer}, nil
}
