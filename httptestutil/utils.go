// Package httptestutil contains utilities for use in HTTP tests, particularly when using
// httptest.Server.
//
// Inspect() can be used to intercept and inspect the traffic to and from an httptest.Server.
package httptestutil

import (
	"net/http/httptest"

	"github.com/ThalesGroup/fetch"
)

// Request creates a fetch.Request which is pre-configured to send requests to
// the test server.  The Request is configured with the server's base URL, and
// dispatches with the server's client (which trusts the server's TLS certs,
// if using a TLS server).
func Request(ts *httptest.Server) fetch.Request {
	return fetch.URL(ts.URL).Via(&fetch.ClientTransport{Doer: ts.Client()})
}

// Inspect installs and returns an Inspector.  The Inspector captures exchanges with the
// test server.  It's useful in tests to inspect the incoming requests and request bodies
// and the outgoing responses and response bodies.
//
// Inspect wraps and replaces the server's Handler.  It should be called after the real
// Handler has been installed.
func Inspect(ts *httptest.Server) *Inspector {

	i := NewInspector(0)
	ts.Config.Handler = i.MiddlewareFunc(ts.Config.Handler)

	return i
}
