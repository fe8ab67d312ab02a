// Package clientserver is a utility for writing HTTP tests.
//
// A ClientServer embeds an httptest.Server and carries a base
// fetch.Request preconfigured to talk to the server.
package clientserver

import (
	"net/http"
	"net/http/httptest"

	"github.com/ThalesGroup/fetch"
)

// New creates a new ClientServer.
func New(s *httptest.Server) *ClientServer {
	if s == nil {
		s = httptest.NewServer(nil)
	}
	t := &ClientServer{
		Server: s,
	}
	t.Transport = &fetch.ClientTransport{
		Doer:       s.Client(),
		Middleware: []fetch.Middleware{t.captureClientReqResp},
	}

	// insert ourselves in the handler chain before the real handler.
	t.Handler = s.Config.Handler
	s.Config.Handler = t

	return t
}

// A ClientServer is an http server and a preconfigured client.  Requests
// started with Request() are bound to the embedded server, so a test can
// compose a descriptor, fetch it, and inspect both sides of the
// exchange.
//
// Should be closed at the end of the test.
type ClientServer struct {
	*httptest.Server

	// Transport executes requests against the embedded server.
	Transport *fetch.ClientTransport

	Handler http.Handler

	// These attributes are populated automatically during each
	// request.  Use Clear() to clear them between tests.

	// The last request handled by the server.
	LastSrvReq *http.Request

	// The last request sent by the client.
	LastClientReq *http.Request

	// The last response received by the client.
	LastClientResp *http.Response
}

// Request returns a base fetch.Request bound to the server's URL and
// the capturing transport.
func (t *ClientServer) Request() fetch.Request {
	return fetch.URL(t.URL).Via(t.Transport)
}

// Close shuts down the embedded HTTP server.
func (t *ClientServer) Close() {
	t.Server.Close()
}

// Clear clears the attributes captured by the last request.
func (t *ClientServer) Clear() {
	t.LastClientReq = nil
	t.LastClientResp = nil
	t.LastSrvReq = nil
}

// ServeHTTP implements http.Handler.  ClientServer installs itself as the
// server's Handler so it can capture the request.  It then delegates to
// the Handler attribute.
func (t *ClientServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	t.LastSrvReq = req
	if t.Handler != nil {
		t.Handler.ServeHTTP(w, req)
	}
}

func (t *ClientServer) captureClientReqResp(next fetch.Doer) fetch.Doer {
	return fetch.DoerFunc(func(req *http.Request) (*http.Response, error) {
		t.LastClientReq = req
		resp, err := next.Do(req)
		t.LastClientResp = resp
		return resp, err
	})
}

// Mux returns a ServeMux.  If the current Handler is a ServeMux, that
// is returned.  Otherwise, a new ServeMux is created and installed as
// the handler.
func (t *ClientServer) Mux() *http.ServeMux {
	if m, ok := t.Handler.(*http.ServeMux); ok {
		return m
	}
	m := http.NewServeMux()
	t.Handler = m
	return m
}

// HandlerFunc is a convenience method for installing a HandlerFunc as the
// handler.
func (t *ClientServer) HandlerFunc(hf http.HandlerFunc) {
	t.Handler = hf
}
