package fetch

import "github.com/ansel1/merry"

// Sentinel errors returned by this package.  All errors are created with
// the merry package, so they carry stacktraces, and can be classified
// with merry.Is():
//
//     _, err := r.CompleteURL()
//     if merry.Is(err, fetch.ErrNoURL) { ... }
//
// nolint:gochecknoglobals
var (
	// ErrInvalidArgument is returned when a required argument to one of
	// Request's transformation methods is missing or empty.  The error is
	// recorded on the returned Request, and surfaces from Err() and from
	// any of the dispatch-time methods.
	ErrInvalidArgument = merry.New("invalid argument")

	// ErrNoURL is returned when a request is resolved or dispatched
	// before a URL has been set.
	ErrNoURL = merry.New("no URL set")

	// ErrEncoding is returned when a parameter set cannot be rendered in
	// the requested representation, e.g. query-encoding a set which
	// contains a binary attachment.
	ErrEncoding = merry.New("encoding error")

	// ErrTransport wraps I/O failures surfaced while dispatching a
	// request or consuming a body stream.
	ErrTransport = merry.New("transport error")
)
