/*
Package fetch builds immutable, composable descriptions of outbound HTTP
requests.

A fetch.Request is a value.  Every method which configures it returns a
new Request, leaving the receiver untouched, so requests compose like
this:

	base := fetch.URL("https://api.example.com").
		BearerAuth(token).
		Timeout(10 * time.Second)

	users := base.Path("users")
	bob := users.Path("bob")

	resp, err := bob.Fetch()

Because descriptors are immutable, a shared base can be derived from
concurrently with no coordination.

# Content resolution

Nothing is serialized until dispatch.  At that point the descriptor
resolves a single "effective" content type from its state, which decides
where parameters go and how the body is rendered:

  - An explicit ContentType() always wins.
  - A request with a Body() is JSON: the body is rendered by the
    request's Serializer.
  - A POST without a body form-encodes its parameters into the body.
  - A POST carrying a binary attachment (BinaryParam) becomes
    multipart/form-data, with text, list, and attachment parameters
    rendered as form parts in insertion order.
  - Anything else (e.g. a plain GET) has no body, and parameters are
    percent-encoded onto the URL.

Parameter order is preserved everywhere it is observable: in query
strings and in multipart part order.

Note that adding a BinaryParam switches the method to POST, since
attachments are only representable in a multipart body.

# Errors

Errors are created with github.com/ansel1/merry, and can be classified
against the package's sentinel errors with merry.Is:

	_, err := r.CompleteURL()
	if merry.Is(err, fetch.ErrNoURL) { ... }

A transformation passed a missing required argument records
ErrInvalidArgument on the returned Request.  The first error sticks and
surfaces from Err() and from every dispatch-time method, so a chain
needs only one check.

# Dispatch

Dispatching is delegated to a Transport.  The default ClientTransport
bridges the descriptor onto net/http: it consults CompleteURL(),
EffectiveContentType(), and WriteBody(), and executes the result with a
Doer (http.DefaultClient unless replaced), wrapped in Middleware.  The
descriptor's Timeout() and Retries() are opaque to the descriptor
itself; ClientTransport honors them with a context deadline and with
the Retry middleware.

The clients subpackage builds configured http.Clients to use as Doers.
The clientserver and httptestutil subpackages support tests.
*/
package fetch
