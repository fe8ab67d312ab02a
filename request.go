package fetch

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/ansel1/merry"
)

// Media types resolved by EffectiveContentType.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded; charset=utf-8"
)

// Just the media type, for prefix matching against charset variants.
var contentTypeFormBase = strings.SplitN(ContentTypeForm, ";", 2)[0]

// HeaderField is a single header name/value pair.  Like parameters,
// header order is preserved, and names are unique.
type HeaderField struct {
	Name  string
	Value string
}

// Request is an immutable description of an HTTP request.  The zero
// value is usable, and describes a GET with no URL.  Transformation
// methods return a new Request with one field changed; the receiver is
// never modified, so a shared base Request can be safely derived from
// by concurrent callers:
//
//     base := fetch.URL("http://api.com").Via(transport)
//
//     users := base.Path("users")
//     colors := base.Path("colors").Param("filter", "primary")
//
// How the accumulated parameters and body are serialized is not decided
// until dispatch: EffectiveContentType() resolves the governing content
// type from the method, any explicit override, the body, and the
// parameter values, and CompleteURL() and WriteBody() serialize
// accordingly.
//
// A transformation given a missing required argument records the error
// on the returned Request.  The first recorded error sticks, and is
// returned by Err() and by every dispatch-time method, so a chain of
// transformations only needs one error check, at the end.
type Request struct {
	// method defaults to "GET" when empty.
	method string

	// url so far; can be extended with Path().
	url string

	// ordered, unique by name
	params  []Param
	headers []HeaderField

	// contentType overrides the resolved content type when set.
	contentType string

	// body is nil, []byte, io.Reader, or a value for the marshaler.
	body interface{}

	// 0 means use the transport's defaults.
	timeout time.Duration
	retries int

	marshaler    Serializer
	deserializer Deserializer
	transport    Transport
	capture      *BodyCapture

	err error
}

// fail records err on a copy of r.  The first error wins.
func (r Request) fail(err error) Request {
	if r.err == nil {
		r.err = err
	}
	return r
}

func (r Request) invalid(msg string) Request {
	return r.fail(merry.WithMessage(ErrInvalidArgument, msg))
}

// Err returns the first error recorded by a transformation, or nil.
func (r Request) Err() error {
	return r.err
}

// Method sets the HTTP method (e.g. "GET", "DELETE").
func (r Request) Method(method string) Request {
	if method == "" {
		return r.invalid("method is required")
	}
	r.method = method
	return r
}

// GET is shorthand for Method("GET").
func (r Request) GET() Request { return r.Method(http.MethodGet) }

// POST is shorthand for Method("POST").
func (r Request) POST() Request { return r.Method(http.MethodPost) }

// PUT is shorthand for Method("PUT").
func (r Request) PUT() Request { return r.Method(http.MethodPut) }

// PATCH is shorthand for Method("PATCH").
func (r Request) PATCH() Request { return r.Method(http.MethodPatch) }

// DELETE is shorthand for Method("DELETE").
func (r Request) DELETE() Request { return r.Method(http.MethodDelete) }

// HEAD is shorthand for Method("HEAD").
func (r Request) HEAD() Request { return r.Method(http.MethodHead) }

// URL replaces the existing URL wholesale.
func (r Request) URL(url string) Request {
	if url == "" {
		return r.invalid("url is required")
	}
	r.url = url
	return r
}

// Path appends a path segment to the existing URL, adding or removing a
// '/' so there is exactly one at the join.  If no URL is set yet, the
// segment becomes the URL.
func (r Request) Path(segment string) Request {
	if segment == "" {
		return r.invalid("path segment is required")
	}
	if r.url == "" {
		r.url = segment
		return r
	}
	r.url = joinPath(r.url, segment)
	return r
}

func joinPath(url, segment string) string {
	switch {
	case strings.HasSuffix(url, "/") && strings.HasPrefix(segment, "/"):
		return url + segment[1:]
	case strings.HasSuffix(url, "/") || strings.HasPrefix(segment, "/"):
		return url + segment
	default:
		return url + "/" + segment
	}
}

// Param sets a parameter to a scalar value, replacing any existing value
// for the name.  A replaced parameter keeps its original position.
func (r Request) Param(name, value string) Request {
	return r.setParam(name, String(value))
}

// ParamList sets a parameter to an ordered list of values.
func (r Request) ParamList(name string, values ...string) Request {
	return r.setParam(name, List(values...))
}

// Params merges a set of parameters into the request.  The argument may
// be a map[string]string, map[string][]string, url.Values, or a struct
// with `url` tags (marshaled with github.com/google/go-querystring).
// Map and struct keys are merged in sorted order.
func (r Request) Params(v interface{}) Request {
	params, err := expandParams(v)
	if err != nil {
		return r.fail(err)
	}
	for _, p := range params {
		r = r.setParam(p.Name, p.Value)
	}
	return r
}

// BinaryParam sets a parameter to a binary attachment, and forces the
// method to POST.  Attachments can only be carried by a multipart body,
// and multipart bodies are only resolved for POSTs, so both changes
// happen in the one returned Request.
//
// The stream is single-use.  It is consumed by the first WriteBody call,
// which closes it if it implements io.Closer.
func (r Request) BinaryParam(name string, stream io.Reader, contentType, filename string) Request {
	if stream == nil {
		return r.invalid("attachment stream is required")
	}
	return r.POST().setParam(name, File(stream, contentType, filename))
}

func (r Request) setParam(name string, value ParamValue) Request {
	if name == "" {
		return r.invalid("param name is required")
	}
	r.params = setParam(r.params, name, value)
	return r
}

// Header sets a header, replacing any existing value for the name.
// Names are canonicalized as in net/http.  Header order is preserved,
// and a replaced header keeps its original position.
func (r Request) Header(name, value string) Request {
	if name == "" {
		return r.invalid("header name is required")
	}
	name = textproto.CanonicalMIMEHeaderKey(name)

	headers := make([]HeaderField, len(r.headers), len(r.headers)+1)
	copy(headers, r.headers)
	for i := range headers {
		if headers[i].Name == name {
			headers[i].Value = value
			r.headers = headers
			return r
		}
	}
	r.headers = append(headers, HeaderField{Name: name, Value: value})
	return r
}

// DeleteHeader removes a header.
func (r Request) DeleteHeader(name string) Request {
	name = textproto.CanonicalMIMEHeaderKey(name)
	headers := make([]HeaderField, 0, len(r.headers))
	for _, h := range r.headers {
		if h.Name != name {
			headers = append(headers, h)
		}
	}
	r.headers = headers
	return r
}

// ContentType explicitly sets the content type, overriding the type
// EffectiveContentType would otherwise resolve.
func (r Request) ContentType(contentType string) Request {
	if contentType == "" {
		return r.invalid("content type is required")
	}
	r.contentType = contentType
	return r
}

// BasicAuth sets the Authorization header to
// "Basic <base64(username:password)>".  The credentials are encoded as
// UTF-8; there is no standard charset for basic auth, so UTF-8 is as
// good a choice as any.  If both arguments are empty, the Authorization
// header is removed instead.
func (r Request) BasicAuth(username, password string) Request {
	if username == "" && password == "" {
		return r.DeleteHeader("Authorization")
	}
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return r.Header("Authorization", "Basic "+auth)
}

// BearerAuth sets the Authorization header to "Bearer <token>".  If the
// token is empty, the Authorization header is removed instead.
func (r Request) BearerAuth(token string) Request {
	if token == "" {
		return r.DeleteHeader("Authorization")
	}
	return r.Header("Authorization", "Bearer "+token)
}

// Body sets the request body.  []byte and io.Reader values are written
// to the request verbatim.  Any other non-nil value is serialized by the
// request's Serializer (JSON by default), and resolves the content type
// to "application/json" unless explicitly overridden.
func (r Request) Body(body interface{}) Request {
	r.body = body
	return r
}

// Timeout sets the request timeout, or 0 for the transport's default.
// The timeout is opaque to Request itself; enforcing it belongs to the
// Transport.
func (r Request) Timeout(d time.Duration) Request {
	if d < 0 {
		return r.invalid("timeout must be non-negative")
	}
	r.timeout = d
	return r
}

// Retries sets the retry count, or 0 for no retries.  Retry policy
// belongs to the Transport; encoding and argument errors are never
// retried.
func (r Request) Retries(n int) Request {
	if n < 0 {
		return r.invalid("retries must be non-negative")
	}
	r.retries = n
	return r
}

// Marshaler sets the Serializer used to render structured bodies.
func (r Request) Marshaler(m Serializer) Request {
	if m == nil {
		return r.invalid("marshaler is required")
	}
	r.marshaler = m
	return r
}

// Unmarshaler sets the Deserializer used by responses to this request.
func (r Request) Unmarshaler(d Deserializer) Request {
	if d == nil {
		return r.invalid("unmarshaler is required")
	}
	r.deserializer = d
	return r
}

// Via sets the Transport which will dispatch the request.
func (r Request) Via(t Transport) Request {
	if t == nil {
		return r.invalid("transport is required")
	}
	r.transport = t
	return r
}

// CaptureBody attaches a BodyCapture, which accumulates a bounded copy
// of whatever WriteBody writes, for diagnostics.
func (r Request) CaptureBody(c *BodyCapture) Request {
	if c == nil {
		return r.invalid("capture is required")
	}
	r.capture = c
	return r
}

// methodOrDefault returns the method, defaulting to GET.
func (r Request) methodOrDefault() string {
	if r.method == "" {
		return http.MethodGet
	}
	return r.method
}

func (r Request) isPOST() bool {
	return r.methodOrDefault() == http.MethodPost
}

// EffectiveContentType resolves the single content type which governs
// body serialization for the request's current state.  Resolution order:
// an explicit ContentType() override wins; then a non-nil body resolves
// to JSON; then a POST resolves to multipart if any parameter is an
// attachment, and urlencoded otherwise.  Anything else (e.g. a plain
// GET) carries no body, and resolves to "".
func (r Request) EffectiveContentType() string {
	switch {
	case r.contentType != "":
		return r.contentType
	case r.body != nil:
		return ContentTypeJSON
	case !r.isPOST():
		return ""
	case hasAttachments(r.params):
		return ContentTypeMultipart
	default:
		return ContentTypeForm
	}
}

// paramsInBody reports whether the parameters are serialized into the
// body rather than onto the URL.
func (r Request) paramsInBody() bool {
	return strings.HasPrefix(r.EffectiveContentType(), contentTypeFormBase) ||
		r.EffectiveContentType() == ContentTypeMultipart
}

// QueryString renders the parameters as a percent-encoded query string,
// in insertion order, or "" if there are none.  Parameter sets
// containing attachments have no query string form, and return
// ErrEncoding; route those to WriteBody instead.
func (r Request) QueryString() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return encodeQuery(r.params)
}

// CompleteURL returns the actual URL for the request.  When the
// effective content type puts the parameters in the body, the URL is
// returned unchanged; otherwise the query string is appended.  Returns
// ErrNoURL if no URL has been set.
func (r Request) CompleteURL() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.url == "" {
		return "", merry.Here(ErrNoURL)
	}
	if r.paramsInBody() {
		return r.url, nil
	}
	query, err := r.QueryString()
	if err != nil {
		return "", err
	}
	if query == "" {
		return r.url, nil
	}
	return r.url + "?" + query, nil
}
