package fetch

import (
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/ansel1/merry"
	goquery "github.com/google/go-querystring/query"
)

// ParamValue is the value of a request parameter.  It is a closed union:
// the only implementations are the scalar, list, and attachment values
// produced by String(), List(), and File().  Closing the union keeps the
// encoders' dispatch exhaustive.
type ParamValue interface {
	// queryForm renders the value for use in a query string or an
	// urlencoded body.  Values with no textual representation return
	// ErrEncoding.
	queryForm() ([]string, error)
}

// Param is a single named parameter.  Parameter order is significant:
// it is preserved in query strings and in multipart bodies.
type Param struct {
	Name  string
	Value ParamValue
}

type stringValue string

// String wraps a scalar string as a ParamValue.
func String(s string) ParamValue {
	return stringValue(s)
}

func (v stringValue) queryForm() ([]string, error) {
	return []string{string(v)}, nil
}

type listValue []string

// List wraps an ordered list of strings as a ParamValue.  The arguments
// are copied, so the caller's slice can be reused.
func List(values ...string) ParamValue {
	l := make(listValue, len(values))
	copy(l, values)
	return l
}

// Each element becomes its own key=value pair, the same way
// url.Values.Encode() renders multi-valued keys.
func (v listValue) queryForm() ([]string, error) {
	return v, nil
}

// Attachment is a binary parameter value: a byte stream plus a declared
// content type and filename.  Attachments can only be rendered as
// multipart form parts.  The stream is single-use: it is consumed and,
// if it implements io.Closer, closed by the first WriteBody call.
type Attachment struct {
	Reader      io.Reader
	ContentType string
	Filename    string
}

// File wraps a byte stream as an attachment ParamValue.
func File(r io.Reader, contentType, filename string) ParamValue {
	return &Attachment{Reader: r, ContentType: contentType, Filename: filename}
}

func (v *Attachment) queryForm() ([]string, error) {
	return nil, merry.WithMessagef(ErrEncoding, "attachment %q has no query string form", v.Filename)
}

// setParam returns a copy of params with name set to value.  If the name
// is already present, its value is replaced in place, preserving the
// original position.  Otherwise the parameter is appended.
func setParam(params []Param, name string, value ParamValue) []Param {
	out := make([]Param, len(params), len(params)+1)
	copy(out, params)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Param{Name: name, Value: value})
}

func hasAttachments(params []Param) bool {
	for _, p := range params {
		if _, ok := p.Value.(*Attachment); ok {
			return true
		}
	}
	return false
}

// encodeQuery renders params as a percent-encoded query string, in
// insertion order.  Returns "" for an empty set.  Returns ErrEncoding if
// any value has no query form (i.e. attachments).
func encodeQuery(params []Param) (string, error) {
	if len(params) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, p := range params {
		values, err := p.Value.queryForm()
		if err != nil {
			return "", err
		}
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(p.Name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String(), nil
}

// expandParams converts a value into an ordered parameter list.  The
// argument may be a map[string]string, map[string][]string, url.Values,
// or a struct tagged with `url` tags, which is marshaled using the
// github.com/google/go-querystring/query package.  Map and struct keys
// are sorted, since their source ordering is not meaningful.
func expandParams(v interface{}) ([]Param, error) {
	var values url.Values

	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		values = url.Values{}
		for key, value := range t {
			values.Set(key, value)
		}
	case map[string][]string:
		values = url.Values(t)
	case url.Values:
		values = t
	default:
		var err error
		values, err = goquery.Values(v)
		if err != nil {
			return nil, merry.WithMessage(ErrInvalidArgument, "invalid params struct: "+err.Error())
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]Param, 0, len(names))
	for _, name := range names {
		switch vs := values[name]; len(vs) {
		case 0:
		case 1:
			params = append(params, Param{Name: name, Value: String(vs[0])})
		default:
			params = append(params, Param{Name: name, Value: List(vs...)})
		}
	}
	return params, nil
}
