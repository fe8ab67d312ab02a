package fetch

import (
	"io"
	"strings"

	"github.com/ansel1/merry"
)

// WriteBody serializes the request's body content into w, as governed
// by the effective content type:
//
//   - multipart: the parameters are framed as multipart/form-data
//   - urlencoded (matched on the media type, ignoring charset): the
//     query string is written as the body
//   - a []byte body is written verbatim
//   - an io.Reader body is copied until exhausted
//   - JSON with a structured body: the body is rendered by the
//     request's Serializer
//   - anything else writes nothing
//
// The byte-body checks sit above the JSON check because serialization
// only applies to structured (non-byte) values; the conditions cannot
// both hold for one request.
//
// Single-use streams (a reader body, attachment readers) are closed on
// every return path, whether or not this call consumed them.  WriteBody
// must therefore be called at most once per descriptor.
func (r Request) WriteBody(w io.Writer) error {
	defer r.closeStreams()

	if r.err != nil {
		return r.err
	}
	if r.capture != nil {
		w = r.capture.Sink(w)
	}

	contentType := r.EffectiveContentType()

	switch {
	case contentType == ContentTypeMultipart:
		return writeMultipart(w, r.params)

	case strings.HasPrefix(contentType, contentTypeFormBase):
		query, err := r.QueryString()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, query)
		return merry.Prepend(err, "writing form body")
	}

	switch body := r.body.(type) {
	case []byte:
		_, err := w.Write(body)
		return merry.Prepend(err, "writing body")

	case io.Reader:
		_, err := io.Copy(w, body)
		return wrapTransportErr(err, "copying body stream")
	}

	if r.body != nil && strings.HasPrefix(contentType, ContentTypeJSON) {
		marshaler := r.marshaler
		if marshaler == nil {
			marshaler = DefaultSerializer
		}
		data, _, err := marshaler.Marshal(r.body)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return merry.Prepend(err, "writing serialized body")
	}

	return nil
}

// hasBodyContent reports whether WriteBody would write anything.
func (r Request) hasBodyContent() bool {
	if r.body != nil {
		return true
	}
	ct := r.EffectiveContentType()
	if ct == ContentTypeMultipart {
		return true
	}
	return strings.HasPrefix(ct, contentTypeFormBase) && len(r.params) > 0
}

// closeStreams releases every single-use stream held by the request.
func (r Request) closeStreams() {
	if c, ok := r.body.(io.Closer); ok {
		_ = c.Close()
	}
	for _, p := range r.params {
		if a, ok := p.Value.(*Attachment); ok {
			if c, ok := a.Reader.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}
}

func wrapTransportErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	return merry.Prepend(merry.WithCause(ErrTransport, err), msg)
}
