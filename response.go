package fetch

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/ansel1/merry"
)

// Response wraps the raw response to a fetched Request, pairing it with
// the request's Deserializer so the body can be decoded based on the
// response's Content-Type header.
type Response struct {
	*http.Response

	deserializer Deserializer

	body     []byte
	bodyRead bool
}

// ReadBody reads the remainder of the response body and closes it.  The
// body is cached, so ReadBody can be called repeatedly.
func (r *Response) ReadBody() ([]byte, error) {
	if r.bodyRead {
		return r.body, nil
	}

	body, err := readBody(r.Response)
	if err != nil {
		return nil, err
	}

	r.body = body
	r.bodyRead = true
	return body, nil
}

// Into reads the body and decodes it into v, using the request's
// Deserializer.  By default the decoder is chosen by the response's
// Content-Type header.
func (r *Response) Into(v interface{}) error {
	body, err := r.ReadBody()
	if err != nil {
		return err
	}

	deserializer := r.deserializer
	if deserializer == nil {
		deserializer = DefaultDeserializer
	}
	return deserializer.Unmarshal(body, r.Header.Get("Content-Type"), v)
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}

	defer resp.Body.Close()

	// a content length hint lets us pre-size the buffer
	cls := resp.Header.Get("Content-Length")
	var cl int64

	if cls != "" {
		cl, _ = strconv.ParseInt(cls, 10, 0)
	}

	if cl == 0 {
		body, err := ioutil.ReadAll(resp.Body)
		return body, wrapTransportErr(err, "reading response body")
	}

	buf := bytes.Buffer{}
	buf.Grow(int(cl))
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, wrapTransportErr(merry.Wrap(err), "reading response body")
	}
	return buf.Bytes(), nil
}
