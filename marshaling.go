package fetch

import (
	"encoding/json"
	"encoding/xml"
	"strings"

	"github.com/ansel1/merry"
)

// Structured request bodies are rendered by a Serializer, and response
// bodies are decoded by a Deserializer.  Both are pluggable per request,
// with Request.Marshaler() and Request.Unmarshaler().
//
// If not set, requests fall back on the DefaultSerializer and
// DefaultDeserializer.  The DefaultSerializer renders JSON, and the
// DefaultDeserializer picks a decoder based on the response's
// Content-Type header.  It supports JSON and XML.

// DefaultSerializer is used when no Serializer is set on a Request.
// nolint:gochecknoglobals
var DefaultSerializer Serializer = &JSONSerializer{}

// DefaultDeserializer is used when no Deserializer is set on a Request.
// nolint:gochecknoglobals
var DefaultDeserializer Deserializer = &MultiDeserializer{}

// Serializer renders a structured value into body bytes.
//
// If the content type returned is not empty, it is the natural media
// type of the rendering, e.g. "application/json".
type Serializer interface {
	Marshal(v interface{}) (data []byte, contentType string, err error)
}

// Deserializer decodes a response body into a value.  It is given the
// value of the response's Content-Type header.
type Deserializer interface {
	Unmarshal(data []byte, contentType string, v interface{}) error
}

// SerializerFunc adapts a function to the Serializer interface.
type SerializerFunc func(v interface{}) ([]byte, string, error)

// Marshal implements Serializer.
func (f SerializerFunc) Marshal(v interface{}) ([]byte, string, error) {
	return f(v)
}

// DeserializerFunc adapts a function to the Deserializer interface.
type DeserializerFunc func(data []byte, contentType string, v interface{}) error

// Unmarshal implements Deserializer.
func (f DeserializerFunc) Unmarshal(data []byte, contentType string, v interface{}) error {
	return f(data, contentType, v)
}

// JSONSerializer implements Serializer and Deserializer.  It renders
// values to and from JSON.  If Indent is true, rendered JSON is
// indented.
type JSONSerializer struct {
	Indent bool
}

// Unmarshal implements Deserializer.
func (m *JSONSerializer) Unmarshal(data []byte, contentType string, v interface{}) error {
	return merry.Wrap(json.Unmarshal(data, v))
}

// Marshal implements Serializer.
func (m *JSONSerializer) Marshal(v interface{}) (data []byte, contentType string, err error) {
	if m.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	return data, ContentTypeJSON, merry.Wrap(err)
}

// XMLSerializer implements Serializer and Deserializer.  It renders
// values to and from XML.  If Indent is true, rendered XML is indented.
type XMLSerializer struct {
	Indent bool
}

// Unmarshal implements Deserializer.
func (*XMLSerializer) Unmarshal(data []byte, contentType string, v interface{}) error {
	return merry.Wrap(xml.Unmarshal(data, v))
}

// Marshal implements Serializer.
func (m *XMLSerializer) Marshal(v interface{}) (data []byte, contentType string, err error) {
	if m.Indent {
		data, err = xml.MarshalIndent(v, "", "  ")
	} else {
		data, err = xml.Marshal(v)
	}
	return data, "application/xml", merry.Wrap(err)
}

// MultiDeserializer implements Deserializer.  It uses the value of the
// Content-Type header in the response to choose between the JSON and
// XML decoders.  If Content-Type is something else, an error is
// returned.
//
// MultiDeserializer is the default Deserializer.
type MultiDeserializer struct {
	jsonMar JSONSerializer
	xmlMar  XMLSerializer
}

// Unmarshal implements Deserializer.
func (m *MultiDeserializer) Unmarshal(data []byte, contentType string, v interface{}) error {
	switch {
	case strings.Contains(contentType, ContentTypeJSON):
		return m.jsonMar.Unmarshal(data, contentType, v)
	case strings.Contains(contentType, "application/xml"), strings.Contains(contentType, "text/xml"):
		return m.xmlMar.Unmarshal(data, contentType, v)
	}
	return merry.Errorf("unsupported content type: %s", contentType)
}
