package fetch

import (
	"context"
	"io"
	"net/http"
)

// These are tools for writing tests.

// MockDoer creates a Doer which returns a mocked response, for writing
// tests.  The mocked response is built from the template Request: its
// headers and serialized body are copied into the response.
func MockDoer(statusCode int, template Request) DoerFunc {
	return func(req *http.Request) (*http.Response, error) {
		resp := MockResponse(statusCode, template)
		resp.Request = req
		return resp, nil
	}
}

// ChannelDoer returns a DoerFunc and a channel.  The DoerFunc will return the responses
// send on the channel.
func ChannelDoer() (chan<- *http.Response, DoerFunc) {
	input := make(chan *http.Response, 1)

	return input, func(req *http.Request) (*http.Response, error) {
		resp := <-input
		resp.Request = req
		return resp, nil
	}
}

// MockResponse creates an *http.Response from a template Request.
// Requests and Responses share most of the same fields, so the template
// descriptor's URL defaults to a placeholder, and its resolved headers
// and body are copied into the response.  Useful for creating mocked
// responses for tests.
func MockResponse(statusCode int, template Request) *http.Response {
	if template.url == "" {
		template = template.URL("http://mock")
	}

	req, err := template.HTTPRequest(context.Background())
	if err != nil {
		panic(err)
	}

	if req.Body == nil {
		req.Body = http.NoBody
	}

	return &http.Response{
		StatusCode:    statusCode,
		Proto:         req.Proto,
		ProtoMajor:    req.ProtoMajor,
		ProtoMinor:    req.ProtoMinor,
		Header:        req.Header,
		Body:          req.Body,
		ContentLength: req.ContentLength,
	}
}

// MockHandler returns an http.Handler which responds with the headers
// and body resolved from the template Request.
func MockHandler(statusCode int, template Request) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		resp := MockResponse(statusCode, template)

		h := writer.Header()
		for key, value := range resp.Header {
			h[key] = value
		}

		writer.WriteHeader(statusCode)

		if resp.Body != nil {
			_, _ = io.Copy(writer, resp.Body)
		}
	})
}

// ChannelHandler returns an http.Handler and an input channel.  The Handler returns the http.Responses sent to
// the channel.
func ChannelHandler() (chan<- *http.Response, http.Handler) {
	input := make(chan *http.Response, 1)

	return input, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		resp := <-input

		h := writer.Header()
		for key, value := range resp.Header {
			h[key] = value
		}

		writer.WriteHeader(resp.StatusCode)

		if resp.Body != nil {
			_, _ = io.Copy(writer, resp.Body)
		}
	})
}
