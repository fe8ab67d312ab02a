package httptestutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(201)
		w.Write([]byte("pong"))
	}))
}

func TestRequest(t *testing.T) {
	ts := echoServer()
	defer ts.Close()

	resp, err := Request(ts).Path("ping").Fetch()
	require.NoError(t, err)

	assert.Equal(t, 201, resp.StatusCode)
	body, err := resp.ReadBody()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestInspect(t *testing.T) {
	ts := echoServer()
	defer ts.Close()

	i := Inspect(ts)

	resp, err := Request(ts).POST().Param("q", "hello world").Fetch()
	require.NoError(t, err)
	resp.Body.Close()

	ex := i.LastExchange()
	require.NotNil(t, ex)

	assert.Equal(t, "POST", ex.Request.Method)
	assert.Equal(t, "q=hello+world", ex.RequestBody.String())
	assert.Equal(t, 201, ex.StatusCode)
	assert.Equal(t, "pong", ex.ResponseBody.String())
}

func TestInspector_NextExchange(t *testing.T) {
	ts := echoServer()
	defer ts.Close()

	i := Inspect(ts)

	for _, p := range []string{"a", "b"} {
		resp, err := Request(ts).Path(p).Fetch()
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, "/a", i.NextExchange().Request.URL.Path)
	assert.Equal(t, "/b", i.NextExchange().Request.URL.Path)
	assert.Nil(t, i.NextExchange())
}

func TestInspector_LastExchangeDrains(t *testing.T) {
	ts := echoServer()
	defer ts.Close()

	i := Inspect(ts)

	for _, p := range []string{"a", "b", "c"} {
		resp, err := Request(ts).Path(p).Fetch()
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, "/c", i.LastExchange().Request.URL.Path)
	assert.Nil(t, i.NextExchange())

	i.Clear()
	assert.Nil(t, i.LastExchange())
}

func TestDumpTo(t *testing.T) {
	buf := &bytes.Buffer{}

	ts := httptest.NewServer(DumpTo(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	}), buf))
	defer ts.Close()

	resp, err := Request(ts).POST().Param("q", "v").Fetch()
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, buf.String(), "q=v")
	assert.Contains(t, buf.String(), "pong")
	assert.Contains(t, buf.String(), "200")
}
