package fetch

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_HTTPRequest(t *testing.T) {
	t.Run("query params on url", func(t *testing.T) {
		req, err := Get("http://a.io").Param("color", "red").HTTPRequest(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "GET", req.Method)
		assert.Equal(t, "http://a.io?color=red", req.URL.String())
		assert.Empty(t, req.Header.Get("Content-Type"))
		assert.Nil(t, req.Body)
	})

	t.Run("form body", func(t *testing.T) {
		req, err := Post("http://a.io").Param("q", "hello world").HTTPRequest(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "http://a.io", req.URL.String())
		assert.Equal(t, ContentTypeForm, req.Header.Get("Content-Type"))

		body, err := ioutil.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, "q=hello+world", string(body))

		// the body is buffered, so the request is rewindable
		require.NotNil(t, req.GetBody)
		rewound, err := req.GetBody()
		require.NoError(t, err)
		body, err = ioutil.ReadAll(rewound)
		require.NoError(t, err)
		assert.Equal(t, "q=hello+world", string(body))
	})

	t.Run("json body", func(t *testing.T) {
		req, err := Put("http://a.io").Body(map[string]int{"a": 1}).HTTPRequest(context.Background())
		require.NoError(t, err)

		assert.Equal(t, ContentTypeJSON, req.Header.Get("Content-Type"))
		body, err := ioutil.ReadAll(req.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(body))
	})

	t.Run("headers in order", func(t *testing.T) {
		req, err := Get("http://a.io").
			Header("X-A", "1").
			Header("Content-Type", "text/csv").
			HTTPRequest(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "1", req.Header.Get("X-A"))
		// explicitly set headers beat the resolved content type
		assert.Equal(t, "text/csv", req.Header.Get("Content-Type"))
	})

	t.Run("no url", func(t *testing.T) {
		_, err := New().HTTPRequest(context.Background())
		assert.True(t, merry.Is(err, ErrNoURL))
	})
}

func TestClientTransport_Dispatch(t *testing.T) {
	doer := MockDoer(201, New().Header("X-Server", "mock").Body([]byte("pong")))
	tr := &ClientTransport{Doer: doer}

	resp, err := tr.Dispatch(context.Background(), Get("http://a.io").Param("a", "1"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "mock", resp.Header.Get("X-Server"))
	assert.Equal(t, "http://a.io?a=1", resp.Request.URL.String())
}

func TestClientTransport_DispatchError(t *testing.T) {
	tr := &ClientTransport{Doer: DoerFunc(func(req *http.Request) (*http.Response, error) {
		return nil, merry.New("boom")
	})}

	_, err := tr.Dispatch(context.Background(), Get("http://a.io"))
	require.Error(t, err)
	assert.True(t, merry.Is(err, ErrTransport))
}

func TestClientTransport_Middleware(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Doer) Doer {
			return DoerFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(req)
			})
		}
	}

	tr := &ClientTransport{
		Doer:       MockDoer(200, New()),
		Middleware: []Middleware{mw("outer"), mw("inner")},
	}

	resp, err := tr.Dispatch(context.Background(), Get("http://a.io"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestClientTransport_Retries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(500)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	tr := &ClientTransport{
		Doer:  ts.Client(),
		Retry: &RetryConfig{Backoff: BackofferFunc(func(int) time.Duration { return 0 })},
	}

	resp, err := URL(ts.URL).Via(tr).Retries(2).FetchContext(context.Background())
	require.NoError(t, err)

	body, err := resp.ReadBody()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClientTransport_NoRetriesByDefault(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(500)
	}))
	defer ts.Close()

	tr := &ClientTransport{Doer: ts.Client()}

	resp, err := URL(ts.URL).Via(tr).Fetch()
	require.NoError(t, err)
	resp.Response.Body.Close()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClientTransport_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer ts.Close()

	tr := &ClientTransport{Doer: ts.Client()}

	start := time.Now()
	_, err := URL(ts.URL).Via(tr).Timeout(50 * time.Millisecond).Fetch()
	require.Error(t, err)
	assert.True(t, merry.Is(err, ErrTransport))
	assert.Less(t, int64(time.Since(start)), int64(3*time.Second))
}

func TestRequest_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"color":"red","count":30}`))
	}))
	defer ts.Close()

	resp, err := URL(ts.URL).Via(&ClientTransport{Doer: ts.Client()}).Fetch()
	require.NoError(t, err)

	var m testModel
	require.NoError(t, resp.Into(&m))
	assert.Equal(t, testModel{"red", 30}, m)

	// body is cached after the first read
	body, err := resp.ReadBody()
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"red","count":30}`, string(body))
}

func TestRequest_FetchSendsBody(t *testing.T) {
	var received []byte
	var contentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = ioutil.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
	}))
	defer ts.Close()

	resp, err := URL(ts.URL).POST().
		Param("q", "hello world").
		Via(&ClientTransport{Doer: ts.Client()}).
		Fetch()
	require.NoError(t, err)
	resp.Response.Body.Close()

	assert.Equal(t, "q=hello+world", string(received))
	assert.Equal(t, ContentTypeForm, contentType)
}

func TestTransportFunc(t *testing.T) {
	var dispatched Request
	tf := TransportFunc(func(ctx context.Context, r Request) (*http.Response, error) {
		dispatched = r
		return MockResponse(204, New()), nil
	})

	resp, err := Get("http://a.io").Via(tf).Fetch()
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, "http://a.io", dispatched.url)
}
