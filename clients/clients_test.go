package clients

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	require.NotNil(t, c)

	// options are applied in order
	c, err = New(Timeout(time.Second), SkipVerify(true))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.Timeout)

	transport, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}

func TestApply_Error(t *testing.T) {
	c := &http.Client{Transport: http.NewFileTransport(http.Dir("."))}

	// transport options require an *http.Transport
	err := Apply(c, SkipVerify(true))
	require.Error(t, err)
}

func TestNoRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect" {
			http.Redirect(w, r, "/elsewhere", http.StatusFound)
			return
		}
		w.Write([]byte("landed"))
	}))
	defer ts.Close()

	c, err := New(NoRedirects())
	require.NoError(t, err)

	resp, err := c.Get(ts.URL + "/redirect")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestMaxRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer ts.Close()

	c, err := New(MaxRedirects(2))
	require.NoError(t, err)

	resp, err := c.Get(ts.URL)
	require.Error(t, err)
	if resp != nil {
		resp.Body.Close()
	}
}

func TestCookieJar(t *testing.T) {
	c, err := New(CookieJar(&cookiejar.Options{}))
	require.NoError(t, err)
	assert.NotNil(t, c.Jar)
}

func TestProxyURL(t *testing.T) {
	c, err := New(ProxyURL("http://proxy.example.com:8080"))
	require.NoError(t, err)

	transport := c.Transport.(*http.Transport)
	u, err := transport.Proxy(&http.Request{})
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.example.com:8080", u.String())

	t.Run("invalid url", func(t *testing.T) {
		_, err := New(ProxyURL("://missing.scheme"))
		require.Error(t, err)
	})
}

func TestProxyFunc(t *testing.T) {
	expected := &url.URL{Host: "proxy"}
	c, err := New(ProxyFunc(func(*http.Request) (*url.URL, error) {
		return expected, nil
	}))
	require.NoError(t, err)

	transport := c.Transport.(*http.Transport)
	u, err := transport.Proxy(&http.Request{})
	require.NoError(t, err)
	assert.Equal(t, expected, u)
}
