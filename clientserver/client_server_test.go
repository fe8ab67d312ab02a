package clientserver

import (
	"io/ioutil"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientServer(t *testing.T) {
	cs := New(nil)
	defer cs.Close()

	cs.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"color":"red"}`))
	})

	resp, err := cs.Request().Path("colors").Fetch()
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, resp.Into(&out))
	assert.Equal(t, map[string]string{"color": "red"}, out)

	// both sides of the exchange were captured
	require.NotNil(t, cs.LastSrvReq)
	assert.Equal(t, "/colors", cs.LastSrvReq.URL.Path)
	require.NotNil(t, cs.LastClientReq)
	require.NotNil(t, cs.LastClientResp)
	assert.Equal(t, 200, cs.LastClientResp.StatusCode)

	cs.Clear()
	assert.Nil(t, cs.LastSrvReq)
	assert.Nil(t, cs.LastClientReq)
	assert.Nil(t, cs.LastClientResp)
}

func TestClientServer_FormBody(t *testing.T) {
	cs := New(nil)
	defer cs.Close()

	var received string
	var contentType string
	cs.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		received = string(body)
		contentType = r.Header.Get("Content-Type")
	})

	resp, err := cs.Request().POST().Param("q", "hello world").Fetch()
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "q=hello+world", received)
	assert.Equal(t, "application/x-www-form-urlencoded; charset=utf-8", contentType)
}

func TestClientServer_Mux(t *testing.T) {
	cs := New(nil)
	defer cs.Close()

	cs.Mux().HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	// Mux returns the installed mux on subsequent calls
	assert.Equal(t, cs.Handler, cs.Mux())

	resp, err := cs.Request().Path("ping").Fetch()
	require.NoError(t, err)

	body, err := resp.ReadBody()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}
