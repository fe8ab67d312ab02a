package fetch

import (
	"context"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspector(t *testing.T) {
	i := &Inspector{}

	tr := &ClientTransport{
		Doer:       MockDoer(200, New().Body([]byte("pong"))),
		Middleware: []Middleware{i.MiddlewareFunc},
	}

	resp, err := tr.Dispatch(context.Background(), Post("http://a.io").Param("q", "hello world"))
	require.NoError(t, err)

	require.NotNil(t, i.Request)
	require.NotNil(t, i.Response)
	assert.Equal(t, "q=hello+world", i.RequestBody.String())
	assert.Equal(t, "pong", i.ResponseBody.String())

	// the captured bodies are copies: the response body is still readable
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	i.Clear()
	assert.Nil(t, i.Request)
	assert.Nil(t, i.Response)
	assert.Nil(t, i.RequestBody)
	assert.Nil(t, i.ResponseBody)
}

func TestInspector_NoBodies(t *testing.T) {
	i := &Inspector{}

	tr := &ClientTransport{
		Doer:       MockDoer(204, New()),
		Middleware: []Middleware{i.MiddlewareFunc},
	}

	resp, err := tr.Dispatch(context.Background(), Get("http://a.io"))
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, i.Request)
	assert.Nil(t, i.RequestBody)
	assert.Equal(t, 204, i.Response.StatusCode)
}
