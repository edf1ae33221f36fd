package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"service-pipeline/client"
	"service-pipeline/middleware/authorization"
	"service-pipeline/service"
	"service-pipeline/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_GetAfterPost(t *testing.T) {
	svc := newKVStore().Service()
	ctx := context.Background()

	res, err := service.Oneshot(ctx, svc, httptest.NewRequest(http.MethodGet, "/foo", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, err = service.Oneshot(ctx, svc, httptest.NewRequest(http.MethodPost, "/foo", strings.NewReader("bar")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = service.Oneshot(ctx, svc, httptest.NewRequest(http.MethodGet, "/foo", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "bar", string(body))

	res, err = service.Oneshot(ctx, svc, httptest.NewRequest(http.MethodDelete, "/foo", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, "GET, POST, PUT", res.Header.Get("Allow"))
}

func TestKVStore_EndToEndWithClient(t *testing.T) {
	stack := service.NewBuilder[*http.Request, *http.Response]().
		Layer(authorization.BearerLayer("passwordlol")).
		Service(newKVStore().Service())
	srv := httptest.NewServer(service.Handler(stack, nil))
	defer srv.Close()

	ctx := context.Background()

	authed, err := client.New(
		authorization.AddBearerLayer("passwordlol").Layer(transport.NewHTTP(srv.Client())),
		client.WithBaseURL(srv.URL),
	)
	require.NoError(t, err)
	defer authed.Close()

	require.NoError(t, authed.Post(ctx, "foo", []byte("bar")))
	got, err := authed.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", string(got))

	anon, err := client.New(transport.NewHTTP(srv.Client()), client.WithBaseURL(srv.URL))
	require.NoError(t, err)
	defer anon.Close()

	u, err := anon.AbsoluteURL("foo")
	require.NoError(t, err)
	req, err := anon.NewRequest(ctx, http.MethodGet, u, nil)
	require.NoError(t, err)
	res, err := anon.Execute(ctx, req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestReadConfig_Defaults(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("BUFFER_CAPACITY", "")
	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.listenAddr)
	assert.Equal(t, 1024, cfg.bufferCapacity)

	t.Setenv("BUFFER_CAPACITY", "0")
	_, err = readConfig()
	assert.Error(t, err)
}
