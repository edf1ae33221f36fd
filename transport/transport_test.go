package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"service-pipeline/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTP_ExecutesRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		_, _ = w.Write(append([]byte("got:"), body...))
	}))
	defer srv.Close()

	svc := NewHTTP(srv.Client())
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/foo", strings.NewReader("bar"))
	require.NoError(t, err)

	res, err := service.Oneshot(context.Background(), svc, req)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "got:bar", string(body))
	assert.Equal(t, http.MethodPost, res.Header.Get("X-Method"))
}

func TestHTTP_PropagatesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	req, err := http.NewRequest(http.MethodGet, addr, nil)
	require.NoError(t, err)

	_, err = service.Oneshot(context.Background(), NewHTTP(nil), req)
	assert.Error(t, err)
}

func TestHTTP_CallContextCancelsRequest(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = NewHTTP(srv.Client()).Call(ctx, req).Await(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProxy_ForwardsToTarget(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Path", r.URL.Path)
		w.Header().Set("X-Query", r.URL.RawQuery)
		w.Header().Set("X-Forwarded-Host-Seen", r.Header.Get("X-Forwarded-Host"))
		w.Header().Set("X-Connection-Seen", r.Header.Get("Connection"))
		w.WriteHeader(http.StatusTeapot)
	}))
	defer upstream.Close()

	target, err := url.Parse(upstream.URL + "/api")
	require.NoError(t, err)

	svc := NewProxy(target, nil)
	in := httptest.NewRequest(http.MethodGet, "http://gateway.local/foo?x=1", nil)
	in.Header.Set("Connection", "keep-alive, X-Secret")

	res, err := service.Oneshot(context.Background(), svc, in)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusTeapot, res.StatusCode)
	assert.Equal(t, "/api/foo", res.Header.Get("X-Path"))
	assert.Equal(t, "x=1", res.Header.Get("X-Query"))
	assert.Equal(t, "gateway.local", res.Header.Get("X-Forwarded-Host-Seen"))
	assert.Empty(t, res.Header.Get("X-Connection-Seen"))
}

func TestProxy_ServesThroughHandler(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer upstream.Close()

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	gw := httptest.NewServer(service.Handler(NewProxy(target, nil), nil))
	defer gw.Close()

	res, err := http.Post(gw.URL+"/echo", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "hello", string(body))
}
