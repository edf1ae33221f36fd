package trace

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"service-pipeline/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusService(status int) service.HTTP {
	return service.Func[*http.Request, *http.Response](func(ctx context.Context, r *http.Request) (*http.Response, error) {
		return service.NewResponse(r, status), nil
	})
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestStatusInRangeAsFailures(t *testing.T) {
	c := StatusInRangeAsFailures(400, 599)

	assert.False(t, c(&http.Response{StatusCode: 200}, nil))
	assert.False(t, c(&http.Response{StatusCode: 399}, nil))
	assert.True(t, c(&http.Response{StatusCode: 400}, nil))
	assert.True(t, c(&http.Response{StatusCode: 599}, nil))
	assert.True(t, c(nil, errors.New("dial")))

	assert.False(t, ServerErrorsAsFailures()(&http.Response{StatusCode: 401}, nil))
	assert.Panics(t, func() { StatusInRangeAsFailures(500, 400) })
}

func TestTrace_LogsSuccess(t *testing.T) {
	var buf bytes.Buffer
	svc := NewLayer(Options{Logger: newLogger(&buf), Name: "kv"}).Layer(statusService(http.StatusOK))

	res, err := service.Oneshot(context.Background(), svc, httptest.NewRequest(http.MethodGet, "/foo", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	out := buf.String()
	assert.Contains(t, out, "event=request_started")
	assert.Contains(t, out, "event=request_finished")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "service=kv")
	assert.NotContains(t, out, "level=ERROR")
}

func TestTrace_LogsClassifiedFailures(t *testing.T) {
	var buf bytes.Buffer
	svc := NewLayer(Options{Logger: newLogger(&buf)}).Layer(statusService(http.StatusUnauthorized))

	_, err := service.Oneshot(context.Background(), svc, httptest.NewRequest(http.MethodGet, "/foo", nil))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "event=request_failed")
	assert.Contains(t, out, "status=401")
}

func TestTrace_LogsServiceErrors(t *testing.T) {
	var buf bytes.Buffer
	failing := service.Func[*http.Request, *http.Response](func(context.Context, *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	svc := NewLayer(Options{Logger: newLogger(&buf)}).Layer(failing)

	_, err := service.Oneshot(context.Background(), svc, httptest.NewRequest(http.MethodGet, "/foo", nil))
	require.Error(t, err)
	assert.Contains(t, buf.String(), `error="connection refused"`)
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	inner := service.Func[*http.Request, *http.Response](func(ctx context.Context, r *http.Request) (*http.Response, error) {
		seen = r.Header.Get(RequestIDHeader)
		return service.NewResponse(r, http.StatusOK), nil
	})
	svc := RequestIDLayer().Layer(inner)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	res, err := service.Oneshot(context.Background(), svc, r)
	require.NoError(t, err)

	require.Len(t, seen, 36)
	assert.Equal(t, seen, res.Header.Get(RequestIDHeader))
	assert.Empty(t, r.Header.Get(RequestIDHeader), "original request must not be mutated")
}

func TestRequestID_KeepsIncomingID(t *testing.T) {
	svc := RequestIDLayer().Layer(statusService(http.StatusOK))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "abc")
	res, err := service.Oneshot(context.Background(), svc, r)
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Header.Get(RequestIDHeader))
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "1500µs", formatLatency(1500*time.Microsecond))
	assert.Equal(t, "25ms", formatLatency(25*time.Millisecond))
	assert.Equal(t, "0µs", formatLatency(-time.Second))
}
