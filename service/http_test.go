package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := NewResponse(req, http.StatusUnauthorized)

	assert.Equal(t, "401 Unauthorized", res.Status)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.NotNil(t, res.Header)
	assert.Same(t, req, res.Request)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestHandler_WritesServiceResponse(t *testing.T) {
	svc := Func[*http.Request, *http.Response](func(_ context.Context, r *http.Request) (*http.Response, error) {
		res := NewResponse(r, http.StatusCreated)
		res.Header.Set("X-Test", "1")
		res.Body = io.NopCloser(strings.NewReader("hello " + r.URL.Path))
		return res, nil
	})

	w := httptest.NewRecorder()
	Handler(svc, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/world", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Test"))
	assert.Equal(t, "hello /world", w.Body.String())
}

func TestHandler_MapsErrorsToStatus(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"service error": {err: errors.New("dial"), want: http.StatusBadGateway},
		"queue failed":  {err: errors.Join(ErrServiceFailed, errors.New("x")), want: http.StatusServiceUnavailable},
		"closed":        {err: ErrClosed, want: http.StatusServiceUnavailable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := Func[*http.Request, *http.Response](func(context.Context, *http.Request) (*http.Response, error) {
				return nil, tc.err
			})
			w := httptest.NewRecorder()
			Handler(svc, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
