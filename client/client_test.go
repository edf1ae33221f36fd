package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"service-pipeline/middleware/authorization"
	"service-pipeline/service"
	"service-pipeline/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kvServer guarda o corpo de cada POST e devolve em GET.
func kvServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	var (
		mu   sync.Mutex
		data = map[string][]byte{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/")
		switch r.Method {
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			data[key] = body
			mu.Unlock()
		case http.MethodGet:
			mu.Lock()
			v, ok := data[key]
			mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write(v)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, svc service.HTTP, opts ...Option) *Client {
	t.Helper()
	c, err := New(svc, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_WriteThenRead(t *testing.T) {
	srv := kvServer(t, "")
	c := newClient(t, transport.NewHTTP(srv.Client()), WithBaseURL(srv.URL))

	ctx := context.Background()
	require.NoError(t, c.Post(ctx, "foo", []byte("bar")))

	got, err := c.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", string(got))
}

func TestClient_WithAuthorizationLayer(t *testing.T) {
	srv := kvServer(t, "passwordlol")
	svc := authorization.AddBearerLayer("passwordlol").Layer(transport.NewHTTP(srv.Client()))
	c := newClient(t, svc, WithBaseURL(srv.URL), WithCapacity(4))

	ctx := context.Background()
	require.NoError(t, c.Post(ctx, "foo", []byte("bar")))
	got, err := c.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", string(got))
}

func TestClient_ConcurrentCalls(t *testing.T) {
	srv := kvServer(t, "")
	c := newClient(t, transport.NewHTTP(srv.Client()), WithBaseURL(srv.URL), WithCapacity(2))

	ctx := context.Background()
	var wg sync.WaitGroup
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		k := k
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Post(ctx, k, []byte("v-"+k)); err != nil {
				t.Errorf("post %s: %v", k, err)
			}
		}()
	}
	wg.Wait()

	for _, k := range []string{"a", "b", "c", "d", "e"} {
		got, err := c.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, "v-"+k, string(got))
	}
}

func TestClient_AbsoluteURL(t *testing.T) {
	c := newClient(t, transport.NewHTTP(nil))

	u, err := c.AbsoluteURL("foo")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/foo", u.String())

	_, err = c.AbsoluteURL("%zz")
	assert.True(t, IsKind(err, KindURL))
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(transport.NewHTTP(nil), WithBaseURL("http://[::1"))
	assert.True(t, IsKind(err, KindURL))
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, n := range []int{0, -1} {
		c, err := New(transport.NewHTTP(nil), WithCapacity(n))
		assert.Nil(t, c)
		assert.True(t, IsKind(err, KindQueue), "capacity %d: %v", n, err)
	}
}

func TestClient_ServiceError(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	failing := service.Func[*http.Request, *http.Response](func(context.Context, *http.Request) (*http.Response, error) {
		return nil, boom
	})
	c := newClient(t, failing)

	_, err := c.Get(context.Background(), "foo")
	assert.True(t, IsKind(err, KindService))
	assert.ErrorIs(t, err, boom)

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "call", ce.Op)
}

type brokenService struct{}

func (brokenService) Ready(context.Context) error { return errors.New("pool exhausted") }

func (brokenService) Call(context.Context, *http.Request) service.Future[*http.Response] {
	panic("must not be called")
}

func TestClient_QueueFailure(t *testing.T) {
	c := newClient(t, brokenService{})

	err := c.Post(context.Background(), "foo", []byte("bar"))
	assert.True(t, IsKind(err, KindQueue))
	assert.ErrorIs(t, err, service.ErrServiceFailed)

	_, err = c.Get(context.Background(), "foo")
	assert.True(t, IsKind(err, KindQueue))
}

func TestClient_Closed(t *testing.T) {
	srv := kvServer(t, "")
	c, err := New(transport.NewHTTP(srv.Client()), WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	err = c.Post(context.Background(), "foo", []byte("bar"))
	assert.True(t, IsKind(err, KindQueue))
	assert.ErrorIs(t, err, service.ErrClosed)
}

type errBody struct{}

func (errBody) Read([]byte) (int, error) { return 0, errors.New("reset by peer") }
func (errBody) Close() error             { return nil }

func TestClient_BodyError(t *testing.T) {
	svc := service.Func[*http.Request, *http.Response](func(_ context.Context, r *http.Request) (*http.Response, error) {
		res := service.NewResponse(r, http.StatusOK)
		res.Body = errBody{}
		return res, nil
	})
	c := newClient(t, svc)

	_, err := c.Get(context.Background(), "foo")
	assert.True(t, IsKind(err, KindBody))
	assert.Contains(t, err.Error(), "client: get: body: reset by peer")
}
