package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"service-pipeline/middleware/admission/infra"
	"service-pipeline/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestReadConfig_RequiresUpstream(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "")
	_, err := readConfig()
	assert.EqualError(t, err, "UPSTREAM_URL is required")
}

func TestReadConfig_LowRPSDefaultsBurstToOne(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://upstream")
	t.Setenv("RATE_RPS", "0.02")
	t.Setenv("RATE_BURST", "")

	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.rateBurst)
	assert.Equal(t, "none", cfg.statsBackend)
}

func TestReadConfig_AuthScheme(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://upstream")
	t.Setenv("AUTH_USER", "u")
	t.Setenv("AUTH_PASSWORD", "p")

	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Equal(t, "basic", cfg.authScheme)

	t.Setenv("AUTH_TOKEN", "passwordlol")
	cfg, err = readConfig()
	require.NoError(t, err)
	assert.Equal(t, "bearer", cfg.authScheme)
}

func TestReadConfig_ValidatesStatsBackend(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://upstream")

	t.Setenv("STATS_BACKEND", "redis")
	t.Setenv("STATS_REDIS_ADDR", "")
	_, err := readConfig()
	assert.Error(t, err)

	t.Setenv("STATS_BACKEND", "carrier-pigeon")
	_, err = readConfig()
	assert.Error(t, err)

	t.Setenv("STATS_BACKEND", "kafka")
	t.Setenv("STATS_KAFKA_BROKERS", "k1:9092, k2:9092")
	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.kafkaBrokers)
}

func TestOpenStatsStore_Memory(t *testing.T) {
	store, cleanup, err := openStatsStore(context.Background(), gatewayConfig{statsBackend: "memory"}, quietLogger())
	require.NoError(t, err)
	defer cleanup()
	_, ok := store.(*infra.MemoryStatsStore)
	assert.True(t, ok)

	store, cleanup, err = openStatsStore(context.Background(), gatewayConfig{statsBackend: "none"}, quietLogger())
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, store)
}

func TestBuildStack_ProxiesAuthorizedRequests(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream-Path", r.URL.Path)
		_, _ = io.WriteString(w, "from upstream")
	}))
	defer upstream.Close()

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	cfg := gatewayConfig{
		authScheme:     "bearer",
		authToken:      "passwordlol",
		rateEnabled:    true,
		concurrencyMax: 4,
		bufferCapacity: 8,
	}
	stats := infra.NewMemoryStatsStore()
	svc := buildStack(cfg, target, infra.NewBucketStore(0.02, 1), stats, quietLogger())

	gw := httptest.NewServer(service.Handler(svc, quietLogger()))
	defer gw.Close()

	// sem credencial: 401 e o rate limit nem é consultado
	res, err := http.Get(gw.URL + "/showTela")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	get := func() *http.Response {
		req, err := http.NewRequest(http.MethodGet, gw.URL+"/showTela", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer passwordlol")
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return res
	}

	res = get()
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "from upstream", string(body))
	assert.Equal(t, "/showTela", res.Header.Get("X-Upstream-Path"))
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))

	// burst=1 com rps baixo: a segunda autorizada é bloqueada
	res = get()
	res.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("Retry-After"))

	bySource := stats.BySource()
	assert.Equal(t, int64(1), bySource["authorization"].Denied)
	assert.Equal(t, int64(2), bySource["authorization"].Allowed)
	assert.Equal(t, int64(1), bySource["ratelimit"].Denied)
	assert.Equal(t, int64(1), bySource["concurrency"].Allowed)
}
