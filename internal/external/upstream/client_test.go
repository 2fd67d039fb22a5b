package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/config"
	"github.com/wonny/hotrank/pkg/httputil"
	"github.com/wonny/hotrank/pkg/logger"
)

var fixedNow = time.UnixMilli(1718000012345)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			BaseURL:   server.URL,
			SignPath:  "/api/get_sign",
			DataPath:  "/api/get_csv",
			APIFlag:   "csv",
			Filename:  "S88.csv",
			UserAgent: "hotrank-test",
			Timeout:   5 * time.Second,
		},
	}

	log := logger.NewNop()
	hc := httputil.New(cfg, log).DisableRetry()

	return NewClient(hc, cfg.Upstream, log).
		WithClock(func() time.Time { return fixedNow }).
		WithTokenSource(func() string { return "abcdef012345" })
}

func TestNewSignParams(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	p := c.NewSignParams()
	assert.Equal(t, int64(1718000012345), p.Timestamp)
	assert.Equal(t, "csvabcdef0123452345", p.Nonce)
	assert.Equal(t, "csv", p.APIFlag)
	assert.Equal(t, "S88.csv", p.Filename)
}

func TestRandomToken(t *testing.T) {
	a, b := randomToken(), randomToken()
	assert.Len(t, a, 12)
	assert.Regexp(t, `^[0-9a-f]{12}$`, a)
	assert.NotEqual(t, a, b)
}

func TestFetchRankings_SignsThenFetches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get_sign", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "hotrank-test", r.Header.Get("User-Agent"))

		var p SignParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "csvabcdef0123452345", p.Nonce)
		assert.Equal(t, "S88.csv", p.Filename)

		w.Write([]byte(`{"status":"success","sign":"SIG"}`))
	})
	mux.HandleFunc("/api/get_csv", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "SIG", q.Get("sign"))
		assert.Equal(t, "1718000012345", q.Get("timestamp"))
		assert.Equal(t, "csvabcdef0123452345", q.Get("nonce"))
		assert.Equal(t, "csv", q.Get("apiFlag"))
		assert.Equal(t, "S88.csv", q.Get("filename"))

		w.Write([]byte(`{"status":"success","data":[{"排名":1,"开盘啦":"中芯国际","东财":"比亚迪"}]}`))
	})

	c := newTestClient(t, mux)

	got, err := c.Scrape(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []contracts.ParsedRanking{
		{PlatformName: "开盘啦", StockName: "中芯国际", Rank: 1},
		{PlatformName: "东方财富", StockName: "比亚迪", Rank: 1},
	}, got)
}

func TestSign_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non 2xx", http.StatusInternalServerError, `{"status":"success","sign":"x"}`},
		{"malformed body", http.StatusOK, `not json`},
		{"error status", http.StatusOK, `{"status":"error","message":"bad"}`},
		{"missing sign", http.StatusOK, `{"status":"success"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			_, err := c.FetchRankings(context.Background())
			assert.ErrorIs(t, err, contracts.ErrSigning)
			assert.NotErrorIs(t, err, contracts.ErrFetch)
		})
	}
}

func TestFetch_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non 2xx", http.StatusBadGateway, `{}`},
		{"malformed body", http.StatusOK, `{"status":`},
		{"error status", http.StatusOK, `{"status":"fail","message":"expired"}`},
		{"missing data", http.StatusOK, `{"status":"success"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/get_sign", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"success","sign":"SIG"}`))
			})
			mux.HandleFunc("/api/get_csv", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			c := newTestClient(t, mux)

			_, err := c.FetchRankings(context.Background())
			assert.ErrorIs(t, err, contracts.ErrFetch)
		})
	}
}

func TestFetch_EmptyDataIsNotAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get_sign", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","sign":"SIG"}`))
	})
	mux.HandleFunc("/api/get_csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":[]}`))
	})

	c := newTestClient(t, mux)

	got, err := c.Scrape(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSign_HTMLPageSummarized(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`<html><head><title>502 Bad Gateway</title></head><body><h1>nginx</h1></body></html>`))
	}))

	_, err := c.FetchRankings(context.Background())
	require.ErrorIs(t, err, contracts.ErrSigning)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "502 Bad Gateway")
}

func TestNewClient_DoesNotRetry(t *testing.T) {
	var signCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			BaseURL:  server.URL,
			SignPath: "/api/get_sign",
			DataPath: "/api/get_csv",
			APIFlag:  "csv",
			Timeout:  5 * time.Second,
		},
	}
	log := logger.NewNop()

	// default httputil client has retry enabled
	c := NewClient(httputil.New(cfg, log), cfg.Upstream, log)

	start := time.Now()
	_, err := c.FetchRankings(context.Background())
	require.ErrorIs(t, err, contracts.ErrSigning)
	assert.Equal(t, int32(1), signCalls.Load())
	assert.Less(t, time.Since(start), time.Second)
}
