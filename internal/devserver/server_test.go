package devserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"solveit/internal/config"
	"solveit/internal/fakeapi"
	"solveit/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, file := range []string{"index.html", "login.html", "signup.html", "profile.html"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte("<title>"+file+"</title>"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "main.wasm"), []byte("\x00asm"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "app.js"), []byte(strings.Repeat("console.log(1);\n", 200)), 0o644))
	return dir
}

func testConfig(t *testing.T, upstream string) *config.Config {
	return &config.Config{
		WebRoot:                webRoot(t),
		APIUpstream:            upstream,
		APICORSOrigins:         []string{"*"},
		APIRateLimitRequests:   100,
		APIRateLimitWindowMins: 1,
		EnableGzip:             true,
		EnableMetrics:          true,
	}
}

func get(t *testing.T, h http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPages(t *testing.T) {
	srv, err := New(testConfig(t, "http://127.0.0.1:1"), nil)
	require.NoError(t, err)

	for path, file := range pages {
		t.Run(path, func(t *testing.T) {
			rec := get(t, srv, path, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), file)
		})
	}
}

func TestStatic(t *testing.T) {
	srv, err := New(testConfig(t, "http://127.0.0.1:1"), nil)
	require.NoError(t, err)

	t.Run("WasmContentType", func(t *testing.T) {
		rec := get(t, srv, "/static/main.wasm", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/wasm", rec.Header().Get("Content-Type"))
	})

	t.Run("Gzip", func(t *testing.T) {
		rec := get(t, srv, "/static/app.js", http.Header{"Accept-Encoding": {"gzip"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	})

	t.Run("Missing", func(t *testing.T) {
		rec := get(t, srv, "/static/nope.js", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProxy(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"Authentication required"}`)
	}))
	defer upstream.Close()

	srv, err := New(testConfig(t, upstream.URL), nil)
	require.NoError(t, err)

	rec := get(t, srv, "/api/problems", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	srv.ServeHTTP(httptest.NewRecorder(), req)

	rec = get(t, srv, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "GET /login is the page, not the API")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"GET /api/problems", "POST /logout"}, seen)
}

func TestProxyUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	upstream.Close()

	m := metrics.New("devserver")
	srv, err := New(testConfig(t, upstream.URL), nil, WithMetrics(m))
	require.NoError(t, err)

	rec := get(t, srv, "/api/user", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Upstream unavailable"}`, rec.Body.String())
}

func TestInvalidUpstream(t *testing.T) {
	_, err := New(testConfig(t, "not a url"), nil)
	assert.Error(t, err)
}

func TestFakeAPI(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.UseFakeAPI = true
	srv, err := New(cfg, nil, WithAPI(fakeapi.New()))
	require.NoError(t, err)

	rec := get(t, srv, "/api/user", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(t, srv, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "fake", health.Upstream)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("Enabled", func(t *testing.T) {
		srv, err := New(testConfig(t, "http://127.0.0.1:1"), nil, WithMetrics(metrics.New("devserver")))
		require.NoError(t, err)
		get(t, srv, "/healthz", nil)

		rec := get(t, srv, "/metrics", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `solveit_devserver_requests_total{method="GET",route="/healthz",status="200"} 1`)
	})

	t.Run("Disabled", func(t *testing.T) {
		cfg := testConfig(t, "http://127.0.0.1:1")
		cfg.EnableMetrics = false
		srv, err := New(cfg, nil, WithMetrics(metrics.New("devserver")))
		require.NoError(t, err)

		rec := get(t, srv, "/metrics", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlerMiddleware(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	srv, err := New(cfg, nil)
	require.NoError(t, err)

	t.Run("RateLimit", func(t *testing.T) {
		h := srv.Handler(NewLimiter(2, 60))
		assert.Equal(t, http.StatusOK, get(t, h, "/healthz", nil).Code)
		assert.Equal(t, http.StatusOK, get(t, h, "/healthz", nil).Code)
		assert.Equal(t, http.StatusTooManyRequests, get(t, h, "/healthz", nil).Code)
	})

	t.Run("CORS", func(t *testing.T) {
		h := srv.Handler(NewLimiter(0, 0))
		rec := get(t, h, "/healthz", http.Header{"Origin": {"http://example.com"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		remote string
		want   string
	}{
		{"ForwardedFor", http.Header{"X-Forwarded-For": {"10.0.0.1, 10.0.0.2"}}, "1.2.3.4:80", "10.0.0.1"},
		{"RealIP", http.Header{"X-Real-Ip": {"10.0.0.9"}}, "1.2.3.4:80", "10.0.0.9"},
		{"BogusForwarded", http.Header{"X-Forwarded-For": {"nope"}}, "1.2.3.4:80", "1.2.3.4"},
		{"RemoteAddr", nil, "1.2.3.4:80", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header = tt.header
			if req.Header == nil {
				req.Header = http.Header{}
			}
			req.RemoteAddr = tt.remote
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
