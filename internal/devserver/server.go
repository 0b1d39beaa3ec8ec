// Package devserver serves the SolveIt pages and WASM bundle and forwards
// API calls to the backend.
package devserver

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path/filepath"
	"strings"

	"solveit/internal/config"
	"solveit/internal/logger"
	"solveit/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

// Page shells keyed by route.
var pages = map[string]string{
	"/":        "index.html",
	"/login":   "login.html",
	"/signup":  "signup.html",
	"/profile": "profile.html",
}

type Server struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	api     http.Handler
	router  *mux.Router
}

type Option func(*Server)

// WithAPI answers API routes with h instead of proxying to the upstream.
func WithAPI(h http.Handler) Option {
	return func(s *Server) {
		s.api = h
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func New(cfg *config.Config, log *logger.Logger, opts ...Option) (*Server, error) {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{cfg: cfg, log: log.Named("devserver")}
	for _, opt := range opts {
		opt(s)
	}

	if s.api == nil {
		proxy, err := s.newProxy(cfg.APIUpstream)
		if err != nil {
			return nil, err
		}
		s.api = proxy
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := mux.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(s.accessLog)

	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)
	if s.cfg.EnableMetrics && s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	for _, path := range []string{"/login", "/signup", "/logout"} {
		r.Handle(path, s.api).Methods(http.MethodPost)
	}
	r.PathPrefix("/api/").Handler(s.api)

	for path, file := range pages {
		r.HandleFunc(path, s.pageHandler(file)).Methods(http.MethodGet, http.MethodHead)
	}

	var static http.Handler = http.StripPrefix("/static/", wasmContentType(http.FileServer(http.Dir(filepath.Join(s.cfg.WebRoot, "static")))))
	if s.cfg.EnableGzip {
		static = gzhttp.GzipHandler(static)
	}
	r.PathPrefix("/static/").Handler(static)

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) pageHandler(file string) http.HandlerFunc {
	path := filepath.Join(s.cfg.WebRoot, file)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, path)
	}
}

func (s *Server) newProxy(upstream string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(upstream)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid API upstream %q", upstream)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.log.Component(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Warn("upstream request failed")
		if s.metrics != nil {
			s.metrics.ProxyErrors.WithLabelValues(r.Method).Inc()
		}
		writeJSONError(w, http.StatusBadGateway, "Upstream unavailable")
	}
	return proxy, nil
}

func wasmContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".wasm") {
			w.Header().Set("Content-Type", "application/wasm")
		}
		next.ServeHTTP(w, r)
	})
}
