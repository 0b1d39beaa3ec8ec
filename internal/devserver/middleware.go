package devserver

import (
	"net/http"
	"time"

	"solveit/internal/metrics"

	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// Handler wraps the router with CORS and the shared rate limiter.
func (s *Server) Handler(limiter *rate.Limiter) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.APICORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return RateLimit(limiter, s.metrics)(c.Handler(s))
}

// RateLimit rejects requests once the shared token bucket is empty.
func RateLimit(limiter *rate.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				if m != nil {
					m.RateLimited.Inc()
				}
				writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewLimiter spreads requests evenly over the window with a burst of the full quota.
func NewLimiter(requests, windowMins int) *rate.Limiter {
	if requests <= 0 || windowMins <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(
		rate.Every(time.Duration(windowMins)*time.Minute/time.Duration(requests)),
		requests,
	)
}

