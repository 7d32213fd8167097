package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sarychdb/sarychdb/internal/server/ratelimit"
)

// RateLimitMiddleware applies a per-username token bucket (falling back to
// remote address for unauthenticated requests) ahead of every handler,
// implementing the ambient rate-limit requirement of SPEC_FULL.md §2.1/S7.
// Header names on the Result mirror the teacher's
// backend/internal/server/ratelimit/middleware.go WriteHeaders convention.
func RateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			key := r.Header.Get("username")
			if key == "" {
				key = r.RemoteAddr
			}

			result := limiter.Allow(key)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				writeRateLimitExceeded(w, start, int(result.RetryAfter.Seconds()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeRateLimitExceeded writes the 429 response for an over-limit request.
// Rate limiting is a concern of the HTTP boundary, not the core CRUD/auth
// domain, so it deliberately does not reuse any of apierrors's seven core
// Kinds (SPEC_FULL.md §8 S7) — it writes the same literal
// { "error": "<message>", "time": <ms> } envelope directly instead of
// routing through writeError/apierrors.
func writeRateLimitExceeded(w http.ResponseWriter, start time.Time, retryAfterSeconds int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": "rate limit exceeded",
		"time":  time.Since(start).Milliseconds(),
		"details": map[string]any{
			"retry_after_seconds": retryAfterSeconds,
		},
	})
}

// RequestLogger logs each request's method, path, status, and duration at
// info level, mirroring the teacher's structured-logging convention.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
