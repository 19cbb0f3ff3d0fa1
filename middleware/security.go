package middleware

import (
	"net/http"
	"time"

	"prediction-league/logging"
)

// SecurityMiddleware adds security headers to all API responses
func SecurityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Only over HTTPS, directly or through a proxy
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration of every request
func RequestLogger(next http.Handler) http.Handler {
	logger := logging.WithPrefix("HTTP")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		switch {
		case rec.status >= 500:
			logger.Errorf("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
		case rec.status >= 400:
			logger.Warnf("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
		default:
			logger.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
		}
	})
}
