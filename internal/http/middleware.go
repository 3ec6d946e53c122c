package http

import (
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	applog "expansive/internal/log"
)

const requestIDHeader = "X-Request-ID"

// statusRecorder captures the status code for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequest applies the outermost per-request concerns: request ID,
// security headers, rate limiting on mutating methods and access logging.
func (s *Server) withRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = newRequestID()
		}
		w.Header().Set(requestIDHeader, reqID)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		ip := clientIP(r)

		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			if !s.rateLimiter.allow(ip) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldRequestID, reqID,
					applog.FieldClientIP, ip,
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path,
				)
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
		}

		s.logger.DebugContext(r.Context(), "Request received",
			applog.FieldRequestID, reqID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
		)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.logger.InfoContext(r.Context(), "Request handled",
			applog.FieldRequestID, reqID,
			applog.FieldClientIP, ip,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rec.status,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldUserAgent, r.UserAgent(),
		)
	}
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

// clientIP extracts the caller's address, honoring X-Forwarded-For from
// a fronting proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const (
	rateLimitWindow   = time.Minute
	rateLimitRequests = 60
)

// rateLimiter tracks mutating requests per client IP over a sliding window.
type rateLimiter struct {
	mu      sync.Mutex
	seen    map[string][]time.Time
	done    chan struct{}
	closeMu sync.Once
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		seen: make(map[string][]time.Time),
		done: make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateLimitWindow)

	kept := rl.seen[ip][:0]
	for _, t := range rl.seen[ip] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= rateLimitRequests {
		rl.seen[ip] = kept
		return false
	}
	rl.seen[ip] = append(kept, now)
	return true
}

func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rateLimitWindow)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rateLimitWindow)
			for ip, times := range rl.seen {
				kept := times[:0]
				for _, t := range times {
					if t.After(cutoff) {
						kept = append(kept, t)
					}
				}
				if len(kept) == 0 {
					delete(rl.seen, ip)
				} else {
					rl.seen[ip] = kept
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.closeMu.Do(func() { close(rl.done) })
}
