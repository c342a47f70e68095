package gateway

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"erpgate.dev/internal/audit"
	"erpgate.dev/internal/ids"
	"erpgate.dev/internal/obs"
)

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestID assigns a correlation id to the request, echoes it in the
// response, and makes it available to audit logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if rid == "" {
			rid = ids.New()
		}
		w.Header().Set("X-Request-Id", rid)
		next.ServeHTTP(w, r.WithContext(audit.WithRequestID(r.Context(), rid)))
	})
}

// LoggingJSON emits one structured line per completed request.
func LoggingJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		obs.Info("request_complete", map[string]any{
			"request_id":  audit.RequestIDFromContext(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.code,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote":      clientIP(r),
			"user_agent":  r.UserAgent(),
		})
	})
}

// Recover turns handler panics into the opaque internal envelope. The panic
// value goes to the log, never to the caller.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				obs.Error("handler panic", map[string]any{
					"request_id": audit.RequestIDFromContext(r.Context()),
					"path":       r.URL.Path,
					"panic":      rec,
				})
				writeErrorToken(w, r, http.StatusInternalServerError, tokenInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders applies baseline hardening headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// CORS restricts browser callers to the configured origins. An empty list
// allows any origin, matching the managed deployment default.
func CORS(next http.Handler, allowedOrigins []string) http.Handler {
	const (
		allowedMethods = "GET,POST,OPTIONS"
		allowedHeaders = "Content-Type,Authorization,X-Api-Key,X-Company-Id,X-Request-Id"
	)
	anyOrigin := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			anyOrigin = true
			continue
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || anyOrigin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		w.Header().Set("Access-Control-Max-Age", "600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MaxBodyBytes limits request body size.
func MaxBodyBytes(next http.Handler, maxBytes int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		next.ServeHTTP(w, r)
	})
}

type ipBucket struct {
	lim *rate.Limiter
	ts  time.Time
}

// IPThrottle is a token-bucket backstop per client IP, in front of the
// per-identity fixed window. It caps raw connection volume from a single
// address regardless of the credentials presented.
type IPThrottle struct {
	burst     int
	perSecond int

	mu      sync.Mutex
	buckets map[string]*ipBucket

	stopOnce sync.Once
	stop     chan struct{}
}

const ipBucketTTL = 5 * time.Minute

// NewIPThrottle constructs the throttle and starts its idle-bucket cleanup
// goroutine. Callers own the lifecycle and must Close it.
func NewIPThrottle(burst, perSecond int) *IPThrottle {
	t := &IPThrottle{
		burst:     burst,
		perSecond: perSecond,
		buckets:   make(map[string]*ipBucket),
		stop:      make(chan struct{}),
	}
	go t.cleanupLoop()
	return t
}

// Close stops the cleanup goroutine.
func (t *IPThrottle) Close() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Wrap applies the throttle in front of next.
func (t *IPThrottle) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		t.mu.Lock()
		b, ok := t.buckets[ip]
		if !ok {
			b = &ipBucket{lim: rate.NewLimiter(rate.Limit(t.perSecond), t.burst)}
			t.buckets[ip] = b
		}
		b.ts = time.Now()
		allowed := b.lim.Allow()
		t.mu.Unlock()
		if !allowed {
			writeErrorToken(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *IPThrottle) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			now := time.Now()
			t.mu.Lock()
			for k, b := range t.buckets {
				if now.Sub(b.ts) > ipBucketTTL {
					delete(t.buckets, k)
				}
			}
			t.mu.Unlock()
		}
	}
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For support (first IP)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
