package ratelimit

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	dErrors "trustmatrix/pkg/domain-errors"
	"trustmatrix/pkg/platform/httputil"
	"trustmatrix/pkg/requestcontext"
)

// idleTTL is how long an unused key keeps its bucket.
const idleTTL = 30 * time.Minute

// Limiter keeps one token bucket per key. Buckets for idle keys expire.
type Limiter struct {
	buckets *ttlcache.Cache[string, *rate.Limiter]
	refill  rate.Limit
	burst   int
}

// New starts a limiter. Call the returned stop function on shutdown.
func New(refillPerSecond, burst int) (*Limiter, func()) {
	cache := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](idleTTL),
	)
	go cache.Start()
	return &Limiter{
		buckets: cache,
		refill:  rate.Limit(refillPerSecond),
		burst:   burst,
	}, cache.Stop
}

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) bool {
	item, _ := l.buckets.GetOrSet(key, rate.NewLimiter(l.refill, l.burst))
	return item.Value().Allow()
}

// KeyFunc derives the bucket key for a request.
type KeyFunc func(r *http.Request) string

// UserOrIPKey keys authenticated requests by user ID and the rest by client IP.
func UserOrIPKey(r *http.Request) string {
	if userID := requestcontext.UserID(r.Context()); !userID.IsNil() {
		return "user:" + userID.String()
	}
	addr := r.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i != -1 {
		addr = addr[:i]
	}
	return "ip:" + addr
}

// Middleware answers 429 once key has used up its bucket.
func Middleware(l *Limiter, key KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if !l.Allow(k) {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					"key", k,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				w.Header().Set("Retry-After", "1")
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
