package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"Apiverse/internal/api/handlers"
)

// RateLimiter is an in-memory per-client token bucket.
// Authenticated requests are keyed by identity, anonymous ones by client IP.
type RateLimiter struct {
	clients  map[string]*clientLimit
	done     chan struct{}
	limit    rate.Limit
	burst    int
	window   time.Duration
	mu       sync.Mutex
	stopOnce sync.Once
}

type clientLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requests per window, with bursts up to requests
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	requests = max(requests, 1)
	if window <= 0 {
		window = time.Minute
	}
	rl := &RateLimiter{
		clients: make(map[string]*clientLimit),
		done:    make(chan struct{}),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		window:  window,
	}

	// Cleanup idle entries every window duration until Stop
	go rl.cleanup()

	return rl
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// Middleware returns a rate limiting middleware
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := GetIdentity(r)
		if clientID == "" {
			clientID = getClientIP(r)
		}

		if !rl.allow(clientID) {
			handlers.WriteError(w, http.StatusTooManyRequests, "RateLimitExceeded", "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow checks if a client is allowed to make a request
func (rl *RateLimiter) allow(clientID string) bool {
	rl.mu.Lock()
	client, exists := rl.clients[clientID]
	if !exists {
		client = &clientLimit{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientID] = client
	}
	client.lastSeen = time.Now()
	rl.mu.Unlock()

	return client.limiter.Allow()
}

// cleanup removes clients idle for longer than one window
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for clientID, client := range rl.clients {
				if client.lastSeen.Before(cutoff) {
					delete(rl.clients, clientID)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// getClientIP extracts the client IP from the request. Only the first
// X-Forwarded-For hop is used, and the port never takes part in the key.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
