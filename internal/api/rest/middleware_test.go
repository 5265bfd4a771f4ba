package rest

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

func TestMiddlewareChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := NewMiddlewareChain(mark("first"), mark("second"), mark("third")).Then(okHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeadersMiddleware()(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "script-src 'none'")
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("propagates caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, "req-42", seen)
		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2, Exempt: []string{"/health"}})
	h := rl.Middleware()(okHandler())

	request := func(path, ip string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, request("/fraud", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("/fraud", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("/fraud", "10.0.0.1"))

	// Buckets are per client and exempt paths are never limited.
	assert.Equal(t, http.StatusOK, request("/fraud", "10.0.0.2"))
	assert.Equal(t, http.StatusOK, request("/health/live", "10.0.0.1"))
}

func TestRateLimiter_IgnoresSpoofedForwardedFor(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})
	h := rl.Middleware()(okHandler())

	var limited int
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud/score", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		req.Header.Set("X-Forwarded-For", strconv.Itoa(i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 98, limited)
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_TrustProxy(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, TrustProxy: true})
	h := rl.Middleware()(okHandler())

	request := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/fraud", nil)
		req.RemoteAddr = "192.168.1.1:80"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, request("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("1.1.1.1, 192.168.1.1"))
	assert.Equal(t, http.StatusOK, request("2.2.2.2"))
}

func TestRateLimiter_BoundedClients(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
		MaxClients:        10,
		IdleTTL:           time.Minute,
	})
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Middleware()(okHandler())

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/fraud", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 500; i++ {
		now = now.Add(time.Millisecond)
		require.Equal(t, http.StatusOK, request(fmt.Sprintf("10.1.%d.%d", i/256, i%256)))
		require.LessOrEqual(t, rl.Len(), 10)
	}
	assert.Equal(t, 10, rl.Len())

	// The most recent client keeps its bucket.
	assert.Equal(t, http.StatusTooManyRequests, request("10.1.1.243"))

	// Idle buckets are all dropped once the next new client arrives.
	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, request("10.2.0.1"))
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_Disabled(t *testing.T) {
	h := NewRateLimiter(RateLimitConfig{}).Middleware()(okHandler())
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCompressionMiddleware(t *testing.T) {
	payload := strings.Repeat("fraud,", 1000)
	compress, err := CompressionMiddleware(256)
	require.NoError(t, err)
	h := compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(payload))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(body))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		trust   bool
		want    string
	}{
		{name: "forwarded for", headers: map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, remote: "3.3.3.3:9", trust: true, want: "1.1.1.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "4.4.4.4"}, remote: "3.3.3.3:9", trust: true, want: "4.4.4.4"},
		{name: "forwarded for untrusted", headers: map[string]string{"X-Forwarded-For": "1.1.1.1"}, remote: "3.3.3.3:9", want: "3.3.3.3"},
		{name: "real ip untrusted", headers: map[string]string{"X-Real-IP": "4.4.4.4"}, remote: "3.3.3.3:9", want: "3.3.3.3"},
		{name: "remote addr", remote: "3.3.3.3:9", want: "3.3.3.3"},
		{name: "ipv6 remote addr", remote: "[::1]:9", want: "[::1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req, tt.trust))
		})
	}
}
