package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsBurstThenBlocks(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1, Burst: 2})
	defer l.Stop()

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "buckets are per client")
	assert.Equal(t, 2, l.ActiveClients())
	assert.Greater(t, l.RetryAfter("a"), time.Duration(0))
}

func TestLimiterCleanupStale(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 60, Burst: 1, IdleTTL: time.Minute})
	defer l.Stop()

	l.Allow("a")
	assert.Equal(t, 0, l.cleanupStale(time.Now()))
	assert.Equal(t, 1, l.cleanupStale(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, l.ActiveClients())
}

func TestMiddlewareLimitsOnlySelectedMethods(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1, Burst: 1})
	defer l.Stop()

	h := l.Middleware(func(*http.Request) string { return "client" }, nil, http.MethodPost)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	do := func(method string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/transactions", nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost).Code)
	blocked := do(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, do(http.MethodGet).Code)
}

func TestNewLimiterDefaults(t *testing.T) {
	l := NewLimiter(Config{})
	defer l.Stop()
	assert.Equal(t, DefaultConfig().Burst, l.burst)
	l.Stop() // idempotent
}
