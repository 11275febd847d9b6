package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d within the window", i)
	}
	assert.False(t, l.Allow("10.0.0.1"), "window exhausted")

	// Other keys have their own windows.
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestLimiter_WindowResets(t *testing.T) {
	l := New(1, 20*time.Millisecond)

	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow("k"), "fresh window, fresh tokens")
}

func TestLimiter_Middleware(t *testing.T) {
	l := New(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLimiter_PruneBoundsTheMap(t *testing.T) {
	l := New(1, 10*time.Millisecond)

	for i := 0; i < 1100; i++ {
		l.Allow(string(rune('a'+i%26)) + string(rune('0'+i/26%10)) + string(rune(i)))
	}
	time.Sleep(30 * time.Millisecond)
	l.Allow("fresh") // triggers a prune pass

	l.mu.Lock()
	n := len(l.buckets)
	l.mu.Unlock()
	assert.Less(t, n, 1100, "stale buckets should have been pruned")
}
