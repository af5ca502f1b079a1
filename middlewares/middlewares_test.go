package middlewares

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/utils"
)

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func doRequest(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	r := newTestEngine(rl.RateLimit())

	assert.Equal(t, http.StatusOK, doRequest(r, "GET", "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "GET", "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "GET", "/ping", nil).Code)

	now = now.Add(1500 * time.Millisecond)
	assert.Equal(t, http.StatusOK, doRequest(r, "GET", "/ping", nil).Code)
}

func TestJoinRateLimiterIsPerIP(t *testing.T) {
	jl := NewJoinRateLimiter(2)
	r := newTestEngine(jl.Middleware())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "GET", "/ping", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "GET", "/ping", nil).Code)

	other := httptest.NewRequest("GET", "/ping", nil)
	other.RemoteAddr = "10.0.0.9:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, other)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaffAuthDisabledPassesThrough(t *testing.T) {
	r := newTestEngine(StaffAuth(false, nil))
	assert.Equal(t, http.StatusOK, doRequest(r, "GET", "/ping", nil).Code)
}

func TestStaffAuthEnabled(t *testing.T) {
	secret := []byte("secret")
	r := newTestEngine(StaffAuth(true, secret))

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "GET", "/ping", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "GET", "/ping", http.Header{"Authorization": {"Token abc"}}).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "GET", "/ping", http.Header{"Authorization": {"Bearer abc"}}).Code)

	token, _, err := utils.GenerateStaffToken(secret, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doRequest(r, "GET", "/ping", http.Header{"Authorization": {"Bearer " + token}}).Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestEngine(CORSMiddlewares("https://shop.example.com"))

	w := doRequest(r, "OPTIONS", "/ping", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSecurityHeaders(t *testing.T) {
	r := newTestEngine(SecurityHeaders(), LoggerMiddleware())

	w := doRequest(r, "GET", "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func requestFrom(r http.Handler, ip string) int {
	req := httptest.NewRequest("GET", "/ping", nil)
	req.RemoteAddr = ip + ":4000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterSweepsIdleIPs(t *testing.T) {
	rl := NewRateLimiter(5, time.Second)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	r := newTestEngine(rl.RateLimit())

	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, requestFrom(r, fmt.Sprintf("10.1.0.%d", i)))
	}
	assert.Len(t, rl.ips, 50)

	now = now.Add(sweepEvery)
	assert.Equal(t, http.StatusOK, requestFrom(r, "10.2.0.1"))
	assert.Len(t, rl.ips, 1)
	assert.Contains(t, rl.ips, "10.2.0.1")
}

func TestJoinRateLimiterSweepsIdleIPs(t *testing.T) {
	jl := NewJoinRateLimiter(1)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jl.now = func() time.Time { return now }
	r := newTestEngine(jl.Middleware())

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, requestFrom(r, fmt.Sprintf("10.3.0.%d", i)))
	}
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(r, "10.3.0.0"))
	assert.Len(t, jl.visitors, 20)

	now = now.Add(sweepEvery)
	assert.Equal(t, http.StatusOK, requestFrom(r, "10.4.0.1"))
	assert.Len(t, jl.visitors, 1)

	// a swept IP starts again with a full bucket
	assert.Equal(t, http.StatusOK, requestFrom(r, "10.3.0.0"))
}
