package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.Any("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(2, time.Second)
	rl.lastTime = now
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	// partial refill must accumulate across calls
	now = now.Add(250 * time.Millisecond)
	assert.False(t, rl.Allow())
	now = now.Add(250 * time.Millisecond)
	assert.True(t, rl.Allow())
}

func TestRateLimitMiddleware(t *testing.T) {
	r := okRouter(RateLimit(1, time.Hour))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)

	w := do(r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestDeduplicator(t *testing.T) {
	now := time.Unix(100, 0)
	d := NewDeduplicator(time.Second)
	d.now = func() time.Time { return now }
	r := okRouter(d.Handler())

	body := `{"item":"Pasta"}`
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/ping", body, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/ping", body, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/ping", `{"item":"Pollo"}`, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/ping", body, nil).Code)
}

func TestDeduplicatorDisabled(t *testing.T) {
	r := okRouter(NewDeduplicator(0).Handler())
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/ping", "x", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/ping", "x", nil).Code)
}

func TestAuth(t *testing.T) {
	r := okRouter(Auth("s3cret"))

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/ping", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/ping", "", map[string]string{"Authorization": "Bearer nope"}).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", map[string]string{"Authorization": "Bearer s3cret"}).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", map[string]string{"X-Auth-Token": "s3cret"}).Code)
}

func TestValidToken(t *testing.T) {
	assert.False(t, ValidToken("", ""))
	assert.False(t, ValidToken("a", ""))
	assert.True(t, ValidToken("a", "a"))
}

func TestBodySizeLimit(t *testing.T) {
	r := okRouter(BodySizeLimit(4))
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/ping", "1234", nil).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(r, http.MethodPost, "/ping", "12345", nil).Code)
}

func TestRecovery(t *testing.T) {
	r := okRouter(Recovery(), Logger())
	w := do(r, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	r := okRouter(m.Handler())

	do(r, http.MethodGet, "/ping", "", nil)
	do(r, http.MethodGet, "/ping", "", nil)
	do(r, http.MethodGet, "/missing", "", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/ping", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))

	count, err := testutil.GatherAndCount(reg, "menu_planner_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
