package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/expensehub/internal/actorctx"
	"github.com/geocoder89/expensehub/internal/auth"
	"github.com/geocoder89/expensehub/internal/http/middlewares"
	"github.com/geocoder89/expensehub/internal/redisclient"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error body %q: %v", w.Body.String(), err)
	}
	return body
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewManager("test-secret", time.Hour)
	good, err := tokens.IssueToken("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other, err := auth.NewManager("other-secret", time.Hour).IssueToken("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/me", middlewares.NewAuthMiddleware(tokens).RequireAuth(), func(c *gin.Context) {
		fromGin, _ := middlewares.UserIDFromContext(c)
		fromCtx, _ := actorctx.UserIDFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"gin": fromGin, "ctx": fromCtx})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + good, want: http.StatusOK},
		{name: "lowercase_scheme", header: "bearer " + good, want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong_scheme", header: "Basic " + good, want: http.StatusUnauthorized},
		{name: "empty_token", header: "Bearer   ", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{name: "foreign_secret", header: "Bearer " + other, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.want, w.Body.String())
			}

			if tt.want == http.StatusOK {
				var ids map[string]string
				_ = json.Unmarshal(w.Body.Bytes(), &ids)
				if ids["gin"] != "user-1" || ids["ctx"] != "user-1" {
					t.Fatalf("user id not propagated: %v", ids)
				}
				return
			}

			body := decodeError(t, w)
			if body.Code != "unauthorized" || body.Error == "" || body.RequestID == "" {
				t.Fatalf("unexpected error body: %+v", body)
			}
		})
	}
}

func TestRequestIDHonoursIncomingHeader(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "abc" {
		t.Fatalf("got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequireJSON())
	r.Any("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		method string
		ct     string
		want   int
	}{
		{http.MethodPost, "application/json", http.StatusNoContent},
		{http.MethodPut, "application/json; charset=utf-8", http.StatusNoContent},
		{http.MethodPost, "text/plain", http.StatusUnsupportedMediaType},
		{http.MethodPost, "", http.StatusUnsupportedMediaType},
		{http.MethodDelete, "", http.StatusNoContent},
		{http.MethodGet, "", http.StatusNoContent},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/x", strings.NewReader("{}"))
		if tt.ct != "" {
			req.Header.Set("Content-Type", tt.ct)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s %q: got %d want %d", tt.method, tt.ct, w.Code, tt.want)
		}
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		reflect bool
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://app.example", reflect: true},
		{name: "listed", allowed: []string{"https://app.example"}, origin: "https://app.example", reflect: true},
		{name: "unlisted", allowed: []string{"https://app.example"}, origin: "https://evil.example", reflect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.CORSMiddleware(tt.allowed))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodOptions, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Fatalf("preflight status %d", w.Code)
			}
			got := w.Header().Get("Access-Control-Allow-Origin")
			if tt.reflect && got != tt.origin {
				t.Fatalf("origin not reflected: %q", got)
			}
			if !tt.reflect && got != "" {
				t.Fatalf("origin must not be allowed: %q", got)
			}
		})
	}
}

func TestRateLimitInMemory(t *testing.T) {
	limiter := middlewares.NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.POST("/login", middlewares.RateLimit(limiter, middlewares.KeyByIP, quietLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := hit("10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}

	w := hit("10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
	if body := decodeError(t, w); body.Code != "rate_limited" {
		t.Fatalf("unexpected body %+v", body)
	}

	if w := hit("10.0.0.2"); w.Code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", w.Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/login", middlewares.RateLimit(failingLimiter{}, middlewares.KeyByIP, quietLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
}

// fakeRedis keeps counters and TTLs in maps. PExpire fails while
// failExpire is positive.
type fakeRedis struct {
	redis.Cmdable
	counts     map[string]int64
	ttls       map[string]time.Duration
	failExpire int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeRedis) PTTL(_ context.Context, key string) *redis.DurationCmd {
	d, ok := f.ttls[key]
	if !ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(d, nil)
}

func (f *fakeRedis) PExpire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if f.failExpire > 0 {
		f.failExpire--
		return redis.NewBoolResult(false, errors.New("connection reset"))
	}
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

// elapse drops every key, as if all windows had ended.
func (f *fakeRedis) elapse() {
	f.counts = map[string]int64{}
	f.ttls = map[string]time.Duration{}
}

func TestRedisRateLimiterRecoversLostExpiry(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	rdb.failExpire = 1
	limiter := middlewares.NewRedisRateLimiter(rdb, 1, time.Minute)

	if _, _, err := limiter.Allow(ctx, "ip:10.0.0.1"); err == nil {
		t.Fatalf("expected the failed PEXPIRE to surface")
	}

	ok, retry, err := limiter.Allow(ctx, "ip:10.0.0.1")
	if err != nil || ok {
		t.Fatalf("second: ok=%v err=%v", ok, err)
	}
	if retry != time.Minute {
		t.Fatalf("retry: got %v, want %v", retry, time.Minute)
	}
	if len(rdb.ttls) != 1 {
		t.Fatalf("counter still has no expiry: %v", rdb.ttls)
	}

	rdb.elapse()

	ok, _, err = limiter.Allow(ctx, "ip:10.0.0.1")
	if err != nil || !ok {
		t.Fatalf("after window: ok=%v err=%v", ok, err)
	}
}

func TestRedisRateLimiterReportsRemainingWindow(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	limiter := middlewares.NewRedisRateLimiter(rdb, 2, time.Minute)

	for i := 0; i < 2; i++ {
		if ok, _, err := limiter.Allow(ctx, "ip:10.0.0.2"); err != nil || !ok {
			t.Fatalf("hit %d: ok=%v err=%v", i+1, ok, err)
		}
	}

	for k := range rdb.ttls {
		rdb.ttls[k] = 20 * time.Second
	}

	ok, retry, err := limiter.Allow(ctx, "ip:10.0.0.2")
	if err != nil || ok {
		t.Fatalf("third: ok=%v err=%v", ok, err)
	}
	if retry != 20*time.Second {
		t.Fatalf("retry: got %v, want 20s", retry)
	}
}

func TestRedisRateLimiter(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rc := redisclient.New(redisclient.Config{Addr: addr})
	defer rc.Close()

	ctx := context.Background()
	if err := rc.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	limiter := middlewares.NewRedisRateLimiter(rc.Raw(), 1, time.Minute)

	ok, _, err := limiter.Allow(ctx, key)
	if err != nil || !ok {
		t.Fatalf("first: ok=%v err=%v", ok, err)
	}

	ok, retry, err := limiter.Allow(ctx, key)
	if err != nil || ok || retry <= 0 {
		t.Fatalf("second: ok=%v retry=%v err=%v", ok, retry, err)
	}
}
