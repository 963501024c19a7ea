package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-receipt-service/internal/config"
	"github.com/iliyamo/cinema-receipt-service/internal/logging"
)

const secret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func serve(e *echo.Echo, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func staffEcho() *echo.Echo {
	e := echo.New()
	e.POST("/notify", func(c echo.Context) error {
		return c.String(http.StatusOK, subject(c))
	}, JWTAuth(secret), RequireRole("STAFF", "OWNER"))
	return e
}

func TestJWTAuthAndRole(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		bearer string
		status int
		body   string
	}{
		{name: "no token", status: http.StatusUnauthorized},
		{name: "garbage token", bearer: "not-a-jwt", status: http.StatusUnauthorized},
		{name: "customer role", bearer: signed(t, jwt.MapClaims{"sub": "42", "role": "CUSTOMER", "exp": exp}), status: http.StatusForbidden},
		{name: "expired", bearer: signed(t, jwt.MapClaims{"sub": "42", "role": "STAFF", "exp": time.Now().Add(-time.Minute).Unix()}), status: http.StatusUnauthorized},
		{name: "staff", bearer: signed(t, jwt.MapClaims{"sub": "42", "role": "staff", "exp": exp}), status: http.StatusOK, body: "42"},
		{name: "owner", bearer: signed(t, jwt.MapClaims{"sub": "7", "role": "OWNER", "exp": exp}), status: http.StatusOK, body: "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(staffEcho(), http.MethodPost, "/notify", tt.bearer)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestJWTAuthRejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "1", "role": "STAFF"}).SignedString([]byte(secret))
	require.NoError(t, err)

	rec := serve(staffEcho(), http.MethodPost, "/notify", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func unreachableRedis(t *testing.T) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestTokenBucketFailsOpen(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}

	for name, rdb := range map[string]*redis.Client{"nil client": nil, "unreachable": unreachableRedis(t)} {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.POST("/v1/receipts", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, NewTokenBucket(cfg, rdb))

			for i := 0; i < 3; i++ {
				assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/v1/receipts", "").Code)
			}
		})
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/receipts", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/receipts")

	assert.Equal(t, "rl:ip:10.0.0.9", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:ip:10.0.0.9:route:POST /v1/receipts", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c))

	c.Set(ctxSubject, "staff-1")
	assert.Equal(t, "rl:user:staff-1", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "USER"}, c))
}

func TestRedisCacheMissPassesThrough(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1024}

	e := echo.New()
	e.GET("/v1/movies", func(c echo.Context) error { return c.JSON(http.StatusOK, echo.Map{"ok": true}) }, NewRedisCache(cfg, unreachableRedis(t)))

	rec := serve(e, http.MethodGet, "/v1/movies", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestCaptureWriterAbandonsOversizedBodies(t *testing.T) {
	cw := &captureWriter{ResponseWriter: httptest.NewRecorder(), limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.overflow)
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.overflow)
	assert.Zero(t, cw.buf.Len())
}

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload(bs[:6])
	assert.False(t, ok)
}

func TestCacheKeyIgnoresQueryForRouteStrategy(t *testing.T) {
	e := echo.New()
	mk := func(target string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/movies")
		return c
	}
	route := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	routeQuery := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	assert.Equal(t, cacheKeyFrom(route, mk("/v1/movies?a=1")), cacheKeyFrom(route, mk("/v1/movies?a=2")))
	assert.NotEqual(t, cacheKeyFrom(routeQuery, mk("/v1/movies?a=1")), cacheKeyFrom(routeQuery, mk("/v1/movies?a=2")))
}

func TestRequestLoggerAttachesEntry(t *testing.T) {
	logger, hook := test.NewNullLogger()

	e := echo.New()
	e.GET("/healthz", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside")
		return c.NoContent(http.StatusNoContent)
	}, RequestLogger(logrus.NewEntry(logger)))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "inside", hook.AllEntries()[0].Message)
	assert.Equal(t, "req-1", hook.AllEntries()[0].Data["request_id"])
	assert.Equal(t, "request served", hook.LastEntry().Message)
	assert.Equal(t, http.StatusNoContent, hook.LastEntry().Data["status"])
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour, TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "rl"}

	e := echo.New()
	e.POST("/v1/receipts", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, NewTokenBucket(cfg, rdb))

	first := serve(e, http.MethodPost, "/v1/receipts", "")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/v1/receipts", "").Code)

	blocked := serve(e, http.MethodPost, "/v1/receipts", "")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
}

func TestRedisCacheHitReplaysStoredResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1024}

	calls := 0
	e := echo.New()
	e.GET("/v1/concessions", func(c echo.Context) error {
		calls++
		c.Response().Header().Set("X-Per-Request", "yes")
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	}, NewRedisCache(cfg, rdb))

	first := serve(e, http.MethodGet, "/v1/concessions", "")
	second := serve(e, http.MethodGet, "/v1/concessions", "")

	assert.Equal(t, 1, calls)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Len(t, second.Header().Values(echo.HeaderContentType), 1)
	assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	assert.Empty(t, second.Header().Get("X-Per-Request"))
}
