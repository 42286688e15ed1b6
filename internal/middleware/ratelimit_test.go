package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/cinebook/cinebook/internal/config"
)

func rateCtx(userID interface{}) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/movies")
	if userID != nil {
		c.Set("user_id", userID)
	}
	return c
}

func TestBuildRateKey(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}

	anon := buildRateKey(cfg, rateCtx(nil))
	assert.Contains(t, anon, "rl:")
	assert.Contains(t, anon, "anon")
	assert.Contains(t, anon, "GET /v1/movies")

	authed := buildRateKey(cfg, rateCtx(float64(42)))
	assert.Contains(t, authed, ":user:42:")
	assert.NotEqual(t, anon, authed)

	ipOnly := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, rateCtx(float64(42)))
	assert.NotContains(t, ipOnly, "42")
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(5), asInt64(int64(5)))
	assert.Equal(t, int64(5), asInt64(5))
	assert.Equal(t, int64(5), asInt64(5.9))
	assert.Equal(t, int64(5), asInt64("5"))
	assert.Equal(t, int64(0), asInt64("nope"))
}

func TestCurrentUserID(t *testing.T) {
	assert.Equal(t, "anon", currentUserID(rateCtx(nil)))
	assert.Equal(t, "42", currentUserID(rateCtx(float64(42))))
	assert.Equal(t, "7", currentUserID(rateCtx(uint64(7))))
	assert.Equal(t, "abc", currentUserID(rateCtx("abc")))
}

func TestNewTokenBucketNoClientIsPassThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)

	c := rateCtx(nil)
	called := false
	next := func(c echo.Context) error { called = true; return nil }
	assert.NoError(t, mw(next)(c))
	assert.True(t, called)
}
