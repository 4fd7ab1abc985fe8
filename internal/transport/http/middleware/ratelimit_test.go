package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"contactbook/internal/transport/http/middleware"
)

func newLimitedRouter(limit float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RateLimitPerIP(limit, burst, 128, time.Hour))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func hit(router *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitPerIP(t *testing.T) {
	router := newLimitedRouter(0.001, 2)

	require.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1000"))
	require.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1000"))
	require.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1:1000"))

	// A different client has its own bucket.
	require.Equal(t, http.StatusOK, hit(router, "10.0.0.2:1000"))
}

func TestRateLimitSeparatePorts(t *testing.T) {
	router := newLimitedRouter(0.001, 1)

	// Same host behind different source ports shares one bucket.
	require.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1000"))
	require.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1:2000"))
}
