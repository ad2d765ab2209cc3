//go:build integration

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learning-platform/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRateLimiter_Redis(t *testing.T) {
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := cache.NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		c.Set(UserIDKey, uint(42))
		c.Next()
	}, NewRateLimiter(rdb).Limit("lesson_progress", 3, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{204, 204, 204, 429, 429}, codes)

	ttl, err := rdb.TTL(ctx, "rate_limit:lesson_progress:user:42").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// a counter stranded without a TTL gets one on the next request
	stale := "rate_limit:lesson_progress:user:43"
	require.NoError(t, rdb.Set(ctx, stale, 10, 0).Err())
	r2 := gin.New()
	r2.POST("/", func(c *gin.Context) {
		c.Set(UserIDKey, uint(43))
		c.Next()
	}, NewRateLimiter(rdb).Limit("lesson_progress", 3, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	ttl, err = rdb.TTL(ctx, stale).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
