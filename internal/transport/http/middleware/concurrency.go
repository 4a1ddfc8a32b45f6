package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "tienda-api/internal/transport/http/response"
)

// Limiter 限制同时在处理的请求数（保护 DB 连接池），关停时用 Drain 等待在途请求结束
type Limiter struct {
	sem *semaphore.Weighted
	max int64
}

func NewLimiter(max int64) *Limiter {
	if max <= 0 {
		max = 1
	}
	return &Limiter{sem: semaphore.NewWeighted(max), max: max}
}

func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := l.sem.Acquire(c.Request.Context(), 1); err != nil {
			resp.Abort(c, http.StatusServiceUnavailable, "")
			return
		}
		defer l.sem.Release(1)
		c.Next()
	}
}

// Drain 占满全部名额即代表没有在途请求；之后的请求会一直排队直到 ctx 结束
func (l *Limiter) Drain(ctx context.Context) error {
	return l.sem.Acquire(ctx, l.max)
}
