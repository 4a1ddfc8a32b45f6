package middleware

import (
	"net/http"
	"runtime/debug"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "tienda-api/internal/transport/http/response"
)

// Recovery panic 记录堆栈并返回 500；dev 模式把堆栈放进响应
func Recovery(l *zap.Logger, dev bool) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(l, true, func(c *gin.Context, _ any) {
		body := resp.Error(http.StatusInternalServerError, "")
		if dev {
			body.Stack = string(debug.Stack())
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}
