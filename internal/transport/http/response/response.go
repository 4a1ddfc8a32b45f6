package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 统一错误响应；stack 只在开发模式输出
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"detalles,omitempty"`
	Stack   string   `json:"stack,omitempty"`
}

// NotFoundBody 未匹配路由
type NotFoundBody struct {
	Error  string `json:"error"`
	Method string `json:"metodo"`
	Path   string `json:"ruta"`
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) ErrorBody {
	msg := MsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return ErrorBody{Error: msg}
}

// Abort 写错误并终止后续中间件
func Abort(c *gin.Context, code int, customMsg string) {
	c.AbortWithStatusJSON(code, Error(code, customMsg))
}

func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, NotFoundBody{
		Error:  "Ruta no encontrada",
		Method: c.Request.Method,
		Path:   c.Request.URL.RequestURI(),
	})
}
