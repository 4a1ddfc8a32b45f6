package ez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mdw "tienda-api/internal/transport/http/middleware"
	resp "tienda-api/internal/transport/http/response"
	"tienda-api/internal/validation"
)

// EZ 路由分组的轻封装：统一绑定、错误映射和 500 日志
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
	dev bool
}

func New(g *gin.RouterGroup, log *zap.Logger, dev bool) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log, dev: dev}
}

// Group 子分组，共享 logger 与 dev 标记
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log, dev: e.dev}
}

// 绑定方式
type Binder string

const (
	BindJSON    Binder = "json"    // 从 JSON 绑定到结构体
	BindQuery   Binder = "query"   // 从 URL ?a=b 绑定
	BindPayload Binder = "payload" // JSON 对象 / multipart / urlencoded → validation.Payload
	BindNone    Binder = "none"    // 不绑定，自己从 c.Param 取
)

// AErr 带状态码的错误；Msg 为空时使用 resp.MsgMap 的默认文案
type AErr struct {
	Code    int
	Msg     string
	Details []string
	Err     error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("action error %d", e.Code)
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: http.StatusBadRequest, Msg: msg} }

// Invalid 400 + 全部校验失败原因
func Invalid(details []string) error {
	return &AErr{Code: http.StatusBadRequest, Details: details}
}
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: http.StatusConflict, Msg: msg} }
func Internal(err error) error      { return &AErr{Code: http.StatusInternalServerError, Err: err} }

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method     string // "GET" | "POST" | "PUT" | "DELETE"
	Path       string // 例："/auth/login"、"/usuarios/:id"
	Binder     Binder
	Status     int // 成功状态码，默认 200
	Middleware []gin.HandlerFunc
	Handler    func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		if err := e.bind(c, a.Binder, &in); err != nil {
			e.fail(c, err)
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		c.JSON(status, out)
	}
	handlers := append(append([]gin.HandlerFunc{}, a.Middleware...), h)

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default: // 默认 POST
		e.g.POST(a.Path, handlers...)
	}
}

func (e EZ) bind(c *gin.Context, b Binder, in any) error {
	var err error
	switch b {
	case BindJSON:
		err = c.ShouldBindJSON(in)
	case BindQuery:
		err = c.ShouldBindQuery(in)
	case BindPayload:
		p, ok := in.(*validation.Payload)
		if !ok {
			return Internal(fmt.Errorf("BindPayload requires *validation.Payload, got %T", in))
		}
		*p, err = readPayload(c)
	default: // BindNone
		return nil
	}
	if err == nil {
		return nil
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return &AErr{Code: http.StatusRequestEntityTooLarge, Err: err}
	}
	return &AErr{Code: http.StatusBadRequest, Err: err}
}

// readPayload 按 Content-Type 把请求体解成松散的 Payload；空体视为空对象
func readPayload(c *gin.Context) (validation.Payload, error) {
	p := validation.Payload{}
	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		for k, v := range form.Value {
			if len(v) > 0 {
				p[k] = v[0]
			}
		}
	case gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				p[k] = v[0]
			}
		}
	default:
		if c.Request.Body == nil {
			return p, nil
		}
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&p); err != nil {
			if errors.Is(err, io.EOF) {
				return validation.Payload{}, nil
			}
			return nil, err
		}
		if p == nil {
			// 请求体为 JSON null
			p = validation.Payload{}
		}
	}
	return p, nil
}

// fail 统一错误出口：AErr 按码返回；其余一律 500，只记日志不外泄
func (e EZ) fail(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		resp.Abort(c, http.StatusGatewayTimeout, "")
		return
	}
	var ae *AErr
	if !errors.As(err, &ae) {
		ae = &AErr{Code: http.StatusInternalServerError, Err: err}
	}
	if ae.Code >= http.StatusInternalServerError {
		e.log.Error("request failed",
			zap.String("rid", mdw.RequestIDFrom(c.Request.Context())),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		body := resp.Error(ae.Code, "")
		if e.dev {
			body.Stack = err.Error()
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(ae.Code, body)
		return
	}
	body := resp.Error(ae.Code, ae.Msg)
	body.Details = ae.Details
	c.AbortWithStatusJSON(ae.Code, body)
}
