package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tienda-api/internal/core/server"
	"tienda-api/internal/transport/http/ez"
	mdw "tienda-api/internal/transport/http/middleware"
	resp "tienda-api/internal/transport/http/response"
)

// Pinger /ready 使用的依赖检查（*database.Store）
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Log     *zap.Logger
	Dev     bool
	DB      Pinger
	Limiter *mdw.Limiter
	Modules *Registry

	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORSOrigins    []string

	UploadDir    string
	UploadPrefix string
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 10 * time.Second
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 16 << 20
	}
	if d.Limiter == nil {
		d.Limiter = mdw.NewLimiter(300)
	}

	r := server.NewRouter()

	// 中间件：AccessLog 在 Recovery 外层，panic 的 500 也会记录
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.Metrics(),
		mdw.Recovery(d.Log, d.Dev),
		corsFor(d.CORSOrigins),
		d.Limiter.Handler(),
		mdw.MaxBodyBytes(d.MaxBodyBytes),
		mdw.Timeout(d.RequestTimeout),
	)
	r.NoRoute(resp.NoRoute)

	// 运维
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ready", func(c *gin.Context) {
		if d.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			d.Log.Warn("readiness check failed", zap.Error(err))
			resp.Abort(c, http.StatusServiceUnavailable, "Base de datos no disponible")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.UploadDir != "" {
		prefix := d.UploadPrefix
		if prefix == "" {
			prefix = "/uploads"
		}
		r.Static(prefix, d.UploadDir)
	}

	// 资源路由挂在根路径
	if d.Modules != nil {
		d.Modules.MountAll(ez.New(&r.RouterGroup, d.Log, d.Dev))
	}
	return r
}

func corsFor(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", mdw.KeyRequestID},
		ExposeHeaders: []string{mdw.KeyRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
