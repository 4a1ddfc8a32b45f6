package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/domain"
	"tienda-api/internal/service"
	"tienda-api/internal/transport/http/ez"
)

type Stats struct {
	svc   *service.StatsService
	guard gin.HandlerFunc
}

func NewStats(svc *service.StatsService, guard gin.HandlerFunc) *Stats {
	return &Stats{svc: svc, guard: guard}
}

func (h *Stats) Priority() int { return 30 }

func (h *Stats) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Snapshot]{
		Method:     http.MethodGet,
		Path:       "/estadisticas",
		Binder:     ez.BindNone,
		Middleware: []gin.HandlerFunc{h.guard},
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Snapshot, error) {
			return h.svc.Snapshot(c.Request.Context())
		},
	})
}
