package health

import (
	"context"
	"net/http"
	"time"

	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const readyTimeout = 2 * time.Second

// Handler answers liveness and readiness probes.
type Handler struct {
	service string
	version string
	db      *gorm.DB
	rdb     *redis.Client
}

// NewHandler builds a probe handler. A nil redis client is reported as disabled.
func NewHandler(service, version string, db *gorm.DB, rdb *redis.Client) *Handler {
	return &Handler{service: service, version: version, db: db, rdb: rdb}
}

func (h *Handler) Live(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status":  "alive",
		"service": h.service,
		"version": h.version,
	}, nil)
}

func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	deps := gin.H{}
	ready := true

	if err := h.pingDB(ctx); err != nil {
		deps["database"] = err.Error()
		ready = false
	} else {
		deps["database"] = "ok"
	}

	switch {
	case h.rdb == nil:
		deps["redis"] = "disabled"
	case h.rdb.Ping(ctx).Err() != nil:
		deps["redis"] = "unreachable"
		ready = false
	default:
		deps["redis"] = "ok"
	}

	if !ready {
		response.Error(c, http.StatusServiceUnavailable, apperror.CodeDependencyUnavailable,
			"one or more dependencies unavailable", deps)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":       "ready",
		"dependencies": deps,
	}, nil)
}

func (h *Handler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func RegisterRoutes(r gin.IRoutes, h *Handler) {
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
}
