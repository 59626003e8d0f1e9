package handlers

import (
	"context"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db    database.Database
	redis database.RedisClient
}

func NewHealthHandler(db database.Database, redis database.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]interface{}{
		"database": h.checkDatabase(ctx),
		"redis":    h.checkRedis(ctx),
	}

	status := "healthy"
	for _, state := range checks {
		if state != "healthy" && state != "not_configured" {
			status = "degraded"
			break
		}
	}

	utils.HealthCheck(c, status, checks)
}

// Readiness handles GET /ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.checkDatabase(ctx) != "healthy" {
		utils.HealthCheck(c, "degraded", map[string]interface{}{"database": "unhealthy"})
		return
	}

	utils.HealthCheck(c, "healthy", map[string]interface{}{"database": "healthy"})
}

// Liveness handles GET /live. It only confirms the process is serving.
func (h *HealthHandler) Liveness(c *gin.Context) {
	utils.HealthCheck(c, "healthy", nil)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) string {
	sqlDB, err := h.db.DB().WithContext(ctx).DB()
	if err != nil {
		return "unhealthy"
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

func (h *HealthHandler) checkRedis(ctx context.Context) string {
	if h.redis == nil {
		return "not_configured"
	}
	if err := h.redis.Ping(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}
