package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/error/code"
	"noticeboard-http-service/internal/error/response"
	"noticeboard-http-service/internal/infrastructure/database"
)

type HealthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

func NewHealthController(ctx *gin.Context, container *container.ServiceContainer) *HealthController {
	return &HealthController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc returns a gin handler for the named health check.
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Invalid method", nil)
		}
	}
}

// Ping
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /ping [get]
func (c *HealthController) Ping() {
	response.Success(c.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status reports database reachability and pool statistics
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 500 {object} ErrorResponse
// @Router /health/status [get]
func (c *HealthController) Status() {
	pool := database.NewConnectionPoolFromDB(c.Container.GetDB(), c.Container.Logger())

	ctx, cancel := context.WithTimeout(c.Ctx.Request.Context(), 2*time.Second)
	defer cancel()
	if err := pool.HealthCheck(ctx); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrConnectionFailed, "Database unreachable", gin.H{"status": "unhealthy"})
		return
	}

	stats, err := pool.Stats()
	if err != nil {
		stats = nil
	}
	response.Success(c.Ctx, gin.H{
		"status":   "healthy",
		"database": stats,
	})
}
