package handlers

import (
	"context"
	"net/http"

	"github.com/TanakaNakamura/factory-erp-api/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseID reads a UUID path parameter, pushing InvalidRequest on failure
func parseID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(errors.NewInvalidRequest("invalid "+what+" id", err.Error()))
		return uuid.Nil, false
	}
	return id, true
}

// bind decodes the JSON body, pushing InvalidRequest on failure
func bind(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		_ = c.Error(errors.NewInvalidRequest("invalid request", err.Error()))
		return false
	}
	return true
}

// bindQuery decodes query parameters, pushing InvalidRequest on failure
func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		_ = c.Error(errors.NewInvalidRequest("invalid query", err.Error()))
		return false
	}
	return true
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /health. A nil pinger reports healthy.
// @Summary      Health check
// @Description  Reports the service status, including the database when one is configured.
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func Health(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pinger != nil {
			if err := pinger.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Service: "factory-erp-api"})
				return
			}
		}
		c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Service: "factory-erp-api"})
	}
}
