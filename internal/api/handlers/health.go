package handlers

import (
	"context"
	"net/http"
	"time"

	"carmarket-backend/pkg/redis"

	"github.com/gin-gonic/gin"
)

// DatabasePinger reports whether the primary store is reachable.
type DatabasePinger func(ctx context.Context) error

// RedisHealth is satisfied by *redis.Client.
type RedisHealth interface {
	HealthCheck(ctx context.Context) redis.HealthStatus
	GetConnectionStats() map[string]interface{}
}

type HealthHandler struct {
	pingDB      DatabasePinger
	redisClient RedisHealth
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
}

func NewHealthHandler(pingDB DatabasePinger, redisClient RedisHealth) *HealthHandler {
	return &HealthHandler{
		pingDB:      pingDB,
		redisClient: redisClient,
	}
}

// HealthCheck reports 503 when MongoDB is down. Redis only caches and rate
// limits, so losing it marks the service degraded.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Timestamp: time.Now(),
		Services:  make(map[string]interface{}),
	}

	mongoStatus := h.checkMongoDB(c.Request.Context())
	response.Services["mongodb"] = mongoStatus

	redisStatus := h.checkRedis(c.Request.Context())
	response.Services["redis"] = redisStatus

	switch {
	case !mongoStatus["healthy"].(bool):
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
	case !redisStatus["healthy"].(bool):
		response.Status = "degraded"
		c.JSON(http.StatusOK, response)
	default:
		response.Status = "healthy"
		c.JSON(http.StatusOK, response)
	}
}

func (h *HealthHandler) checkMongoDB(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service": "mongodb",
		"healthy": false,
	}

	if h.pingDB == nil {
		status["error"] = "Database client not initialized"
		return status
	}

	if err := h.pingDB(ctx); err != nil {
		status["error"] = err.Error()
		return status
	}

	status["healthy"] = true
	status["message"] = "Connected"
	return status
}

func (h *HealthHandler) checkRedis(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service": "redis",
		"healthy": false,
	}

	if h.redisClient == nil {
		status["error"] = "Redis client not initialized"
		return status
	}

	healthStatus := h.redisClient.HealthCheck(ctx)
	status["healthy"] = healthStatus.IsConnected
	status["connectionInfo"] = healthStatus.ConnectionInfo
	status["responseTime"] = healthStatus.ResponseTime.String()
	status["lastPing"] = healthStatus.LastPing
	if healthStatus.Error != "" {
		status["error"] = healthStatus.Error
	}
	status["connectionStats"] = h.redisClient.GetConnectionStats()

	return status
}
