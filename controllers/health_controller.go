package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	// Mặc định trạng thái OK
	response := gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	}
	status := http.StatusOK

	for _, hc := range h.opts.HealthChecks {
		if err := hc.Check(ctx); err != nil {
			h.log.Error("health check failed", "dependency", hc.Name, "error", err)
			response[hc.Name] = "error: " + err.Error()
			response["status"] = "error"
			response["message"] = "Service is unhealthy"
			status = http.StatusInternalServerError
			continue
		}
		response[hc.Name] = "ok"
	}

	c.JSON(status, response)
}

// GET /ping
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
