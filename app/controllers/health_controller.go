package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/petition-qc/app/responses"
)

const probeTimeout = 2 * time.Second

// HealthController answers the liveness and readiness probes.
type HealthController struct {
	client    *mongo.Client
	startTime time.Time
}

// NewHealthController wires the health controller.
func NewHealthController(client *mongo.Client) *HealthController {
	return &HealthController{client: client, startTime: time.Now()}
}

// Live reports process liveness without touching dependencies.
func (hc *HealthController) Live(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(hc.startTime).String(),
	})
}

// Ready reports readiness: serving traffic requires the database.
func (hc *HealthController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	status, dbStatus, code := "healthy", "healthy", http.StatusOK
	if err := hc.client.Ping(ctx, readpref.Primary()); err != nil {
		status, dbStatus, code = "degraded", "unreachable", http.StatusServiceUnavailable
	}

	c.JSON(code, responses.HealthResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(hc.startTime).String(),
		Services:  map[string]string{"database": dbStatus},
	})
}
