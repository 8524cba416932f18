package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/channelscope/models"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// StatsProvider exposes rendering engine state.
type StatsProvider interface {
	Available() bool
	Stats() models.SessionStats
}

// Health returns a handler for GET /api/health.
//
// Degrades when no browser binary can be resolved or > 80% of session slots
// are busy.
func Health(sp StatsProvider, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := sp.Stats()
		available := sp.Available()

		status := "healthy"
		if !available || (stats.MaxSessions > 0 && stats.ActiveSessions > int(float64(stats.MaxSessions)*0.8)) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:          status,
			Uptime:          time.Since(startTime).Round(time.Second).String(),
			EngineAvailable: available,
			SessionStats:    stats,
			Version:         Version,
		})
	}
}
