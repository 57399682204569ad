package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
)

type SystemController struct {
	Store   store.Store
	Hub     *live.Hub
	Started time.Time
}

func NewSystemController(st store.Store, hub *live.Hub) *SystemController {
	return &SystemController{Store: st, Hub: hub, Started: time.Now()}
}

// GetInfo reports which backend is active so terminals can show the
// connection mode without probing the database themselves.
func (sc *SystemController) GetInfo(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "System info", gin.H{
		"database": sc.Store.Mode(),
		"realtime": true,
		"features": gin.H{
			"change_capture": sc.Store.SupportsChangeCapture(),
			"analytics":      true,
			"offline_queue":  true,
		},
		"live_clients":   sc.Hub.ClientCount(),
		"uptime_seconds": int64(time.Since(sc.Started).Seconds()),
	})
}

// Health
func (sc *SystemController) Health(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "OK", gin.H{"database": sc.Store.Mode()})
}
