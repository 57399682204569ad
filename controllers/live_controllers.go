package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/utils"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type LiveController struct {
	Hub *live.Hub
}

func NewLiveController(hub *live.Hub) *LiveController {
	return &LiveController{Hub: hub}
}

// Serve upgrades the request and parks it on the hub until the peer
// disconnects.
func (lc *LiveController) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}
	client := lc.Hub.Register(conn)
	client.ReadLoop()
}
