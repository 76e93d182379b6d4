package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nqh2610/lophoconline-sub002/internal/transport"
	"github.com/nqh2610/lophoconline-sub002/lib/logger/sl"
)

// EventsController exposes the push channel in two flavors behind the same
// hub: a server-sent event stream and a websocket. Clients must wait for
// their own connected event before issuing join.
type EventsController struct {
	hub      *transport.Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewEventsController(hub *transport.Hub, log *slog.Logger) *EventsController {
	if log == nil {
		log = slog.Default()
	}
	return &EventsController{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *EventsController) Stream(ctx *gin.Context) {
	roomID := ctx.Query("roomId")
	peerID := ctx.Query("peerId")
	if roomID == "" || peerID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "roomId and peerId are required"})
		return
	}

	conn := c.hub.Register(roomID, peerID)
	c.hub.ServeSSE(ctx.Writer, ctx.Request, conn)
}

func (c *EventsController) StreamWebSocket(ctx *gin.Context) {
	roomID := ctx.Query("roomId")
	peerID := ctx.Query("peerId")
	if roomID == "" || peerID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "roomId and peerId are required"})
		return
	}

	ws, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Error("failed to upgrade connection", sl.Err(err))
		return
	}

	conn := c.hub.Register(roomID, peerID)
	c.hub.ServeWebSocket(ws, conn)
}
