package transport

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// ServeWebSocket pumps the connection's events over an upgraded websocket.
// The read side is drained only to detect the client going away; signaling
// requests still travel over the regular HTTP actions.
func (h *Hub) ServeWebSocket(ws *websocket.Conn, conn *Connection) {
	defer h.Unregister(conn)
	defer ws.Close()

	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-clientGone:
			return
		case <-conn.done:
			return
		case event := <-conn.events:
			if err := ws.WriteJSON(event); err != nil {
				h.log.Debug("websocket write failed",
					slog.String("conn_id", conn.id),
					slog.String("event", event.Name),
				)
				return
			}
		case <-heartbeat.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
