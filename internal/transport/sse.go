package transport

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
)

// ServeSSE streams the connection's events to the client as server-sent
// events until the client disconnects, the hub closes the connection, or a
// write fails. Blocks for the lifetime of the stream; run it on the request
// goroutine.
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request, conn *Connection) {
	defer h.Unregister(conn)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-conn.done:
			return
		case event := <-conn.events:
			if err := sse.Encode(w, sse.Event{Event: event.Name, Data: event.Payload}); err != nil {
				h.log.Debug("sse write failed",
					slog.String("conn_id", conn.id),
					slog.String("event", event.Name),
				)
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
