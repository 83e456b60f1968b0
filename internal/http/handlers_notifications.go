package httpx

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/splax/learnhub/internal/routing"
	"github.com/splax/learnhub/internal/ws"
)

// handleNotificationStream pushes the caller's notifications over a websocket
// when the client asks for an upgrade, and as Server-Sent Events otherwise.
func (r *Router) handleNotificationStream(w http.ResponseWriter, req *routing.Request) {
	if r.svc.Hub == nil {
		writeError(w, http.StatusServiceUnavailable, "Notifications unavailable")
		return
	}
	if websocket.IsWebSocketUpgrade(req.HTTP) {
		r.streamWebsocket(w, req.HTTP, req.CallerID())
		return
	}
	r.streamEvents(w, req.HTTP, req.CallerID())
}

func (r *Router) streamWebsocket(w http.ResponseWriter, req *http.Request, userID int64) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade has already answered the client.
		r.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.svc.Hub.Register(userID, client)
	r.trackStream("websocket", 1)
	defer func() {
		r.svc.Hub.Unregister(userID, client)
		client.Close()
		r.trackStream("websocket", -1)
	}()

	closed := make(chan struct{})
	go func() {
		client.ReadUntilClosed()
		close(closed)
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			if err := client.Ping(); err != nil {
				return
			}
		}
	}
}

func (r *Router) streamEvents(w http.ResponseWriter, req *http.Request, userID int64) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := ws.NewSSEClient(w, flusher, r.logger)
	r.svc.Hub.Register(userID, client)
	r.trackStream("sse", 1)
	defer func() {
		client.Close()
		r.svc.Hub.Unregister(userID, client)
		r.trackStream("sse", -1)
	}()

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-req.Context().Done():
			return
		case <-client.Done():
			return
		case <-ticker.C:
			if err := client.Heartbeat(); err != nil {
				return
			}
		}
	}
}
