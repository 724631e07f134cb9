package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// handleJobStream godoc
// @Summary      Stream embedding job progress
// @Description  WebSocket stream of job snapshots. The server closes the stream after a completed or failed snapshot. Browsers may pass the token as access_token.
// @Tags         Embeddings
// @Security     BearerAuth
// @Param        access_token  query  string  false  "Bearer token for browser clients"
// @Success      101  {object}  domain.JobSnapshot  "Switching protocols; each message is a snapshot"
// @Failure      401  {object}  ErrorResponse
// @Router       /embeddings/job/stream [get]
func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	metrics.WebSocketConnections.Inc()
	defer metrics.WebSocketConnections.Dec()

	updates, cancel := s.jobs.Subscribe()
	defer cancel()

	streamSnapshots(conn, updates)
}

// streamSnapshots writes each snapshot as a JSON message until a terminal
// snapshot has been sent, the subscription closes or the client goes away.
func streamSnapshots(conn *websocket.Conn, updates <-chan domain.JobSnapshot) {
	defer conn.Close()

	clientGone := make(chan struct{})
	go readUntilClosed(conn, clientGone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
			if snap.Status.IsTerminal() {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(snap.Status)))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-clientGone:
			return
		}
	}
}

// readUntilClosed drains client frames so pongs and close frames are
// processed, and signals when the connection ends.
func readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket closed unexpectedly: %v", err)
			}
			return
		}
	}
}

// checkWebSocketOrigin accepts non-browser clients (no Origin header),
// same-host origins and the configured CORS origins.
func (s *Server) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if originAllowed(s.corsOrigins, origin) {
		return true
	}
	return websocket.IsWebSocketUpgrade(r) && sameHost(origin, r.Host)
}

func sameHost(origin, host string) bool {
	for _, scheme := range []string{"http://", "https://"} {
		if origin == scheme+host {
			return true
		}
	}
	return false
}
