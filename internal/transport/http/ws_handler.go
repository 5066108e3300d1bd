package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/domain"
)

// WSHandler streams leaderboard snapshots to websocket clients. Clients get
// the latest snapshot on connect and a fresh one after every scored answer.
type WSHandler struct {
	broadcaster *app.LeaderboardBroadcaster
	upgrader    websocket.Upgrader
}

func NewWSHandler(broadcaster *app.LeaderboardBroadcaster) *WSHandler {
	return &WSHandler{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type leaderboardFrame struct {
	Type    string                 `json:"type"`
	Payload domain.LeaderboardPage `json:"payload"`
}

// ServeWS upgrades the request and pushes snapshots until the client
// disconnects. Writes happen on a single goroutine; the read loop only
// detects the close.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.broadcaster.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case page, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(leaderboardFrame{Type: "leaderboard", Payload: page}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
