package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-rewards-service/internal/domain"
)

func dialLeaderboard(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLeaderboardStreamPushesSnapshots(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	f.broadcaster.Publish(domain.LeaderboardPage{TotalCount: 1, Page: 1, PerPage: 10})

	conn := dialLeaderboard(t, srv, f.studentToken(t))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var frame struct {
		Type    string                 `json:"type"`
		Payload domain.LeaderboardPage `json:"payload"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if frame.Type != "leaderboard" || frame.Payload.TotalCount != 1 {
		t.Fatalf("unexpected frame: %+v", frame)
	}

	f.broadcaster.Publish(domain.LeaderboardPage{TotalCount: 2, Page: 1, PerPage: 10})
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if frame.Payload.TotalCount != 2 {
		t.Fatalf("expected updated snapshot, got %+v", frame)
	}
}

func TestLeaderboardStreamRejectsMissingToken(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}
