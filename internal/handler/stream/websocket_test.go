package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
)

type echoMachine struct{}

func (echoMachine) Handle(_ context.Context, userID, text string) ([]report.Segment, error) {
	return []report.Segment{{Text: userID + ":" + text}, {Text: "next", Options: []string{"1", "2"}}}, nil
}

type received struct {
	Type   string         `json:"type"`
	UserID string         `json:"userId"`
	Data   map[string]any `json:"data"`
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	r := chi.NewRouter()
	NewWebSocketHandler(echoMachine{}, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestConsoleRoundTrip(t *testing.T) {
	conn := dial(t)

	if msg := read(t, conn); msg.Type != "result" || msg.Data["type"] != "connected" {
		t.Fatalf("unexpected greeting %+v", msg)
	}

	if err := conn.WriteJSON(map[string]any{"type": "text", "data": map[string]string{"text": "hi"}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	first := read(t, conn)
	if first.Type != "segment" || first.Data["text"] != "u1:hi" || first.UserID != "u1" {
		t.Fatalf("unexpected first segment %+v", first)
	}
	second := read(t, conn)
	if second.Type != "segment" || len(second.Data["options"].([]any)) != 2 {
		t.Fatalf("unexpected second segment %+v", second)
	}
	done := read(t, conn)
	if done.Data["type"] != "done" || done.Data["count"] != float64(2) {
		t.Fatalf("unexpected done message %+v", done)
	}
}

func TestConsoleRejectsUnknownType(t *testing.T) {
	conn := dial(t)
	read(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "audio"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := read(t, conn); msg.Type != "error" {
		t.Fatalf("expected error, got %+v", msg)
	}

	if err := conn.WriteJSON(map[string]any{"type": "text", "userId": "someone-else", "data": map[string]string{"text": "x"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := read(t, conn); msg.Type != "error" || msg.Data["message"] != "user mismatch" {
		t.Fatalf("expected user mismatch, got %+v", msg)
	}
}
