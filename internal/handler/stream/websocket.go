package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Machine is the part of the intake state machine the console needs.
type Machine interface {
	Handle(ctx context.Context, userID, text string) ([]report.Segment, error)
}

// WebSocketHandler 对话控制台的WebSocket处理器
type WebSocketHandler struct {
	machine  Machine
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(machine Machine, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		machine: machine,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{userID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	UserID    string          `json:"userId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	UserID    string      `json:"userId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connection serializes writes; gorilla allows one concurrent writer only.
type connection struct {
	conn   *websocket.Conn
	userID string
	mu     sync.Mutex
}

func (c *connection) send(msgType string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(outgoingMessage{
		Type:      msgType,
		UserID:    c.userID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (c *connection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "userID is required", http.StatusBadRequest)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	conn := &connection{conn: ws, userID: userID}
	h.logger.Info("websocket connected", zap.String("user_id", userID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go h.pingLoop(ctx, conn)

	h.sendInfo(conn, map[string]any{"type": "connected"})

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.UserID != "" && msg.UserID != userID {
			h.sendError(conn, "user mismatch")
			continue
		}
		h.handleMessage(ctx, conn, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *connection, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		h.handleTextMessage(ctx, conn, msg.Data)
	case "ping":
		h.sendInfo(conn, map[string]any{"type": "pong"})
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleTextMessage(ctx context.Context, conn *connection, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(conn, "invalid text payload")
		return
	}

	segments, err := h.machine.Handle(ctx, conn.userID, text.Text)
	if err != nil {
		h.logger.Error("intake event failed", zap.String("user_id", conn.userID), zap.Error(err))
		h.sendError(conn, "failed to handle message")
		return
	}

	for _, segment := range segments {
		if err := conn.send("segment", segment); err != nil {
			h.logger.Warn("websocket write failed", zap.String("user_id", conn.userID), zap.Error(err))
			return
		}
	}
	h.sendInfo(conn, map[string]any{"type": "done", "count": len(segments)})
}

func (h *WebSocketHandler) sendInfo(conn *connection, data map[string]any) {
	if err := conn.send("result", data); err != nil {
		h.logger.Warn("websocket write info failed", zap.String("user_id", conn.userID), zap.Error(err))
	}
}

func (h *WebSocketHandler) sendError(conn *connection, message string) {
	if err := conn.send("error", map[string]string{"message": message}); err != nil {
		h.logger.Warn("websocket write error failed", zap.String("user_id", conn.userID), zap.Error(err))
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
