package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
	"github.com/ericdynasty/line-oca-bot/internal/service/session"
	"github.com/ericdynasty/line-oca-bot/pkg/utils"
)

// Machine is the part of the intake state machine the handler needs.
type Machine interface {
	Handle(ctx context.Context, userID, text string) ([]report.Segment, error)
}

// Handler 对话事件的HTTP处理器
type Handler struct {
	machine Machine
	logger  *zap.Logger
}

// New 创建对话事件处理器
func New(machine Machine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{machine: machine, logger: logger}
}

// RegisterRoutes 注册对话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/events", h.handleEvent)
}

type eventRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

type eventResponse struct {
	Segments []report.Segment `json:"segments"`
}

// handleEvent 处理一条用户消息并返回回复分段
func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	var payload eventRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.UserID = strings.TrimSpace(payload.UserID)
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	segments, err := h.machine.Handle(r.Context(), payload.UserID, payload.Text)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrUserIDRequired) {
			status = http.StatusBadRequest
		}
		h.logger.Error("intake event failed", zap.String("user_id", payload.UserID), zap.Error(err))
		utils.RespondError(w, status, "failed to handle event")
		return
	}

	if utils.WantsEventStream(r) {
		h.stream(w, segments)
		return
	}
	utils.RespondJSON(w, http.StatusOK, eventResponse{Segments: segments})
}

// stream 以SSE逐段推送回复
func (h *Handler) stream(w http.ResponseWriter, segments []report.Segment) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	for _, segment := range segments {
		utils.SendSSEEvent(w, flusher, "segment", segment)
	}
	utils.SendSSEEvent(w, flusher, "done", map[string]int{"count": len(segments)})
}
