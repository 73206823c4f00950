package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
	"github.com/ericdynasty/line-oca-bot/internal/rules"
	analysisService "github.com/ericdynasty/line-oca-bot/internal/service/analysis"
	intakeService "github.com/ericdynasty/line-oca-bot/internal/service/intake"
	"github.com/ericdynasty/line-oca-bot/pkg/utils"
)

// Handler 分析服务的HTTP处理器
type Handler struct {
	svc *analysisService.Service
}

// New 创建分析处理器
func New(svc *analysisService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册分析相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
	r.Get("/classify", h.handleClassify)
	r.Get("/rules", h.handleRules)
}

// handleAnalyze 一次性提交表单并返回完整报告
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var form analysisService.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.AnalyzeForm(r.Context(), form)
	if err != nil {
		var verr *intakeService.ValidationError
		if errors.As(err, &verr) {
			utils.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Hint, "field": verr.Field})
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	if res.Failed {
		utils.RespondJSON(w, http.StatusInternalServerError, res)
		return
	}
	utils.RespondJSON(w, http.StatusOK, res)
}

// handleClassify 对单个面向分数分级
func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	dim, ok := assessment.ParseKey(r.URL.Query().Get("dim"))
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "dim must be one of A..J")
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("score"))
	if raw == "" {
		utils.RespondError(w, http.StatusBadRequest, "score is required")
		return
	}

	scored, err := h.svc.Classify(dim, raw)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, scored)
}

type rulesResponse struct {
	Meta          rules.Meta                              `json:"meta"`
	Axes          []assessment.Dimension                  `json:"axes"`
	Dimensions    map[assessment.DimensionKey][]band.Band `json:"dimensions"`
	SpecialStates map[rules.Flag]rules.SpecialState       `json:"specialStates"`
	Rules         []string                                `json:"rules"`
}

// handleRules 返回当前生效的规则概要
func (h *Handler) handleRules(w http.ResponseWriter, _ *http.Request) {
	rs := h.svc.Ruleset()
	resp := rulesResponse{
		Meta:          rs.Meta,
		Axes:          assessment.Dimensions(),
		Dimensions:    rs.Bands,
		SpecialStates: rs.SpecialStates,
		Rules:         rs.RuleIDs(),
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
