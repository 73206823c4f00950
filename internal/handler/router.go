package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ericdynasty/line-oca-bot/internal/handler/analysis"
	"github.com/ericdynasty/line-oca-bot/internal/handler/intake"
	"github.com/ericdynasty/line-oca-bot/internal/handler/persona"
	"github.com/ericdynasty/line-oca-bot/internal/handler/stream"
	"github.com/ericdynasty/line-oca-bot/internal/metrics"
	personaModel "github.com/ericdynasty/line-oca-bot/internal/model/persona"
	analysisService "github.com/ericdynasty/line-oca-bot/internal/service/analysis"
	"github.com/ericdynasty/line-oca-bot/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(machine intake.Machine, analysisSvc *analysisService.Service, personas personaModel.Store, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Create handlers
	intakeHandler := intake.New(machine, logger.Named("intake"))
	analysisHandler := analysis.New(analysisSvc)
	personaHandler := persona.New(personas)
	consoleHandler := stream.NewWebSocketHandler(machine, logger.Named("console"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(api chi.Router) {
		// Conversational intake over plain HTTP (JSON or SSE)
		intakeHandler.RegisterRoutes(api)

		// One-shot form submission and rule inspection
		analysisHandler.RegisterRoutes(api)

		personaHandler.RegisterRoutes(api)

		// Interactive console over WebSocket
		consoleHandler.RegisterRoutes(api)
	})

	return r
}
