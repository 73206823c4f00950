package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
	"github.com/ericdynasty/line-oca-bot/internal/config"
	"github.com/ericdynasty/line-oca-bot/internal/handler"
	"github.com/ericdynasty/line-oca-bot/internal/metrics"
	"github.com/ericdynasty/line-oca-bot/internal/model/persona"
	"github.com/ericdynasty/line-oca-bot/internal/rules"
	"github.com/ericdynasty/line-oca-bot/internal/service/analysis"
	"github.com/ericdynasty/line-oca-bot/internal/service/intake"
	"github.com/ericdynasty/line-oca-bot/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	// 启动时先加载一次规则，坏文件会在这里记录
	ruleStore := rules.NewStore(cfg.Rules.Path, logger.Named("rules"), rules.WithReloadHook(m.RuleReload))
	active := ruleStore.Current()
	logger.Info("rules active",
		zap.String("source", active.Meta.Source),
		zap.Int("rules", len(active.Rules)),
	)

	if cfg.Rules.Watch {
		watcher := rules.NewWatcher(ruleStore, logger.Named("rules"))
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("rules hot reload disabled", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	renderer := report.NewRenderer(logger.Named("report"),
		report.WithMaxSegmentLen(cfg.Report.MaxSegmentLen),
		report.WithPersonas(personaStore),
	)
	analysisSvc := analysis.NewService(ruleStore, renderer,
		analysis.WithRecorder(m),
		analysis.WithLogger(logger.Named("analysis")),
		analysis.WithRuleCap(cfg.Report.RuleCap),
	)

	sessions := session.NewMemoryStore(cfg.Session.MaxSessions, cfg.Session.TTL,
		session.WithEvictionHook(m.SessionEvicted),
		session.WithLogger(logger.Named("session")),
	)
	go sessions.RunSweeper(ctx, cfg.Session.SweepInterval)

	machine := intake.NewMachine(sessions, analysisSvc,
		intake.WithRecorder(m),
		intake.WithLogger(logger.Named("intake")),
	)

	router := handler.NewRouter(machine, analysisSvc, personaStore, m, logger)

	startServer(ctx, logger, cfg.Server, router)
}

func startServer(ctx context.Context, logger *zap.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("OCA intake bot listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
