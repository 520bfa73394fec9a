package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/joelkehle/kyc-screener/internal/llm"
	"github.com/joelkehle/kyc-screener/internal/screening"
	"github.com/joelkehle/kyc-screener/internal/store"
	"github.com/joelkehle/kyc-screener/internal/telemetry"
)

// app is the set of wired components a command needs.
type app struct {
	store        store.Store
	searcher     *screening.Searcher
	orchestrator *screening.Orchestrator
	shutdown     telemetry.ShutdownFunc
}

// newApp wires storage, tracing and the model caller. withLLM=false skips
// the caller so commands that only touch preferences need no API key.
func newApp(ctx context.Context, withLLM bool, loc *llm.LatLng) (*app, error) {
	prefs, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a := &app{store: prefs, shutdown: func(context.Context) error { return nil }}
	if !withLLM {
		return a, nil
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName, logger)
	if err != nil {
		prefs.Close()
		return nil, err
	}
	a.shutdown = shutdown

	caller, err := llm.NewCaller(ctx, cfg.LLMOptions())
	if err != nil {
		a.close()
		return nil, err
	}
	logger.Debug("llm caller ready", zap.String("provider", cfg.Provider), zap.String("model", caller.ModelName()))

	gen := screening.NewSectionGenerator(caller, logger, screening.GeneratorConfig{
		MaxAttempts:    cfg.Generation.MaxAttempts,
		RetryBaseDelay: cfg.Generation.RetryBaseDelay,
		Location:       loc,
	})
	a.orchestrator = screening.NewOrchestrator(gen, logger, screening.OrchestratorConfig{
		Concurrency: cfg.Generation.Concurrency,
	})
	a.searcher = screening.NewSearcher(caller, logger, prefs)
	return a, nil
}

func (a *app) close() {
	if err := a.shutdown(context.Background()); err != nil {
		logger.Warn("flush traces", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("close store", zap.Error(err))
	}
}
