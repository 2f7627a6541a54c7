package app

import (
	"fmt"
	"net/http"

	"github.com/fplkit/planner/external/fplapi"
	"github.com/fplkit/planner/internal/config"
	"github.com/fplkit/planner/internal/infrastructure/overrides"
	"github.com/fplkit/planner/internal/infrastructure/repository/memory"
	"github.com/fplkit/planner/internal/infrastructure/repository/postgres"
	"github.com/fplkit/planner/internal/interfaces/httpapi"
	"github.com/fplkit/planner/internal/platform/logging"
	"github.com/fplkit/planner/internal/platform/resilience"
	"github.com/fplkit/planner/internal/usecase"
)

// NewHTTPServer wires the data provider, planning services and HTTP router.
// The returned cleanup releases the database pool when one was opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var data usecase.DataProvider
	if cfg.FPLEnabled {
		data = fplapi.NewClient(fplapi.ClientConfig{
			BaseURL:    cfg.FPLBaseURL,
			Timeout:    cfg.FPLTimeout,
			MaxRetries: cfg.FPLMaxRetries,
			CacheTTL:   cfg.CacheTTL,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FPLCircuitEnabled,
				FailureThreshold: cfg.FPLCircuitFailureCount,
				OpenTimeout:      cfg.FPLCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenMaxReq,
			},
		})
	} else {
		logger.Info("fpl api disabled, serving seeded data", "reason", "FPL_ENABLED=false")
		data = memory.Seeded()
	}

	overrideStore := overrides.NewFileStore(cfg.OverridesPath)

	engine := usecase.NewXPService(usecase.EngineConfig{
		Horizon:            cfg.EngineHorizon,
		FixtureFactor:      cfg.EngineFixtureFactor,
		HomeBoost:          cfg.EngineHomeBoost,
		AwayPenalty:        cfg.EngineAwayPenalty,
		BonusFactor:        cfg.EngineBonusFactor,
		UseThreatModel:     cfg.EngineUseThreatModel,
		PenaltyTakerNames:  cfg.EnginePenaltyTakerNames,
		SetPieceTakerNames: cfg.EngineSetPieceTakerNames,
	})
	lineup := usecase.NewLineupService()

	planner := usecase.NewPlannerService(data, overrideStore, engine, lineup, logger)
	planner.SetMaxWorkers(cfg.EngineMaxWorkers)
	backtest := usecase.NewBacktestService(data, overrideStore, engine, logger)

	cleanup := func() error { return nil }
	if cfg.DBEnabled {
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		predictionLog := postgres.NewPredictionLogRepository(db)
		planner.SetPredictionLog(predictionLog)
		backtest.SetBacktestLog(predictionLog)
		cleanup = db.Close
	}

	handler := httpapi.NewHandler(planner, backtest, overrideStore, logger)
	handler.SetBacktestLookback(cfg.BacktestLookback)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}
