package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"github.com/joho/godotenv"
	"github.com/sentra-sec/sentinel/internal/api"
	"github.com/sentra-sec/sentinel/internal/config"
	"github.com/sentra-sec/sentinel/internal/engine"
	"github.com/sentra-sec/sentinel/internal/engine/checkers"
	"github.com/sentra-sec/sentinel/internal/engine/detectors"
	"github.com/sentra-sec/sentinel/internal/observer"
	"github.com/sentra-sec/sentinel/internal/pipeline"
	"github.com/sentra-sec/sentinel/internal/registry"
	"github.com/sentra-sec/sentinel/internal/storage"
	"github.com/sentra-sec/sentinel/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := mustBuildLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck // best-effort flush

	logger.Info("starting sentinel server",
		zap.String("http_port", cfg.HTTPPort),
		zap.Float32("block_threshold", cfg.BlockThreshold),
		zap.Float32("escalate_threshold", cfg.EscalateThreshold),
		zap.String("fallback_policy", cfg.Fallback.String()),
		zap.Bool("fail_closed", cfg.FailClosed),
		zap.Bool("observer_enabled", cfg.ObserverEnabled()),
	)

	// Registries with the built-in component sets
	detReg := registry.New[engine.Detector]()
	for _, d := range detectors.Defaults() {
		if err := detReg.Register(d.Name(), d.Version(), 1.0, d); err != nil {
			logger.Fatal("failed to register detector", zap.String("name", d.Name()), zap.Error(err))
		}
	}
	chkReg := registry.New[engine.Checker]()
	for _, c := range checkers.Defaults() {
		if err := chkReg.Register(c.Name(), c.Version(), 1.0, c); err != nil {
			logger.Fatal("failed to register checker", zap.String("name", c.Name()), zap.Error(err))
		}
	}

	// Optional YAML component policy
	if cfg.PolicyFile != "" {
		policy, err := config.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			logger.Fatal("failed to load component policy", zap.String("file", cfg.PolicyFile), zap.Error(err))
		}
		if err := config.ApplyPolicy(detReg, policy.Detectors); err != nil {
			logger.Fatal("failed to apply detector policy", zap.Error(err))
		}
		if err := config.ApplyPolicy(chkReg, policy.Checkers); err != nil {
			logger.Fatal("failed to apply checker policy", zap.Error(err))
		}
		logger.Info("component policy applied", zap.String("file", cfg.PolicyFile))
	}

	// Gate validators
	inputValidator := engine.NewInputValidator(detReg, cfg.DetectorTimeout, logger)
	outputValidator := engine.NewOutputValidator(chkReg, cfg.CheckerTimeout,
		engine.OutputAggregation{CooccurrenceBonus: cfg.CooccurrenceBonus}, logger)

	// Observer (Gate 3) is built only when a judge API key is configured.
	var obs observer.Observer
	if cfg.ObserverEnabled() {
		obs = observer.NewLLMObserver(observer.LLMObserverConfig{
			BaseURL: cfg.ObserverBaseURL,
			APIKey:  cfg.ObserverAPIKey,
			Model:   cfg.ObserverModel,
		}, logger)
		logger.Info("llm observer enabled", zap.String("model", cfg.ObserverModel))
	} else {
		logger.Info("no observer API key set, gate 3 disabled (fallback policy applies)")
	}

	pipe := pipeline.New(inputValidator, outputValidator, obs, cfg.PipelineConfig(), logger)

	// Decision event storage: ClickHouse when configured, log fallback otherwise.
	var writer storage.EventWriter
	if cfg.ClickHouseDSN != "" {
		chWriter, err := storage.NewClickHouseWriter(cfg.ClickHouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log writer",
				zap.Error(err),
			)
			writer = storage.NewLogWriter(logger)
		} else {
			writer = chWriter
			logger.Info("clickhouse writer connected")
		}
	} else {
		writer = storage.NewLogWriter(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
	}
	defer writer.Close()

	// Postgres project store (optional: auth degrades to format checks)
	var pgStore *store.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(context.Background()); err != nil {
			logger.Fatal("failed to ping postgres", zap.Error(err))
		}
		pgStore = store.NewStore(db)
		logger.Info("postgres connected")
	} else {
		logger.Warn("no POSTGRES_DSN set, API keys are format-checked only")
	}

	deps := &api.Dependencies{
		Pipeline:     pipe,
		Detectors:    detReg,
		Checkers:     chkReg,
		Writer:       writer,
		Store:        pgStore,
		Logger:       logger,
		CacheTTL:     cfg.AuthCacheTTL,
		BlockMessage: cfg.BlockMessage,
	}
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * cfg.ObserverTimeout,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("sentinel server stopped")
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
