package rest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/cache"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/config"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/database"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/explainer"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/metrics"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/repository"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/scorer"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/service/decision"
)

// Server is the API server with its owned connections.
type Server struct {
	config     *config.Config
	httpServer *http.Server
	handler    *Handler
	logger     *slog.Logger
	db         *sql.DB
	redis      *redis.Client
}

// NewServer wires the full dependency graph from configuration.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	zapLogger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("creating zap logger: %w", err)
	}

	pool, err := database.Connect(ctx, &cfg.Database, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	sqlDB := database.SQLDB(pool)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	predictions := repository.NewPredictionRepository(sqlDB)
	alerts := repository.NewAlertRepository(sqlDB)

	riskScorer, err := buildScorer(&cfg.Model)
	if err != nil {
		return nil, err
	}

	// A missing evaluation report disables the model metrics endpoint but
	// not the service.
	modelMetrics, err := scorer.LoadModelMetrics(cfg.Model.MetricsPath)
	if err != nil {
		logger.Warn("model metrics unavailable", "path", cfg.Model.MetricsPath, "error", err)
		modelMetrics = nil
	}

	var explain decision.Explainer
	if cfg.Explainer.Enabled {
		explain = explainer.New(cfg.Explainer.URL, cfg.Explainer.APIKey, cfg.Explainer.Timeout)
	}

	decisions := decision.NewService(
		riskScorer,
		predictions,
		alerts,
		explain,
		ruleConfig(&cfg.Rules),
		metrics.NewCollector(nil),
		logger,
	)

	handler := NewHandler(decisions, predictions, alerts, modelMetrics, logger)

	server := &Server{
		config:  cfg,
		handler: handler,
		logger:  logger,
		db:      sqlDB,
		redis:   redisClient,
	}

	middlewares := []Middleware{
		requestIDMiddleware,
		loggingMiddleware(logger),
		metricsMiddleware,
		recoveryMiddleware(logger),
	}
	if cfg.RateLimit.Enabled {
		limiter := cache.NewRedisRateLimiter(redisClient, zapLogger)
		middlewares = append(middlewares, rateLimitMiddleware(limiter, cfg.RateLimit.RequestsPerSecond))
	}
	middlewares = append(middlewares, timeoutMiddleware(cfg.Server.RequestTimeout))

	var h http.Handler = server.setupRoutes()
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	server.httpServer = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        h,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	return server, nil
}

// buildScorer selects the scorer backend from configuration.
func buildScorer(cfg *config.ModelConfig) (decision.Scorer, error) {
	switch cfg.Mode {
	case "remote":
		if cfg.ServerURL == "" {
			return nil, fmt.Errorf("model mode is remote but server_url is empty")
		}
		return scorer.NewHTTPScorer(cfg.ServerURL, cfg.Timeout), nil
	case "", "artifact":
		artifact, err := scorer.LoadArtifact(cfg.ArtifactPath)
		if err != nil {
			return nil, fmt.Errorf("loading model artifact: %w", err)
		}
		return scorer.NewLogisticScorer(artifact)
	default:
		return nil, fmt.Errorf("unknown model mode %q", cfg.Mode)
	}
}

// ruleConfig maps configuration overrides onto the rule defaults.
func ruleConfig(cfg *config.RulesConfig) *decision.RuleConfig {
	rc := decision.DefaultRuleConfig()
	if cfg.OddHourStart != 0 || cfg.OddHourEnd != 0 {
		rc.OddHourStart = cfg.OddHourStart
		rc.OddHourEnd = cfg.OddHourEnd
	}
	if len(cfg.RiskyChannels) > 0 {
		rc.RiskyChannels = cfg.RiskyChannels
	}
	if cfg.AmountMultiplier > 0 {
		rc.AmountMultiplier = cfg.AmountMultiplier
	}
	return rc
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleLiveness)

	v1 := http.NewServeMux()
	v1.HandleFunc("POST /predict", s.handler.handlePredict)
	v1.HandleFunc("GET /transactions", s.handler.handleTransactions)
	v1.HandleFunc("GET /alerts", s.handler.handleAlerts)
	v1.HandleFunc("GET /model/metrics", s.handler.handleModelMetrics)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", v1))

	return mux
}

// handleHealth reports readiness: both backing stores must respond.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok", "redis": "ok"}
	healthy := true

	if err := s.db.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Start runs the server until it fails or a shutdown signal arrives.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		"address", s.httpServer.Addr,
		"environment", s.config.Environment,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests and closes the backing connections.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown http server", "error", err)
		return err
	}
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
	}
	if err := s.redis.Close(); err != nil {
		s.logger.Error("failed to close redis", "error", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}
