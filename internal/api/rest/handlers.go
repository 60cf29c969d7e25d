package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/prediction"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/infrastructure/scorer"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/service/decision"
)

const defaultListLimit = 10

// PredictionLister reads back persisted prediction records.
type PredictionLister interface {
	Recent(ctx context.Context, limit int) ([]*prediction.Record, error)
}

// AlertLister reads back persisted fraud alerts.
type AlertLister interface {
	Recent(ctx context.Context, limit int) ([]*prediction.Alert, error)
}

// Handler holds the handlers' dependencies.
type Handler struct {
	decisions    decision.Service
	predictions  PredictionLister
	alerts       AlertLister
	modelMetrics *scorer.ModelMetrics
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewHandler creates the API handler set. modelMetrics may be nil when no
// evaluation report was shipped with the model.
func NewHandler(
	decisions decision.Service,
	predictions PredictionLister,
	alerts AlertLister,
	modelMetrics *scorer.ModelMetrics,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		decisions:    decisions,
		predictions:  predictions,
		alerts:       alerts,
		modelMetrics: modelMetrics,
		validate:     validator.New(),
		logger:       logger,
	}
}

// handlePredict evaluates one transaction and returns the verdict.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	tx, err := req.ToTransaction()
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	verdict, err := h.decisions.Evaluate(r.Context(), tx)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toPredictResponse(verdict))
}

// handleTransactions lists the most recent prediction records.
func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	records, err := h.predictions.Recent(r.Context(), limit)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": toTransactionResponses(records),
		"count":        len(records),
	})
}

// handleAlerts lists the most recent fraud alerts.
func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	alerts, err := h.alerts.Recent(r.Context(), limit)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": toAlertResponses(alerts),
		"count":  len(alerts),
	})
}

// handleModelMetrics reports the offline evaluation of the deployed model.
func (h *Handler) handleModelMetrics(w http.ResponseWriter, r *http.Request) {
	if h.modelMetrics == nil {
		writeError(r.Context(), w, h.logger, errors.NewNotFoundError("model metrics"))
		return
	}

	writeJSON(w, http.StatusOK, ModelMetricsResponse{
		Accuracy:  h.modelMetrics.Accuracy,
		Precision: h.modelMetrics.Precision,
		Recall:    h.modelMetrics.Recall,
		F1:        h.modelMetrics.F1,
		ROCAUC:    h.modelMetrics.ROCAUC,
	})
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.NewValidationError("INVALID_LIMIT", "limit must be a positive integer")
	}
	if limit > 100 {
		limit = 100
	}
	return limit, nil
}
