package decision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/prediction"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
)

// ReasonLegit is the reason rendered when neither the model nor any rule
// flagged the transaction.
const ReasonLegit = "Legit"

// FallbackExplanation is attached to fraud verdicts when the explainer is
// configured but fails; the verdict itself never depends on it.
const FallbackExplanation = "Automated explanation unavailable; review flagged rules and risk score."

// service implements the Service interface
type service struct {
	scorer    Scorer
	history   HistoryStore
	alerts    AlertRepository
	explainer Explainer
	evaluator *Evaluator
	metrics   MetricsCollector
	logger    *slog.Logger
}

// NewService creates a new decision engine. scorer and history are required;
// alerts, explainer and metrics may be nil.
func NewService(
	scorer Scorer,
	history HistoryStore,
	alerts AlertRepository,
	explainer Explainer,
	rules *RuleConfig,
	metrics MetricsCollector,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		scorer:    scorer,
		history:   history,
		alerts:    alerts,
		explainer: explainer,
		evaluator: NewEvaluator(rules),
		metrics:   metrics,
		logger:    logger,
	}
}

// Evaluate runs the per-call pipeline: normalize, read the customer
// baseline, score, evaluate rules, merge, persist, return. The only state is
// externalized to the history store; concurrent evaluations for the same
// customer may read the same baseline before either append commits, which is
// an accepted weak-consistency trade-off.
func (s *service) Evaluate(ctx context.Context, tx *transaction.Transaction) (*Verdict, error) {
	start := time.Now()

	if tx == nil {
		return nil, errors.NewValidationError("MISSING_TRANSACTION", "transaction is required")
	}

	features, err := tx.Features()
	if err != nil {
		return nil, err
	}

	// Baseline read is scoped to previously persisted records only; the
	// in-flight transaction is appended after the verdict is computed. A
	// store failure disables the amount rule for this call instead of
	// failing the prediction.
	historyDegraded := false
	avg, err := s.history.AverageAmount(ctx, tx.CustomerID)
	if err != nil {
		historyDegraded = true
		avg = 0
		s.logger.WarnContext(ctx, "history read failed, degrading baseline to zero",
			"customer_id", tx.CustomerID,
			"error", err,
		)
	}

	score, err := s.scorer.Score(ctx, features)
	if err != nil {
		if errors.IsScoringUnavailable(err) {
			return nil, err
		}
		return nil, errors.NewScoringUnavailableError("risk scorer failed").WithCause(err)
	}

	triggers := s.evaluator.Evaluate(RuleContext{
		CustomerID:      tx.CustomerID,
		Amount:          tx.TransactionAmount,
		Hour:            tx.Hour,
		Channel:         tx.Channel,
		KYCVerified:     tx.KYCVerified(),
		CustomerAverage: avg,
	})

	reasons := make([]string, 0, len(triggers))
	for _, trigger := range triggers {
		reasons = append(reasons, trigger.Description)
		if s.metrics != nil {
			s.metrics.RecordRuleTrigger(ctx, trigger.Tag)
		}
	}

	// The union, never the intersection: rules can upgrade a legit model
	// call to fraud but never downgrade a model-flagged one.
	ruleTriggered := len(triggers) > 0
	isFraud := score.Prediction == 1 || ruleTriggered

	verdict := &Verdict{
		TransactionID:   tx.TransactionID,
		RiskScore:       score.RiskScore,
		MLPrediction:    score.Prediction,
		RuleTriggered:   ruleTriggered,
		RuleReasons:     reasons,
		IsFraud:         isFraud,
		Reason:          buildReason(score, reasons),
		Timestamp:       time.Now().UTC(),
		HistoryDegraded: historyDegraded,
	}

	if verdict.IsFraud && s.explainer != nil {
		if explanation, err := s.explainer.Explain(ctx, tx, verdict); err != nil {
			s.logger.DebugContext(ctx, "explanation generation failed",
				"transaction_id", tx.TransactionID,
				"error", err,
			)
			verdict.Explanation = FallbackExplanation
		} else {
			verdict.Explanation = explanation
		}
	}

	s.persist(ctx, tx, features, verdict)

	if s.metrics != nil {
		s.metrics.RecordVerdict(ctx, verdict, time.Since(start))
	}

	return verdict, nil
}

// persist appends the audit record and, for fraud verdicts, the alert row.
// Both writes are best-effort: the verdict has already been computed and is
// returned to the caller whatever happens here.
func (s *service) persist(ctx context.Context, tx *transaction.Transaction, features transaction.FeatureVector, verdict *Verdict) {
	record, err := prediction.NewRecord(tx.TransactionID, tx.CustomerID, features, verdict.RiskScore, verdict.MLPrediction)
	if err != nil {
		s.logger.ErrorContext(ctx, "building prediction record failed",
			"transaction_id", tx.TransactionID,
			"error", err,
		)
		return
	}

	if err := s.history.Append(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "prediction record append failed",
			"transaction_id", tx.TransactionID,
			"customer_id", tx.CustomerID,
			"error", err,
		)
	} else {
		verdict.Persisted = true
	}

	if verdict.IsFraud && s.alerts != nil {
		alert := prediction.NewAlert(tx.TransactionID, tx.CustomerID, verdict.RiskScore, verdict.Reason, verdict.Explanation)
		if err := s.alerts.Save(ctx, alert); err != nil {
			s.logger.ErrorContext(ctx, "fraud alert save failed",
				"transaction_id", tx.TransactionID,
				"error", err,
			)
		}
	}
}

// buildReason renders the human-readable justification. Rule reasons are
// joined in evaluation order; a model-only flag states the score; otherwise
// the transaction is legit.
func buildReason(score ScoreResult, ruleReasons []string) string {
	if len(ruleReasons) > 0 {
		return strings.Join(ruleReasons, "; ")
	}
	if score.Prediction == 1 {
		return fmt.Sprintf("Model flagged (score=%.2f)", score.RiskScore)
	}
	return ReasonLegit
}
