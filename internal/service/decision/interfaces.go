package decision

import (
	"context"
	"time"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/prediction"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
)

// Service is the decision engine: one stateless evaluation per transaction.
type Service interface {
	// Evaluate scores a transaction, runs the rule set against the customer
	// baseline and returns the merged verdict.
	Evaluate(ctx context.Context, tx *transaction.Transaction) (*Verdict, error)
}

// Scorer is the trained classifier, treated as opaque. A scorer failure is
// fatal to the evaluation.
type Scorer interface {
	Score(ctx context.Context, features transaction.FeatureVector) (ScoreResult, error)
}

// ScoreResult is the scorer's output for one feature vector.
type ScoreResult struct {
	// RiskScore is a probability-like value in [0,1].
	RiskScore float64 `json:"risk_score"`
	// Prediction is the binary class: 1 flags fraud.
	Prediction int `json:"prediction"`
}

// HistoryStore is the persistence contract the engine depends on. Reads must
// reflect only committed prior writes; appends are not deduplicated here, a
// duplicate transaction_id surfaces as a conflict from the store.
type HistoryStore interface {
	// AverageAmount returns the mean transaction_amount across previously
	// persisted records for the customer, 0 when no history exists.
	AverageAmount(ctx context.Context, customerID string) (float64, error)
	// Append durably stores one prediction record.
	Append(ctx context.Context, record *prediction.Record) error
}

// AlertRepository records fraud verdicts for the alerts feed. Optional;
// writes are best-effort.
type AlertRepository interface {
	Save(ctx context.Context, alert *prediction.Alert) error
}

// Explainer turns a fraud verdict into a one-sentence narrative for
// compliance review. Optional; every failure degrades to no explanation.
type Explainer interface {
	Explain(ctx context.Context, tx *transaction.Transaction, verdict *Verdict) (string, error)
}

// MetricsCollector records decision outcomes.
type MetricsCollector interface {
	RecordVerdict(ctx context.Context, verdict *Verdict, latency time.Duration)
	RecordRuleTrigger(ctx context.Context, tag RuleTag)
}

// Verdict is the final merged decision for one transaction.
type Verdict struct {
	TransactionID string    `json:"transaction_id"`
	RiskScore     float64   `json:"risk_score"`
	MLPrediction  int       `json:"ml_prediction"`
	RuleTriggered bool      `json:"rule_triggered"`
	RuleReasons   []string  `json:"rule_reasons"`
	IsFraud       bool      `json:"is_fraud"`
	Reason        string    `json:"reason"`
	Explanation   string    `json:"explanation,omitempty"`
	Timestamp     time.Time `json:"timestamp"`

	// Persisted reports whether the audit record made it to the history
	// store. The verdict is returned either way.
	Persisted bool `json:"persisted"`
	// HistoryDegraded is set when the baseline read failed and the
	// Amount-Anomaly rule ran against an empty baseline.
	HistoryDegraded bool `json:"history_degraded"`
}
