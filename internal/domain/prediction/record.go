package prediction

import (
	"time"

	"github.com/google/uuid"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
)

// Record is one scored transaction, persisted append-only. It doubles as the
// audit log and as the source the Amount-Anomaly baseline is computed from:
// a record never feeds its own evaluation but is visible to every later one
// for the same customer.
type Record struct {
	ID            uuid.UUID                 `json:"id"`
	TransactionID string                    `json:"transaction_id"`
	CustomerID    string                    `json:"customer_id"`
	Features      transaction.FeatureVector `json:"features"`
	RiskScore     float64                   `json:"risk_score"`
	Prediction    int                       `json:"prediction"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// NewRecord builds the persisted snapshot for a computed verdict.
func NewRecord(transactionID, customerID string, features transaction.FeatureVector, riskScore float64, predicted int) (*Record, error) {
	if transactionID == "" {
		return nil, errors.NewValidationError("MISSING_TRANSACTION_ID", "transaction_id is required")
	}
	if customerID == "" {
		return nil, errors.NewValidationError("MISSING_CUSTOMER_ID", "customer_id is required")
	}
	if riskScore < 0 || riskScore > 1 {
		return nil, errors.NewValidationError("INVALID_RISK_SCORE", "risk_score must be in [0,1]")
	}
	if predicted != 0 && predicted != 1 {
		return nil, errors.NewValidationError("INVALID_PREDICTION", "prediction must be 0 or 1")
	}
	return &Record{
		ID:            uuid.New(),
		TransactionID: transactionID,
		CustomerID:    customerID,
		Features:      features,
		RiskScore:     riskScore,
		Prediction:    predicted,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Alert is the compliance-facing trail of fraud verdicts. One row per
// flagged transaction, written best-effort alongside the prediction record.
type Alert struct {
	ID            uuid.UUID `json:"id"`
	TransactionID string    `json:"transaction_id"`
	CustomerID    string    `json:"customer_id"`
	RiskScore     float64   `json:"risk_score"`
	Reason        string    `json:"reason"`
	Explanation   string    `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewAlert builds an alert for a fraud verdict.
func NewAlert(transactionID, customerID string, riskScore float64, reason, explanation string) *Alert {
	return &Alert{
		ID:            uuid.New(),
		TransactionID: transactionID,
		CustomerID:    customerID,
		RiskScore:     riskScore,
		Reason:        reason,
		Explanation:   explanation,
		CreatedAt:     time.Now().UTC(),
	}
}
