package rest

import (
	"time"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/prediction"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/service/decision"
)

// PredictRequest is the inbound transaction to be evaluated.
type PredictRequest struct {
	TransactionID     string  `json:"transaction_id" validate:"required"`
	CustomerID        string  `json:"customer_id" validate:"required"`
	AccountAgeDays    float64 `json:"account_age_days" validate:"gte=0"`
	TransactionAmount float64 `json:"transaction_amount" validate:"gte=0"`
	Channel           string  `json:"channel" validate:"required"`
	KYCVerifiedFlag   int     `json:"kyc_verified_flag" validate:"oneof=0 1"`
	Hour              int     `json:"hour" validate:"gte=0,lte=23"`
	Weekday           int     `json:"weekday" validate:"gte=0,lte=6"`
}

// ToTransaction converts the request into the domain transaction. Channel
// normalization happens in the domain constructor.
func (r *PredictRequest) ToTransaction() (*transaction.Transaction, error) {
	return transaction.New(
		r.TransactionID,
		r.CustomerID,
		r.AccountAgeDays,
		r.TransactionAmount,
		r.Channel,
		r.KYCVerifiedFlag,
		r.Hour,
		r.Weekday,
	)
}

// PredictResponse is the verdict returned to the caller.
type PredictResponse struct {
	TransactionID string   `json:"transaction_id"`
	RiskScore     float64  `json:"risk_score"`
	MLPrediction  int      `json:"ml_prediction"`
	RuleReasons   []string `json:"rule_reasons,omitempty"`
	IsFraud       bool     `json:"is_fraud"`
	Reason        string   `json:"reason"`
	Explanation   string   `json:"explanation,omitempty"`
	Persisted     bool     `json:"persisted"`
}

func toPredictResponse(v *decision.Verdict) PredictResponse {
	return PredictResponse{
		TransactionID: v.TransactionID,
		RiskScore:     v.RiskScore,
		MLPrediction:  v.MLPrediction,
		RuleReasons:   v.RuleReasons,
		IsFraud:       v.IsFraud,
		Reason:        v.Reason,
		Explanation:   v.Explanation,
		Persisted:     v.Persisted,
	}
}

// TransactionResponse is one persisted prediction record.
type TransactionResponse struct {
	TransactionID string                    `json:"transaction_id"`
	CustomerID    string                    `json:"customer_id"`
	Features      transaction.FeatureVector `json:"features"`
	RiskScore     float64                   `json:"risk_score"`
	Prediction    int                       `json:"prediction"`
	CreatedAt     time.Time                 `json:"created_at"`
}

func toTransactionResponses(records []*prediction.Record) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, TransactionResponse{
			TransactionID: r.TransactionID,
			CustomerID:    r.CustomerID,
			Features:      r.Features,
			RiskScore:     r.RiskScore,
			Prediction:    r.Prediction,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out
}

// AlertResponse is one fraud alert.
type AlertResponse struct {
	TransactionID string    `json:"transaction_id"`
	CustomerID    string    `json:"customer_id"`
	RiskScore     float64   `json:"risk_score"`
	Reason        string    `json:"reason"`
	Explanation   string    `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAlertResponses(alerts []*prediction.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertResponse{
			TransactionID: a.TransactionID,
			CustomerID:    a.CustomerID,
			RiskScore:     a.RiskScore,
			Reason:        a.Reason,
			Explanation:   a.Explanation,
			CreatedAt:     a.CreatedAt,
		})
	}
	return out
}

// ModelMetricsResponse reports the offline evaluation of the deployed model.
type ModelMetricsResponse struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable error code and human message.
type ErrorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}
