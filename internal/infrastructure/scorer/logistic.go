package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/service/decision"
)

// NumericWeight is the artifact entry for one standardized numeric feature.
type NumericWeight struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Weight float64 `json:"weight"`
}

// Artifact is the JSON export of the fitted training pipeline: scaler
// statistics, one-hot channel vocabulary and logistic weights. Channels
// outside the vocabulary contribute nothing, matching the training
// encoder's handle-unknown behavior.
type Artifact struct {
	ModelVersion string                   `json:"model_version"`
	Threshold    float64                  `json:"threshold"`
	Intercept    float64                  `json:"intercept"`
	Numeric      map[string]NumericWeight `json:"numeric"`
	Channels     map[string]float64       `json:"channels"`
	KYCWeight    float64                  `json:"kyc_weight"`
}

// LogisticScorer scores feature vectors with a locally loaded model
// artifact. Safe for concurrent use; the artifact is read-only after load.
type LogisticScorer struct {
	artifact *Artifact
}

// Numeric feature keys the artifact must cover.
var numericFeatures = []string{
	"account_age_days",
	"transaction_amount",
	"hour",
	"weekday",
}

// LoadArtifact reads and validates a model artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parsing model artifact: %w", err)
	}

	if artifact.Threshold <= 0 || artifact.Threshold >= 1 {
		return nil, fmt.Errorf("model artifact threshold %v outside (0,1)", artifact.Threshold)
	}
	for _, name := range numericFeatures {
		nw, ok := artifact.Numeric[name]
		if !ok {
			return nil, fmt.Errorf("model artifact missing numeric feature %q", name)
		}
		if nw.Std <= 0 {
			return nil, fmt.Errorf("model artifact feature %q has non-positive std", name)
		}
	}

	return &artifact, nil
}

// NewLogisticScorer creates a scorer from a loaded artifact.
func NewLogisticScorer(artifact *Artifact) (*LogisticScorer, error) {
	if artifact == nil {
		return nil, errors.NewScoringUnavailableError("model artifact not loaded")
	}
	return &LogisticScorer{artifact: artifact}, nil
}

// Score computes sigmoid(intercept + w·x) over the standardized numerics,
// the one-hot channel weight and the KYC flag, then thresholds it into the
// binary prediction.
func (s *LogisticScorer) Score(ctx context.Context, features transaction.FeatureVector) (decision.ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return decision.ScoreResult{}, err
	}

	a := s.artifact
	logit := a.Intercept
	logit += standardized(features.AccountAgeDays, a.Numeric["account_age_days"])
	logit += standardized(features.TransactionAmount, a.Numeric["transaction_amount"])
	logit += standardized(float64(features.Hour), a.Numeric["hour"])
	logit += standardized(float64(features.Weekday), a.Numeric["weekday"])

	if w, ok := a.Channels[transaction.NormalizeChannel(features.Channel)]; ok {
		logit += w
	}
	if features.KYCVerifiedFlag == 1 {
		logit += a.KYCWeight
	}

	score := sigmoid(logit)
	predicted := 0
	if score >= a.Threshold {
		predicted = 1
	}

	return decision.ScoreResult{RiskScore: score, Prediction: predicted}, nil
}

// Version returns the artifact's model version.
func (s *LogisticScorer) Version() string {
	return s.artifact.ModelVersion
}

func standardized(value float64, nw NumericWeight) float64 {
	return (value - nw.Mean) / nw.Std * nw.Weight
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
