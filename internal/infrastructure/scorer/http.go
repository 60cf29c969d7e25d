package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/service/decision"
)

// HTTPScorer calls a remote model server. The request is bounded by the
// caller's context deadline plus the client timeout; the engine performs no
// retries of its own.
type HTTPScorer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPScorer creates a scorer client for the given model server base URL.
func NewHTTPScorer(baseURL string, timeout time.Duration) *HTTPScorer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPScorer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type scoreResponse struct {
	RiskScore  float64 `json:"risk_score"`
	Prediction int     `json:"prediction"`
}

// Score posts the feature vector to the model server's /score endpoint.
func (s *HTTPScorer) Score(ctx context.Context, features transaction.FeatureVector) (decision.ScoreResult, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return decision.ScoreResult{}, fmt.Errorf("encoding features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return decision.ScoreResult{}, fmt.Errorf("building score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return decision.ScoreResult{}, errors.NewScoringUnavailableError("model server unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decision.ScoreResult{}, errors.NewScoringUnavailableError(
			fmt.Sprintf("model server returned status %d", resp.StatusCode))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decision.ScoreResult{}, errors.NewScoringUnavailableError("decoding model server response").WithCause(err)
	}
	if out.RiskScore < 0 || out.RiskScore > 1 {
		return decision.ScoreResult{}, errors.NewScoringUnavailableError(
			fmt.Sprintf("model server returned risk score %v outside [0,1]", out.RiskScore))
	}

	return decision.ScoreResult{RiskScore: out.RiskScore, Prediction: out.Prediction}, nil
}
