package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
)

func TestHTTPScorer_Score(t *testing.T) {
	var gotFeatures transaction.FeatureVector
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/score", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotFeatures))
		json.NewEncoder(w).Encode(map[string]interface{}{"risk_score": 0.73, "prediction": 1})
	}))
	defer server.Close()

	s := NewHTTPScorer(server.URL, time.Second)
	features := transaction.FeatureVector{
		AccountAgeDays:    100,
		TransactionAmount: 250,
		Channel:           "web",
		KYCVerifiedFlag:   0,
		Hour:              3,
		Weekday:           5,
	}

	got, err := s.Score(context.Background(), features)

	require.NoError(t, err)
	assert.Equal(t, 0.73, got.RiskScore)
	assert.Equal(t, 1, got.Prediction)
	assert.Equal(t, features, gotFeatures)
}

func TestHTTPScorer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "score outside range",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{"risk_score": 1.7, "prediction": 1})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			s := NewHTTPScorer(server.URL, time.Second)
			_, err := s.Score(context.Background(), transaction.FeatureVector{})

			require.Error(t, err)
			assert.True(t, domainErrors.IsScoringUnavailable(err))
		})
	}

	t.Run("unreachable server", func(t *testing.T) {
		s := NewHTTPScorer("http://127.0.0.1:1", 200*time.Millisecond)
		_, err := s.Score(context.Background(), transaction.FeatureVector{})

		require.Error(t, err)
		assert.True(t, domainErrors.IsScoringUnavailable(err))
	})
}
