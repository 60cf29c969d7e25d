package decision

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/prediction"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
)

// MockScorer mocks the Scorer interface
type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(ctx context.Context, features transaction.FeatureVector) (ScoreResult, error) {
	args := m.Called(ctx, features)
	return args.Get(0).(ScoreResult), args.Error(1)
}

// MockHistoryStore mocks the HistoryStore interface
type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) AverageAmount(ctx context.Context, customerID string) (float64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockHistoryStore) Append(ctx context.Context, record *prediction.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockAlertRepository mocks the AlertRepository interface
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Save(ctx context.Context, alert *prediction.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// MockExplainer mocks the Explainer interface
type MockExplainer struct {
	mock.Mock
}

func (m *MockExplainer) Explain(ctx context.Context, tx *transaction.Transaction, verdict *Verdict) (string, error) {
	args := m.Called(ctx, tx, verdict)
	return args.String(0), args.Error(1)
}

// MockMetricsCollector mocks the MetricsCollector interface
type MockMetricsCollector struct {
	mock.Mock
}

func (m *MockMetricsCollector) RecordVerdict(ctx context.Context, verdict *Verdict, latency time.Duration) {
	m.Called(ctx, verdict, latency)
}

func (m *MockMetricsCollector) RecordRuleTrigger(ctx context.Context, tag RuleTag) {
	m.Called(ctx, tag)
}
