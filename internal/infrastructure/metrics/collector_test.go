package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/service/decision"
)

func TestCollector_RecordVerdict(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	collector.RecordVerdict(context.Background(), &decision.Verdict{
		IsFraud:   true,
		Persisted: true,
		RiskScore: 0.87,
	}, 5*time.Millisecond)
	collector.RecordVerdict(context.Background(), &decision.Verdict{
		IsFraud:   false,
		Persisted: true,
		RiskScore: 0.12,
	}, 3*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.verdictsTotal.WithLabelValues("true", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.verdictsTotal.WithLabelValues("false", "true")))
}

func TestCollector_RecordRuleTrigger(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	collector.RecordRuleTrigger(context.Background(), decision.RuleOddHour)
	collector.RecordRuleTrigger(context.Background(), decision.RuleOddHour)
	collector.RecordRuleTrigger(context.Background(), decision.RuleAmountAnomaly)

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.rulesTriggered.WithLabelValues("odd_hour")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.rulesTriggered.WithLabelValues("amount_anomaly")))
	assert.Equal(t, float64(0), testutil.ToFloat64(collector.rulesTriggered.WithLabelValues("risky_channel_unverified")))
}
