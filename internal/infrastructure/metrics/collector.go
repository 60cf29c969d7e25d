package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/service/decision"
)

// Collector implements decision.MetricsCollector on Prometheus.
type Collector struct {
	verdictsTotal    *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec
	rulesTriggered   *prometheus.CounterVec
	riskScores       prometheus.Histogram
}

// NewCollector registers decision metrics on reg. A nil reg uses the default
// registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		verdictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ptb",
				Subsystem: "decision",
				Name:      "verdicts_total",
				Help:      "Total number of decision verdicts produced",
			},
			[]string{"fraud", "persisted"},
		),
		decisionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ptb",
				Subsystem: "decision",
				Name:      "duration_seconds",
				Help:      "End-to-end decision latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
			},
			[]string{"fraud"},
		),
		rulesTriggered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ptb",
				Subsystem: "decision",
				Name:      "rules_triggered_total",
				Help:      "Total number of rule triggers by rule",
			},
			[]string{"rule"},
		),
		riskScores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "ptb",
				Subsystem: "decision",
				Name:      "risk_score",
				Help:      "Distribution of model risk scores",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
	}
}

func (c *Collector) RecordVerdict(_ context.Context, verdict *decision.Verdict, duration time.Duration) {
	fraud := strconv.FormatBool(verdict.IsFraud)
	c.verdictsTotal.WithLabelValues(fraud, strconv.FormatBool(verdict.Persisted)).Inc()
	c.decisionDuration.WithLabelValues(fraud).Observe(duration.Seconds())
	c.riskScores.Observe(verdict.RiskScore)
}

func (c *Collector) RecordRuleTrigger(_ context.Context, tag decision.RuleTag) {
	c.rulesTriggered.WithLabelValues(string(tag)).Inc()
}
