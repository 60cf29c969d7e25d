package decision

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOddHourRule(t *testing.T) {
	evaluator := NewEvaluator(nil)

	for hour := 0; hour < 24; hour++ {
		t.Run(fmt.Sprintf("hour_%02d", hour), func(t *testing.T) {
			triggers := evaluator.Evaluate(RuleContext{
				CustomerID:  "C1",
				Amount:      50,
				Hour:        hour,
				Channel:     "atm",
				KYCVerified: true,
			})

			if hour >= 2 && hour <= 4 {
				require.Len(t, triggers, 1)
				assert.Equal(t, RuleOddHour, triggers[0].Tag)
				assert.Equal(t, "Odd Hours (02:00-04:00)", triggers[0].Description)
			} else {
				assert.Empty(t, triggers)
			}
		})
	}
}

func TestRiskyChannelRule_AllQuadrants(t *testing.T) {
	evaluator := NewEvaluator(nil)

	tests := []struct {
		name        string
		channel     string
		kycVerified bool
		fires       bool
	}{
		{"risky channel unverified", "web", false, true},
		{"risky channel verified", "web", true, false},
		{"safe channel unverified", "atm", false, false},
		{"safe channel verified", "atm", true, false},
		{"mobile_browser unverified", "mobile_browser", false, true},
		{"unknown unverified", "unknown", false, true},
		{"case and spacing normalized", "  Mobile Browser ", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triggers := evaluator.Evaluate(RuleContext{
				CustomerID:  "C1",
				Amount:      50,
				Hour:        12,
				Channel:     tt.channel,
				KYCVerified: tt.kycVerified,
			})

			if tt.fires {
				require.Len(t, triggers, 1)
				assert.Equal(t, RuleRiskyChannel, triggers[0].Tag)
				assert.Equal(t, "Risky Channel & Unverified KYC", triggers[0].Description)
			} else {
				assert.Empty(t, triggers)
			}
		})
	}
}

func TestAmountAnomalyRule(t *testing.T) {
	evaluator := NewEvaluator(nil)

	tests := []struct {
		name    string
		amount  float64
		average float64
		fires   bool
	}{
		{"six times average fires", 600, 100, true},
		{"four times average does not fire", 400, 100, false},
		{"exactly five times average does not fire", 500, 100, false},
		{"cold start never fires", 1000000, 0, false},
		{"negative average treated as no history", 1000000, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triggers := evaluator.Evaluate(RuleContext{
				CustomerID:      "C1",
				Amount:          tt.amount,
				Hour:            12,
				Channel:         "atm",
				KYCVerified:     true,
				CustomerAverage: tt.average,
			})

			if tt.fires {
				require.Len(t, triggers, 1)
				assert.Equal(t, RuleAmountAnomaly, triggers[0].Tag)
				assert.Equal(t, "Amount > 5x User Average (Avg: 100.00)", triggers[0].Description)
			} else {
				assert.Empty(t, triggers)
			}
		})
	}
}

func TestEvaluator_NoShortCircuit(t *testing.T) {
	evaluator := NewEvaluator(nil)

	// All three rules should fire and be reported in evaluation order.
	triggers := evaluator.Evaluate(RuleContext{
		CustomerID:      "C1",
		Amount:          600,
		Hour:            3,
		Channel:         "web",
		KYCVerified:     false,
		CustomerAverage: 100,
	})

	require.Len(t, triggers, 3)
	assert.Equal(t, RuleOddHour, triggers[0].Tag)
	assert.Equal(t, RuleRiskyChannel, triggers[1].Tag)
	assert.Equal(t, RuleAmountAnomaly, triggers[2].Tag)
}

func TestEvaluator_ConfigOverrides(t *testing.T) {
	evaluator := NewEvaluator(&RuleConfig{
		OddHourStart:     0,
		OddHourEnd:       1,
		RiskyChannels:    []string{"branch"},
		AmountMultiplier: 2,
	})

	triggers := evaluator.Evaluate(RuleContext{
		CustomerID:      "C1",
		Amount:          250,
		Hour:            1,
		Channel:         "branch",
		KYCVerified:     false,
		CustomerAverage: 100,
	})

	require.Len(t, triggers, 3)
	assert.Equal(t, "Odd Hours (00:00-01:00)", triggers[0].Description)
	assert.Equal(t, "Amount > 2x User Average (Avg: 100.00)", triggers[2].Description)

	// The default window no longer applies.
	triggers = evaluator.Evaluate(RuleContext{
		CustomerID:  "C1",
		Amount:      50,
		Hour:        3,
		Channel:     "atm",
		KYCVerified: true,
	})
	assert.Empty(t, triggers)
}

func TestDefaultRuleConfig(t *testing.T) {
	cfg := DefaultRuleConfig()

	assert.Equal(t, 2, cfg.OddHourStart)
	assert.Equal(t, 4, cfg.OddHourEnd)
	assert.Equal(t, 5.0, cfg.AmountMultiplier)
	assert.ElementsMatch(t, []string{"web", "mobile_browser", "unknown"}, cfg.RiskyChannels)
}
