package decision

import (
	"fmt"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
)

// RuleTag identifies a deterministic rule.
type RuleTag string

const (
	RuleOddHour       RuleTag = "odd_hour"
	RuleRiskyChannel  RuleTag = "risky_channel_unverified"
	RuleAmountAnomaly RuleTag = "amount_anomaly"
)

// Default rule policy. These mirror the production rule book; override them
// through RuleConfig, not by editing call sites.
const (
	DefaultOddHourStart     = 2
	DefaultOddHourEnd       = 4
	DefaultAmountMultiplier = 5.0
)

// DefaultRiskyChannels are the channels that require a verified KYC.
func DefaultRiskyChannels() []string {
	return []string{
		transaction.ChannelWeb,
		transaction.ChannelMobileBrowser,
		transaction.ChannelUnknown,
	}
}

// RuleConfig holds the overridable thresholds of the rule set.
type RuleConfig struct {
	// OddHourStart..OddHourEnd is the inclusive flagged hour window.
	OddHourStart int
	OddHourEnd   int
	// RiskyChannels is the channel set that, combined with an unverified
	// KYC, triggers the risky-channel rule.
	RiskyChannels []string
	// AmountMultiplier is the baseline multiple above which an amount is
	// anomalous.
	AmountMultiplier float64
}

// DefaultRuleConfig returns the stated default policy.
func DefaultRuleConfig() *RuleConfig {
	return &RuleConfig{
		OddHourStart:     DefaultOddHourStart,
		OddHourEnd:       DefaultOddHourEnd,
		RiskyChannels:    DefaultRiskyChannels(),
		AmountMultiplier: DefaultAmountMultiplier,
	}
}

// RuleContext is the typed input every rule evaluates against: the
// transaction's own features plus the previously-fetched customer baseline.
type RuleContext struct {
	CustomerID      string
	Amount          float64
	Hour            int
	Channel         string
	KYCVerified     bool
	CustomerAverage float64
}

// RuleTrigger is one fired rule with its rendered description. Produced
// transiently per evaluation and folded into the verdict's reason.
type RuleTrigger struct {
	Tag         RuleTag
	Description string
}

// Rule is a single deterministic predicate.
type Rule interface {
	Tag() RuleTag
	// Evaluate reports whether the rule fires for the given context.
	Evaluate(rc RuleContext) (RuleTrigger, bool)
}

// Evaluator runs an ordered rule list. Rules are independent: every rule is
// evaluated on every call so the reasons reflect all fired rules, not just
// the first.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator builds the standard rule set from cfg. A nil cfg uses the
// default policy.
func NewEvaluator(cfg *RuleConfig) *Evaluator {
	if cfg == nil {
		cfg = DefaultRuleConfig()
	}
	risky := make(map[string]struct{}, len(cfg.RiskyChannels))
	for _, c := range cfg.RiskyChannels {
		risky[transaction.NormalizeChannel(c)] = struct{}{}
	}
	return &Evaluator{
		rules: []Rule{
			&oddHourRule{start: cfg.OddHourStart, end: cfg.OddHourEnd},
			&riskyChannelRule{channels: risky},
			&amountAnomalyRule{multiplier: cfg.AmountMultiplier},
		},
	}
}

// Evaluate returns the triggers of every fired rule, in rule order.
func (e *Evaluator) Evaluate(rc RuleContext) []RuleTrigger {
	var triggered []RuleTrigger
	for _, r := range e.rules {
		if trigger, ok := r.Evaluate(rc); ok {
			triggered = append(triggered, trigger)
		}
	}
	return triggered
}

// Rules exposes the configured rule list, in evaluation order.
func (e *Evaluator) Rules() []Rule {
	return e.rules
}

// oddHourRule flags transactions inside the low-traffic hour window where
// fraud concentrates.
type oddHourRule struct {
	start, end int
}

func (r *oddHourRule) Tag() RuleTag { return RuleOddHour }

func (r *oddHourRule) Evaluate(rc RuleContext) (RuleTrigger, bool) {
	if rc.Hour < r.start || rc.Hour > r.end {
		return RuleTrigger{}, false
	}
	return RuleTrigger{
		Tag:         RuleOddHour,
		Description: fmt.Sprintf("Odd Hours (%02d:00-%02d:00)", r.start, r.end),
	}, true
}

// riskyChannelRule flags risky acquisition channels only when the customer's
// KYC is unverified. Channel risk alone does not trigger.
type riskyChannelRule struct {
	channels map[string]struct{}
}

func (r *riskyChannelRule) Tag() RuleTag { return RuleRiskyChannel }

func (r *riskyChannelRule) Evaluate(rc RuleContext) (RuleTrigger, bool) {
	if rc.KYCVerified {
		return RuleTrigger{}, false
	}
	if _, ok := r.channels[transaction.NormalizeChannel(rc.Channel)]; !ok {
		return RuleTrigger{}, false
	}
	return RuleTrigger{
		Tag:         RuleRiskyChannel,
		Description: "Risky Channel & Unverified KYC",
	}, true
}

// amountAnomalyRule flags amounts far above the customer baseline. A
// customer with no history (average 0) never triggers, whatever the amount:
// a deliberate cold-start exemption.
type amountAnomalyRule struct {
	multiplier float64
}

func (r *amountAnomalyRule) Tag() RuleTag { return RuleAmountAnomaly }

func (r *amountAnomalyRule) Evaluate(rc RuleContext) (RuleTrigger, bool) {
	if rc.CustomerAverage <= 0 {
		return RuleTrigger{}, false
	}
	if rc.Amount <= r.multiplier*rc.CustomerAverage {
		return RuleTrigger{}, false
	}
	return RuleTrigger{
		Tag:         RuleAmountAnomaly,
		Description: fmt.Sprintf("Amount > %gx User Average (Avg: %.2f)", r.multiplier, rc.CustomerAverage),
	}, true
}
